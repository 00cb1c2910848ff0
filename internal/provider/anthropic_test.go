package provider

import (
	"context"
	"testing"
)

func TestAnthropicBuildParams(t *testing.T) {
	t.Parallel()

	a := NewAnthropic("sk-test")

	params := a.buildParams(ExecuteOptions{Prompt: "hi", Model: "claude-sonnet-4-5"})
	if string(params.Model) != "claude-sonnet-4-5" {
		t.Errorf("model = %q", params.Model)
	}
	if params.MaxTokens != anthropicDefaultMaxTokens {
		t.Errorf("max tokens = %d", params.MaxTokens)
	}
	if len(params.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(params.Messages))
	}
	if len(params.System) != 0 {
		t.Errorf("system should be empty, got %v", params.System)
	}

	params = a.buildParams(ExecuteOptions{Prompt: "hi", SystemPrompt: "be terse"})
	if len(params.System) != 1 || params.System[0].Text != "be terse" {
		t.Errorf("system = %v", params.System)
	}
}

func TestAnthropicThinkingRaisesTokenCeiling(t *testing.T) {
	t.Parallel()

	a := NewAnthropic("sk-test")

	params := a.buildParams(ExecuteOptions{Prompt: "hi", Thinking: ThinkingHigh})
	budget := thinkingBudgets[ThinkingHigh]
	if params.MaxTokens <= budget {
		t.Errorf("max tokens %d must exceed the thinking budget %d", params.MaxTokens, budget)
	}

	params = a.buildParams(ExecuteOptions{Prompt: "hi", Thinking: ThinkingLow})
	if params.MaxTokens != anthropicDefaultMaxTokens {
		t.Errorf("a small budget should keep the default ceiling, got %d", params.MaxTokens)
	}
}

func TestAnthropicUnauthenticatedRefusesQuery(t *testing.T) {
	// Construction falls back to the environment, so clear it for the test.
	t.Setenv("ANTHROPIC_API_KEY", "")

	a := NewAnthropic("")
	msgs := make(chan Message, 1)
	err := a.ExecuteQuery(context.Background(), ExecuteOptions{Prompt: "hi"}, msgs)
	if KindOf(err) != KindNotAuthenticated {
		t.Fatalf("kind = %q, want %q", KindOf(err), KindNotAuthenticated)
	}

	status := a.CheckInstallation(context.Background())
	if !status.Installed {
		t.Error("SDK provider is always installed")
	}
	if status.Authenticated {
		t.Error("should not be authenticated without a key")
	}
}
