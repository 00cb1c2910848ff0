package provider

import (
	"strings"
	"testing"
	"time"
)

func TestTranslateCodexRecord(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		line     string
		wantSkip bool
		wantType MessageType
		wantText string
		wantSub  string
	}{
		"agent message": {
			line:     `{"msg":{"type":"agent_message","message":"working on it"}}`,
			wantType: MessageAssistant,
			wantText: "working on it",
		},
		"task complete": {
			line:     `{"msg":{"type":"task_complete","last_agent_message":"all done"}}`,
			wantType: MessageResult,
			wantSub:  ResultSuccess,
		},
		"error": {
			line:     `{"msg":{"type":"error","message":"model overloaded"}}`,
			wantType: MessageResult,
			wantSub:  ResultError,
		},
		"other event passes through as system": {
			line:     `{"msg":{"type":"token_count","info":{}}}`,
			wantType: MessageSystem,
		},
		"non-json noise skipped": {
			line:     `Reading prompt from stdin...`,
			wantSkip: true,
		},
		"json without msg skipped": {
			line:     `{"id":"x"}`,
			wantSkip: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			msg, ok := translateCodexRecord([]byte(tt.line))
			if tt.wantSkip {
				if ok {
					t.Fatalf("expected skip, got %+v", msg)
				}
				return
			}
			if !ok {
				t.Fatal("expected a message, got skip")
			}
			if msg.Type != tt.wantType {
				t.Errorf("type = %q, want %q", msg.Type, tt.wantType)
			}
			if tt.wantText != "" && msg.TextContent() != tt.wantText {
				t.Errorf("text = %q, want %q", msg.TextContent(), tt.wantText)
			}
			if msg.Subtype != tt.wantSub {
				t.Errorf("subtype = %q, want %q", msg.Subtype, tt.wantSub)
			}
		})
	}
}

func TestCodexBuildArgs(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		opts        ExecuteOptions
		wantParts   []string
		unwantParts []string
	}{
		"no tools pins read-only sandbox": {
			opts:      ExecuteOptions{Prompt: "hi"},
			wantParts: []string{"exec", "--json", "--sandbox read-only"},
		},
		"read-only overrides allowed tools": {
			opts:        ExecuteOptions{Prompt: "hi", AllowedTools: []string{"Edit"}, ReadOnly: true},
			wantParts:   []string{"--sandbox read-only"},
			unwantParts: []string{"workspace-write"},
		},
		"tools enable workspace write": {
			opts:      ExecuteOptions{Prompt: "hi", AllowedTools: []string{"Edit"}},
			wantParts: []string{"--sandbox workspace-write"},
		},
		"model and thinking flags": {
			opts:      ExecuteOptions{Prompt: "hi", Model: "gpt-5-codex", Thinking: ThinkingHigh},
			wantParts: []string{"--model gpt-5-codex", "-c model_reasoning_effort=high"},
		},
		"prompt is last": {
			opts:      ExecuteOptions{Prompt: "review the diff"},
			wantParts: []string{"review the diff"},
		},
		"first setting source selects the profile": {
			opts:        ExecuteOptions{Prompt: "hi", SettingSources: []string{"ci", "spare"}},
			wantParts:   []string{"--profile ci"},
			unwantParts: []string{"spare"},
		},
	}

	codex := NewCodex("", nil, 5*time.Second)
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			joined := strings.Join(codex.BuildArgs(tt.opts), " ")
			for _, part := range tt.wantParts {
				if !strings.Contains(joined, part) {
					t.Errorf("args %q missing %q", joined, part)
				}
			}
			for _, part := range tt.unwantParts {
				if strings.Contains(joined, part) {
					t.Errorf("args %q should not contain %q", joined, part)
				}
			}
			if args := codex.BuildArgs(tt.opts); args[len(args)-1] != tt.opts.Prompt {
				t.Errorf("prompt should be the final argument, got %q", args[len(args)-1])
			}
		})
	}
}

func TestCodexExtraArgsPrecedePrompt(t *testing.T) {
	t.Parallel()

	codex := NewCodex("codex-dev", []string{"--profile", "ci"}, time.Second)
	args := codex.BuildArgs(ExecuteOptions{Prompt: "go"})
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "--profile ci go") {
		t.Errorf("extra args should come right before the prompt, got %q", joined)
	}
	if codex.Command != "codex-dev" {
		t.Errorf("command = %q, want %q", codex.Command, "codex-dev")
	}
}
