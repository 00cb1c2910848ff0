package provider

import (
	"strings"
	"testing"
	"time"
)

func TestGeminiBuildArgs(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		opts        ExecuteOptions
		wantParts   []string
		unwantParts []string
	}{
		"base invocation": {
			opts:        ExecuteOptions{Prompt: "summarize"},
			wantParts:   []string{"-p summarize", "--output-format stream-json"},
			unwantParts: []string{"--yolo"},
		},
		"tools enable yolo with allow-list": {
			opts:      ExecuteOptions{Prompt: "fix it", AllowedTools: []string{"edit", "shell"}},
			wantParts: []string{"--yolo", "--allowed-tools edit,shell"},
		},
		"read-only strips tools": {
			opts:        ExecuteOptions{Prompt: "review", AllowedTools: []string{"edit"}, ReadOnly: true},
			unwantParts: []string{"--yolo", "--allowed-tools"},
		},
		"model flag": {
			opts:      ExecuteOptions{Prompt: "go", Model: "gemini-2.5-pro"},
			wantParts: []string{"--model gemini-2.5-pro"},
		},
		"setting sources load extensions": {
			opts:      ExecuteOptions{Prompt: "go", SettingSources: []string{"security", "docs"}},
			wantParts: []string{"--extensions security", "--extensions docs"},
		},
	}

	gemini := NewGemini("", nil, 5*time.Second)
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			joined := strings.Join(gemini.BuildArgs(tt.opts), " ")
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
		})
	}
}

func TestGeminiTranslateSkipsNoise(t *testing.T) {
	t.Parallel()

	gemini := NewGemini("", nil, time.Second)

	if _, ok := gemini.Translate([]byte("Loaded cached credentials.")); ok {
		t.Error("non-JSON noise should be skipped")
	}

	msg, ok := gemini.Translate([]byte(`{"type":"assistant","message":{"content":[{"type":"text","text":"hi"}]}}`))
	if !ok {
		t.Fatal("expected a message")
	}
	if msg.TextContent() != "hi" {
		t.Errorf("text = %q, want %q", msg.TextContent(), "hi")
	}
}
