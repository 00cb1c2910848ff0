package provider

import (
	"testing"
)

func TestDecodeStreamJSON(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		line        string
		wantType    MessageType
		wantText    string
		wantSubtype string
		wantResult  string
		wantError   string
		wantErr     bool
	}{
		"assistant text": {
			line:     `{"type":"assistant","message":{"content":[{"type":"text","text":"hello"}]}}`,
			wantType: MessageAssistant,
			wantText: "hello",
		},
		"assistant multiple text blocks": {
			line:     `{"type":"assistant","message":{"content":[{"type":"text","text":"a"},{"type":"text","text":"b"}]}}`,
			wantType: MessageAssistant,
			wantText: "ab",
		},
		"assistant tool use contributes no text": {
			line:     `{"type":"assistant","message":{"content":[{"type":"tool_use","name":"Read","input":{"path":"x"}},{"type":"text","text":"done"}]}}`,
			wantType: MessageAssistant,
			wantText: "done",
		},
		"success result": {
			line:        `{"type":"result","subtype":"success","result":"final text"}`,
			wantType:    MessageResult,
			wantSubtype: ResultSuccess,
			wantResult:  "final text",
		},
		"error result": {
			line:        `{"type":"result","subtype":"error","error":"boom"}`,
			wantType:    MessageResult,
			wantSubtype: ResultError,
			wantError:   "boom",
		},
		"result without subtype defaults to success": {
			line:        `{"type":"result","result":"ok"}`,
			wantType:    MessageResult,
			wantSubtype: ResultSuccess,
			wantResult:  "ok",
		},
		"result without subtype but with error defaults to error": {
			line:        `{"type":"result","error":"bad"}`,
			wantType:    MessageResult,
			wantSubtype: ResultError,
			wantError:   "bad",
		},
		"unknown type becomes system": {
			line:     `{"type":"rate_limit_event","detail":42}`,
			wantType: MessageSystem,
		},
		"malformed json": {
			line:    `{"type":`,
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			msg, err := DecodeStreamJSON([]byte(tt.line))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if msg.Type != tt.wantType {
				t.Errorf("type = %q, want %q", msg.Type, tt.wantType)
			}
			if got := msg.TextContent(); got != tt.wantText {
				t.Errorf("text = %q, want %q", got, tt.wantText)
			}
			if msg.Subtype != tt.wantSubtype {
				t.Errorf("subtype = %q, want %q", msg.Subtype, tt.wantSubtype)
			}
			if msg.Result != tt.wantResult {
				t.Errorf("result = %q, want %q", msg.Result, tt.wantResult)
			}
			if msg.Error != tt.wantError {
				t.Errorf("error = %q, want %q", msg.Error, tt.wantError)
			}
			if msg.Type == MessageSystem && len(msg.Raw) == 0 {
				t.Error("system message should preserve the raw record")
			}
		})
	}
}

func TestMessageIsTerminal(t *testing.T) {
	t.Parallel()

	if !SuccessResult("x").IsTerminal() {
		t.Error("success result should be terminal")
	}
	if !ErrorResult("x").IsTerminal() {
		t.Error("error result should be terminal")
	}
	if AssistantText("x").IsTerminal() {
		t.Error("assistant message should not be terminal")
	}
	if (Message{Type: MessageSystem}).IsTerminal() {
		t.Error("system message should not be terminal")
	}
}

func TestTextContentNonAssistant(t *testing.T) {
	t.Parallel()

	if got := SuccessResult("final").TextContent(); got != "" {
		t.Errorf("result message text = %q, want empty", got)
	}
}
