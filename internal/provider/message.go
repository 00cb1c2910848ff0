package provider

import (
	"encoding/json"
	"fmt"
)

// MessageType discriminates the kinds of messages a provider stream emits.
type MessageType string

const (
	// MessageAssistant carries incremental assistant output (text and tool use).
	MessageAssistant MessageType = "assistant"

	// MessageResult is the terminal message for a query. Exactly one is
	// emitted per successful stream, after all assistant messages.
	MessageResult MessageType = "result"

	// MessageSystem carries backend-specific informational records. These are
	// passed through opaquely; consumers that don't understand them skip them.
	MessageSystem MessageType = "system"
)

// Result subtypes.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// ContentBlock types within an assistant message.
const (
	BlockText    = "text"
	BlockToolUse = "tool_use"
)

// ContentBlock is one unit of assistant content.
type ContentBlock struct {
	Type string `json:"type"`

	// Text is set when Type is "text".
	Text string `json:"text,omitempty"`

	// Name and Input are set when Type is "tool_use".
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// Message is one event in a provider's output stream.
//
// For one query the stream contains zero or more assistant messages followed
// by exactly one result message, unless the query is cancelled or the backend
// fails before producing a terminal record.
type Message struct {
	Type MessageType `json:"type"`

	// Content holds the ordered blocks of an assistant message.
	Content []ContentBlock `json:"content,omitempty"`

	// Subtype, Result and Error describe a terminal result message.
	Subtype string `json:"subtype,omitempty"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`

	// Raw preserves the original backend record for system messages so
	// observers can inspect backend-specific detail without this package
	// modeling it.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// AssistantText returns a message with a single text block.
func AssistantText(text string) Message {
	return Message{
		Type:    MessageAssistant,
		Content: []ContentBlock{{Type: BlockText, Text: text}},
	}
}

// SuccessResult returns a terminal success message carrying the final text.
func SuccessResult(result string) Message {
	return Message{Type: MessageResult, Subtype: ResultSuccess, Result: result}
}

// ErrorResult returns a terminal error message.
func ErrorResult(errText string) Message {
	return Message{Type: MessageResult, Subtype: ResultError, Error: errText}
}

// TextContent concatenates the text blocks of an assistant message.
func (m Message) TextContent() string {
	if m.Type != MessageAssistant {
		return ""
	}
	var out string
	for _, block := range m.Content {
		if block.Type == BlockText {
			out += block.Text
		}
	}
	return out
}

// IsTerminal reports whether the message ends a query stream.
func (m Message) IsTerminal() bool {
	return m.Type == MessageResult
}

// streamRecord mirrors the claude-style stream-json line format emitted by
// the CLI backends: {"type":"assistant","message":{"content":[...]}} and
// {"type":"result","subtype":"success","result":"..."}.
type streamRecord struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	Result  string `json:"result"`
	Error   string `json:"error"`
	Message struct {
		Content []ContentBlock `json:"content"`
	} `json:"message"`
}

// DecodeStreamJSON translates one stream-json line into a Message. Records of
// unknown type come back as system messages with the raw line attached.
func DecodeStreamJSON(line []byte) (Message, error) {
	var rec streamRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return Message{}, fmt.Errorf("malformed stream record: %w", err)
	}

	switch MessageType(rec.Type) {
	case MessageAssistant:
		return Message{Type: MessageAssistant, Content: rec.Message.Content}, nil
	case MessageResult:
		subtype := rec.Subtype
		if subtype == "" {
			if rec.Error != "" {
				subtype = ResultError
			} else {
				subtype = ResultSuccess
			}
		}
		return Message{Type: MessageResult, Subtype: subtype, Result: rec.Result, Error: rec.Error}, nil
	default:
		raw := make(json.RawMessage, len(line))
		copy(raw, line)
		return Message{Type: MessageSystem, Raw: raw}, nil
	}
}
