package provider

import (
	"encoding/json"
	"time"
)

// Codex drives the OpenAI Codex CLI in headless mode.
// Command: codex exec --json [--sandbox ...] <prompt>
type Codex struct {
	cliProvider
}

// NewCodex creates a Codex CLI provider. command overrides the executable
// name; empty means "codex".
func NewCodex(command string, extraArgs []string, grace time.Duration) *Codex {
	if command == "" {
		command = "codex"
	}
	c := &Codex{}
	c.cliProvider = cliProvider{
		ProviderName: "codex",
		Command:      command,
		VersionFlag:  "--version",
		GraceTimeout: grace,
		Auth: AuthSpec{
			EnvVars:         []string{"OPENAI_API_KEY"},
			CredentialsFile: ".codex/auth.json",
			TokenField:      "OPENAI_API_KEY",
		},
		BuildArgs: func(opts ExecuteOptions) []string {
			args := []string{"exec", "--json", "--skip-git-repo-check"}

			// exec mode is inherently non-interactive; the sandbox flag is
			// the only mutation control. No tools or read-only both pin the
			// sandbox to read-only so the agent cannot touch the worktree.
			if opts.ReadOnly || len(opts.EffectiveTools()) == 0 {
				args = append(args, "--sandbox", "read-only")
			} else {
				args = append(args, "--sandbox", "workspace-write")
			}

			if opts.Model != "" {
				args = append(args, "--model", opts.Model)
			}
			if opts.Thinking != ThinkingNone {
				args = append(args, "-c", "model_reasoning_effort="+string(opts.Thinking))
			}
			if len(opts.SettingSources) > 0 {
				// codex loads a single named profile from config.toml; the
				// first source wins.
				args = append(args, "--profile", opts.SettingSources[0])
			}
			args = append(args, extraArgs...)
			args = append(args, opts.Prompt)
			return args
		},
		Translate: translateCodexRecord,
	}
	return c
}

// codexRecord mirrors the Codex CLI's JSONL envelope: every line carries a
// msg object whose type discriminates the event.
type codexRecord struct {
	Msg struct {
		Type             string `json:"type"`
		Message          string `json:"message"`
		LastAgentMessage string `json:"last_agent_message"`
	} `json:"msg"`
}

func translateCodexRecord(line []byte) (Message, bool) {
	var rec codexRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		// Codex prints non-protocol noise on stdout before the stream
		// starts; skip anything that isn't a JSONL record.
		return Message{}, false
	}

	switch rec.Msg.Type {
	case "agent_message":
		return AssistantText(rec.Msg.Message), true
	case "task_complete":
		return SuccessResult(rec.Msg.LastAgentMessage), true
	case "error":
		return ErrorResult(rec.Msg.Message), true
	case "":
		return Message{}, false
	default:
		raw := make(json.RawMessage, len(line))
		copy(raw, line)
		return Message{Type: MessageSystem, Raw: raw}, true
	}
}
