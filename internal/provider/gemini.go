package provider

import (
	"strings"
	"time"
)

// Gemini drives the Google Gemini CLI.
// Command: gemini -p <prompt> --output-format stream-json [--yolo]
//
// Gemini's stream-json records use the claude-compatible format (assistant
// messages with content blocks, one terminal result record), so translation
// is the shared stream-json decoder.
type Gemini struct {
	cliProvider
}

// NewGemini creates a Gemini CLI provider. command overrides the executable
// name; empty means "gemini".
func NewGemini(command string, extraArgs []string, grace time.Duration) *Gemini {
	if command == "" {
		command = "gemini"
	}
	g := &Gemini{}
	g.cliProvider = cliProvider{
		ProviderName: "gemini",
		Command:      command,
		VersionFlag:  "--version",
		GraceTimeout: grace,
		Auth: AuthSpec{
			EnvVars:         []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
			CredentialsFile: ".gemini/oauth_creds.json",
			TokenField:      "access_token",
		},
		BuildArgs: func(opts ExecuteOptions) []string {
			args := []string{"-p", opts.Prompt, "--output-format", "stream-json"}

			tools := opts.EffectiveTools()
			if len(tools) > 0 {
				// Tools run unattended only in yolo mode; scope them to the
				// caller's allow-list.
				args = append(args, "--yolo", "--allowed-tools", strings.Join(tools, ","))
			}
			// Without --yolo the CLI's default approval mode refuses every
			// tool call in non-interactive runs, which is exactly the
			// no-tools contract.

			if opts.Model != "" {
				args = append(args, "--model", opts.Model)
			}
			// Extensions are gemini's packaged setting sources (context
			// files, MCP servers); the flag is repeatable.
			for _, ext := range opts.SettingSources {
				args = append(args, "--extensions", ext)
			}
			args = append(args, extraArgs...)
			return args
		},
		Translate: func(line []byte) (Message, bool) {
			msg, err := DecodeStreamJSON(line)
			if err != nil {
				// Non-JSON noise on stdout; the exit-code policy catches a
				// stream that never produces a terminal record.
				return Message{}, false
			}
			return msg, true
		},
	}
	return g
}
