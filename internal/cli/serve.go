package cli

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/bus"
	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/orchestrator"
	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/provider"
)

// Control subjects served over NATS request/reply.
const (
	SubjectStart  = "automaker.generate.start"
	SubjectStatus = "automaker.generate.status"
	SubjectStop   = "automaker.generate.stop"
)

// startRequest is the request payload for SubjectStart.
type startRequest struct {
	Scope          string   `json:"scope"`
	Prompt         string   `json:"prompt"`
	Model          string   `json:"model,omitempty"`
	WorkDir        string   `json:"workdir,omitempty"`
	SystemPrompt   string   `json:"system_prompt,omitempty"`
	MaxTurns       int      `json:"max_turns,omitempty"`
	AllowedTools   []string `json:"allowed_tools,omitempty"`
	ReadOnly       bool     `json:"read_only,omitempty"`
	Thinking       string   `json:"thinking,omitempty"`
	SessionID      string   `json:"session_id,omitempty"`
	SettingSources []string `json:"setting_sources,omitempty"`
}

// scopeRequest is the request payload for SubjectStatus and SubjectStop.
type scopeRequest struct {
	Scope string `json:"scope"`
}

type errorReply struct {
	Error string `json:"error"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generation orchestrator over NATS",
	Long: `Serve the generation orchestrator over NATS request/reply.

Start, status, and stop requests arrive on the automaker.generate.*
subjects; job events fan out on each scope's "<scope>:event" subject, so
any NATS client can observe a run it did not start.

With nats.embedded enabled (the default) an in-process NATS server is
started; otherwise serve connects to the configured external server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stopSignals()

		if cfg.NATS.Embedded {
			srv, err := bus.NewServer(bus.ServerOptions{Host: cfg.NATS.Host, Port: cfg.NATS.Port})
			if err != nil {
				return err
			}
			if err := srv.Start(ctx); err != nil {
				return err
			}
			defer srv.Stop()
			log.Info().Str("url", srv.ClientURL()).Msg("embedded NATS server ready")
		}

		nb, err := bus.Connect(cfg.NATS.Host, cfg.NATS.Port)
		if err != nil {
			return err
		}
		defer nb.Close()

		orch := orchestrator.New(buildFactory(cfg), nb)
		if err := serveOrchestrator(nb.Conn(), orch, cfg.DefaultModel); err != nil {
			return err
		}

		log.Info().Str("host", cfg.NATS.Host).Int("port", cfg.NATS.Port).Msg("orchestrator serving")
		<-ctx.Done()
		log.Info().Msg("shutting down")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// serveOrchestrator wires the control subjects to the orchestrator. Every
// request gets a JSON reply; malformed payloads get an errorReply rather
// than silence so callers never block on a missing response.
func serveOrchestrator(nc *nats.Conn, orch *orchestrator.Orchestrator, defaultModel string) error {
	if _, err := nc.Subscribe(SubjectStart, func(m *nats.Msg) {
		var req startRequest
		if err := json.Unmarshal(m.Data, &req); err != nil {
			respond(m, errorReply{Error: "malformed start request: " + err.Error()})
			return
		}
		if req.Scope == "" {
			respond(m, errorReply{Error: "start request missing scope"})
			return
		}
		model := req.Model
		if model == "" {
			model = defaultModel
		}
		respond(m, orch.Start(req.Scope, orchestrator.Params{
			Prompt:         req.Prompt,
			Model:          model,
			WorkDir:        req.WorkDir,
			SystemPrompt:   req.SystemPrompt,
			MaxTurns:       req.MaxTurns,
			AllowedTools:   req.AllowedTools,
			ReadOnly:       req.ReadOnly,
			Thinking:       provider.ThinkingLevel(req.Thinking),
			SessionID:      req.SessionID,
			SettingSources: req.SettingSources,
		}))
	}); err != nil {
		return err
	}

	if _, err := nc.Subscribe(SubjectStatus, func(m *nats.Msg) {
		var req scopeRequest
		if err := json.Unmarshal(m.Data, &req); err != nil {
			respond(m, errorReply{Error: "malformed status request: " + err.Error()})
			return
		}
		respond(m, orch.Status(req.Scope))
	}); err != nil {
		return err
	}

	if _, err := nc.Subscribe(SubjectStop, func(m *nats.Msg) {
		var req scopeRequest
		if err := json.Unmarshal(m.Data, &req); err != nil {
			respond(m, errorReply{Error: "malformed stop request: " + err.Error()})
			return
		}
		respond(m, orch.Stop(req.Scope))
	}); err != nil {
		return err
	}

	return nil
}

func respond(m *nats.Msg, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("subject", m.Subject).Msg("marshal reply")
		return
	}
	if err := m.Respond(payload); err != nil {
		log.Warn().Err(err).Str("subject", m.Subject).Msg("respond")
	}
}
