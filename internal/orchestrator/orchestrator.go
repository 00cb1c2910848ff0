// Package orchestrator runs at most one generation job per scope and fans
// the job's lifecycle out over the event bus. Callers start, observe, and
// stop jobs by scope name; the orchestrator owns the provider call, the
// accumulation of streamed output, and the guarantee that every accepted
// start produces exactly one terminal event.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/bus"
	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/provider"
)

// messageBuffer sizes the channel between a provider and the consume loop.
const messageBuffer = 16

// Parser converts the final generation text into a structured artifact.
// A parse failure does not fail the job: the orchestrator degrades to an
// empty artifact and still completes.
type Parser func(text string) (any, error)

// Params describes one generation job.
type Params struct {
	Prompt       string
	Model        string
	WorkDir      string
	SystemPrompt string
	MaxTurns     int
	AllowedTools []string
	ReadOnly     bool
	Thinking     provider.ThinkingLevel
	SessionID    string

	// SettingSources names backend setting sources to load (provider
	// specific: gemini extensions, the codex config profile).
	SettingSources []string

	// Parser is optional. When nil the raw text is the artifact.
	Parser Parser
}

// StartResult reports whether a start request was admitted.
type StartResult struct {
	Accepted bool   `json:"accepted"`
	JobID    string `json:"job_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Status reports whether a scope currently has a running job.
type Status struct {
	Running bool   `json:"running"`
	JobID   string `json:"job_id,omitempty"`
}

// StopResult reports whether a stop request found a job to cancel.
type StopResult struct {
	Stopped bool `json:"stopped"`
}

type job struct {
	id      string
	cancel  context.CancelFunc
	running bool
}

// Orchestrator admits at most one job per scope. All state lives in one
// map guarded by one mutex; job bodies run on their own goroutines and
// report back only through the bus and the running flag.
type Orchestrator struct {
	factory *provider.Factory
	bus     bus.Bus
	log     zerolog.Logger

	mu   sync.Mutex
	jobs map[string]*job
}

// New returns an Orchestrator publishing events on b and resolving models
// through factory.
func New(factory *provider.Factory, b bus.Bus) *Orchestrator {
	return &Orchestrator{
		factory: factory,
		bus:     b,
		log:     log.With().Str("component", "orchestrator").Logger(),
		jobs:    make(map[string]*job),
	}
}

// Start admits a generation job for scope unless one is already running
// there. Admission and the duplicate check are a single atomic step, so
// concurrent starts on one scope admit exactly one job.
func (o *Orchestrator) Start(scope string, params Params) StartResult {
	o.mu.Lock()
	if j, ok := o.jobs[scope]; ok && j.running {
		o.mu.Unlock()
		return StartResult{Accepted: false, Reason: "generation already running for scope"}
	}
	ctx, cancel := context.WithCancel(context.Background())
	j := &job{id: uuid.NewString(), cancel: cancel, running: true}
	o.jobs[scope] = j
	o.mu.Unlock()

	o.log.Info().Str("scope", scope).Str("job_id", j.id).Str("model", params.Model).Msg("generation started")
	go o.run(ctx, scope, j.id, params)
	return StartResult{Accepted: true, JobID: j.id}
}

// Status reports whether scope has a running job.
func (o *Orchestrator) Status(scope string) Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	if j, ok := o.jobs[scope]; ok && j.running {
		return Status{Running: true, JobID: j.id}
	}
	return Status{Running: false}
}

// Stop cancels the running job for scope, if any. The running flag clears
// immediately; Stop does not wait for the job body to unwind. Stopping a
// scope with no running job is a no-op.
func (o *Orchestrator) Stop(scope string) StopResult {
	o.mu.Lock()
	j, ok := o.jobs[scope]
	if !ok || !j.running {
		o.mu.Unlock()
		return StopResult{Stopped: false}
	}
	j.running = false
	cancel := j.cancel
	o.mu.Unlock()

	cancel()
	o.log.Info().Str("scope", scope).Str("job_id", j.id).Msg("generation stopped")
	return StopResult{Stopped: true}
}

// clearRunning clears the running flag for scope, but only if the flag
// still belongs to jobID. A stale job winding down after a stop must not
// clobber a newer job admitted in its place.
func (o *Orchestrator) clearRunning(scope, jobID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if j, ok := o.jobs[scope]; ok && j.id == jobID {
		j.running = false
	}
}

func (o *Orchestrator) publish(scope string, ev Event, jlog zerolog.Logger) {
	payload, err := json.Marshal(ev)
	if err != nil {
		jlog.Error().Err(err).Msg("marshal event")
		return
	}
	if err := o.bus.Publish(EventSubject(scope), payload); err != nil {
		jlog.Error().Err(err).Str("type", ev.Type).Msg("publish event")
	}
}

// run is the job body. It consumes the provider stream, publishes progress
// deltas, and finishes with exactly one terminal event. The running flag is
// cleared before the terminal event is published, so an observer that sees
// the terminal event never sees a stale running status afterwards.
func (o *Orchestrator) run(ctx context.Context, scope, jobID string, params Params) {
	jlog := o.log.With().Str("scope", scope).Str("job_id", jobID).Logger()

	finished := false
	finish := func(ev Event) {
		if finished {
			return
		}
		finished = true
		o.clearRunning(scope, jobID)
		o.publish(scope, ev, jlog)
	}
	defer func() {
		if r := recover(); r != nil {
			jlog.Error().Interface("panic", r).Msg("generation panicked")
			finish(Event{Type: EventError, Error: fmt.Sprintf("internal error: %v", r), Kind: string(provider.KindExecutionError)})
		}
	}()

	p, err := o.factory.GetProviderForModel(params.Model)
	if err != nil {
		finish(Event{Type: EventError, Error: err.Error(), Kind: string(provider.KindExecutionError)})
		return
	}

	opts := provider.ExecuteOptions{
		Prompt:         params.Prompt,
		Model:          params.Model,
		WorkDir:        params.WorkDir,
		SystemPrompt:   params.SystemPrompt,
		MaxTurns:       params.MaxTurns,
		AllowedTools:   params.AllowedTools,
		ReadOnly:       params.ReadOnly,
		Thinking:       params.Thinking,
		SessionID:      params.SessionID,
		SettingSources: params.SettingSources,
	}

	msgs := make(chan provider.Message, messageBuffer)
	errCh := make(chan error, 1)
	go func() {
		errCh <- p.ExecuteQuery(ctx, opts, msgs)
	}()

	var acc strings.Builder
	var terminal *provider.Message
	handle := func(msg provider.Message) {
		switch {
		case msg.IsTerminal():
			m := msg
			terminal = &m
		case msg.Type == provider.MessageAssistant:
			if text := msg.TextContent(); text != "" {
				acc.WriteString(text)
				o.publish(scope, Event{Type: EventProgress, Content: text}, jlog)
			}
		}
	}

	var execErr error
consume:
	for {
		select {
		case msg := <-msgs:
			handle(msg)
		case execErr = <-errCh:
			// The provider has returned; drain anything still buffered.
			for {
				select {
				case msg := <-msgs:
					handle(msg)
				default:
					break consume
				}
			}
		}
	}

	switch {
	case execErr != nil:
		kind := provider.KindOf(execErr)
		if kind == provider.KindCancelled {
			jlog.Info().Msg("generation cancelled")
		} else {
			jlog.Warn().Err(execErr).Str("kind", string(kind)).Msg("generation failed")
		}
		finish(Event{Type: EventError, Error: execErr.Error(), Kind: string(kind)})
	case terminal == nil:
		jlog.Warn().Msg("provider stream ended without a terminal result")
		finish(Event{Type: EventError, Error: "provider stream ended without a terminal result", Kind: string(provider.KindExecutionError)})
	case terminal.Subtype == provider.ResultError:
		msg := terminal.Error
		if msg == "" {
			msg = "provider reported an error result"
		}
		finish(Event{Type: EventError, Error: msg, Kind: string(provider.KindExecutionError)})
	default:
		text := acc.String()
		// The terminal record's own result wins when it carries more than
		// the accumulated deltas; some backends only summarize in it.
		if len(terminal.Result) > len(text) {
			text = terminal.Result
		}
		finish(Event{Type: EventComplete, Result: o.parseArtifact(text, params.Parser, jlog)})
	}
}

// parseArtifact runs the configured parser over the final text. A failing
// parser degrades to an empty artifact rather than failing the job.
func (o *Orchestrator) parseArtifact(text string, parse Parser, jlog zerolog.Logger) json.RawMessage {
	var artifact any = text
	if parse != nil {
		parsed, err := parse(text)
		if err != nil {
			jlog.Warn().Err(err).Msg("artifact parse failed, completing with empty artifact")
			parsed = nil
		}
		artifact = parsed
	}
	raw, err := json.Marshal(artifact)
	if err != nil {
		jlog.Warn().Err(err).Msg("artifact not serializable, completing with empty artifact")
		return json.RawMessage("null")
	}
	return raw
}
