package provider

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic is the SDK-backed provider: queries run in-process against the
// Anthropic API instead of driving an external tool. The SDK path is
// text-only generation, so the no-tools and read-only contracts hold by
// construction.
type Anthropic struct {
	client anthropic.Client
	apiKey string
}

const anthropicDefaultMaxTokens = 8192

// thinkingBudgets maps the backend-neutral thinking hint to an extended
// reasoning token budget.
var thinkingBudgets = map[ThinkingLevel]int64{
	ThinkingLow:    2048,
	ThinkingMedium: 8192,
	ThinkingHigh:   16384,
}

// NewAnthropic creates the SDK provider. apiKey may be empty; the provider
// then reports not-authenticated and refuses queries with a classified
// error instead of a confusing API failure.
func NewAnthropic(apiKey string) *Anthropic {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	return &Anthropic{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		apiKey: apiKey,
	}
}

func (a *Anthropic) Name() string {
	return "anthropic"
}

// ExecuteQuery streams one Messages API call, emitting an assistant message
// per text delta and a terminal result carrying the accumulated text.
func (a *Anthropic) ExecuteQuery(ctx context.Context, opts ExecuteOptions, msgs chan<- Message) error {
	if a.apiKey == "" {
		return NewError(KindNotAuthenticated, a.Name(), "ANTHROPIC_API_KEY is not set")
	}

	params := a.buildParams(opts)
	stream := a.client.Messages.NewStreaming(ctx, params)

	accumulated := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := accumulated.Accumulate(event); err != nil {
			return WrapError(KindExecutionError, a.Name(), fmt.Errorf("accumulating stream event: %w", err))
		}

		delta, ok := textDelta(event)
		if !ok {
			continue
		}
		select {
		case msgs <- AssistantText(delta):
		case <-ctx.Done():
			return WrapError(KindCancelled, a.Name(), ctx.Err())
		}
	}

	if err := stream.Err(); err != nil {
		return a.classifyAPIError(err)
	}
	if ctx.Err() != nil {
		return WrapError(KindCancelled, a.Name(), ctx.Err())
	}

	var full string
	for _, block := range accumulated.Content {
		if block.Type == "text" {
			full += block.Text
		}
	}
	select {
	case msgs <- SuccessResult(full):
	case <-ctx.Done():
		return WrapError(KindCancelled, a.Name(), ctx.Err())
	}
	return nil
}

// CheckInstallation always reports installed: the SDK ships inside the
// binary. Authentication is the only variable.
func (a *Anthropic) CheckInstallation(ctx context.Context) InstallationStatus {
	status := InstallationStatus{Installed: true}
	if a.apiKey == "" {
		status.Error = "not authenticated: set ANTHROPIC_API_KEY"
		return status
	}
	status.Authenticated = true
	return status
}

func (a *Anthropic) buildParams(opts ExecuteOptions) anthropic.MessageNewParams {
	maxTokens := int64(anthropicDefaultMaxTokens)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(opts.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(opts.Prompt)),
		},
	}

	if opts.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: opts.SystemPrompt}}
	}

	if budget, ok := thinkingBudgets[opts.Thinking]; ok && opts.Thinking != ThinkingNone {
		// The token ceiling must leave room above the thinking budget or
		// the API rejects the request.
		if budget >= maxTokens {
			params.MaxTokens = budget + anthropicDefaultMaxTokens
		}
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(budget)
	}

	return params
}

// classifyAPIError maps SDK failures onto the provider taxonomy: 401/403 is
// a credential problem, everything else an execution error.
func (a *Anthropic) classifyAPIError(err error) *Error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 401 || apiErr.StatusCode == 403 {
			return &Error{
				Kind:     KindNotAuthenticated,
				Provider: a.Name(),
				Message:  "Anthropic API rejected the configured credentials",
				Err:      err,
			}
		}
	}
	return WrapError(KindExecutionError, a.Name(), fmt.Errorf("anthropic API: %w", err))
}

// textDelta extracts the incremental text from a streaming event.
func textDelta(event anthropic.MessageStreamEventUnion) (string, bool) {
	switch e := event.AsAny().(type) {
	case anthropic.ContentBlockDeltaEvent:
		switch d := e.Delta.AsAny().(type) {
		case anthropic.TextDelta:
			return d.Text, true
		}
	}
	return "", false
}
