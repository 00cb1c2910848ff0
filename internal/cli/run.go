package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/bus"
	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/notify"
	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/orchestrator"
	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/progress"
	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/provider"
)

// stopDrainTimeout bounds how long run waits for the terminal event after
// requesting a stop.
const stopDrainTimeout = 15 * time.Second

var runCmd = &cobra.Command{
	Use:   "run [prompt]",
	Short: "Run a generation job and stream its output",
	Long: `Run a single generation job against the provider routed for the chosen
model, streaming output to stdout as it arrives.

Interrupting with Ctrl-C cancels the job; the provider's backend process
is terminated gracefully before the command exits.`,
	Args: cobra.ExactArgs(1),
	RunE: runGeneration,
}

func init() {
	runCmd.Flags().StringP("model", "m", "", "Model to generate with (default from config)")
	runCmd.Flags().String("scope", "cli", "Job scope name")
	runCmd.Flags().StringP("workdir", "w", "", "Working directory for CLI-backed providers")
	runCmd.Flags().String("system-prompt", "", "System prompt override")
	runCmd.Flags().Int("max-turns", 0, "Maximum agent turns (0 = provider default)")
	runCmd.Flags().StringSlice("allowed-tools", nil, "Tools the provider may use")
	runCmd.Flags().StringSlice("setting-sources", nil, "Backend setting sources to load (e.g. gemini extensions)")
	runCmd.Flags().Bool("read-only", false, "Disallow all tools and workspace writes")
	runCmd.Flags().String("thinking", "", "Extended reasoning level (low|medium|high)")
	runCmd.Flags().Duration("timeout", 0, "Cancel the job after this duration (0 = no timeout)")
	runCmd.Flags().Bool("json", false, "Print the final artifact as JSON on completion")
	rootCmd.AddCommand(runCmd)
}

func runGeneration(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = cfg.DefaultModel
	}
	scope, _ := cmd.Flags().GetString("scope")
	workdir, _ := cmd.Flags().GetString("workdir")
	systemPrompt, _ := cmd.Flags().GetString("system-prompt")
	maxTurns, _ := cmd.Flags().GetInt("max-turns")
	allowedTools, _ := cmd.Flags().GetStringSlice("allowed-tools")
	settingSources, _ := cmd.Flags().GetStringSlice("setting-sources")
	readOnly, _ := cmd.Flags().GetBool("read-only")
	thinkingFlag, _ := cmd.Flags().GetString("thinking")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	asJSON, _ := cmd.Flags().GetBool("json")

	thinking, err := parseThinking(thinkingFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return NewExitError(ExitInvalidArguments)
	}

	b := bus.NewMemoryBus()
	defer b.Close()
	orch := orchestrator.New(buildFactory(cfg), b)

	terminal := make(chan orchestrator.Event, 1)
	display := progress.NewDisplay(progress.DetectTerminalCapabilities())
	unsub, err := b.Subscribe(orchestrator.EventSubject(scope), func(payload []byte) {
		var ev orchestrator.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			return
		}
		switch ev.Type {
		case orchestrator.EventProgress:
			display.Stream(ev.Content)
		case orchestrator.EventComplete, orchestrator.EventError:
			select {
			case terminal <- ev:
			default:
			}
		}
	})
	if err != nil {
		return err
	}
	defer unsub()

	display.Start(fmt.Sprintf("Generating with %s", model))
	startedAt := time.Now()
	res := orch.Start(scope, orchestrator.Params{
		Prompt:         args[0],
		Model:          model,
		WorkDir:        workdir,
		SystemPrompt:   systemPrompt,
		MaxTurns:       maxTurns,
		AllowedTools:   allowedTools,
		ReadOnly:       readOnly,
		Thinking:       thinking,
		SettingSources: settingSources,
	})
	if !res.Accepted {
		display.Fail("generation rejected", errors.New(res.Reason))
		return NewExitError(ExitGenerationFailed)
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stopSignals()

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	var ev orchestrator.Event
	select {
	case ev = <-terminal:
	case <-sigCtx.Done():
		orch.Stop(scope)
		ev = awaitTerminal(terminal)
	case <-timeoutCh:
		orch.Stop(scope)
		ev = awaitTerminal(terminal)
	}

	notifier := notify.NewHandler(cfg.Notify)
	if ev.Type != orchestrator.EventComplete {
		kind := provider.ErrorKind(ev.Kind)
		display.Fail("generation failed", errors.New(ev.Error))
		if kind != provider.KindCancelled {
			notifier.GenerationFinished(model, false, time.Since(startedAt))
		}
		return NewExitError(exitCodeForKind(kind))
	}

	display.Complete("generation complete")
	notifier.GenerationFinished(model, true, time.Since(startedAt))
	if asJSON {
		fmt.Println(string(ev.Result))
	}
	return nil
}

// awaitTerminal waits for the terminal event after a stop request. The
// orchestrator guarantees one arrives; the timeout is a backstop so a wedged
// backend cannot hang the command forever.
func awaitTerminal(terminal <-chan orchestrator.Event) orchestrator.Event {
	select {
	case ev := <-terminal:
		return ev
	case <-time.After(stopDrainTimeout):
		return orchestrator.Event{
			Type:  orchestrator.EventError,
			Error: "timed out waiting for the job to stop",
			Kind:  string(provider.KindCancelled),
		}
	}
}

func parseThinking(s string) (provider.ThinkingLevel, error) {
	switch provider.ThinkingLevel(s) {
	case provider.ThinkingNone, provider.ThinkingLow, provider.ThinkingMedium, provider.ThinkingHigh:
		return provider.ThinkingLevel(s), nil
	default:
		return provider.ThinkingNone, fmt.Errorf("invalid thinking level %q (expected low, medium, or high)", s)
	}
}
