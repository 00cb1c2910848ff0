package cli

import (
	"time"

	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/config"
	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/provider"
)

// buildFactory registers every configured provider with its model prefix
// routes. The browser provider only registers when a target URL is
// configured.
func buildFactory(cfg *config.Configuration) *provider.Factory {
	grace := cfg.GraceDuration()
	factory := provider.NewFactory()

	factory.Register(provider.NewAnthropic(cfg.Providers.Anthropic.APIKey), "claude-")
	factory.Register(provider.NewCodex(cfg.Providers.Codex.Cmd, cfg.Providers.Codex.Args, grace), "gpt-", "codex-")
	factory.Register(provider.NewGemini(cfg.Providers.Gemini.Cmd, cfg.Providers.Gemini.Args, grace), "gemini-")

	if b := cfg.Providers.Browser; b.URL != "" {
		factory.Register(provider.NewBrowser(provider.BrowserSettings{
			URL:              b.URL,
			ChromePath:       b.ChromePath,
			PromptSelector:   b.PromptSelector,
			SendSelector:     b.SendSelector,
			ResponseSelector: b.ResponseSelector,
			BusySelector:     b.BusySelector,
			PollInterval:     time.Duration(b.PollIntervalMS) * time.Millisecond,
		}), "browser/")
	}

	return factory
}
