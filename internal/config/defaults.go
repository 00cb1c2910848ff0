package config

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"default_model": "claude-sonnet-4-5",
		"log_level":     "info",
		"grace_timeout": 5,
		"nats.host":     "127.0.0.1",
		"nats.port":     4222,
		"nats.embedded": true,
		"providers.codex.cmd":  "codex",
		"providers.codex.args": []string{},
		"providers.gemini.cmd":  "gemini",
		"providers.gemini.args": []string{},
		"providers.anthropic.api_key": "",
		"providers.browser.url":               "",
		"providers.browser.chrome_path":       "",
		"providers.browser.prompt_selector":   "textarea",
		"providers.browser.send_selector":     "button[type=submit]",
		"providers.browser.response_selector": "main",
		"providers.browser.busy_selector":     "",
		"providers.browser.poll_interval_ms":  500,
		"notify.enabled":    false,
		"notify.type":       "both",
		"notify.sound_file": "",
	}
}
