package provider

import (
	"context"
	"errors"
	"testing"
)

// stubProvider implements Provider for factory tests.
type stubProvider struct {
	name   string
	status InstallationStatus
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) ExecuteQuery(_ context.Context, _ ExecuteOptions, _ chan<- Message) error {
	return nil
}

func (s *stubProvider) CheckInstallation(_ context.Context) InstallationStatus {
	return s.status
}

func TestFactoryRouting(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		modelID      string
		wantProvider string
		wantErr      bool
	}{
		"claude prefix":        {modelID: "claude-sonnet-4-5", wantProvider: "anthropic"},
		"gpt prefix":           {modelID: "gpt-5-codex", wantProvider: "codex"},
		"codex prefix":         {modelID: "codex-mini", wantProvider: "codex"},
		"gemini prefix":        {modelID: "gemini-2.5-pro", wantProvider: "gemini"},
		"unknown model":        {modelID: "llama-3", wantErr: true},
		"empty model":          {modelID: "", wantErr: true},
		"prefix is not suffix": {modelID: "my-claude-thing", wantErr: true},
	}

	factory := NewFactory()
	factory.Register(&stubProvider{name: "anthropic"}, "claude-")
	factory.Register(&stubProvider{name: "codex"}, "gpt-", "codex-")
	factory.Register(&stubProvider{name: "gemini"}, "gemini-")

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			p, err := factory.GetProviderForModel(tt.modelID)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownModel) {
					t.Fatalf("expected ErrUnknownModel, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Name() != tt.wantProvider {
				t.Errorf("provider = %q, want %q", p.Name(), tt.wantProvider)
			}
		})
	}
}

func TestFactoryFirstMatchingPrefixWins(t *testing.T) {
	t.Parallel()

	factory := NewFactory()
	factory.Register(&stubProvider{name: "first"}, "gpt-")
	factory.Register(&stubProvider{name: "second"}, "gpt-5-")

	p, err := factory.GetProviderForModel("gpt-5-codex")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "first" {
		t.Errorf("provider = %q, want %q", p.Name(), "first")
	}
}

func TestFactoryReregisterOverwrites(t *testing.T) {
	t.Parallel()

	old := &stubProvider{name: "codex"}
	replacement := &stubProvider{name: "codex", status: InstallationStatus{Installed: true}}

	factory := NewFactory()
	factory.Register(old, "gpt-")
	factory.Register(replacement)

	if got := factory.Get("codex"); got != Provider(replacement) {
		t.Error("re-registering a name should overwrite the provider")
	}
	if len(factory.Providers()) != 1 {
		t.Errorf("providers = %d, want 1", len(factory.Providers()))
	}
}

func TestFactoryProvidersSorted(t *testing.T) {
	t.Parallel()

	factory := NewFactory()
	factory.Register(&stubProvider{name: "gemini"})
	factory.Register(&stubProvider{name: "anthropic"})
	factory.Register(&stubProvider{name: "codex"})

	var names []string
	for _, p := range factory.Providers() {
		names = append(names, p.Name())
	}
	want := []string{"anthropic", "codex", "gemini"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("providers = %v, want %v", names, want)
		}
	}
}

func TestFactoryDoctor(t *testing.T) {
	t.Parallel()

	factory := NewFactory()
	factory.Register(&stubProvider{name: "ready", status: InstallationStatus{Installed: true, Authenticated: true, Version: "1.2.3"}})
	factory.Register(&stubProvider{name: "missing", status: InstallationStatus{Error: "binary not found"}})

	statuses := factory.Doctor(context.Background())
	if len(statuses) != 2 {
		t.Fatalf("statuses = %d, want 2", len(statuses))
	}
	if statuses[0].Name != "missing" || statuses[0].Status.Installed {
		t.Errorf("unexpected first status: %+v", statuses[0])
	}
	if statuses[1].Name != "ready" || !statuses[1].Status.Authenticated {
		t.Errorf("unexpected second status: %+v", statuses[1])
	}
}
