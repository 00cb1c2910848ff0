package cli

import (
	"testing"

	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/provider"
)

func TestParseThinking(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input   string
		want    provider.ThinkingLevel
		wantErr bool
	}{
		"empty means none": {input: "", want: provider.ThinkingNone},
		"low":              {input: "low", want: provider.ThinkingLow},
		"medium":           {input: "medium", want: provider.ThinkingMedium},
		"high":             {input: "high", want: provider.ThinkingHigh},
		"unknown":          {input: "maximum", wantErr: true},
		"capitalized":      {input: "Low", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := parseThinking(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("level = %q, want %q", got, tt.want)
			}
		})
	}
}
