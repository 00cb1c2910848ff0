package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// doctorTimeout bounds the whole provider probe pass.
const doctorTimeout = 30 * time.Second

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check provider backend installation and authentication",
	Long: `Check each registered provider backend and report whether it is
installed and authenticated.

Each check displays a ✓ if the backend is ready or ✗ with a hint if it
needs installation or credentials.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), doctorTimeout)
		defer cancel()

		healthy := true
		for _, ps := range buildFactory(cfg).Doctor(ctx) {
			status := ps.Status
			switch {
			case !status.Installed:
				healthy = false
				fmt.Printf("✗ %s: not installed", ps.Name)
				if status.Error != "" {
					fmt.Printf(" (%s)", status.Error)
				}
				fmt.Println()
			case !status.Authenticated:
				healthy = false
				fmt.Printf("✗ %s: not authenticated", ps.Name)
				if status.Error != "" {
					fmt.Printf(" (%s)", status.Error)
				}
				fmt.Println()
			default:
				fmt.Printf("✓ %s", ps.Name)
				if status.Version != "" {
					fmt.Printf(" (%s)", status.Version)
				}
				fmt.Println()
			}
		}

		if !healthy {
			return NewExitError(ExitNotInstalled)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
