package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List model prefix routes and their providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PREFIX\tPROVIDER")
		for _, route := range buildFactory(cfg).Routes() {
			fmt.Fprintf(w, "%s\t%s\n", route[0], route[1])
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nDefault model: %s\n", cfg.DefaultModel)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
