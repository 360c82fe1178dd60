package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured source adapters",
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled := make(map[string]bool, len(cfg.Sources.Enabled))
		for _, name := range cfg.Sources.Enabled {
			enabled[name] = true
		}

		for _, s := range []struct {
			name string
			url  string
		}{
			{"ontario", cfg.Sources.Ontario.URL},
			{"bc", cfg.Sources.BC.URL},
			{"acecqa", cfg.Sources.ACECQA.URL},
		} {
			state := "disabled"
			if enabled[s.name] {
				state = "enabled"
			}
			fmt.Printf("%-8s %-9s %s\n", s.name, state, s.url)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
