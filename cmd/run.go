package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runDry bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch all enabled sources and process one batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runDry {
			cfg.DryRun = true
		}
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		p, err := buildPipeline(st)
		if err != nil {
			return err
		}

		summary, err := p.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("run %s: %d new, %d updated, %d duplicates, %d rejected\n",
			summary.RunID, summary.New, summary.Updated, summary.Duplicates, summary.Rejected)
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runDry, "dry-run", false, "process the batch without writing to the store or sinks")
	rootCmd.AddCommand(runCmd)
}
