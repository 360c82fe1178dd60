package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kindseek/leadscout/internal/pipeline"
)

var rescoreDry bool

var rescoreCmd = &cobra.Command{
	Use:   "rescore",
	Short: "Re-evaluate every tracked lead against the current ruleset",
	Long:  "Recomputes score and priority for all tracked leads, for example after tuning the ruleset YAML. Follow-up status, owner and notes are never touched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("rescore"); err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		sc, err := buildScorer()
		if err != nil {
			return err
		}

		res, err := pipeline.Rescore(ctx, st, sc, cfg.Anthropic.MaxParallel, rescoreDry)
		if err != nil {
			return err
		}

		fmt.Printf("rescored %d leads, %d changed\n", res.Total, res.Changed)
		return nil
	},
}

func init() {
	rescoreCmd.Flags().BoolVar(&rescoreDry, "dry-run", false, "report changes without writing them")
	rootCmd.AddCommand(rescoreCmd)
}
