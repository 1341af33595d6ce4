package cmd

import (
	"fmt"

	"github.com/iwvelando/fantasy-f1-optimiser/pkg/output"
	"github.com/spf13/cobra"
)

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Solve every chip mode and compare them against Normal",
		Long: `Solve every chip mode against the same projections and team state and
report each mode's points with the difference from Normal. Nothing is saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			entries, err := a.projectionStore().Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load projections: %w", err)
			}

			repo, err := a.openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			prev, err := a.loadState(ctx, repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			runner, err := a.newComparer(a.newEngine(nil))
			if err != nil {
				return err
			}
			report, err := runner.Run(ctx, entries, prev)
			if err != nil {
				return err
			}
			return output.WriteComparison(cmd.OutOrStdout(), a.outputFormat, report)
		},
	}
}
