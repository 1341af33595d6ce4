package cmd

import (
	"fmt"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/roster"
	"github.com/iwvelando/fantasy-f1-optimiser/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSolveCmd(a *app) *cobra.Command {
	var (
		modeFlag string
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve for the best roster in one chip mode",
		Long: `Solve for the best roster in one chip mode.

Modes: 1 or normal, 2 or wildcard, 3 or limitless, 4 or drs.
The stored team state is only updated when --save is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := roster.ParseMode(modeFlag)
			if err != nil {
				return err
			}
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

			result, err := a.newEngine(nil).Solve(ctx, mode, entries, prev)
			if err != nil {
				return fmt.Errorf("%s solve failed: %w", mode.SolveName(), err)
			}
			if err := output.WriteResult(cmd.OutOrStdout(), a.outputFormat, result); err != nil {
				return err
			}

			if !save {
				return nil
			}
			saved, err := roster.NewLedgerUpdater(a.logger, repo).Commit(ctx, result)
			if err != nil {
				return err
			}
			a.logger.Debug("solve committed",
				zap.String("op", "cmd.solve"),
				zap.Int("availableTransfers", saved.AvailableTransfers),
			)
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Team saved. %d transfers available next round.\n", saved.AvailableTransfers)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modeFlag, "mode", "m", roster.ModeNormal.String(), "chip mode: normal, wildcard, limitless, drs (or 1-4)")
	cmd.Flags().BoolVar(&save, "save", false, "persist the chosen roster as the new team state")
	return cmd
}
