package cmd

import (
	"fmt"

	"github.com/iwvelando/fantasy-f1-optimiser/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newStateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or reset the stored team state",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored roster and transfer ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := a.openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			s, err := a.loadState(cmd.Context(), repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return output.WriteState(cmd.OutOrStdout(), a.outputFormat, s)
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Discard the stored team so the next solve is a first round",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := a.openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset team state: %w", err)
			}
			a.logger.Info("team state reset",
				zap.String("op", "cmd.stateReset"),
				zap.String("backend", a.conf.State.Backend),
			)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Team state reset. The next solve is a first round.")
			return nil
		},
	}

	cmd.AddCommand(show, reset)
	return cmd
}
