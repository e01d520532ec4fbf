package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gosuda/taskflow/internal/nav"
	"github.com/gosuda/taskflow/internal/tui"
)

func newBoardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "boards",
		Short: "Open the dashboard of your boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), nav.Dashboard())
		},
	}
}

func newBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board <id>",
		Short: "Open one board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid board id %q", args[0])
			}
			return runTUI(cmd.Context(), nav.Board(id))
		},
	}
}

func runTUI(ctx context.Context, start nav.Route) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	err = tui.Run(ctx, tui.Deps{
		Remote:  s.client,
		Watcher: s.client,
		User:    s.creds.user(),
		Logger:  s.log,
		Start:   start,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("cli: terminal client stopped")
	}
	return err
}
