package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/filesift/filesift/internal/cli"
	"github.com/filesift/filesift/internal/common"
)

func undoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Reverse the most recent classification run",
		Long: `Restore the files of the most recent batch to where they came from.
Moved files move back, copies go to the recoverable trash, links are
removed. The batch leaves the history either way.`,
		Args: cobra.NoArgs,
		RunE: runUndo,
	}
}

func runUndo(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	ledger, err := initLedger(ctx, settings)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ledger.Close(); closeErr != nil {
			slog.Error("Failed to close history database", "error", closeErr)
		}
	}()

	eng := buildEngine(settings, ledger, nil)
	ok, message, err := eng.Undo(ctx)

	var partial *common.PartialUndoError
	switch {
	case errors.As(err, &partial):
		fmt.Println(cli.FormatWarning(fmt.Sprintf("%s (%d files could not be restored)", message, partial.Failed)))
		return nil
	case err != nil:
		return err
	case !ok:
		fmt.Println(cli.SubtleStyle.Render(message))
		return nil
	}

	fmt.Println(cli.FormatSuccess(message))
	return nil
}
