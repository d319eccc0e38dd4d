package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/filesift/filesift/internal/cleanup"
	"github.com/filesift/filesift/internal/cli"
	"github.com/filesift/filesift/internal/config"
)

func cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup <source>",
		Short: "Find duplicates, leftovers and other reclaimable space",
		Long: `Scan source for duplicate files, temporary leftovers, unusually large
files, long-untouched files and empty files. The scan is advisory only:
nothing is deleted or moved.`,
		Args: cobra.ExactArgs(1),
		RunE: runCleanup,
	}
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	// The ledger only feeds the staleness reminder; a failure to open it
	// should not block the scan.
	ledger, ledgerErr := initLedger(ctx, settings)
	if ledgerErr != nil {
		slog.Warn("History unavailable, skipping staleness check", "error", ledgerErr)
	} else {
		defer func() {
			if closeErr := ledger.Close(); closeErr != nil {
				slog.Error("Failed to close history database", "error", closeErr)
			}
		}()
	}

	cfg := cleanup.DefaultConfig()
	cfg.SkipMarker = settings.SkipMarker

	report, err := cleanup.NewAnalyzer(cfg, ledger, nil).Analyze(ctx, config.ExpandPath(args[0]))
	if err != nil {
		return err
	}

	fmt.Println(cli.RenderCleanupReport(report))
	return nil
}
