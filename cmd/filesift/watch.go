package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/filesift/filesift/internal/cli"
	"github.com/filesift/filesift/internal/config"
	"github.com/filesift/filesift/internal/model"
	"github.com/filesift/filesift/internal/watcher"
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <source> <target>",
		Short: "Watch a folder and classify new files as they arrive",
		Long: `Monitor source for new files. Each file is classified once its size and
modification time stop changing, so partially written downloads are left
alone. Press Ctrl+C to stop; a summary is printed on exit.

Examples:
  filesift watch ~/Downloads ~/Sorted
  filesift watch ~/Downloads ~/Sorted --operation copy`,
		Args: cobra.ExactArgs(2),
		RunE: runWatch,
	}

	cmd.Flags().StringP("operation", "o", "", "operation to perform (move, copy, link)")
	_ = viper.BindPFlag("watch.operation", cmd.Flags().Lookup("operation"))

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	source := config.ExpandPath(args[0])
	target := config.ExpandPath(args[1])

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	kind, err := operationFromFlag(settings, viper.GetString("watch.operation"))
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
	monitor, err := watcher.New(eng, watcher.Options{
		Source:          source,
		Target:          target,
		Operation:       kind,
		ExcludePatterns: settings.ExcludePatterns,
		MinFileSize:     settings.MinFileSize,
		MaxFileSize:     settings.MaxFileSize,
		DebounceDelay:   settings.Debounce(),
		BatchSize:       settings.BatchSize,
		Workers:         settings.Workers,
		Results: func(record model.FileRecord) {
			if record.Success {
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s -> %s", record.Filename, record.Target)))
				return
			}
			fmt.Println(cli.FormatError(fmt.Sprintf("%s: %s", record.Filename, record.Status)))
		},
	})
	if err != nil {
		return err
	}

	if err := monitor.Start(ctx); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("watching %s, press Ctrl+C to stop", source)))

	// Block until the interrupt handler cancels the context.
	<-ctx.Done()

	if err := monitor.Stop(); err != nil {
		slog.Warn("Monitor did not stop cleanly", "error", err)
	}

	fmt.Println(cli.TitleStyle.Render("Session summary"))
	fmt.Println(cli.RenderMonitorStats(monitor.Stats()))
	return nil
}
