package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/filesift/filesift/internal/cli"
	"github.com/filesift/filesift/internal/service"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded classification runs",
		Long: `List the recorded classification batches, newest first. Only the most
recent runs are retained; older batches are evicted automatically.`,
		RunE: runHistoryList,
	}

	cmd.Flags().IntP("limit", "n", 10, "number of batches to show")
	_ = viper.BindPFlag("history.limit", cmd.Flags().Lookup("limit"))

	cmd.AddCommand(historyStatsCmd())
	cmd.AddCommand(historyClearCmd())
	return cmd
}

func historyStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate history statistics",
		Args:  cobra.NoArgs,
		RunE:  runHistoryStats,
	}
}

func historyClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded history",
		Long: `Delete every recorded batch. This does not touch any files; it only
forgets what was done, so past runs can no longer be undone.`,
		Args: cobra.NoArgs,
		RunE: runHistoryClear,
	}
	cmd.Flags().Bool("force", false, "skip the confirmation prompt")
	_ = viper.BindPFlag("history.force", cmd.Flags().Lookup("force"))
	return cmd
}

func withLedger(cmd *cobra.Command, fn func(ledger service.Ledger) error) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	ledger, err := initLedger(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ledger.Close(); closeErr != nil {
			slog.Error("Failed to close history database", "error", closeErr)
		}
	}()
	return fn(ledger)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	return withLedger(cmd, func(ledger service.Ledger) error {
		batches, err := ledger.ListBatches(cmd.Context(), viper.GetInt("history.limit"))
		if err != nil {
			return err
		}
		if len(batches) == 0 {
			fmt.Println(cli.SubtleStyle.Render("no history yet"))
			return nil
		}
		fmt.Println(cli.RenderHistory(batches))
		return nil
	})
}

func runHistoryStats(cmd *cobra.Command, _ []string) error {
	return withLedger(cmd, func(ledger service.Ledger) error {
		stats, err := ledger.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(cli.RenderLedgerStats(stats))
		return nil
	})
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	return withLedger(cmd, func(ledger service.Ledger) error {
		if !viper.GetBool("history.force") {
			fmt.Print("Delete all history? Past runs can no longer be undone. [y/N] ")
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println(cli.SubtleStyle.Render("aborted"))
				return nil
			}
		}
		if err := ledger.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println(cli.FormatSuccess("history cleared"))
		return nil
	})
}
