// Package main contains the filesift CLI commands.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/filesift/filesift/internal/cli"
	"github.com/filesift/filesift/internal/config"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <source> <target>",
		Short: "Sort files from source into organized folders under target",
		Long: `Classify every file under source and move (or copy, or link) it into a
folder structure under target according to the configured rules.

Name conflicts are resolved by suffixing a counter, and every run is
recorded so it can be undone.

Examples:
  filesift classify ~/Downloads ~/Sorted
  filesift classify ~/Downloads ~/Sorted --operation copy
  filesift classify ~/Downloads ~/Sorted --group`,
		Args: cobra.ExactArgs(2),
		RunE: runClassify,
	}

	cmd.Flags().StringP("operation", "o", "", "operation to perform (move, copy, link)")
	cmd.Flags().StringSlice("rules", nil, "rule stages in priority order (custom, by_type, by_date, by_size)")
	cmd.Flags().BoolP("group", "g", false, "keep related files together")
	cmd.Flags().Bool("dry-run", false, "resolve targets without touching the filesystem")
	cmd.Flags().Bool("quiet", false, "suppress the per-file result table")

	_ = viper.BindPFlag("classify.operation", cmd.Flags().Lookup("operation"))
	_ = viper.BindPFlag("classify.rules", cmd.Flags().Lookup("rules"))
	_ = viper.BindPFlag("classify.group", cmd.Flags().Lookup("group"))
	_ = viper.BindPFlag("classify.dry_run", cmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("classify.quiet", cmd.Flags().Lookup("quiet"))

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	source := config.ExpandPath(args[0])
	target := config.ExpandPath(args[1])

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if ruleNames := viper.GetStringSlice("classify.rules"); len(ruleNames) > 0 {
		settings.Rules = ruleNames
		if err := settings.Validate(); err != nil {
			return err
		}
	}
	kind, err := operationFromFlag(settings, viper.GetString("classify.operation"))
	if err != nil {
		return err
	}
	grouped := viper.GetBool("classify.group") || settings.GroupRelated

	if viper.GetBool("classify.dry_run") {
		eng := buildEngine(settings, nil, nil)
		records, err := eng.Preview(ctx, source, target, kind)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println(cli.SubtleStyle.Render("nothing to do"))
			return nil
		}
		fmt.Println(cli.RenderRecords(records))
		fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("%d files, no changes made", len(records))))
		return nil
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

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Classifying files..."),
			)
		}
		_ = bar.Set(done)
	}

	eng := buildEngine(settings, ledger, progress)

	slog.Info("Starting classification", "source", source, "target", target, "operation", kind, "grouped", grouped)

	classify := eng.Classify
	if grouped {
		classify = eng.ClassifyGrouped
	}
	batch, runErr := classify(ctx, source, target, kind)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	if runErr != nil {
		return runErr
	}

	if !viper.GetBool("classify.quiet") && len(batch.Files) > 0 {
		fmt.Println(cli.RenderRecords(batch.Files))
	}

	ok := len(batch.SuccessfulFiles())
	failed := len(batch.Files) - ok
	if failed > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("%d files organized, %d failed", ok, failed)))
		return nil
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("%d files organized", ok)))
	return nil
}
