package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filesift/filesift/internal/cli"
	"github.com/filesift/filesift/internal/config"
	"github.com/filesift/filesift/internal/grouping"
)

func groupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups <source>",
		Short: "Show which files would be kept together",
		Long: `Analyze source for related files: project directories, programs with
their libraries, web pages with their assets, media with subtitles, and
files sharing a name. Classifying with --group moves each of these sets
into a single folder.`,
		Args: cobra.ExactArgs(1),
		RunE: runGroups,
	}
}

func runGroups(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	cfg := grouping.DefaultConfig()
	cfg.SkipMarker = settings.SkipMarker

	report, err := grouping.New(cfg).Analyze(cmd.Context(), config.ExpandPath(args[0]))
	if err != nil {
		return err
	}
	if report.TotalFiles == 0 {
		fmt.Println(cli.SubtleStyle.Render("no files found"))
		return nil
	}

	fmt.Println(cli.RenderGroupingReport(report))
	return nil
}
