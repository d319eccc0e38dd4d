package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/filesift/filesift/internal/cli"
	"github.com/filesift/filesift/internal/config"
)

func previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <source> <target>",
		Short: "Show what a classification run would do",
		Long: `Resolve the target for every file under source without touching the
filesystem. Rows flag files whose target already exists and would be
renamed.`,
		Args: cobra.ExactArgs(2),
		RunE: runPreview,
	}

	cmd.Flags().StringP("operation", "o", "", "operation to preview (move, copy, link)")
	_ = viper.BindPFlag("preview.operation", cmd.Flags().Lookup("operation"))

	return cmd
}

func runPreview(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	kind, err := operationFromFlag(settings, viper.GetString("preview.operation"))
	if err != nil {
		return err
	}

	// Preview never writes history; no ledger needed.
	eng := buildEngine(settings, nil, nil)
	records, err := eng.Preview(cmd.Context(), config.ExpandPath(args[0]), config.ExpandPath(args[1]), kind)
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
