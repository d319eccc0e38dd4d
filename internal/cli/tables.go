package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/filesift/filesift/internal/model"
	"github.com/filesift/filesift/internal/service"
	"github.com/filesift/filesift/internal/watcher"
)

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

// RenderRecords renders file records as produced by a classify or preview
// run.
func RenderRecords(records []model.FileRecord) string {
	tw := newTable()
	tw.AppendHeader(table.Row{"File", "Target", "Size", "Status"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})

	for _, r := range records {
		status := r.Status
		if r.Success {
			status = SuccessStyle.Render(status)
		} else {
			status = ErrorStyle.Render(status)
		}
		target := r.Target
		if target == "" {
			target = SubtleStyle.Render("-")
		}
		tw.AppendRow(table.Row{r.Filename, target, humanize.Bytes(uint64(r.Size)), status})
	}
	return tw.Render()
}

// RenderHistory renders ledger batches newest first.
func RenderHistory(batches []model.OperationBatch) string {
	tw := newTable()
	tw.AppendHeader(table.Row{"When", "Operation", "Source", "Files", "Size"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	for _, b := range batches {
		ok := len(b.SuccessfulFiles())
		files := fmt.Sprintf("%d", ok)
		if failed := len(b.Files) - ok; failed > 0 {
			files = fmt.Sprintf("%d (%d failed)", ok, failed)
		}
		tw.AppendRow(table.Row{
			b.Timestamp.Format("2006-01-02 15:04:05"),
			string(b.Operation),
			b.SourceRoot,
			files,
			humanize.Bytes(uint64(b.TotalSize())),
		})
	}
	return tw.Render()
}

// RenderLedgerStats renders the aggregate history summary.
func RenderLedgerStats(stats *service.LedgerStats) string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("History"))
	sb.WriteString("\n")

	tw := newTable()
	tw.AppendRow(table.Row{"Batches", stats.TotalBatches})
	tw.AppendRow(table.Row{"Files", stats.TotalFiles})
	tw.AppendRow(table.Row{"Data handled", humanize.Bytes(uint64(stats.TotalBytesMoved))})
	if stats.LastOperation != nil {
		tw.AppendRow(table.Row{"Last operation", humanize.Time(*stats.LastOperation)})
	}
	for kind, count := range stats.FilesByKind {
		tw.AppendRow(table.Row{"Files " + pastTense(kind), count})
	}
	sb.WriteString(tw.Render())
	return sb.String()
}

func pastTense(kind model.OperationKind) string {
	switch kind {
	case model.OpMove:
		return "moved"
	case model.OpCopy:
		return "copied"
	case model.OpLink:
		return "linked"
	}
	return string(kind)
}

// RenderGroupingReport renders the association analysis of a directory.
func RenderGroupingReport(report *model.GroupingReport) string {
	tw := newTable()
	tw.AppendHeader(table.Row{"Kind", "Main file", "Members"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})

	individual := 0
	for _, g := range report.Groups {
		if g.Kind == model.GroupIndividual {
			individual = len(g.Members)
			continue
		}
		tw.AppendRow(table.Row{string(g.Kind), g.MainFile, len(g.Members)})
	}

	var sb strings.Builder
	sb.WriteString(tw.Render())
	sb.WriteString("\n")
	sb.WriteString(SubtleStyle.Render(fmt.Sprintf(
		"%d files, %d groups, %d standalone", report.TotalFiles, report.GroupCount(), individual)))
	return sb.String()
}

// RenderCleanupReport renders the advisory cleanup analysis.
func RenderCleanupReport(report *model.CleanupReport) string {
	var sb strings.Builder

	if len(report.Duplicates) > 0 {
		sb.WriteString(TitleStyle.Render("Duplicates"))
		sb.WriteString("\n")
		tw := newTable()
		tw.AppendHeader(table.Row{"Keep", "Remove", "Reclaimable"})
		for i := range report.Duplicates {
			set := &report.Duplicates[i]
			dups := make([]string, 0, len(set.Duplicates))
			for _, d := range set.Duplicates {
				dups = append(dups, d.Path)
			}
			tw.AppendRow(table.Row{
				set.Canonical.Path,
				strings.Join(dups, "\n"),
				humanize.Bytes(uint64(set.ReclaimableSize())),
			})
		}
		sb.WriteString(tw.Render())
		sb.WriteString("\n\n")
	}

	for _, section := range []struct {
		title string
		files []model.FlaggedFile
	}{
		{"Temporary files", report.TempFiles},
		{"Large files", report.LargeFiles},
		{"Old files", report.OldFiles},
		{"Empty files", report.EmptyFiles},
	} {
		if len(section.files) == 0 {
			continue
		}
		sb.WriteString(TitleStyle.Render(section.title))
		sb.WriteString("\n")
		tw := newTable()
		tw.AppendHeader(table.Row{"File", "Size", "Reason"})
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 2, Align: text.AlignRight},
		})
		for _, f := range section.files {
			tw.AppendRow(table.Row{f.Path, humanize.Bytes(uint64(f.Size)), f.Reason})
		}
		sb.WriteString(tw.Render())
		sb.WriteString("\n\n")
	}

	if len(report.Reminders) > 0 {
		sb.WriteString(TitleStyle.Render("Reminders"))
		sb.WriteString("\n")
		for _, r := range report.Reminders {
			line := fmt.Sprintf("[%s] %s (%s)", r.Priority, r.Message, r.Suggestion)
			switch r.Priority {
			case model.PriorityHigh:
				line = ErrorStyle.Render(line)
			case model.PriorityMedium:
				line = WarningStyle.Render(line)
			default:
				line = SubtleStyle.Render(line)
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	sb.WriteString(BoldStyle.Render(fmt.Sprintf(
		"Potential savings: %s", humanize.Bytes(uint64(report.PotentialSavings())))))
	return sb.String()
}

// RenderMonitorStats renders a watcher snapshot.
func RenderMonitorStats(stats watcher.MonitorStats) string {
	tw := newTable()
	tw.AppendRow(table.Row{"Uptime", stats.Uptime.Round(0).String()})
	tw.AppendRow(table.Row{"Processed", stats.Processed})
	tw.AppendRow(table.Row{"Failed", stats.Failed})
	tw.AppendRow(table.Row{"Data handled", humanize.Bytes(uint64(stats.BytesMoved))})
	for kind, count := range stats.ByKind {
		tw.AppendRow(table.Row{"Files " + pastTense(kind), count})
	}
	return tw.Render()
}
