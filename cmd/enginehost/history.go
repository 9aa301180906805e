package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/enginehost/internal/storage"
)

var flagLimit int

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the staging and negotiation journal",
	Long: `Display recent staging passes and surface negotiations, newest first,
followed by totals over the whole journal.

Examples:
  enginehost history
  enginehost history --limit 50
  enginehost history --db ./journal.db`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagLimit, "limit", 10, "Entries to show per section")
}

func runHistory(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening journal database: %w", err)
	}
	defer store.Close()

	runs, err := store.RecentStageRuns(flagLimit)
	if err != nil {
		return fmt.Errorf("reading staging passes: %w", err)
	}
	negotiations, err := store.RecentNegotiations(flagLimit)
	if err != nil {
		return fmt.Errorf("reading negotiations: %w", err)
	}
	summary, err := store.Summary()
	if err != nil {
		return fmt.Errorf("summarizing journal: %w", err)
	}

	fmt.Println(titleStyle.Render("Staging passes"))
	if len(runs) == 0 {
		fmt.Println("  No staging passes recorded yet.")
	} else {
		rows := make([]table.Row, 0, len(runs))
		for _, r := range runs {
			rows = append(rows, table.Row{
				r.Started.Local().Format("2006-01-02 15:04:05"),
				r.Source,
				strconv.Itoa(r.Files),
				strconv.FormatInt(r.Bytes, 10),
				strconv.Itoa(r.Skipped),
				r.Duration.Round(time.Millisecond).String(),
			})
		}
		fmt.Println(staticTable([]table.Column{
			{Title: "Started", Width: 19},
			{Title: "Source", Width: 28},
			{Title: "Files", Width: 6},
			{Title: "Bytes", Width: 10},
			{Title: "Skipped", Width: 7},
			{Title: "Took", Width: 10},
		}, rows))
	}
	fmt.Println()

	fmt.Println(titleStyle.Render("Negotiations"))
	if len(negotiations) == 0 {
		fmt.Println("  No negotiations recorded yet.")
	} else {
		rows := make([]table.Row, 0, len(negotiations))
		for _, n := range negotiations {
			result := n.Config
			if !n.Succeeded() {
				result = "failed: " + n.Error
			}
			rows = append(rows, table.Row{
				n.At.Local().Format("2006-01-02 15:04:05"),
				n.Strategy,
				n.Request,
				result,
			})
		}
		fmt.Println(staticTable([]table.Column{
			{Title: "At", Width: 19},
			{Title: "Strategy", Width: 11},
			{Title: "Request", Width: 26},
			{Title: "Result", Width: 40},
		}, rows))
	}
	fmt.Println()

	fmt.Printf("Staging passes: %d (%d files, %d bytes, %d skipped)\n",
		summary.StageRuns, summary.FilesStaged, summary.BytesStaged, summary.SkippedEntries)
	failed := strconv.Itoa(summary.FailedNegotiations)
	if summary.FailedNegotiations > 0 {
		failed = failedStyle.Render(failed)
	}
	fmt.Printf("Negotiations:   %d (%s failed)\n", summary.Negotiations, failed)
	if !summary.LastStaged.IsZero() {
		fmt.Printf("Last staged:    %s\n", summary.LastStaged.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

// staticTable renders rows once with the table component's styles.
func staticTable(columns []table.Column, rows []table.Row) string {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+2), // header and its border,
		table.WithFocused(false),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Cell
	t.SetStyles(s)

	return t.View()
}
