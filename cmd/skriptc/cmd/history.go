package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/skriptc/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Zeigt die letzten Builds",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Anzahl der Einträge")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	store, err := a.openHistory(true)
	if err != nil {
		return err
	}
	defer store.Close()

	builds, err := store.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(builds) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("Keine Builds vorhanden"))
		return nil
	}

	fmt.Fprintln(out, titleStyle.Render("Build-Historie"))
	for _, b := range builds {
		fmt.Fprintf(out, "%s%s%s %s %s\n",
			timeColumn.Render(b.CreatedAt.Local().Format("2006-01-02 15:04:05")),
			statusColumn.Render(statusLabel(b.Status)),
			nameColumn.Render(b.Backend),
			b.Module,
			mutedStyle.Render(historyDetail(b)),
		)
	}
	return nil
}

func statusLabel(s history.Status) string {
	switch s {
	case history.StatusSucceeded:
		return okStyle.Render(string(s))
	case history.StatusFailed:
		return errorStyle.Render(string(s))
	default:
		return skipStyle.Render(string(s))
	}
}

func historyDetail(b *history.Build) string {
	if b.Status == history.StatusFailed {
		return fmt.Sprintf("%s at %s", b.ErrorCode, b.Stage)
	}
	return b.Duration.Round(time.Millisecond).String()
}
