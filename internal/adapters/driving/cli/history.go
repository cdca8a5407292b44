package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Flags for history.
var (
	historyQueue string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent passes over the queues",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyQueue, "queue", "q", "", "Queue to show (produtos, categorias, status)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of passes to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return notConfigured("history service")
	}

	summaries, err := historyService.Recent(cmd.Context(), historyQueue, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(summaries) == 0 {
		cmd.Println("No passes recorded yet.")
		return nil
	}

	cmd.Println(renderSummaries(cmd.OutOrStdout(), summaries, true))
	return nil
}
