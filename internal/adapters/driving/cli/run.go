package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the queues until STILL_ON is turned off",
	Long: `Runs a pass over every enabled queue, waits TIMER seconds and repeats.

STILL_ON and TIMER are read from the control file (.env by default) before
every pass. Editing the file wakes the loop early. Ctrl+C stops the loop
after the current record.`,
	RunE: runLoop,
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single pass over every enabled queue",
	RunE:  runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(onceCmd)
}

func runLoop(cmd *cobra.Command, _ []string) error {
	if loopRunner == nil {
		return notConfigured("runner")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Println("Processing queues until STILL_ON is turned off...")
	if err := loopRunner.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run failed: %w", err)
	}
	cmd.Println("Stopped.")
	return nil
}

func runOnce(cmd *cobra.Command, _ []string) error {
	if batchProcessor == nil {
		return notConfigured("batch processor")
	}

	summaries, err := batchProcessor.RunOnce(cmd.Context())
	if len(summaries) > 0 {
		cmd.Println(renderSummaries(cmd.OutOrStdout(), summaries, false))
	}
	if err != nil {
		return fmt.Errorf("pass failed: %w", err)
	}
	if len(summaries) == 0 {
		cmd.Println("No queue is enabled.")
	}
	return nil
}
