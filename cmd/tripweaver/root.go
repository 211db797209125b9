package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tripweaver",
	Short: "TripWeaver - multi-day trip planner",
	Long: `TripWeaver assembles flights, stays, activities, a budget and a
day-by-day itinerary for a trip.

Plans run in-process by default. Pass --server to stream a plan from a
running tripweaver server instead.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(runsCmd)
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}
