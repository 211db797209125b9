package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xiaot623/tripweaver/internal/app"
	"github.com/xiaot623/tripweaver/internal/config"
	"github.com/xiaot623/tripweaver/internal/domain"
	"github.com/xiaot623/tripweaver/internal/repository"
	"github.com/xiaot623/tripweaver/internal/service"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a trip",
	Long: `Plan a trip and print stage progress followed by the finished plan.

Example:
  tripweaver plan --origin NBO --destination Dubai --start 2025-11-10 --end 2025-11-16 \
    --hobby golf --hobby "fine dining" --tier mid --adults 2`,
	RunE: runPlan,
}

// Flags for plan
var (
	planOrigin      string
	planDestination string
	planStart       string
	planEnd         string
	planAdults      int
	planTier        string
	planHobbies     []string
	planTripType    string
	planServer      string
	planDatabase    string
	planJSON        bool
)

func init() {
	planCmd.Flags().StringVar(&planOrigin, "origin", "", "Departure city or airport")
	planCmd.Flags().StringVar(&planDestination, "destination", "", "Destination city")
	planCmd.Flags().StringVar(&planStart, "start", "", "Start date (YYYY-MM-DD)")
	planCmd.Flags().StringVar(&planEnd, "end", "", "End date (YYYY-MM-DD)")
	planCmd.Flags().IntVar(&planAdults, "adults", 1, "Number of adult travelers")
	planCmd.Flags().StringVar(&planTier, "tier", "mid", "Budget tier (low, mid, high)")
	planCmd.Flags().StringSliceVar(&planHobbies, "hobby", nil, "Interest to plan activities around (repeatable)")
	planCmd.Flags().StringVar(&planTripType, "trip-type", "", "Free-form trip type, e.g. honeymoon")
	planCmd.Flags().StringVar(&planServer, "server", "", "Stream from a server websocket, e.g. ws://localhost:8080/v1/plans/ws")
	planCmd.Flags().StringVar(&planDatabase, "db", ":memory:", "SQLite DSN for the in-process run log")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Print the final plan as JSON")

	_ = planCmd.MarkFlagRequired("origin")
	_ = planCmd.MarkFlagRequired("destination")
	_ = planCmd.MarkFlagRequired("start")
	_ = planCmd.MarkFlagRequired("end")
}

// runPlan executes the plan command
func runPlan(cmd *cobra.Command, args []string) error {
	prefs, err := preferencesFromFlags()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	onEvent := func(ev domain.ProgressEvent) {
		if ev.Type == domain.ProgressStage && !planJSON {
			printProgress(out, ev)
		}
	}

	var resp *domain.PlanResponse
	if planServer != "" {
		resp, err = planRemote(cmd.Context(), planServer, prefs, onEvent)
	} else {
		resp, err = planLocal(cmd, prefs, onEvent)
	}
	if err != nil {
		return err
	}

	if planJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	printPlan(out, resp)
	return nil
}

func planLocal(cmd *cobra.Command, prefs domain.TripPreferences, onEvent func(domain.ProgressEvent)) (*domain.PlanResponse, error) {
	cfg := config.Load()

	db, err := store.NewSQLiteStore(planDatabase)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	defer db.Close()

	p, closeProviders, err := app.NewPlanner(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	defer closeProviders()
	defer p.Wait()

	return service.New(db, p).StreamPlan(cmd.Context(), prefs, onEvent)
}

func preferencesFromFlags() (domain.TripPreferences, error) {
	start, err := domain.ParseDate(planStart)
	if err != nil {
		return domain.TripPreferences{}, fmt.Errorf("invalid --start: %w", err)
	}
	end, err := domain.ParseDate(planEnd)
	if err != nil {
		return domain.TripPreferences{}, fmt.Errorf("invalid --end: %w", err)
	}
	return domain.TripPreferences{
		Origin:      planOrigin,
		Destination: planDestination,
		StartDate:   start,
		EndDate:     end,
		Adults:      planAdults,
		BudgetTier:  domain.BudgetTier(strings.ToLower(planTier)),
		Hobbies:     planHobbies,
		TripType:    planTripType,
	}, nil
}
