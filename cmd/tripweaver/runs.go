package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiaot623/tripweaver/internal/domain"
	"github.com/xiaot623/tripweaver/internal/transport/rpc"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent plan runs from a server",
	Long:  `List recent plan runs recorded by a running tripweaver server, newest first`,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Show a run and its stage log over JSON-RPC",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

// Flags for runs
var (
	runsServer string
	runsLimit  int
	runsStatus string
	runsRPC    string
)

func init() {
	runsCmd.Flags().StringVar(&runsServer, "server", "http://localhost:8080", "Server base URL")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to show")
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "Filter by status (running, done, degraded, failed)")

	runsShowCmd.Flags().StringVar(&runsRPC, "rpc", "localhost:8081", "Server JSON-RPC address")
	runsCmd.AddCommand(runsShowCmd)
}

// runRunsList executes the runs command
func runRunsList(cmd *cobra.Command, args []string) error {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(runsLimit))
	if runsStatus != "" {
		q.Set("status", strings.ToUpper(runsStatus))
	}
	endpoint := strings.TrimRight(runsServer, "/") + "/v1/runs?" + q.Encode()

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, body["error"])
	}

	var body struct {
		Runs []domain.PlanRun `json:"runs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(body.Runs) == 0 {
		fmt.Fprintln(out, "No runs found")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSTATUS\tROUTE\tDATES\tSTARTED")
	for _, run := range body.Runs {
		started := run.StartedAt.Local().Format("2006-01-02 15:04")
		fmt.Fprintf(tw, "%s\t%s\t%s -> %s\t%s..%s\t%s\n",
			run.RunID, statusColor(run.Status).Sprint(run.Status),
			run.Origin, run.Destination, run.StartDate, run.EndDate, started)
	}
	return tw.Flush()
}

// runRunsShow executes the runs show command
func runRunsShow(cmd *cobra.Command, args []string) error {
	detail, err := rpc.NewClient(runsRPC).GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	run := detail.Run
	fmt.Fprintf(out, "%s %s (%s)\n", headerColor.Sprint("Run"), run.RunID, statusColor(run.Status).Sprint(run.Status))
	fmt.Fprintf(out, "  %s -> %s, %s..%s\n", run.Origin, run.Destination, run.StartDate, run.EndDate)
	if run.Error != "" {
		fmt.Fprintf(out, "  %s %s\n", errorColor.Sprint("error:"), run.Error)
	}
	fmt.Fprintln(out)
	for _, ev := range detail.Events {
		printProgress(out, domain.ProgressEvent{
			Stage:    ev.Stage,
			Level:    ev.Level,
			Message:  ev.Message,
			Counters: ev.Counters,
		})
	}
	return nil
}
