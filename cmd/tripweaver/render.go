package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/xiaot623/tripweaver/internal/domain"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	infoColor   = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed, color.Bold)
	dimColor    = color.New(color.Faint)
)

func levelColor(level domain.EventLevel) *color.Color {
	switch level {
	case domain.LevelError:
		return errorColor
	case domain.LevelWarn:
		return warnColor
	default:
		return infoColor
	}
}

func statusColor(status domain.RunStatus) *color.Color {
	switch status {
	case domain.RunStatusDone:
		return infoColor
	case domain.RunStatusDegraded, domain.RunStatusRunning:
		return warnColor
	case domain.RunStatusFailed:
		return errorColor
	default:
		return color.New(color.Reset)
	}
}

// printProgress prints one stage line, e.g. "✓ flights  flights resolved [items=4]".
func printProgress(w io.Writer, ev domain.ProgressEvent) {
	mark := "✓"
	switch ev.Level {
	case domain.LevelWarn:
		mark = "!"
	case domain.LevelError:
		mark = "✗"
	}
	c := levelColor(ev.Level)
	fmt.Fprintf(w, "%s %-10s %s%s\n", c.Sprint(mark), ev.Stage, ev.Message, formatCounters(ev.Counters))
}

func formatCounters(counters map[string]int) string {
	if len(counters) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counters[k])
	}
	return dimColor.Sprint(" [" + strings.Join(parts, " ") + "]")
}

// printPlan renders the finished plan as short tables.
func printPlan(w io.Writer, resp *domain.PlanResponse) {
	fmt.Fprintf(w, "\n%s %s (%s)\n", headerColor.Sprint("Run"), resp.RunID, statusColor(resp.Status).Sprint(resp.Status))
	plan := resp.Plan
	if plan == nil {
		return
	}

	fmt.Fprintf(w, "\n%s\n", headerColor.Sprint("Flights"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, f := range plan.Flights {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", truncate(f.Summary, 60), f.Airline, formatMoney(f.Price))
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%s\n", headerColor.Sprint("Stays"))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range plan.Stays {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", truncate(s.Name, 50), s.Area, formatMoney(s.Price))
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%s\n", headerColor.Sprint("Itinerary"))
	for _, day := range plan.Itinerary {
		fmt.Fprintf(w, "  %s", day.Date)
		if day.Notes != "" {
			fmt.Fprintf(w, "  %s", dimColor.Sprint(day.Notes))
		}
		fmt.Fprintln(w)
		for _, slot := range []struct {
			name string
			act  *domain.Activity
		}{{"morning", day.Morning}, {"afternoon", day.Afternoon}, {"evening", day.Evening}} {
			if slot.act != nil {
				fmt.Fprintf(w, "    %-9s %s @ %s\n", slot.name, slot.act.Title, slot.act.Location)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", headerColor.Sprint("Budget (USD)"))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, key := range []string{domain.BudgetNights, domain.BudgetFlight, domain.BudgetStayPerNight, domain.BudgetActivityAvg, domain.BudgetTotal} {
		if v, ok := plan.Budget[key]; ok {
			fmt.Fprintf(tw, "  %s\t%.2f\n", key, v)
		}
	}
	tw.Flush()
}

func formatMoney(m *domain.Money) string {
	if m == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f %s", m.Amount, m.Currency)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
