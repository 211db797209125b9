package planner

import (
	"context"
	"fmt"
	"log"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/xiaot623/tripweaver/internal/adapter"
	"github.com/xiaot623/tripweaver/internal/adapter/search"
	"github.com/xiaot623/tripweaver/internal/domain"
)

const snippetLimit = 200

// researchDestination runs two background searches and records every hit in
// the plan's source index. It only adds to the index.
func (p *Planner) researchDestination(ctx context.Context, run *domain.RunState) {
	if p.search == nil {
		run.Logf(domain.StageResearch, domain.LevelWarn, nil,
			adapter.Unavailable("search", "research", nil).Error())
		return
	}

	dest := run.Prefs.Destination
	queries := []string{
		fmt.Sprintf("%s neighborhoods best areas to stay safety transport", dest),
		fmt.Sprintf("top things to do in %s", dest),
	}
	results := make([][]search.Record, len(queries))
	errs := make([]error, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, q := range queries {
		g.Go(func() error {
			recs, err := p.search.Search(gctx, q, 8)
			results[i], errs[i] = recs, err
			return nil
		})
	}
	_ = g.Wait()

	added := 0
	failed := 0
	for i, recs := range results {
		if errs[i] != nil {
			failed++
			log.Printf("WARN: run %s: research query %q failed: %v", run.RunID, queries[i], errs[i])
			run.Logf(domain.StageResearch, domain.LevelWarn, nil, fmt.Sprintf("research query failed: %v", errs[i]))
			continue
		}
		for _, r := range recs {
			if r.URL == "" {
				continue
			}
			if _, ok := run.Plan.Sources[r.URL]; ok {
				continue
			}
			run.Plan.Sources[r.URL] = domain.SourceRef{Title: r.Title, Snippet: truncate(r.Content, snippetLimit)}
			added++
		}
	}
	run.Artifacts[domain.StageResearch] = results
	run.Logf(domain.StageResearch, domain.LevelInfo,
		map[string]int{"sources": added, "failed_queries": failed},
		fmt.Sprintf("indexed %d sources for %s", added, dest))
}

// truncate cuts s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
