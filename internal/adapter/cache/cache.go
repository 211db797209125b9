// Package cache stores provider results between runs. It is best-effort:
// a miss or an error never changes what a plan contains, only how it was sourced.
package cache

import (
	"context"
	"strings"
)

// Key addresses one cached entry.
type Key struct {
	Category      string // "activities", "flights", "stays"
	Destination   string
	Discriminator string // hobby, date range, ...
}

// String renders the key in its storage form.
func (k Key) String() string {
	return "tripweaver:cache:" + normalize(k.Category) + ":" + normalize(k.Destination) + ":" + normalize(k.Discriminator)
}

// Cache is the read and write-back surface the planner needs.
// Get reports found=false on a miss.
type Cache interface {
	Get(ctx context.Context, key Key) (data []byte, found bool, err error)
	Put(ctx context.Context, key Key, data []byte) error
}

// Noop never stores anything.
type Noop struct{}

// Get always misses.
func (Noop) Get(context.Context, Key) ([]byte, bool, error) { return nil, false, nil }

// Put discards data.
func (Noop) Put(context.Context, Key, []byte) error { return nil }

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}
