// Package sequence issues gapless per-tenant transaction numbers of the
// form PREFIX-YYYY-NNNN. The counter resets each calendar year and is
// advanced atomically so concurrent registers never share a number.
package sequence

import (
	"context"
	"fmt"
	"time"
)

type Sequencer interface {
	// Next reserves the next number for the tenant in the given year.
	Next(ctx context.Context, tenantID string, year int) (string, error)
}

// Format renders a reserved counter value as a transaction number,
// e.g. ELADAS-2026-0001. Values beyond 9999 widen naturally.
func Format(prefix string, year int, n int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, n)
}

// Period is the counter bucket for a year.
func Period(year int) string {
	return fmt.Sprintf("%04d", year)
}

// CurrentYear returns the year used for numbering, in UTC.
func CurrentYear() int {
	return time.Now().UTC().Year()
}

// CounterStore is the subset of the repository the counter-backed
// sequencer needs. Both the memory and postgres stores implement it.
type CounterStore interface {
	IncrementSequence(ctx context.Context, tenantID, period string) (int64, error)
}

// CounterSequencer draws numbers from the repository's sequence
// counter. This is the default when no redis instance is configured.
type CounterSequencer struct {
	store  CounterStore
	prefix string
}

func NewCounter(store CounterStore, prefix string) *CounterSequencer {
	return &CounterSequencer{store: store, prefix: prefix}
}

func (s *CounterSequencer) Next(ctx context.Context, tenantID string, year int) (string, error) {
	n, err := s.store.IncrementSequence(ctx, tenantID, Period(year))
	if err != nil {
		return "", err
	}
	return Format(s.prefix, year, n), nil
}
