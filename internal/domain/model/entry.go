// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"strings"
	"time"
)

// DefaultWindowDays is how far back the forest looks.
const DefaultWindowDays = 50

// ErrEmptyID is returned for an entry reference without an id.
var ErrEmptyID = errors.New("entry id is empty")

// Entry references one diary entry. Content lives elsewhere; the forest only
// needs identity and creation time.
type Entry struct {
	ID        string
	CreatedAt time.Time
}

// Validate checks the reference is usable.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	return nil
}

// Window is a recency window counted in calendar days including today.
type Window struct {
	Days int
}

// Since returns the inclusive lower bound of the window at now. A window of
// N days starts N-1 days before now.
func (w Window) Since(now time.Time) time.Time {
	days := w.Days
	if days <= 0 {
		days = DefaultWindowDays
	}
	return now.AddDate(0, 0, -(days - 1))
}

// Less orders entries newest first, breaking ties by id.
func Less(a, b Entry) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

// IDs returns the ids of entries in order.
func IDs(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
