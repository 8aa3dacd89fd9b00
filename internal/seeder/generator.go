package seeder

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/forest/internal/domain/seedrng"
)

// generate spreads cfg.Entries entries across the window ending at cfg.Now,
// newest first. With a jitter seed every creation time moves back by up to one
// slot, deterministically.
func generate(cfg Config) []Entry {
	// One slot of margin keeps the oldest entry inside the server's window
	// even though the server's clock runs ahead of cfg.Now.
	span := time.Duration(cfg.Days-1) * 24 * time.Hour
	slot := span / time.Duration(cfg.Entries+1)

	var r seedrng.Rand
	if cfg.Jitter != "" {
		r = seedrng.FromSeed(cfg.Jitter)
	}

	out := make([]Entry, cfg.Entries)
	for i := range out {
		at := cfg.Now.Add(-time.Duration(i) * slot)
		if r != nil {
			at = at.Add(-time.Duration(seedrng.Between(r, 0, float64(slot))))
		}
		out[i] = Entry{ID: uuid.NewString(), CreatedAt: at.UTC()}
	}
	return out
}
