// Package seeder posts entry references to a running forest server and
// checks that every accepted entry shows up as a light.
package seeder

import (
	"time"

	"github.com/okian/forest/internal/domain/model"
)

// Defaults used when a Config field is zero.
const (
	DefaultEntries       = 40
	DefaultWorkers       = 8
	DefaultTimeout       = 10 * time.Second
	DefaultSettleTimeout = 10 * time.Second
	pollInterval         = 50 * time.Millisecond
)

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL string        // Base URL of the service
	Entries int           // Number of entries to post
	Workers int           // Number of concurrent posters
	Days    int           // Window the creation times are spread across
	Timeout time.Duration // HTTP request timeout
	// SettleTimeout bounds how long verification waits for the workers
	// behind the API to store everything.
	SettleTimeout time.Duration
	// Jitter is the seed of the creation time jitter. Empty disables it.
	Jitter  string
	Verbose bool
	// Now is the reference time; zero means time.Now().
	Now time.Time
}

func (c Config) withDefaults() Config {
	if c.Entries <= 0 {
		c.Entries = DefaultEntries
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Days <= 0 {
		c.Days = model.DefaultWindowDays
	}
	// A one-day window starts at the server's now, which no posted entry
	// can reach.
	c.Days = max(c.Days, 2)
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.SettleTimeout <= 0 {
		c.SettleTimeout = DefaultSettleTimeout
	}
	if c.Now.IsZero() {
		c.Now = time.Now().UTC()
	}
	return c
}

// Entry is the body posted to /entries.
type Entry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// ackResponse is the reply to a post.
type ackResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

// sceneResponse is the part of /scene the verification reads.
type sceneResponse struct {
	Lights []struct {
		ID    string  `json:"id"`
		Href  string  `json:"href"`
		Depth float64 `json:"depth"`
	} `json:"lights"`
}

// Stats holds run statistics.
type Stats struct {
	Generated int
	Submitted int
	Accepted  int
	Duplicate int
	Failed    int
	Lights    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
