package seeder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/forest/pkg/logger"
)

// Run errors.
var (
	ErrUnhealthy    = errors.New("service is not healthy")
	ErrVerification = errors.New("scene verification failed")
)

type outcome int

const (
	accepted outcome = iota
	duplicate
	failed
)

// Run posts entries and verifies the resulting scene.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	cfg = cfg.withDefaults()
	log := logger.Get().Named("seeder")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting forest seeding",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("entries", cfg.Entries),
		logger.Int("workers", cfg.Workers),
		logger.Int("days", cfg.Days),
		logger.Duration("timeout", cfg.Timeout),
	)

	client := newHTTPClient(cfg.Timeout)
	if err := checkServiceHealth(ctx, client, cfg.BaseURL); err != nil {
		return stats, err
	}

	entries := generate(cfg)
	stats.Generated = len(entries)

	ids, err := submitEntries(ctx, client, cfg, entries, stats)
	if err != nil {
		return stats, fmt.Errorf("entry submission failed: %w", err)
	}

	if err := verifyScene(ctx, client, cfg, ids, stats); err != nil {
		return stats, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
		logger.Int("lights", stats.Lights),
		logger.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *httpClient, baseURL string) error {
	status, _, err := client.get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	// Any 200 is healthy; the body is Prometheus text.
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	return nil
}

// submitEntries posts every entry with at most cfg.Workers in flight and
// returns the ids the server accepted.
func submitEntries(ctx context.Context, client *httpClient, cfg Config, entries []Entry, stats *Stats) (map[string]bool, error) {
	results := make([]outcome, len(entries))
	var submitted atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = submitSingleEntry(gctx, client, cfg.BaseURL+"/entries", e)
			if n := submitted.Add(1); cfg.Verbose && n%10 == 0 {
				logger.Get().Debug(gctx, "submission progress", logger.Int("submitted", int(n)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make(map[string]bool, len(entries))
	for i, r := range results {
		switch r {
		case accepted:
			stats.Accepted++
			ids[entries[i].ID] = true
		case duplicate:
			stats.Duplicate++
		default:
			stats.Failed++
		}
	}
	stats.Submitted = int(submitted.Load())
	return ids, nil
}

// submitSingleEntry posts one entry and classifies the reply.
func submitSingleEntry(ctx context.Context, client *httpClient, url string, e Entry) outcome {
	status, body, err := client.postJSON(ctx, url, e)
	if err != nil {
		return failed
	}
	var ack ackResponse
	switch status {
	case http.StatusAccepted:
		return accepted
	case http.StatusOK:
		if json.Unmarshal(body, &ack) == nil && !ack.Duplicate {
			return accepted
		}
		return duplicate
	default:
		return failed
	}
}

// verifyScene polls /scene until every accepted id has a light or the
// settle timeout passes.
func verifyScene(ctx context.Context, client *httpClient, cfg Config, ids map[string]bool, stats *Stats) error {
	deadline := time.Now().Add(cfg.SettleTimeout)
	var missing int
	for {
		sc, err := fetchScene(ctx, client, cfg.BaseURL)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrVerification, err)
		}
		missing = len(ids)
		for _, l := range sc.Lights {
			if ids[l.ID] {
				missing--
			}
			if l.Href != "/entry/"+l.ID && ids[l.ID] {
				return fmt.Errorf("%w: light %s links to %s", ErrVerification, l.ID, l.Href)
			}
		}
		stats.Lights = len(sc.Lights)
		if missing == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %d of %d accepted entries have no light", ErrVerification, missing, len(ids))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func fetchScene(ctx context.Context, client *httpClient, baseURL string) (*sceneResponse, error) {
	status, body, err := client.get(ctx, baseURL+"/scene")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("scene returned status %d", status)
	}
	var sc sceneResponse
	if err := json.Unmarshal(body, &sc); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &sc, nil
}
