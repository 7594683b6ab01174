package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-sheets/app/feed"
)

const (
	DefaultSuccessInterval = 300 * time.Second
	DefaultErrorInterval   = 60 * time.Second
)

type MonitorOptions struct {
	SuccessInterval time.Duration
	ErrorInterval   time.Duration
	SeedFromSink    bool
}

func (o MonitorOptions) withDefaults() MonitorOptions {
	if o.SuccessInterval <= 0 {
		o.SuccessInterval = DefaultSuccessInterval
	}
	if o.ErrorInterval <= 0 {
		o.ErrorInterval = DefaultErrorInterval
	}
	return o
}

// Monitor polls one feed into one sink until its context is cancelled.
// The seen-set is used by one running loop at a time.
type Monitor struct {
	ID      string
	Name    string
	FeedURL string

	source     FeedSource
	sink       Sink
	recorder   CheckRecorder
	normalizer *feed.Normalizer
	seen       *feed.SeenSet
	opts       MonitorOptions
	now        func() time.Time
}

// NewMonitor creates a monitor. recorder may be nil; a nil seen starts an empty set.
func NewMonitor(id, name, feedURL string, source FeedSource, sink Sink, recorder CheckRecorder, seen *feed.SeenSet, opts MonitorOptions) *Monitor {
	if seen == nil {
		seen = feed.NewSeenSet()
	}

	return &Monitor{
		ID:         id,
		Name:       name,
		FeedURL:    feedURL,
		source:     source,
		sink:       sink,
		recorder:   recorder,
		normalizer: feed.NewNormalizer(),
		seen:       seen,
		opts:       opts.withDefaults(),
		now:        time.Now,
	}
}

func (m *Monitor) Run(ctx context.Context) {
	slog.Info("Monitor started", "feed", m.Name, "url", m.FeedURL)

	if m.opts.SeedFromSink {
		m.Seed(ctx)
	}

	for {
		outcome := m.RunCycle(ctx)
		if ctx.Err() != nil {
			break
		}

		delay := m.nextDelay(outcome)
		slog.Debug("Sleeping until next cycle", "feed", m.Name, "delay", delay)

		if !sleep(ctx, delay) {
			break
		}
	}

	slog.Info("Monitor stopped", "feed", m.Name)
}

// RunCycle performs one poll cycle and records the check time.
func (m *Monitor) RunCycle(ctx context.Context) CycleOutcome {
	task := NewSyncFeedTask(m.Name, m.FeedURL, m.source, m.normalizer, m.seen, m.sink)
	outcome := task.Run(ctx)

	m.recordLastCheck(ctx)

	return outcome
}

// Seed marks the links already present in the sink as seen.
// A failed read is logged and the monitor starts with an empty set.
func (m *Monitor) Seed(ctx context.Context) {
	links, err := m.sink.ExistingLinks(ctx)
	if err != nil {
		slog.Warn("Failed to seed seen entries from sheet", "feed", m.Name, "error", err)
		return
	}

	added := m.seen.Seed(links)
	slog.Info("Seeded seen entries from sheet", "feed", m.Name, "count", added)
}

func (m *Monitor) nextDelay(outcome CycleOutcome) time.Duration {
	if outcome.Succeeded() {
		return m.opts.SuccessInterval
	}
	return m.opts.ErrorInterval
}

func (m *Monitor) recordLastCheck(ctx context.Context) {
	if m.recorder == nil || ctx.Err() != nil {
		return
	}

	if err := m.recorder.RecordLastCheck(ctx, m.ID, m.now()); err != nil {
		slog.Warn("Failed to record last check", "feed", m.Name, "error", err)
	}
}

// sleep waits for d and reports false if ctx was cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
