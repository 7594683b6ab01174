package tasks

import (
	"context"
	"time"

	"github.com/lysyi3m/rss-sheets/app/database"
	"github.com/lysyi3m/rss-sheets/app/feed"
)

// FeedSource fetches and parses one feed. Implemented by feed.Source.
type FeedSource interface {
	Fetch(ctx context.Context, uri string) ([]feed.Entry, error)
}

// Sink is the spreadsheet a monitor appends to. Implemented by sheet.Writer.
type Sink interface {
	EnsureHeader(ctx context.Context) error
	Append(ctx context.Context, rows []feed.Row) error
	ExistingLinks(ctx context.Context) ([]string, error)
}

// SinkFactory returns the sink for a spreadsheet ID.
type SinkFactory func(spreadsheetID string) Sink

type CheckRecorder interface {
	RecordLastCheck(ctx context.Context, id string, at time.Time) error
}

// SchedulerInterface manages one polling loop per active monitor.
//
//	scheduler := NewScheduler(monitorRepo, source, sinks, opts)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.StartMonitor(monitor)
type SchedulerInterface interface {
	Start() error
	Stop()
	StartMonitor(monitor database.Monitor) bool
	StopMonitor(id string) bool
	IsRunning(id string) bool
}
