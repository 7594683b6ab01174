package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rss-sheets/app/feed"
)

// FetchResult is the outcome of the fetch step.
type FetchResult struct {
	Entries []feed.Entry
	Err     error
}

// WriteResult is the outcome of the sink step. Skipped is set when there was nothing to write.
type WriteResult struct {
	Written int
	Skipped bool
	Err     error
}

// CycleOutcome combines the step results of one poll cycle.
type CycleOutcome struct {
	Fetch      FetchResult
	Write      WriteResult
	Total      int
	New        int
	Duplicates int
	Err        error
}

func (o CycleOutcome) Succeeded() bool {
	return o.Err == nil
}

// SyncFeedTask runs one fetch, normalize, dedup and write cycle.
type SyncFeedTask struct {
	Task
	FeedURL    string
	source     FeedSource
	normalizer *feed.Normalizer
	seen       *feed.SeenSet
	sink       Sink
}

var _ TaskInterface = (*SyncFeedTask)(nil)

func NewSyncFeedTask(feedName, feedURL string, source FeedSource, normalizer *feed.Normalizer, seen *feed.SeenSet, sink Sink) *SyncFeedTask {
	return &SyncFeedTask{
		Task:       NewTask(TaskTypeSyncFeed, feedName),
		FeedURL:    feedURL,
		source:     source,
		normalizer: normalizer,
		seen:       seen,
		sink:       sink,
	}
}

func (t *SyncFeedTask) Execute(ctx context.Context) error {
	return t.Run(ctx).Err
}

// Run executes the cycle. It never panics; a recovered panic is reported as a fetch failure.
func (t *SyncFeedTask) Run(ctx context.Context) (outcome CycleOutcome) {
	t.Start()

	defer func() {
		if r := recover(); r != nil {
			outcome.Err = fmt.Errorf("%w: panic during cycle: %v", feed.ErrFetch, r)
			slog.Error("Task failed", "type", string(t.Type), "feed", t.FeedName, "error", outcome.Err)
		}
	}()

	outcome.Fetch = t.fetch(ctx)
	if outcome.Fetch.Err != nil {
		outcome.Err = outcome.Fetch.Err
		slog.Error("Task failed", "type", string(t.Type), "feed", t.FeedName, "error", outcome.Err)
		return outcome
	}

	rows := t.normalizer.RunAll(outcome.Fetch.Entries)
	unseen := t.seen.FilterUnseen(rows)

	outcome.Total = len(rows)
	outcome.New = len(unseen)
	outcome.Duplicates = len(rows) - len(unseen)

	outcome.Write = t.write(ctx, unseen)
	if outcome.Write.Err != nil {
		outcome.Err = outcome.Write.Err
		slog.Error("Task failed", "type", string(t.Type), "feed", t.FeedName, "error", outcome.Err)
		return outcome
	}

	if outcome.Write.Skipped {
		slog.Info("No new entries found", "feed", t.FeedName, "total", outcome.Total)
	} else {
		slog.Info("New entries added", "feed", t.FeedName, "count", outcome.Write.Written)
	}

	slog.Debug("Task completed",
		"type", string(t.Type),
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"total", outcome.Total,
		"duplicates", outcome.Duplicates,
		"new", outcome.New)

	return outcome
}

func (t *SyncFeedTask) fetch(ctx context.Context) FetchResult {
	entries, err := t.source.Fetch(ctx, t.FeedURL)
	if err != nil {
		return FetchResult{Err: err}
	}
	return FetchResult{Entries: entries}
}

// write leaves the seen-set untouched on failure: rows already marked seen are not retried.
func (t *SyncFeedTask) write(ctx context.Context, rows []feed.Row) WriteResult {
	if len(rows) == 0 {
		return WriteResult{Skipped: true}
	}

	if err := t.sink.EnsureHeader(ctx); err != nil {
		return WriteResult{Err: err}
	}

	if err := t.sink.Append(ctx, rows); err != nil {
		return WriteResult{Err: err}
	}

	return WriteResult{Written: len(rows)}
}
