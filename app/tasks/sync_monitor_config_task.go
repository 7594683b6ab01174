package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rss-sheets/app/database"
	"github.com/lysyi3m/rss-sheets/app/feed"
)

// SyncMonitorConfigTask stores one YAML monitor definition.
type SyncMonitorConfigTask struct {
	Task
	Config      *feed.Config
	Monitor     *database.Monitor
	monitorRepo database.MonitorRepository
}

var _ TaskInterface = (*SyncMonitorConfigTask)(nil)

func NewSyncMonitorConfigTask(config *feed.Config, monitorRepo database.MonitorRepository) *SyncMonitorConfigTask {
	return &SyncMonitorConfigTask{
		Task:        NewTask(TaskTypeSyncMonitorConfig, config.Name),
		Config:      config,
		monitorRepo: monitorRepo,
	}
}

func (t *SyncMonitorConfigTask) Execute(ctx context.Context) error {
	t.Start()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	monitor, err := t.monitorRepo.UpsertMonitor(ctx, t.Config.Name, t.Config.URL, t.Config.SheetID, t.Config.IsActive())
	if err != nil {
		slog.Error("Task failed", "type", string(t.Type), "feed", t.FeedName, "error", err)
		return fmt.Errorf("failed to sync monitor config to database: %w", err)
	}
	t.Monitor = monitor

	slog.Info("Task completed",
		"type", string(t.Type),
		"feed", t.FeedName,
		"active", monitor.IsActive,
		"duration", t.GetDuration())

	return nil
}
