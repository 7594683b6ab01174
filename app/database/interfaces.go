package database

import (
	"context"
	"errors"
	"time"
)

var (
	ErrMonitorNotFound = errors.New("monitor not found")
	ErrMonitorExists   = errors.New("monitor already exists")
)

type MonitorRepository interface {
	GetMonitor(ctx context.Context, id string) (*Monitor, error)
	ListMonitors(ctx context.Context) ([]Monitor, error)
	ListActiveMonitors(ctx context.Context) ([]Monitor, error)

	CreateMonitor(ctx context.Context, name, feedURL, sheetID string) (*Monitor, error)
	UpsertMonitor(ctx context.Context, name, feedURL, sheetID string, active bool) (*Monitor, error)
	SetMonitorActive(ctx context.Context, id string, active bool) error
	RecordLastCheck(ctx context.Context, id string, at time.Time) error
}
