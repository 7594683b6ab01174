package api

import (
	"context"

	"github.com/lysyi3m/rss-sheets/app/activity"
	"github.com/lysyi3m/rss-sheets/app/database"
	"github.com/lysyi3m/rss-sheets/app/sheet"
	"github.com/lysyi3m/rss-sheets/app/tasks"
)

// RowReader reads the current contents of a monitor's spreadsheet.
type RowReader interface {
	Rows(ctx context.Context) ([][]string, error)
}

var _ RowReader = (*sheet.Writer)(nil)

type RowReaderFactory func(spreadsheetID string) RowReader

type Handler struct {
	monitorRepo database.MonitorRepository
	scheduler   tasks.SchedulerInterface
	activityLog *activity.Log
	rowReaders  RowReaderFactory
}

type createMonitorRequest struct {
	Name    string `json:"name"`
	FeedURL string `json:"feed_url"`
	SheetID string `json:"sheet_id"`
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

type monitorResponse struct {
	database.Monitor
	Running bool `json:"running"`
}
