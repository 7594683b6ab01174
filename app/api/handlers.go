package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/rss-sheets/app/activity"
	"github.com/lysyi3m/rss-sheets/app/database"
	"github.com/lysyi3m/rss-sheets/app/tasks"
)

func NewHandler(monitorRepo database.MonitorRepository, scheduler tasks.SchedulerInterface,
	activityLog *activity.Log, rowReaders RowReaderFactory) *Handler {
	return &Handler{
		monitorRepo: monitorRepo,
		scheduler:   scheduler,
		activityLog: activityLog,
		rowReaders:  rowReaders,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if monitors, err := h.monitorRepo.ListMonitors(c.Request.Context()); err == nil {
		running := 0
		for _, m := range monitors {
			if h.scheduler.IsRunning(m.ID) {
				running++
			}
		}
		health["monitors"] = len(monitors)
		health["running"] = running
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetLogs(c *gin.Context) {
	limit := activity.DisplayLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = n
	}

	entries := h.activityLog.Recent(limit)

	c.JSON(http.StatusOK, map[string]interface{}{
		"logs":     entries,
		"total":    len(entries),
		"capacity": h.activityLog.Capacity(),
	})
}

func (h *Handler) APIListMonitors(c *gin.Context) {
	monitors, err := h.monitorRepo.ListMonitors(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "list_monitors", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list monitors"})
		return
	}

	out := make([]monitorResponse, 0, len(monitors))
	for _, m := range monitors {
		out = append(out, monitorResponse{Monitor: m, Running: h.scheduler.IsRunning(m.ID)})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"monitors": out,
		"total":    len(out),
	})
}

func (h *Handler) APICreateMonitor(c *gin.Context) {
	var req createMonitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.FeedURL = strings.TrimSpace(req.FeedURL)
	req.SheetID = strings.TrimSpace(req.SheetID)

	if req.Name == "" || req.FeedURL == "" || req.SheetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fields name, feed_url and sheet_id are required"})
		return
	}
	if u, err := url.Parse(req.FeedURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Field feed_url must be an http(s) URL"})
		return
	}

	monitor, err := h.monitorRepo.CreateMonitor(c.Request.Context(), req.Name, req.FeedURL, req.SheetID)
	if errors.Is(err, database.ErrMonitorExists) {
		c.JSON(http.StatusConflict, gin.H{"error": "Monitor already exists"})
		return
	}
	if err != nil {
		slog.Error("Failed to save monitor", "feed", req.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save monitor"})
		return
	}

	slog.Info("Monitor saved", "feed", monitor.Name)
	h.scheduler.StartMonitor(*monitor)

	c.JSON(http.StatusCreated, monitorResponse{Monitor: *monitor, Running: h.scheduler.IsRunning(monitor.ID)})
}

func (h *Handler) APISetMonitorActive(c *gin.Context) {
	id := c.Param("id")

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Field active is required"})
		return
	}

	ctx := c.Request.Context()
	err := h.monitorRepo.SetMonitorActive(ctx, id, *req.Active)
	if errors.Is(err, database.ErrMonitorNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Monitor not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "set_monitor_active", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update monitor"})
		return
	}

	monitor, err := h.monitorRepo.GetMonitor(ctx, id)
	if err != nil || monitor == nil {
		slog.Error("Database error", "operation", "get_monitor", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load monitor"})
		return
	}

	if monitor.IsActive {
		h.scheduler.StartMonitor(*monitor)
	} else {
		h.scheduler.StopMonitor(monitor.ID)
	}

	slog.Info("Monitor updated", "feed", monitor.Name, "active", monitor.IsActive)
	c.JSON(http.StatusOK, monitorResponse{Monitor: *monitor, Running: h.scheduler.IsRunning(monitor.ID)})
}

func (h *Handler) APIGetMonitorRows(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	monitor, err := h.monitorRepo.GetMonitor(ctx, id)
	if err != nil {
		slog.Error("Database error", "operation", "get_monitor", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load monitor"})
		return
	}
	if monitor == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Monitor not found"})
		return
	}

	rows, err := h.rowReaders(monitor.SheetID).Rows(ctx)
	if err != nil {
		slog.Error("Failed to load existing rows", "feed", monitor.Name, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to read spreadsheet"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"monitor": monitor.Name,
		"rows":    rows,
		"total":   len(rows),
	})
}
