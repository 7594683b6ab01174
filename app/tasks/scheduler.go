package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lysyi3m/rss-sheets/app/database"
	"github.com/lysyi3m/rss-sheets/app/feed"
)

var _ SchedulerInterface = (*Scheduler)(nil)

type runningMonitor struct {
	cancel context.CancelFunc
	done   chan struct{}
}

type Scheduler struct {
	monitorRepo database.MonitorRepository
	source      FeedSource
	sinks       SinkFactory
	opts        MonitorOptions
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	mu      sync.Mutex
	running map[string]*runningMonitor
	// Seen-sets outlive their loops so a restarted monitor does not re-append.
	seen map[string]*feed.SeenSet
}

func NewScheduler(monitorRepo database.MonitorRepository, source FeedSource, sinks SinkFactory, opts MonitorOptions) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		monitorRepo: monitorRepo,
		source:      source,
		sinks:       sinks,
		opts:        opts,
		ctx:         ctx,
		cancel:      cancel,
		running:     make(map[string]*runningMonitor),
		seen:        make(map[string]*feed.SeenSet),
	}
}

// Start launches a loop for every active monitor in the store.
func (s *Scheduler) Start() error {
	monitors, err := s.monitorRepo.ListActiveMonitors(s.ctx)
	if err != nil {
		return fmt.Errorf("failed to load active monitors: %w", err)
	}

	for _, monitor := range monitors {
		s.StartMonitor(monitor)
	}

	slog.Info("Scheduler started", "monitors", len(monitors))
	return nil
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// StartMonitor starts the loop for monitor and reports false if one is already running.
func (s *Scheduler) StartMonitor(monitor database.Monitor) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return false
	}
	if _, ok := s.running[monitor.ID]; ok {
		slog.Debug("Monitor already running", "feed", monitor.Name)
		return false
	}

	seen, ok := s.seen[monitor.ID]
	if !ok {
		seen = feed.NewSeenSet()
		s.seen[monitor.ID] = seen
	}

	ctx, cancel := context.WithCancel(s.ctx)
	handle := &runningMonitor{cancel: cancel, done: make(chan struct{})}
	s.running[monitor.ID] = handle

	m := NewMonitor(monitor.ID, monitor.Name, monitor.FeedURL, s.source, s.sinks(monitor.SheetID), s.monitorRepo, seen, s.opts)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(handle.done)
		defer s.forget(monitor.ID, handle)

		m.Run(ctx)
	}()

	return true
}

// StopMonitor cancels the loop for id and waits for it to exit.
// The monitor counts as running until its loop has returned.
func (s *Scheduler) StopMonitor(id string) bool {
	s.mu.Lock()
	handle, ok := s.running[id]
	s.mu.Unlock()

	if !ok {
		return false
	}

	handle.cancel()
	<-handle.done
	return true
}

func (s *Scheduler) IsRunning(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.running[id]
	return ok
}

func (s *Scheduler) forget(id string, handle *runningMonitor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running[id] == handle {
		delete(s.running, id)
	}
	handle.cancel()
}
