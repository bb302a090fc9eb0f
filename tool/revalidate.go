package tool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultRevalidateCron re-checks requirements every five minutes.
const DefaultRevalidateCron = "*/5 * * * *"

var revalidateCronParser = cron.NewParser(
	cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow,
)

// RevalidateEvent captures one scheduler-driven requirement evaluation.
type RevalidateEvent struct {
	Tool           string
	PreviousStatus Status
	Status         Status
	Error          error
}

// RevalidateEventHandler handles scheduler events. Called synchronously from
// the scheduler goroutine.
type RevalidateEventHandler func(event RevalidateEvent)

// RevalidateSchedulerConfig controls background requirement revalidation.
type RevalidateSchedulerConfig struct {
	Manager *Manager
	// CronExpr is a UTC five-field cron expression; defaults to DefaultRevalidateCron.
	CronExpr string
	OnEvent  RevalidateEventHandler
	Logger   *slog.Logger
	Now      func() time.Time
}

// RevalidateScheduler periodically re-runs the requirement policy over every
// registered category. The registry itself never mutates; availability is
// tracked in the scheduler and surfaced through events.
type RevalidateScheduler struct {
	manager  *Manager
	schedule cron.Schedule
	onEvent  RevalidateEventHandler
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	statuses map[string]Status
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewRevalidateScheduler creates a scheduler from config.
func NewRevalidateScheduler(cfg RevalidateSchedulerConfig) (*RevalidateScheduler, error) {
	if cfg.Manager == nil {
		return nil, errors.New("tool: revalidate scheduler manager is nil")
	}

	expr := strings.TrimSpace(cfg.CronExpr)
	if expr == "" {
		expr = DefaultRevalidateCron
	}
	schedule, err := parseCronUTC(expr)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &RevalidateScheduler{
		manager:  cfg.Manager,
		schedule: schedule,
		onEvent:  cfg.OnEvent,
		logger:   logger,
		now:      now,
		statuses: make(map[string]Status),
	}
	for _, reg := range cfg.Manager.All() {
		s.statuses[reg.Name] = reg.Status
	}
	return s, nil
}

// parseCronUTC parses a five-field UTC cron expression. Timezone prefixes
// are rejected so schedules stay comparable across hosts.
func parseCronUTC(expr string) (cron.Schedule, error) {
	clean := strings.TrimSpace(expr)
	if clean == "" {
		return nil, errors.New("tool: cron expression is required")
	}
	upper := strings.ToUpper(clean)
	if strings.Contains(upper, "CRON_TZ=") || strings.Contains(upper, "TZ=") {
		return nil, errors.New("tool: cron expression must be UTC-only")
	}

	schedule, err := revalidateCronParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("tool: invalid cron expression: %w", err)
	}
	return schedule, nil
}

// Start launches the background loop. Calling Start on a running scheduler
// is a no-op.
func (s *RevalidateScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.loop(loopCtx, done)
}

// Stop halts the background loop and waits for it to exit.
func (s *RevalidateScheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *RevalidateScheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		next := s.schedule.Next(s.now().UTC())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one requirement pass over all categories, emitting an event per
// status transition. Exposed for direct invocation in CLI mode and tests.
func (s *RevalidateScheduler) Sweep(ctx context.Context) {
	for _, name := range s.manager.List() {
		if ctx.Err() != nil {
			return
		}

		err := s.manager.Validate(ctx, name)
		status := StatusReady
		if err != nil {
			status = StatusUnavailable
		}

		s.mu.Lock()
		previous := s.statuses[name]
		s.statuses[name] = status
		s.mu.Unlock()

		if previous == status {
			continue
		}

		s.logger.Info("tool status changed",
			slog.String("tool", name),
			slog.String("from", string(previous)),
			slog.String("to", string(status)),
		)
		if s.onEvent != nil {
			s.onEvent(RevalidateEvent{
				Tool:           name,
				PreviousStatus: previous,
				Status:         status,
				Error:          err,
			})
		}
	}
}

// Status returns the last observed status for a category.
func (s *RevalidateScheduler) Status(name string) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[name]
	return status, ok
}
