package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	applogger "TrendLens/pkg/logger"
)

// Pruner drops rate-limit buckets idle for longer than idle.
type Pruner interface {
	Prune(idle time.Duration) int
}

// SessionExpirer drops idle dashboard sessions.
type SessionExpirer interface {
	ExpireSessions() int
}

// Scheduler runs periodic housekeeping for the HTTP app.
type Scheduler struct {
	cron        *cron.Cron
	logger      *applogger.Logger
	limiter     Pruner
	sessions    SessionExpirer
	limiterIdle time.Duration
}

// New creates a Scheduler. limiter and sessions may be nil.
func New(l *applogger.Logger, limiter Pruner, sessions SessionExpirer, limiterIdle time.Duration) *Scheduler {
	if l == nil {
		l = applogger.Nop()
	}
	return &Scheduler{
		cron:        cron.New(cron.WithSeconds()),
		logger:      l,
		limiter:     limiter,
		sessions:    sessions,
		limiterIdle: limiterIdle,
	}
}

// Register schedules the housekeeping task on spec (six-field cron).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return fmt.Errorf("register housekeeping: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", applogger.Int("entries", len(s.cron.Entries())))
}

// Close stops the scheduler and waits for a running task to finish.
func (s *Scheduler) Close() error {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// RunOnce prunes limiter buckets and expires idle sessions.
func (s *Scheduler) RunOnce() {
	pruned, expired := 0, 0
	if s.limiter != nil {
		pruned = s.limiter.Prune(s.limiterIdle)
	}
	if s.sessions != nil {
		expired = s.sessions.ExpireSessions()
	}
	s.logger.Debug("housekeeping done",
		applogger.Int("pruned_buckets", pruned),
		applogger.Int("expired_sessions", expired))
}
