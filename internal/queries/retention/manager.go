// Package retention purges stored queries past their retention age.
package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Purger deletes queries older than a number of days
type Purger interface {
	Purge(ctx context.Context, days int) (int64, error)
}

// Config configures the retention job
type Config struct {
	Schedule   string
	MaxAgeDays int
	RunTimeout time.Duration
}

// DefaultConfig returns the default retention settings
func DefaultConfig() Config {
	return Config{
		Schedule:   "@daily",
		MaxAgeDays: 30,
		RunTimeout: 5 * time.Minute,
	}
}

// Manager runs the purge on a cron schedule
type Manager struct {
	cron    *cron.Cron
	purger  Purger
	config  Config
	logger  *zap.Logger
	mu      sync.Mutex
	running bool
	entry   cron.EntryID
}

// NewManager creates a new retention manager
func NewManager(purger Purger, config Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultConfig()
	if config.Schedule == "" {
		config.Schedule = defaults.Schedule
	}
	if config.MaxAgeDays < 1 {
		config.MaxAgeDays = defaults.MaxAgeDays
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = defaults.RunTimeout
	}
	return &Manager{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		purger: purger,
		config: config,
		logger: logger,
	}
}

// Start registers the purge job and starts the scheduler
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("retention manager already running")
	}

	id, err := m.cron.AddFunc(m.config.Schedule, func() {
		_, _ = m.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", m.config.Schedule, err)
	}
	m.entry = id

	m.logger.Info("Starting retention manager",
		zap.String("schedule", m.config.Schedule),
		zap.Int("max_age_days", m.config.MaxAgeDays))

	m.cron.Start()
	m.running = true
	return nil
}

// Stop stops the scheduler and waits for a running purge to finish
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	m.logger.Info("Stopping retention manager")

	ctx := m.cron.Stop()
	<-ctx.Done()

	m.cron.Remove(m.entry)
	m.running = false
}

// NextRun reports when the purge will run next
func (m *Manager) NextRun() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return time.Time{}
	}
	return m.cron.Entry(m.entry).Next
}

// RunOnce purges immediately with the configured age
func (m *Manager) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, m.config.RunTimeout)
	defer cancel()

	start := time.Now()
	deleted, err := m.purger.Purge(ctx, m.config.MaxAgeDays)
	if err != nil {
		m.logger.Error("Retention purge failed", zap.Error(err))
		return 0, err
	}

	m.logger.Info("Retention purge completed",
		zap.Int64("deleted", deleted),
		zap.Duration("duration", time.Since(start)))
	return deleted, nil
}
