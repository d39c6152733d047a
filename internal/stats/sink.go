package stats

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Sink owns the gorm connection used to persist Run records and the
// cron schedule that flushes a periodic summary log line.
type Sink struct {
	db  *gorm.DB
	log *zap.Logger
	cr  *cron.Cron
}

// Open connects to the configured statistics backend ("sqlite" or
// "postgres") and runs the schema migration, the way the teacher's
// NewDatabase opens a connection and the migrate CLI command applies
// AutoMigrate.
func Open(driver, dsn string, log *zap.Logger) (*Sink, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		path := dsn
		if path == "" {
			path = "plverify_stats.db"
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("stats: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("stats: connecting to %s: %w", driver, err)
	}
	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, fmt.Errorf("stats: migrating schema: %w", err)
	}
	return &Sink{db: db, log: log}, nil
}

// Record persists one completed run.
func (s *Sink) Record(r *Run) error {
	if err := s.db.Create(r).Error; err != nil {
		return fmt.Errorf("stats: recording run: %w", err)
	}
	return nil
}

// Recent returns the most recently recorded runs, newest first, for
// the CLI's `stats` command.
func (s *Sink) Recent(limit int) ([]Run, error) {
	var runs []Run
	if err := s.db.Order("created_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("stats: querying recent runs: %w", err)
	}
	return runs, nil
}

// StartPeriodicFlush schedules a cron job that logs an aggregate
// summary every flushSeconds, the way the teacher schedules background
// maintenance work with robfig/cron.
func (s *Sink) StartPeriodicFlush(flushSeconds int) error {
	if flushSeconds <= 0 {
		return nil
	}
	s.cr = cron.New(cron.WithSeconds())
	spec := fmt.Sprintf("@every %ds", flushSeconds)
	_, err := s.cr.AddFunc(spec, s.logSummary)
	if err != nil {
		return fmt.Errorf("stats: scheduling periodic flush: %w", err)
	}
	s.cr.Start()
	return nil
}

func (s *Sink) logSummary() {
	var count int64
	if err := s.db.Model(&Run{}).Count(&count).Error; err != nil {
		s.log.Warn("stats: periodic flush failed to count runs", zap.Error(err))
		return
	}
	s.log.Info("stats: periodic summary", zap.Int64("total_runs", count))
}

// Close stops the cron scheduler and releases the database handle.
func (s *Sink) Close() error {
	if s.cr != nil {
		s.cr.Stop()
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
