package audit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shraw06/docsplusplus/internal/logger"
	"github.com/shraw06/docsplusplus/pkg/config"
)

// Logger is the single writer for the audit log: handlers enqueue Records
// on a bounded channel and a background goroutine drains it into the SQL
// table. The zero value is not usable; use New. A nil *Logger is safe to
// call Log/Close on, so call sites never need their own enabled check.
type Logger struct {
	db     *gorm.DB
	queue  chan *Record
	closed chan struct{}
}

// New opens the audit database (creating the schema if necessary) and
// starts its background writer goroutine. Returns nil, nil if cfg is
// disabled.
func New(cfg config.AuditConfig) (*Logger, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		if err := runPostgresMigrations(cfg.DSN); err != nil {
			return nil, err
		}
		dialector = postgres.Open(cfg.DSN)

	default: // "sqlite", the zero-config default
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0755); err != nil {
			return nil, fmt.Errorf("create audit database directory: %w", err)
		}
		dsn := cfg.DSN + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	if cfg.Driver != "postgres" {
		if err := db.AutoMigrate(&Record{}); err != nil {
			return nil, fmt.Errorf("migrate audit schema: %w", err)
		}
	}

	l := &Logger{
		db:     db,
		queue:  make(chan *Record, cfg.QueueCapacity),
		closed: make(chan struct{}),
	}
	go l.run()
	return l, nil
}

func (l *Logger) run() {
	defer close(l.closed)
	for r := range l.queue {
		if err := l.db.Create(r).Error; err != nil {
			logger.Warn("audit write failed", "error", err, "action", r.Action, "file", r.File)
		}
	}
}

// Log enqueues r for the background writer. If the queue is full, the
// oldest pending record is dropped to make room: a send here must never
// block the RPC handler that produced r.
func (l *Logger) Log(r *Record) {
	if l == nil {
		return
	}

	select {
	case l.queue <- r:
		return
	default:
	}

	select {
	case <-l.queue:
	default:
	}

	select {
	case l.queue <- r:
	default:
	}
}

// Close stops accepting new records and waits for the writer goroutine to
// drain whatever is already queued.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	close(l.queue)
	<-l.closed
}
