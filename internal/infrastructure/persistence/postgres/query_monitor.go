package postgres

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const monitorStartKey = "query_monitor:start"

// QueryObserver receives one observation per executed statement
type QueryObserver interface {
	ObserveQuery(operation, table string, duration time.Duration, err error)
}

// QueryMonitor times GORM statements through callbacks
type QueryMonitor struct {
	logger        *zap.Logger
	observer      QueryObserver
	slowThreshold time.Duration
}

// NewQueryMonitor creates a new query monitor. observer may be nil.
func NewQueryMonitor(slowThreshold time.Duration, observer QueryObserver, logger *zap.Logger) *QueryMonitor {
	return &QueryMonitor{
		logger:        logger,
		observer:      observer,
		slowThreshold: slowThreshold,
	}
}

// Install registers before/after callbacks on every GORM processor
func (qm *QueryMonitor) Install(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Query().Before("gorm:query").Register("monitor:before_query", qm.before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("monitor:after_query", qm.after("select")); err != nil {
		return err
	}
	if err := cb.Create().Before("gorm:create").Register("monitor:before_create", qm.before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("monitor:after_create", qm.after("insert")); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("monitor:before_update", qm.before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("monitor:after_update", qm.after("update")); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("monitor:before_delete", qm.before); err != nil {
		return err
	}
	return cb.Delete().After("gorm:delete").Register("monitor:after_delete", qm.after("delete"))
}

func (qm *QueryMonitor) before(db *gorm.DB) {
	db.InstanceSet(monitorStartKey, time.Now())
}

func (qm *QueryMonitor) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(monitorStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}

		duration := time.Since(start)
		table := ""
		if db.Statement != nil {
			table = db.Statement.Table
		}

		if qm.observer != nil {
			qm.observer.ObserveQuery(operation, table, duration, db.Error)
		}

		if qm.slowThreshold > 0 && duration > qm.slowThreshold {
			qm.logger.Warn("Slow query",
				zap.String("operation", operation),
				zap.String("table", table),
				zap.Duration("duration", duration),
			)
		}
	}
}

// GORMLogWriter implements GORM's Writer interface for query logging
type GORMLogWriter struct {
	logger *zap.Logger
}

// Printf implements the Writer interface
func (w *GORMLogWriter) Printf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	if strings.Contains(msg, "SLOW SQL") {
		w.logger.Warn("GORM slow query", zap.String("message", msg))
	} else if strings.Contains(msg, "ERROR") || strings.Contains(msg, "error") {
		w.logger.Error("GORM error", zap.String("message", msg))
	} else {
		w.logger.Debug("GORM log", zap.String("message", msg))
	}
}
