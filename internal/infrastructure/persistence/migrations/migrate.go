// Package migrations applies the storefront schema to PostgreSQL. SQLite
// deployments use gorm's AutoMigrate instead and never touch this package.
package migrations

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// ErrDirtySchema means a previous run failed halfway through a migration
var ErrDirtySchema = errors.New("schema is dirty")

// Options tunes a migration run
type Options struct {
	// LockTimeout bounds the wait for the advisory lock held by another instance
	LockTimeout time.Duration
	// ForceVersion resets a dirty schema to this version before migrating; 0 disables it
	ForceVersion int
}

// Migrator runs the embedded schema migrations
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// New creates a migrator for a pgx5:// database URL
func New(databaseURL string, opts Options, logger *zap.Logger) (*Migrator, error) {
	src, err := iofs.New(sqlFiles, "sql")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect migrator: %w", err)
	}
	if opts.LockTimeout > 0 {
		m.LockTimeout = opts.LockTimeout
	}
	m.Log = migrateLogger{logger: logger.Named("migrate")}

	mg := &Migrator{migrate: m, logger: logger}
	if opts.ForceVersion > 0 {
		logger.Warn("Forcing schema version", zap.Int("version", opts.ForceVersion))
		if err := m.Force(opts.ForceVersion); err != nil {
			_ = mg.Close()
			return nil, fmt.Errorf("force version %d: %w", opts.ForceVersion, err)
		}
	}
	return mg, nil
}

// Apply opens a migrator, brings the schema up to date and closes it
func Apply(ctx context.Context, databaseURL string, opts Options, logger *zap.Logger) error {
	m, err := New(databaseURL, opts, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return m.Up(ctx)
}

// Up applies every pending migration. Cancelling ctx stops after the
// migration currently running.
func (m *Migrator) Up(ctx context.Context) error {
	from, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("%w at version %d", ErrDirtySchema, from)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.migrate.GracefulStop <- true
		case <-done:
		}
	}()

	start := time.Now()
	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("Schema up to date", zap.Uint("version", from))
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	to, _, _ := m.Version()
	m.logger.Info("Schema migrated",
		zap.Uint("from_version", from),
		zap.Uint("to_version", to),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// Down rolls back the most recent migration
func (m *Migrator) Down() error {
	if err := m.migrate.Steps(-1); err != nil {
		return fmt.Errorf("roll back migration: %w", err)
	}
	m.logger.Info("Rolled back one migration")
	return nil
}

// Version reports the applied version; an empty schema is version 0
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Close releases the source and database handles
func (m *Migrator) Close() error {
	srcErr, dbErr := m.migrate.Close()
	return errors.Join(srcErr, dbErr)
}

// Versions lists the embedded migration versions in ascending order
func Versions() ([]uint, error) {
	src, err := iofs.New(sqlFiles, "sql")
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var versions []uint
	v, err := src.First()
	for err == nil {
		versions = append(versions, v)
		v, err = src.Next(v)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions, nil
}

// migrateLogger routes golang-migrate's printf logging into zap
type migrateLogger struct {
	logger *zap.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool {
	return l.logger.Core().Enabled(zap.DebugLevel)
}
