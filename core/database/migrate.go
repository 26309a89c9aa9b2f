package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/partyfinder/core/logger"
)

const filesPreview = 6

// Migrate applies all up migrations for the configured driver. Migrations are read
// from a per-driver directory of src (postgres/, sqlite3/, mysql/).
// Server databases are migrated over a dedicated connection that is closed
// afterwards; sqlite3 reuses db since an in-memory database lives on one connection.
func Migrate(db *sqlx.DB, cfg Config, src fs.FS) error {
	ctx := context.Background()
	driver := cfg.DriverName()
	files := upFiles(src, driver)
	logger.LogEvent(ctx, logger.MIG, slog.LevelDebug, "resolve",
		append([]slog.Attr{slog.String("driver", driver), slog.String("path", driver)}, filesAttrs(files)...)...)

	target := db
	if driver != DriverSQLite {
		dsn, err := DSN(cfg)
		if err != nil {
			return err
		}
		if target, err = sqlx.Open(driver, dsn); err != nil {
			return fmt.Errorf("open migration connection: %w", err)
		}
	}

	m, err := newMigrator(target, driver, src)
	if err != nil {
		if target != db {
			_ = target.Close()
		}
		logger.LogEvent(ctx, logger.MIG, slog.LevelError, "init",
			slog.String("status", "fail"),
			slog.String("driver", driver),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	if target != db {
		defer func() {
			if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
				logger.LogEvent(ctx, logger.MIG, slog.LevelWarn, "close",
					slog.String("status", "fail"),
					slog.Any("err", errors.Join(srcErr, dbErr)),
				)
			}
		}()
	}

	from, _, _ := m.Version()
	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.LogEvent(ctx, logger.MIG, slog.LevelError, "apply",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return fmt.Errorf("migration execution failed: %w", err)
	}
	took := time.Since(start)
	to, _, _ := m.Version()

	applied := between(files, uint64(from), uint64(to))
	if len(applied) > 0 {
		logger.LogEvent(ctx, logger.MIG, slog.LevelDebug, "apply", filesAttrs(applied)...)
	}
	logger.LogEvent(ctx, logger.MIG, slog.LevelInfo, "summary",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("files", len(applied)),
		slog.Duration("duration", took),
	)
	return nil
}

func newMigrator(db *sqlx.DB, driver string, src fs.FS) (*migrate.Migrate, error) {
	source, err := iofs.New(src, driver)
	if err != nil {
		return nil, fmt.Errorf("open migrations %q: %w", driver, err)
	}

	var instance database.Driver
	switch driver {
	case DriverPostgres:
		instance, err = postgres.WithInstance(db.DB, &postgres.Config{})
	case DriverMySQL:
		instance, err = migratemysql.WithInstance(db.DB, &migratemysql.Config{})
	case DriverSQLite:
		instance, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	default:
		err = fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", source, driver, instance)
}

func filesAttrs(files []string) []slog.Attr {
	attrs := []slog.Attr{slog.Int("files_total", len(files))}
	preview, truncated := logger.SummarizeStrings(files, filesPreview)
	if preview != "" {
		attrs = append(attrs, slog.String("files_preview", preview))
	}
	if truncated {
		attrs = append(attrs, slog.Bool("files_truncated", true))
	}
	return attrs
}

// upFiles lists the *.up.sql files of dir in version order.
func upFiles(src fs.FS, dir string) []string {
	matches, err := fs.Glob(src, path.Join(dir, "*.up.sql"))
	if err != nil {
		return nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = path.Base(m)
	}
	sort.Slice(names, func(i, j int) bool { return fileVersion(names[i]) < fileVersion(names[j]) })
	return names
}

func fileVersion(name string) uint64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}

// between returns the files with versions in (from, to].
func between(files []string, from, to uint64) []string {
	var out []string
	for _, f := range files {
		if v := fileVersion(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}
