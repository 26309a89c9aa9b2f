package database

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/m3rciful/partyfinder/core/logger"
)

const (
	connectTimeout = 5 * time.Second
	readyTimeout   = 30 * time.Second
	readyInterval  = 2 * time.Second
)

// DSN renders the driver specific data source name for cfg.
func DSN(cfg Config) (string, error) {
	switch cfg.DriverName() {
	case DriverPostgres:
		return fmt.Sprintf(
			"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, sslMode(cfg.SSLMode),
		), nil
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, portOr(cfg.Port, "3306"))
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.MultiStatements = true
		return mc.FormatDSN(), nil
	case DriverSQLite:
		if strings.TrimSpace(cfg.Path) == "" {
			return "", fmt.Errorf("database.path is required for sqlite3")
		}
		return cfg.Path, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Connect opens the database connection, configures the pool, and verifies connectivity.
// Postgres and MySQL are retried until they answer or the readiness timeout expires.
func Connect(cfg Config) (*sqlx.DB, error) {
	driver := cfg.DriverName()
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	sqlxDB, err := sqlx.Open(driver, dsn)
	if err != nil {
		logger.DB.Error("db connect failed",
			slog.String("event", "db.connect"),
			slog.String("driver", driver),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	wait := readyTimeout
	if driver == DriverSQLite {
		wait = 0
	}
	if pingErr := waitForDB(sqlxDB, wait); pingErr != nil {
		logger.DB.Error("db ping failed",
			slog.String("event", "db.ping"),
			slog.String("driver", driver),
			slog.String("host", cfg.Host),
			slog.String("port", cfg.Port),
			slog.String("db", target(cfg)),
			slog.String("err", pingErr.Error()),
		)
		_ = sqlxDB.Close()
		return nil, fmt.Errorf("db ping: %w", pingErr)
	}
	took := time.Since(start)

	pool := cfg.MaxConnections
	if driver == DriverSQLite && isMemoryPath(cfg.Path) {
		// every connection to ":memory:" is a separate database
		pool = 1
	}
	if pool > 0 {
		sqlxDB.SetMaxOpenConns(pool)
		sqlxDB.SetMaxIdleConns(pool)
	}
	logger.DB.Debug("db pool configured",
		slog.String("event", "db.pool"),
		slog.Int("pool_open", pool),
	)

	logger.DB.Info("db connected",
		slog.String("event", "db.connect"),
		slog.String("driver", driver),
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", target(cfg)),
		slog.Int("pool_open", pool),
		slog.Duration("duration", logger.RoundMS(took)),
	)

	return sqlxDB, nil
}

// waitForDB pings db until it answers or timeout is reached. A zero timeout pings once.
func waitForDB(db *sqlx.DB, timeout time.Duration) error {
	start := time.Now()
	for {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		err := db.PingContext(ctx)
		cancel()
		if err == nil {
			return nil
		}
		if time.Since(start) >= timeout {
			if timeout > 0 {
				return fmt.Errorf("timeout reached waiting for database: %w", err)
			}
			return err
		}
		time.Sleep(readyInterval)
	}
}

func target(cfg Config) string {
	if cfg.DriverName() == DriverSQLite {
		return cfg.Path
	}
	return cfg.Name
}

func isMemoryPath(p string) bool {
	return p == ":memory:" || strings.Contains(p, "mode=memory")
}

func sslMode(v string) string {
	if strings.TrimSpace(v) == "" {
		return "disable"
	}
	return v
}

func portOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
