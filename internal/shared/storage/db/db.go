package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"docanalysis-backend/internal/shared/telemetry"
)

const applicationName = "docanalysis"

// Options tunes the connection pool. Zero fields keep the defaults.
type Options struct {
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	ConnMaxIdleTime  time.Duration
	PingTimeout      time.Duration
	StatementTimeout time.Duration
}

// openDB turns a parsed pgx config into a database/sql handle.
var openDB = func(cc *pgx.ConnConfig) *sql.DB {
	return stdlib.OpenDB(*cc)
}

// DefaultServerOptions suits the long-running API process.
func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:     10,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnMaxIdleTime:  2 * time.Minute,
		PingTimeout:      5 * time.Second,
		StatementTimeout: 30 * time.Second,
	}
}

// DefaultMigrateOptions suits one-shot migration runs.
func DefaultMigrateOptions() Options {
	opts := DefaultServerOptions()
	opts.MaxOpenConns = 1
	opts.MaxIdleConns = 1
	opts.StatementTimeout = 0
	return opts
}

// Merge returns o with every non-zero field of override applied.
func (o Options) Merge(override Options) Options {
	if override.MaxOpenConns > 0 {
		o.MaxOpenConns = override.MaxOpenConns
	}
	if override.MaxIdleConns > 0 {
		o.MaxIdleConns = override.MaxIdleConns
	}
	if override.ConnMaxLifetime > 0 {
		o.ConnMaxLifetime = override.ConnMaxLifetime
	}
	if override.ConnMaxIdleTime > 0 {
		o.ConnMaxIdleTime = override.ConnMaxIdleTime
	}
	if override.PingTimeout > 0 {
		o.PingTimeout = override.PingTimeout
	}
	if override.StatementTimeout > 0 {
		o.StatementTimeout = override.StatementTimeout
	}
	return o
}

// Connect opens a pgx-backed *sql.DB for databaseURL and pings it.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	cc, err := parseConnConfig(databaseURL, opts)
	if err != nil {
		return nil, err
	}

	database := openDB(cc)
	database.SetMaxOpenConns(opts.MaxOpenConns)
	database.SetMaxIdleConns(opts.MaxIdleConns)
	database.SetConnMaxLifetime(opts.ConnMaxLifetime)
	database.SetConnMaxIdleTime(opts.ConnMaxIdleTime)

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	telemetry.Info("db.connected", map[string]any{
		"host":     cc.Host,
		"database": cc.Database,
		"max_open": opts.MaxOpenConns,
	})
	return database, nil
}

func parseConnConfig(databaseURL string, opts Options) (*pgx.ConnConfig, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}
	cc, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	if cc.RuntimeParams == nil {
		cc.RuntimeParams = map[string]string{}
	}
	if _, ok := cc.RuntimeParams["application_name"]; !ok {
		cc.RuntimeParams["application_name"] = applicationName
	}
	if opts.StatementTimeout > 0 {
		cc.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", opts.StatementTimeout.Milliseconds())
	}
	return cc, nil
}
