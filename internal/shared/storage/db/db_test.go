package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

type nopDriver struct{}

func (nopDriver) Open(string) (driver.Conn, error) { return nopConn{}, nil }

type nopConn struct{}

func (nopConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (nopConn) Close() error                        { return nil }
func (nopConn) Begin() (driver.Tx, error)           { return nil, driver.ErrSkip }
func (nopConn) Ping(context.Context) error          { return nil }

var registerOnce sync.Once

func withNopDriver(t *testing.T) *pgx.ConnConfig {
	t.Helper()
	registerOnce.Do(func() { sql.Register("dbtest", nopDriver{}) })

	var seen pgx.ConnConfig
	prev := openDB
	openDB = func(cc *pgx.ConnConfig) *sql.DB {
		seen = *cc
		database, _ := sql.Open("dbtest", "")
		return database
	}
	t.Cleanup(func() { openDB = prev })
	return &seen
}

func TestConnectSetsRuntimeParamsAndPool(t *testing.T) {
	seen := withNopDriver(t)

	opts := DefaultServerOptions().Merge(Options{MaxOpenConns: 7, StatementTimeout: 2 * time.Second})
	database, err := Connect(context.Background(), "postgres://app@localhost:5432/docs", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer database.Close()

	if got := database.Stats().MaxOpenConnections; got != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", got)
	}
	if seen.Database != "docs" {
		t.Fatalf("expected database docs, got %q", seen.Database)
	}
	if got := seen.RuntimeParams["application_name"]; got != applicationName {
		t.Fatalf("expected application_name %q, got %q", applicationName, got)
	}
	if got := seen.RuntimeParams["statement_timeout"]; got != "2000" {
		t.Fatalf("expected statement_timeout 2000, got %q", got)
	}
}

func TestConnectKeepsCallerApplicationName(t *testing.T) {
	seen := withNopDriver(t)

	database, err := Connect(context.Background(), "postgres://app@localhost/docs?application_name=reports", DefaultMigrateOptions())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer database.Close()

	if got := seen.RuntimeParams["application_name"]; got != "reports" {
		t.Fatalf("expected caller application_name, got %q", got)
	}
	if _, ok := seen.RuntimeParams["statement_timeout"]; ok {
		t.Fatalf("migrations should not set statement_timeout")
	}
	if got := database.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("expected MaxOpenConnections=1, got %d", got)
	}
}

func TestConnectRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"  ", "postgres://%zz"} {
		if _, err := Connect(context.Background(), raw, DefaultServerOptions()); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestMergeIgnoresZeroFields(t *testing.T) {
	base := DefaultServerOptions()
	if got := base.Merge(Options{}); got != base {
		t.Fatalf("expected unchanged options, got %+v", got)
	}
	got := base.Merge(Options{PingTimeout: time.Second})
	if got.PingTimeout != time.Second || got.MaxOpenConns != base.MaxOpenConns {
		t.Fatalf("unexpected merge %+v", got)
	}
}

func TestRunMigrationsNilIsNoop(t *testing.T) {
	if err := RunMigrations(context.Background(), nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
