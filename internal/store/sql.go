package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// dialect captures the SQL that differs between database engines.
type dialect struct {
	driver     string
	migrations string
	upsert     string
}

var (
	sqliteDialect = dialect{
		driver:     "sqlite3",
		migrations: "migrations/sqlite",
		upsert: `
			INSERT INTO kv_entries (storage_key, payload, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(storage_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
		`,
	}

	mysqlDialect = dialect{
		driver:     "mysql",
		migrations: "migrations/mysql",
		upsert: `
			INSERT INTO kv_entries (storage_key, payload, updated_at) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)
		`,
	}
)

// SQLStore implements the Store interface on top of a SQL database.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// NewSQLiteStore creates a new SQLite-backed store with the given database path.
// ":memory:" opens a private in-memory database.
func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	db, err := sql.Open(sqliteDialect.driver, dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each sqlite connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	return newSQLStore(db, sqliteDialect)
}

// NewMySQLStore creates a new MySQL-backed store from a DSN such as
// "user:pass@tcp(localhost:3306)/tasks".
func NewMySQLStore(dsn string) (*SQLStore, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.MultiStatements = true

	db, err := sql.Open(mysqlDialect.driver, cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	return newSQLStore(db, mysqlDialect)
}

func newSQLStore(db *sql.DB, d dialect) (*SQLStore, error) {
	store := &SQLStore{db: db, dialect: d}
	if err := runMigrations(db, d.migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Get retrieves the value stored under key.
func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM kv_entries WHERE storage_key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return value, true, nil
}

// Set inserts or replaces the value stored under key.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.dialect.upsert, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}
