package repository

import (
	"context"
	"fmt"
	"time"

	"nasapuff/pkg/config"
	"nasapuff/pkg/consts"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const querySchema = `CREATE TABLE IF NOT EXISTS pictures (
	"date"        TEXT PRIMARY KEY,
	title         TEXT NOT NULL DEFAULT '',
	url           TEXT NOT NULL,
	hd_url        TEXT NOT NULL DEFAULT '',
	thumbnail_url TEXT NOT NULL DEFAULT '',
	media_type    TEXT NOT NULL DEFAULT '',
	copyright     TEXT NOT NULL DEFAULT '',
	explanation   TEXT NOT NULL DEFAULT ''
)`

// Open connects to the history database selected by c.Driver and makes sure
// the pictures table exists. It returns nil, nil when history is disabled.
func Open(ctx context.Context, c config.DB) (*sqlx.DB, error) {

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if c.Driver == "" {
		return nil, nil
	}

	var (
		db  *sqlx.DB
		err error
	)

	if c.Driver == consts.DriverPostgres {
		db, err = NewPostgresDB(ctx, c)
	} else {
		db, err = NewSQLiteDB(ctx, c.Path)
	}
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, querySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create pictures table: %w", err)
	}

	return db, nil
}

func NewPostgresDB(ctx context.Context, c config.DB) (*sqlx.DB, error) {

	connStr := fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=%s", c.Host, c.Port, c.Username, c.DBName, c.Password, c.SSLMode)
	db, err := sqlx.Open(consts.DriverPostgres, connStr)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	db.SetConnMaxIdleTime(10 * time.Second)
	db.SetConnMaxLifetime(10 * time.Second)
	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(5)

	return db, nil
}

func NewSQLiteDB(ctx context.Context, path string) (*sqlx.DB, error) {

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)", path)
	db, err := sqlx.Open(consts.DriverSQLite, dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// one writer at a time
	db.SetMaxOpenConns(1)

	return db, nil
}
