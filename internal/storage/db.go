package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kovalyov-valentin/news-digest/internal/config"
)

// Open подключается к базе и настраивает пул под конкретный драйвер
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	if driver == config.DriverSQLite {
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", driver, err)
	}

	// У sqlite один писатель, все вызовы выстраиваются в очередь на одном соединении
	if driver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

// Создаем каталог для файла базы, если его еще нет
func ensureDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create database dir %s: %w", dir, err)
	}
	return nil
}

func placeholderFormat(db *sqlx.DB) sq.PlaceholderFormat {
	if sqlx.BindType(db.DriverName()) == sqlx.DOLLAR {
		return sq.Dollar
	}
	return sq.Question
}
