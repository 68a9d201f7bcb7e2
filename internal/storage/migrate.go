package storage

import (
	"context"
	"fmt"

	"github.com/samber/lo"
)

const createArticlesTable = `
CREATE TABLE IF NOT EXISTS articles (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	title TEXT NOT NULL,
	url TEXT NOT NULL,
	content TEXT,
	summary TEXT,
	category TEXT,
	duplicate_of TEXT,
	created_at TIMESTAMP NOT NULL,
	summarized_at TIMESTAMP
)`

// Колонки, которых может не быть в базах, созданных старыми версиями
var addedColumns = []struct {
	name string
	ddl  string
}{
	{name: "category", ddl: `ALTER TABLE articles ADD COLUMN category TEXT`},
	{name: "duplicate_of", ddl: `ALTER TABLE articles ADD COLUMN duplicate_of TEXT`},
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_duplicate_of ON articles (duplicate_of)`,
}

// Migrate создает таблицу и добавляет недостающие колонки, не трогая данные
func (s *ArticleStorage) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createArticlesTable); err != nil {
		return fmt.Errorf("create articles table: %w", err)
	}

	columns, err := s.columns(ctx)
	if err != nil {
		return err
	}

	for _, column := range addedColumns {
		if lo.Contains(columns, column.name) {
			continue
		}
		if _, err := s.db.ExecContext(ctx, column.ddl); err != nil {
			return fmt.Errorf("add column %s: %w", column.name, err)
		}
	}

	for _, ddl := range indexes {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}

func (s *ArticleStorage) columns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT * FROM articles LIMIT 0`)
	if err != nil {
		return nil, fmt.Errorf("probe articles columns: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read articles columns: %w", err)
	}

	return columns, nil
}
