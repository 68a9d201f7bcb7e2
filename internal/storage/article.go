package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-digest/internal/category"
	"github.com/kovalyov-valentin/news-digest/internal/dedup"
	"github.com/kovalyov-valentin/news-digest/internal/model"
)

var ErrNotFound = errors.New("article not found")

// Поиск похожей статьи среди недавних канонических
type Matcher interface {
	Window() time.Duration
	FindSimilar(title, content string, candidates []model.Article) (dedup.Match, bool)
}

type Categorizer interface {
	Categorize(title, content, source string) string
}

// Общее у *sqlx.DB и *sqlx.Tx, чтобы одни и те же запросы работали внутри транзакции
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

type SaveStatus int

const (
	SaveInserted SaveStatus = iota
	SaveDuplicate
	SaveExists
)

func (s SaveStatus) String() string {
	switch s {
	case SaveInserted:
		return "inserted"
	case SaveDuplicate:
		return "duplicate"
	case SaveExists:
		return "exists"
	default:
		return "unknown"
	}
}

type SaveResult struct {
	ID     string
	Status SaveStatus
	// Заполнено только для SaveDuplicate
	Match    dedup.Match
	Category string
}

// New возвращает true только для действительно новой статьи
func (r SaveResult) New() bool {
	return r.Status == SaveInserted
}

// Фильтр для ленты. Пустые поля не ограничивают выборку
type Filter struct {
	Source   string
	Category string
	// Статьи не старше стольких дней
	Days  int
	Limit int
}

type Stats struct {
	Count int64
	// Нулевое время, если статей нет
	Newest time.Time
	Oldest time.Time
}

type ArticleStorage struct {
	db          *sqlx.DB
	placeholder sq.PlaceholderFormat
	now         func() time.Time
	matcher     Matcher
	categorizer Categorizer
}

type Option func(*ArticleStorage)

func WithClock(now func() time.Time) Option {
	return func(s *ArticleStorage) {
		s.now = now
	}
}

func WithMatcher(m Matcher) Option {
	return func(s *ArticleStorage) {
		s.matcher = m
	}
}

func WithCategorizer(c Categorizer) Option {
	return func(s *ArticleStorage) {
		s.categorizer = c
	}
}

func NewArticleStorage(db *sqlx.DB, opts ...Option) *ArticleStorage {
	s := &ArticleStorage{
		db:          db,
		placeholder: placeholderFormat(db),
		now:         time.Now,
		matcher:     dedup.New(),
		categorizer: category.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const articleColumns = `id, source, title, url, content, summary, category, duplicate_of, created_at, summarized_at`

// Время храним в UTC с точностью до микросекунд, чтобы sqlite и postgres сравнивали одинаково
func (s *ArticleStorage) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *ArticleStorage) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, s.db, id)
}

// Save сохраняет статью, если ее еще нет. Дубликат тоже сохраняется,
// но со ссылкой на оригинал, и дальше нигде не показывается.
func (s *ArticleStorage) Save(ctx context.Context, item model.Item) (SaveResult, error) {
	id := model.ArticleID(item.Link)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return SaveResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	found, err := exists(ctx, tx, id)
	if err != nil {
		return SaveResult{}, err
	}
	if found {
		return SaveResult{ID: id, Status: SaveExists}, nil
	}

	now := s.clock()
	result := SaveResult{ID: id, Status: SaveInserted}

	candidates, err := s.recentCanonical(ctx, tx, now.Add(-s.matcher.Window()))
	if err != nil {
		return SaveResult{}, err
	}
	if match, ok := s.matcher.FindSimilar(item.Title, item.Content, candidates); ok {
		result.Status = SaveDuplicate
		result.Match = match
	}

	result.Category = s.categorizer.Categorize(item.Title, item.Content, item.Source)

	if _, err := tx.ExecContext(
		ctx,
		tx.Rebind(`INSERT INTO articles (id, source, title, url, content, category, duplicate_of, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		id,
		item.Source,
		item.Title,
		item.Link,
		item.Content,
		result.Category,
		nullString(result.Match.ID),
		now,
	); err != nil {
		return SaveResult{}, fmt.Errorf("insert article: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return SaveResult{}, fmt.Errorf("commit: %w", err)
	}

	return result, nil
}

func (s *ArticleStorage) UpdateSummary(ctx context.Context, id, summary string) error {
	res, err := s.db.ExecContext(
		ctx,
		s.db.Rebind(`UPDATE articles SET summary = ?, summarized_at = ? WHERE id = ?`),
		summary,
		s.clock(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update summary: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update summary: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Cleanup удаляет статьи старше retentionDays дней и возвращает их количество.
// Дубликаты удаленных оригиналов остаются со ссылкой в никуда.
func (s *ArticleStorage) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := s.clock().AddDate(0, 0, -retentionDays)

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM articles WHERE created_at < ?`), cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup articles: %w", err)
	}

	return res.RowsAffected()
}

// List возвращает статьи без дубликатов, новые сверху
func (s *ArticleStorage) List(ctx context.Context, filter Filter) ([]model.Article, error) {
	q := sq.Select(articleColumns).
		From("articles").
		Where(sq.Eq{"duplicate_of": nil}).
		OrderBy("created_at DESC", "id DESC").
		PlaceholderFormat(s.placeholder)

	if filter.Source != "" {
		q = q.Where(sq.Eq{"source": filter.Source})
	}
	if filter.Category != "" {
		q = q.Where(sq.Eq{"category": filter.Category})
	}
	if filter.Days > 0 {
		q = q.Where(sq.Gt{"created_at": s.clock().AddDate(0, 0, -filter.Days)})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	var articles []dbArticle
	if err := s.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	return toModels(articles), nil
}

// PendingSummaries - статьи без summary, самые старые первыми
func (s *ArticleStorage) PendingSummaries(ctx context.Context, limit int) ([]model.Article, error) {
	var articles []dbArticle
	if err := s.db.SelectContext(
		ctx,
		&articles,
		s.db.Rebind(`SELECT `+articleColumns+` FROM articles
			WHERE summary IS NULL AND duplicate_of IS NULL
			ORDER BY created_at ASC, id ASC
			LIMIT ?`),
		limit,
	); err != nil {
		return nil, fmt.Errorf("select pending summaries: %w", err)
	}

	return toModels(articles), nil
}

// RecentCanonical - кандидаты для поиска дубликатов, созданные позже since
func (s *ArticleStorage) RecentCanonical(ctx context.Context, since time.Time) ([]model.Article, error) {
	return s.recentCanonical(ctx, s.db, since.UTC())
}

func (s *ArticleStorage) recentCanonical(ctx context.Context, q queryer, since time.Time) ([]model.Article, error) {
	var articles []dbArticle
	if err := sqlx.SelectContext(
		ctx,
		q,
		&articles,
		q.Rebind(`SELECT `+articleColumns+` FROM articles
			WHERE created_at > ? AND duplicate_of IS NULL
			ORDER BY created_at ASC, id ASC`),
		since,
	); err != nil {
		return nil, fmt.Errorf("select recent articles: %w", err)
	}

	return toModels(articles), nil
}

func (s *ArticleStorage) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := s.db.GetContext(ctx, &stats.Count, `SELECT COUNT(*) FROM articles WHERE duplicate_of IS NULL`); err != nil {
		return Stats{}, fmt.Errorf("count articles: %w", err)
	}
	if stats.Count == 0 {
		return stats, nil
	}

	// MAX/MIN в sqlite теряют тип колонки, поэтому берем крайние строки
	if err := s.db.GetContext(ctx, &stats.Newest,
		`SELECT created_at FROM articles WHERE duplicate_of IS NULL ORDER BY created_at DESC LIMIT 1`); err != nil {
		return Stats{}, fmt.Errorf("select newest article: %w", err)
	}
	if err := s.db.GetContext(ctx, &stats.Oldest,
		`SELECT created_at FROM articles WHERE duplicate_of IS NULL ORDER BY created_at ASC LIMIT 1`); err != nil {
		return Stats{}, fmt.Errorf("select oldest article: %w", err)
	}

	return stats, nil
}

// Sources - имена источников для фильтра в ленте
func (s *ArticleStorage) Sources(ctx context.Context) ([]string, error) {
	var sources []string
	if err := s.db.SelectContext(ctx, &sources,
		`SELECT DISTINCT source FROM articles WHERE duplicate_of IS NULL ORDER BY source`); err != nil {
		return nil, fmt.Errorf("select sources: %w", err)
	}
	return sources, nil
}

func (s *ArticleStorage) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := s.db.SelectContext(ctx, &categories,
		`SELECT DISTINCT category FROM articles
			WHERE duplicate_of IS NULL AND category IS NOT NULL
			ORDER BY category`); err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	return categories, nil
}

// Ping нужен для проверки здоровья
func (s *ArticleStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func exists(ctx context.Context, q queryer, id string) (bool, error) {
	var found int
	err := sqlx.GetContext(ctx, q, &found, q.Rebind(`SELECT 1 FROM articles WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check article %s: %w", id, err)
	}
	return true, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Внутренняя модель для работы с БД, чтобы правильно мапить его на колонки в таблице
type dbArticle struct {
	ID           string         `db:"id"`
	Source       string         `db:"source"`
	Title        string         `db:"title"`
	URL          string         `db:"url"`
	Content      sql.NullString `db:"content"`
	Summary      sql.NullString `db:"summary"`
	Category     sql.NullString `db:"category"`
	DuplicateOf  sql.NullString `db:"duplicate_of"`
	CreatedAt    time.Time      `db:"created_at"`
	SummarizedAt sql.NullTime   `db:"summarized_at"`
}

func toModels(articles []dbArticle) []model.Article {
	return lo.Map(articles, func(a dbArticle, _ int) model.Article {
		category := a.Category.String
		if category == "" {
			category = model.Uncategorized
		}

		return model.Article{
			ID:           a.ID,
			Source:       a.Source,
			Title:        a.Title,
			URL:          a.URL,
			Content:      a.Content.String,
			Category:     category,
			Summary:      a.Summary.String,
			DuplicateOf:  a.DuplicateOf.String,
			CreatedAt:    a.CreatedAt,
			SummarizedAt: a.SummarizedAt.Time,
		}
	})
}
