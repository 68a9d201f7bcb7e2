// Package scraper запускает цикл сбора: источники, полный текст, дедупликация,
// summary, повтор неудачных summary и чистка старых статей.
package scraper

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/kovalyov-valentin/news-digest/internal/content"
	"github.com/kovalyov-valentin/news-digest/internal/logging"
	"github.com/kovalyov-valentin/news-digest/internal/metrics"
	"github.com/kovalyov-valentin/news-digest/internal/model"
	"github.com/kovalyov-valentin/news-digest/internal/storage"
)

// Описание короче этого пробуем заменить полным текстом
const shortContentLength = 500

type Fetcher interface {
	FetchAll(ctx context.Context) []model.Item
}

type Acquirer interface {
	Acquire(ctx context.Context, articleURL string) content.Result
}

type ArticleStorage interface {
	Save(ctx context.Context, item model.Item) (storage.SaveResult, error)
	UpdateSummary(ctx context.Context, id, summary string) error
	PendingSummaries(ctx context.Context, limit int) ([]model.Article, error)
	Cleanup(ctx context.Context, retentionDays int) (int64, error)
}

type Summarizer interface {
	Available(ctx context.Context) bool
	Summarize(ctx context.Context, article model.Article) (string, bool)
}

// Notifier публикует статью после того, как у нее появилось summary
type Notifier interface {
	Notify(ctx context.Context, article model.Article) error
}

type Options struct {
	Interval      time.Duration
	RetentionDays int
	RetryLimit    int
	// Пауза после каждого обращения к модели
	SummaryDelay time.Duration
}

type Scraper struct {
	fetcher    Fetcher
	acquirer   Acquirer
	articles   ArticleStorage
	summarizer Summarizer
	notifier   Notifier
	opts       Options
	logger     *slog.Logger

	state atomic.Int32
	// Отчет последнего завершенного цикла
	last atomic.Pointer[Report]
}

func New(
	fetcher Fetcher,
	acquirer Acquirer,
	articles ArticleStorage,
	summarizer Summarizer,
	opts Options,
	logger *slog.Logger,
) *Scraper {
	if logger == nil {
		logger = logging.Discard()
	}

	return &Scraper{
		fetcher:    fetcher,
		acquirer:   acquirer,
		articles:   articles,
		summarizer: summarizer,
		opts:       opts,
		logger:     logger,
	}
}

// WithNotifier подключает публикацию в канал. nil выключает ее
func (s *Scraper) WithNotifier(n Notifier) *Scraper {
	s.notifier = n
	return s
}

func (s *Scraper) State() State {
	return State(s.state.Load())
}

// LastReport возвращает отчет последнего цикла или nil, если циклов еще не было
func (s *Scraper) LastReport() *Report {
	return s.last.Load()
}

// Start запускает цикл сразу и дальше по интервалу.
// Следующий цикл не начнется, пока не закончился предыдущий.
func (s *Scraper) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	s.logger.Info("scraper started", "interval", s.opts.Interval)
	s.safeRun(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.safeRun(ctx)
		}
	}
}

// Паника внутри цикла не должна убивать воркер
func (s *Scraper) safeRun(ctx context.Context) {
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			s.setState(StateIdle)
			metrics.RecordCycle(false, time.Since(start).Seconds())
			s.logger.Error("scrape cycle panicked", "panic", p, "stack", string(debug.Stack()))
		}
	}()

	s.RunCycle(ctx)
}

// RunCycle выполняет один полный проход и возвращает отчет
func (s *Scraper) RunCycle(ctx context.Context) Report {
	start := time.Now()
	var report Report

	s.logger.Info("starting scrape cycle")

	s.setState(StateFetch)
	items := s.fetcher.FetchAll(ctx)
	report.Fetched = len(items)
	s.logger.Info("sources fetched", "items", len(items), "elapsed", time.Since(start).Round(time.Millisecond))

	s.setState(StateAcquire)
	for i := range items {
		if ctx.Err() != nil {
			break
		}
		if s.acquire(ctx, &items[i]) {
			report.Acquired++
		}
	}

	available := s.summarizer.Available(ctx)
	if !available {
		s.logger.Warn("summarizer is not available, saving articles without summaries")
	}

	s.setState(StateDedupAndSave)
	fresh := s.save(ctx, items, &report)

	s.setState(StateSummarizeNew)
	if available {
		report.Summarized = s.summarizeAll(ctx, fresh)
	}

	s.setState(StateRetryPending)
	report.Retried = s.retryPending(ctx)

	s.setState(StateCleanup)
	deleted, err := s.articles.Cleanup(ctx, s.opts.RetentionDays)
	if err != nil {
		s.logger.Error("failed to clean up old articles", "error", err)
	} else {
		report.Cleaned = deleted
		if deleted > 0 {
			s.logger.Info("cleaned up old articles", "deleted", deleted)
		}
	}

	s.setState(StateIdle)

	report.Duration = time.Since(start)
	metrics.RecordCycle(true, report.Duration.Seconds())
	s.last.Store(&report)

	s.logger.Info("cycle complete",
		"new", report.New,
		"duplicates", report.Duplicates,
		"existing", report.Existing,
		"summarized", report.Summarized,
		"retried", report.Retried,
		"duration", report.Duration.Round(time.Millisecond),
	)

	return report
}

// Короткое описание со ссылкой пробуем заменить полным текстом статьи
func (s *Scraper) acquire(ctx context.Context, item *model.Item) bool {
	if s.acquirer == nil || item.Acquired || item.Link == "" {
		return false
	}
	contentLen := utf8.RuneCountInString(item.Content)
	if contentLen == 0 || contentLen >= shortContentLength {
		return false
	}

	item.Acquired = true

	res := s.acquirer.Acquire(ctx, item.Link)
	if !res.Found || utf8.RuneCountInString(res.Text) <= contentLen {
		return false
	}

	item.Content = res.Text
	return true
}

func (s *Scraper) save(ctx context.Context, items []model.Item, report *Report) []model.Article {
	var fresh []model.Article

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}

		res, err := s.articles.Save(ctx, item)
		if err != nil {
			metrics.RecordSave("error")
			s.logger.Error("failed to save article", "title", item.Title, "url", item.Link, "error", err)
			continue
		}
		metrics.RecordSave(res.Status.String())

		switch res.Status {
		case storage.SaveInserted:
			report.New++
			s.logger.Info("saved new article", "category", res.Category, "title", item.Title)
			fresh = append(fresh, model.Article{
				ID:       res.ID,
				Source:   item.Source,
				Title:    item.Title,
				URL:      item.Link,
				Content:  item.Content,
				Category: res.Category,
			})
		case storage.SaveDuplicate:
			report.Duplicates++
			s.logger.Info("duplicate detected",
				"title", item.Title,
				"duplicate_of", res.Match.ID,
				"similarity", res.Match.Score,
				"by_content", res.Match.ByContent,
			)
		case storage.SaveExists:
			report.Existing++
			s.logger.Debug("article already exists", "title", item.Title)
		}
	}

	return fresh
}

func (s *Scraper) retryPending(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	if !s.summarizer.Available(ctx) {
		s.logger.Info("summarizer is not available, skipping retry of failed summaries")
		return 0
	}

	pending, err := s.articles.PendingSummaries(ctx, s.opts.RetryLimit)
	if err != nil {
		s.logger.Error("failed to load articles without summaries", "error", err)
		return 0
	}
	if len(pending) == 0 {
		return 0
	}

	s.logger.Info("retrying articles without summaries", "count", len(pending))
	return s.summarizeAll(ctx, pending)
}

// Модель вызываем по одной статье с паузой после каждого вызова
func (s *Scraper) summarizeAll(ctx context.Context, articles []model.Article) int {
	done := 0

	for _, article := range articles {
		if ctx.Err() != nil {
			break
		}

		if s.summarize(ctx, article) {
			done++
		}

		if !sleep(ctx, s.opts.SummaryDelay) {
			break
		}
	}

	return done
}

func (s *Scraper) summarize(ctx context.Context, article model.Article) bool {
	s.logger.Info("summarizing", "title", article.Title)

	text, ok := s.summarizer.Summarize(ctx, article)
	if !ok {
		return false
	}

	if err := s.articles.UpdateSummary(ctx, article.ID, text); err != nil {
		s.logger.Error("failed to store summary", "id", article.ID, "error", err)
		return false
	}

	if s.notifier != nil {
		article.Summary = text
		if err := s.notifier.Notify(ctx, article); err != nil {
			s.logger.Error("failed to publish article", "id", article.ID, "error", err)
		}
	}

	return true
}

func (s *Scraper) setState(state State) {
	s.state.Store(int32(state))
	s.logger.Debug("cycle state", "state", state.String())
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
