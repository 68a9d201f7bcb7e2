package fetcher

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/tomakado/containers/set"

	"github.com/kovalyov-valentin/news-digest/internal/config"
	"github.com/kovalyov-valentin/news-digest/internal/logging"
	"github.com/kovalyov-valentin/news-digest/internal/metrics"
	"github.com/kovalyov-valentin/news-digest/internal/model"
	"github.com/kovalyov-valentin/news-digest/internal/source"
)

// Интерфейс источника. Например RSS клиент
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Item, error)
}

// Структура сборщика
type Fetcher struct {
	sources []Source
	// Фильтрация статей по ключевым словам
	filterKeywords []string
	logger         *slog.Logger
}

func New(sources []Source, filterKeywords []string, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = logging.Discard()
	}

	return &Fetcher{
		sources:        sources,
		filterKeywords: lowerAll(filterKeywords),
		logger:         logger,
	}
}

// FromConfig собирает источники из конфига. Выключенные и неизвестные типы пропускаются
func FromConfig(cfg config.Config, deps source.Deps, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = logging.Discard()
	}

	var sources []Source
	for _, src := range cfg.EnabledSources() {
		switch src.Type {
		case config.SourceRSS:
			sources = append(sources, source.NewRSSSourceFromConfig(src, deps))
		case config.SourceHackerNews:
			sources = append(sources, source.NewHackerNewsSourceFromConfig(src, deps))
		default:
			logger.Warn("unknown source type, skipping", "source", src.Name, "type", src.Type)
		}
	}

	return New(sources, cfg.FilterKeywords, logger)
}

func (f *Fetcher) Sources() []Source {
	return f.sources
}

// FetchAll опрашивает все источники параллельно.
// Ошибка одного источника не влияет на остальных, его записи просто пропадают из цикла.
// Результат склеивается в порядке источников из конфига.
func (f *Fetcher) FetchAll(ctx context.Context) []model.Item {
	results := make([][]model.Item, len(f.sources))

	var wg sync.WaitGroup
	for i, src := range f.sources {
		wg.Add(1)

		go func(i int, src Source) {
			defer wg.Done()

			f.logger.Info("fetching source", "source", src.Name())

			items, err := src.Fetch(ctx)
			metrics.RecordSourceFetch(src.Name(), err == nil)
			if err != nil {
				f.logger.Error("failed to fetch source", "source", src.Name(), "error", err)
				return
			}

			results[i] = f.filter(items)
		}(i, src)
	}

	wg.Wait()

	var all []model.Item
	for _, items := range results {
		all = append(all, items...)
	}

	return all
}

func (f *Fetcher) filter(items []model.Item) []model.Item {
	if len(f.filterKeywords) == 0 {
		return items
	}

	kept := items[:0]
	for _, item := range items {
		if f.itemShouldBeSkipped(item) {
			f.logger.Debug("item skipped by keyword filter", "source", item.Source, "title", item.Title)
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// Пропускаем запись, если ключевое слово есть в ее категориях или заголовке
func (f *Fetcher) itemShouldBeSkipped(item model.Item) bool {
	categories := set.New(lowerAll(item.Categories)...)
	title := strings.ToLower(item.Title)

	for _, keyword := range f.filterKeywords {
		if categories.Contains(keyword) || strings.Contains(title, keyword) {
			return true
		}
	}

	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
