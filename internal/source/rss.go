package source

import (
	"context"
	"fmt"
	"time"

	"github.com/SlyMarbo/rss"

	"github.com/kovalyov-valentin/news-digest/internal/config"
	"github.com/kovalyov-valentin/news-digest/internal/model"
)

const (
	rssTimeout  = 15 * time.Second
	maxRSSItems = 10
)

// RSS клиент
type RSSSource struct {
	// URL откуда мы забираем данные
	URL        string
	SourceName string

	deps Deps
}

// Конструктор, который из конфига источника создает клиент для RSS ленты
func NewRSSSourceFromConfig(cfg config.SourceConfig, deps Deps) *RSSSource {
	if !cfg.FullContent {
		deps.Acquirer = nil
	}

	return &RSSSource{
		URL:        cfg.URL,
		SourceName: cfg.Name,
		deps:       deps,
	}
}

func (s *RSSSource) Name() string {
	return s.SourceName
}

// Fetch загружает ленту и возвращает первые 10 записей
func (s *RSSSource) Fetch(ctx context.Context) ([]model.Item, error) {
	feed, err := s.loadFeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("rss %s: %w", s.SourceName, err)
	}

	entries := feed.Items
	if len(entries) > maxRSSItems {
		entries = entries[:maxRSSItems]
	}

	items := make([]model.Item, 0, len(entries))
	for _, entry := range entries {
		item, ok := s.toItem(entry)
		if !ok {
			continue
		}

		if s.deps.Acquirer != nil {
			item.Content, item.Acquired = fullText(ctx, s.deps, item.Link, item.Content)
		}

		items = append(items, item)
	}

	return items, nil
}

func (s *RSSSource) toItem(entry *rss.Item) (model.Item, bool) {
	title := entry.Title
	if title == "" {
		title = noTitle
	}

	text := entry.Summary
	if text == "" {
		text = entry.Content
	}

	// Без текста и без ссылки запись бесполезна
	if text == "" && entry.Link == "" {
		return model.Item{}, false
	}

	return model.Item{
		Source:     s.SourceName,
		Title:      title,
		Link:       entry.Link,
		Content:    truncate(text, maxContentLength),
		Categories: entry.Categories,
	}, true
}

func (s *RSSSource) loadFeed(ctx context.Context) (*rss.Feed, error) {
	body, err := get(ctx, s.deps, s.URL, rssTimeout)
	if err != nil {
		return nil, err
	}

	feed, err := rss.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	return feed, nil
}
