package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kovalyov-valentin/news-digest/internal/config"
	"github.com/kovalyov-valentin/news-digest/internal/model"
)

const (
	DefaultHackerNewsAPI = "https://hacker-news.firebaseio.com/v0"
	hackerNewsItemURL    = "https://news.ycombinator.com/item?id=%d"

	topStoriesTimeout = 10 * time.Second
	storyTimeout      = 15 * time.Second
	maxStories        = 15
)

type HackerNewsSource struct {
	API        string
	SourceName string

	deps Deps
}

func NewHackerNewsSourceFromConfig(cfg config.SourceConfig, deps Deps) *HackerNewsSource {
	if !cfg.FullContent {
		deps.Acquirer = nil
	}

	api := cfg.URL
	if api == "" {
		api = DefaultHackerNewsAPI
	}

	return &HackerNewsSource{
		API:        strings.TrimRight(api, "/"),
		SourceName: cfg.Name,
		deps:       deps,
	}
}

func (s *HackerNewsSource) Name() string {
	return s.SourceName
}

type hnStory struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
}

// Fetch забирает 15 топовых историй. Истории, которые не загрузились, пропускаются
func (s *HackerNewsSource) Fetch(ctx context.Context) ([]model.Item, error) {
	ids, err := s.topStories(ctx)
	if err != nil {
		return nil, fmt.Errorf("hackernews %s: %w", s.SourceName, err)
	}

	if len(ids) > maxStories {
		ids = ids[:maxStories]
	}

	// Каждая горутина пишет только в свою ячейку, так порядок совпадает с топом
	stories := make([]*hnStory, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			story, err := s.story(gctx, id)
			if err != nil {
				return nil
			}
			stories[i] = story
			return nil
		})
	}
	_ = g.Wait()

	items := make([]model.Item, 0, len(stories))
	for _, story := range stories {
		if story == nil || story.Type != "story" {
			continue
		}

		item := s.toItem(story)
		if s.deps.Acquirer != nil {
			item.Content, item.Acquired = fullText(ctx, s.deps, item.Link, item.Content)
		}

		items = append(items, item)
	}

	return items, nil
}

func (s *HackerNewsSource) toItem(story *hnStory) model.Item {
	title := story.Title
	if title == "" {
		title = noTitle
	}

	link := story.URL
	if link == "" {
		link = fmt.Sprintf(hackerNewsItemURL, story.ID)
	}

	text := fmt.Sprintf("Title: %s. Points: %d. Comments: %d.", title, story.Score, story.Descendants)

	return model.Item{
		Source:  s.SourceName,
		Title:   title,
		Link:    link,
		Content: truncate(text, maxContentLength),
	}
}

func (s *HackerNewsSource) topStories(ctx context.Context) ([]int64, error) {
	body, err := get(ctx, s.deps, s.API+"/topstories.json", topStoriesTimeout)
	if err != nil {
		return nil, err
	}

	var ids []int64
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, fmt.Errorf("decode top stories: %w", err)
	}

	return ids, nil
}

func (s *HackerNewsSource) story(ctx context.Context, id int64) (*hnStory, error) {
	body, err := get(ctx, s.deps, fmt.Sprintf("%s/item/%d.json", s.API, id), storyTimeout)
	if err != nil {
		return nil, err
	}

	var story hnStory
	if err := json.Unmarshal(body, &story); err != nil {
		return nil, err
	}

	return &story, nil
}
