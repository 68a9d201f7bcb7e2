package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"

	"github.com/kovalyov-valentin/news-digest/internal/config"
)

type hnAPI struct {
	mu      sync.Mutex
	fetched map[string]bool
}

func newHNServer(t *testing.T, ids []int64, stories map[int64]any) (*httptest.Server, *hnAPI) {
	t.Helper()

	api := &hnAPI{fetched: map[string]bool{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/topstories.json" {
			_ = json.NewEncoder(w).Encode(ids)
			return
		}

		var id int64
		if _, err := fmt.Sscanf(r.URL.Path, "/item/%d.json", &id); err != nil {
			http.NotFound(w, r)
			return
		}

		api.mu.Lock()
		api.fetched[r.URL.Path] = true
		api.mu.Unlock()

		story, ok := stories[id]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(story)
	}))
	t.Cleanup(srv.Close)

	return srv, api
}

func (a *hnAPI) wasFetched(id int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fetched[fmt.Sprintf("/item/%d.json", id)]
}

func story(id int64, title, url string) map[string]any {
	return map[string]any{"id": id, "type": "story", "title": title, "url": url, "score": 100 + id, "descendants": id}
}

func TestHackerNewsFetch(t *testing.T) {
	t.Parallel()

	var ids []int64
	stories := map[int64]any{}
	for id := int64(1); id <= 20; id++ {
		ids = append(ids, id)
		stories[id] = story(id, fmt.Sprintf("Story %d", id), fmt.Sprintf("https://example.com/%d", id))
	}
	stories[3] = map[string]any{"id": 3, "type": "job", "title": "Hiring"}
	stories[4] = story(4, "Ask HN: anything", "")
	delete(stories, 5)

	srv, api := newHNServer(t, ids, stories)

	src := NewHackerNewsSourceFromConfig(config.SourceConfig{Name: "Hacker News", Type: config.SourceHackerNews, URL: srv.URL + "/"}, Deps{
		Limit: semaphore.NewWeighted(5),
	})
	items, err := src.Fetch(context.Background())
	require.NoError(t, err)

	// 15 из топа минус job и упавшая история
	require.Len(t, items, 13)
	assert.Equal(t, "Story 1", items[0].Title)
	assert.Equal(t, "Story 2", items[1].Title)
	assert.Equal(t, "Ask HN: anything", items[2].Title)
	assert.Equal(t, "https://news.ycombinator.com/item?id=4", items[2].Link)
	assert.Equal(t, "Story 15", items[12].Title)

	assert.Equal(t, "Hacker News", items[0].Source)
	assert.Equal(t, "Title: Story 1. Points: 101. Comments: 1.", items[0].Content)

	assert.True(t, api.wasFetched(15))
	assert.False(t, api.wasFetched(16))
}

func TestHackerNewsFullContent(t *testing.T) {
	t.Parallel()

	srv, _ := newHNServer(t, []int64{1}, map[int64]any{1: story(1, "Story 1", "https://example.com/1")})

	acquirer := &fakeAcquirer{text: strings.Repeat("the article body ", 10)}
	cfg := config.SourceConfig{Name: "HN", URL: srv.URL, FullContent: true}

	items, err := NewHackerNewsSourceFromConfig(cfg, Deps{Acquirer: acquirer}).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.True(t, items[0].Acquired)
	assert.Equal(t, acquirer.text, items[0].Content)
	assert.Equal(t, []string{"https://example.com/1"}, acquirer.calls)
}

func TestHackerNewsTopStoriesFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, "not json")
	}))
	t.Cleanup(srv.Close)

	_, err := NewHackerNewsSourceFromConfig(config.SourceConfig{Name: "HN", URL: srv.URL}, Deps{}).Fetch(context.Background())
	require.Error(t, err)
}

func TestHackerNewsDefaultAPI(t *testing.T) {
	t.Parallel()

	src := NewHackerNewsSourceFromConfig(config.SourceConfig{Name: "HN"}, Deps{})
	assert.Equal(t, DefaultHackerNewsAPI, src.API)
}
