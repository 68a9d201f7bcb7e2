package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovalyov-valentin/news-digest/internal/config"
	"github.com/kovalyov-valentin/news-digest/internal/model"
	"github.com/kovalyov-valentin/news-digest/internal/source"
)

type stubSource struct {
	name  string
	delay time.Duration
	items []model.Item
	err   error
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Fetch(ctx context.Context) ([]model.Item, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.items, s.err
}

func items(source string, titles ...string) []model.Item {
	out := make([]model.Item, 0, len(titles))
	for _, title := range titles {
		out = append(out, model.Item{Source: source, Title: title, Link: "https://example.com/" + title})
	}
	return out
}

func titles(items []model.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Title)
	}
	return out
}

func TestFetchAllKeepsSourceOrder(t *testing.T) {
	t.Parallel()

	f := New([]Source{
		stubSource{name: "slow", delay: 30 * time.Millisecond, items: items("slow", "s1", "s2")},
		stubSource{name: "broken", err: errors.New("boom")},
		stubSource{name: "fast", items: items("fast", "f1")},
	}, nil, nil)

	got := f.FetchAll(context.Background())
	assert.Equal(t, []string{"s1", "s2", "f1"}, titles(got))
}

func TestFetchAllFiltersKeywords(t *testing.T) {
	t.Parallel()

	tagged := model.Item{Source: "a", Title: "Weekly deals", Categories: []string{"Sponsored"}}
	f := New([]Source{
		stubSource{name: "a", items: append(items("a", "Crypto pump explained", "Rust 2.0 released"), tagged)},
	}, []string{" CRYPTO ", "sponsored"}, nil)

	got := f.FetchAll(context.Background())
	assert.Equal(t, []string{"Rust 2.0 released"}, titles(got))
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>`+
			`<item><title>From feed</title><link>https://example.com/feed</link><description>d</description></item>`+
			`</channel></rss>`)
	}))
	t.Cleanup(feed.Close)

	cfg := config.Config{Sources: []config.SourceConfig{
		{Name: "Feed", Type: config.SourceRSS, URL: feed.URL, Enabled: true},
		{Name: "Off", Type: config.SourceRSS, URL: feed.URL, Enabled: false},
		{Name: "Mystery", Type: "gopher", Enabled: true},
		{Name: "HN", Type: config.SourceHackerNews, URL: feed.URL, Enabled: true},
	}}

	f := FromConfig(cfg, source.Deps{}, nil)

	names := make([]string, 0, len(f.Sources()))
	for _, src := range f.Sources() {
		names = append(names, src.Name())
	}
	require.Equal(t, []string{"Feed", "HN"}, names)

	// HN отвечает не json, поэтому дает ноль записей и не мешает ленте
	got := f.FetchAll(context.Background())
	assert.Equal(t, []string{"From feed"}, titles(got))
}
