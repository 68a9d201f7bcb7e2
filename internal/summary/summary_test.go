package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovalyov-valentin/news-digest/internal/config"
	"github.com/kovalyov-valentin/news-digest/internal/model"
)

var article = model.Article{
	ID:      "abc",
	Title:   "Rust 2.0 released",
	URL:     "https://example.com/rust",
	Content: "The Rust team shipped a new major version.",
}

func TestPrompt(t *testing.T) {
	t.Parallel()

	p := Prompt(StyleBrief, "Title here", "Body here")
	assert.True(t, strings.HasPrefix(p, "Summarize this news article in 1-2 sentences."))
	assert.Contains(t, p, "Title: Title here")
	assert.Contains(t, p, "Content: Body here")
	assert.True(t, strings.HasSuffix(p, "One-line summary:"))

	assert.Equal(t, Prompt(StyleStandard, "t", "c"), Prompt("poetic", "t", "c"))
	assert.Contains(t, Prompt(StyleBullets, "t", "c"), `Use "•" as the bullet character.`)
	assert.Contains(t, Prompt(StyleDetailed, "t", "c"), "Detailed summary:")
}

func TestPromptTruncatesContent(t *testing.T) {
	t.Parallel()

	p := Prompt(StyleStandard, "t", strings.Repeat("я", maxPromptContent)+"TAIL")
	assert.Equal(t, maxPromptContent, strings.Count(p, "я"))
	assert.NotContains(t, p, "TAIL")
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "no markup", plainText("no markup", ""))

	text := plainText(`<p>Hello <b>brave</b> new world, this is the article body.</p>`, "https://example.com/a")
	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "brave")
	assert.NotContains(t, text, "<")
}

func TestOllamaSummarize(t *testing.T) {
	t.Parallel()

	requests := make(chan generateRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = fmt.Fprint(w, `{"models":[]}`)
		case "/api/generate":
			assert.Equal(t, http.MethodPost, r.Method)
			var req generateRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			requests <- req
			_, _ = fmt.Fprint(w, `{"response":"  A new Rust version shipped.  ","done":true}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	s := NewOllamaSummarizer(srv.URL, "llama3", StyleBrief, nil)
	require.True(t, s.Available(context.Background()))

	text, ok := s.Summarize(context.Background(), article)
	require.True(t, ok)
	assert.Equal(t, "A new Rust version shipped.", text)

	got := <-requests
	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, 0.2, got.Options.Temperature)
	assert.Equal(t, 400, got.Options.NumPredict)
	assert.Contains(t, got.Prompt, "Title: Rust 2.0 released")
	assert.Contains(t, got.Prompt, "Content: The Rust team shipped a new major version.")
}

func TestOllamaFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/generate" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	s := NewOllamaSummarizer(srv.URL, "llama3", "", nil)
	assert.False(t, s.Available(context.Background()))

	text, ok := s.Summarize(context.Background(), article)
	assert.False(t, ok)
	assert.Empty(t, text)

	unreachable := NewOllamaSummarizer("http://127.0.0.1:1", "llama3", "", nil)
	assert.False(t, unreachable.Available(context.Background()))
	_, ok = unreachable.Summarize(context.Background(), article)
	assert.False(t, ok)
}

func TestOllamaEmptyResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `{"response":"   "}`)
	}))
	t.Cleanup(srv.Close)

	_, ok := NewOllamaSummarizer(srv.URL, "llama3", "", nil).Summarize(context.Background(), article)
	assert.False(t, ok)
}

func TestOpenAISummarize(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/models":
			_, _ = fmt.Fprint(w, `{"object":"list","data":[{"id":"gpt-test","object":"model"}]}`)
		case "/v1/chat/completions":
			var req map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "gpt-test", req["model"])
			_, _ = fmt.Fprint(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"Rust shipped. The release adds"}}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	s := NewOpenAISummarizer("key", srv.URL+"/v1", "gpt-test", StyleStandard, nil)
	require.True(t, s.Available(context.Background()))

	text, ok := s.Summarize(context.Background(), article)
	require.True(t, ok)
	assert.Equal(t, "Rust shipped.", text)
}

func TestOpenAIWithoutKeyIsDisabled(t *testing.T) {
	t.Parallel()

	s := NewOpenAISummarizer("", "", "", "", nil)
	assert.False(t, s.Available(context.Background()))

	_, ok := s.Summarize(context.Background(), article)
	assert.False(t, ok)
}

func TestTrimUnfinished(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "One. Two.", trimUnfinished(" One. Two. "))
	assert.Equal(t, "One.", trimUnfinished("One. Two and"))
	assert.Equal(t, "no period at all", trimUnfinished("no period at all"))
}

func TestNew(t *testing.T) {
	t.Parallel()

	assert.IsType(t, Disabled{}, New(nil, nil))
	assert.False(t, New(nil, nil).Available(context.Background()))

	ollama := New(&config.LLMConfig{Provider: config.ProviderOllama, Host: "localhost", Port: 11434, Model: "m"}, nil)
	require.IsType(t, &OllamaSummarizer{}, ollama)
	assert.Equal(t, "http://localhost:11434", ollama.(*OllamaSummarizer).baseURL)

	assert.IsType(t, &OpenAISummarizer{}, New(&config.LLMConfig{Provider: config.ProviderOpenAI, Model: "m"}, nil))
}
