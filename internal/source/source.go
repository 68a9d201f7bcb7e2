// Package source забирает записи из RSS лент и API Hacker News.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/semaphore"

	"github.com/kovalyov-valentin/news-digest/internal/content"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	maxContentLength = 5000
	maxBodySize      = 10 << 20
	// Описание короче этого считаем обрезанным и пробуем достать полный текст
	shortContentLength = 500
	noTitle            = "No title"
)

// Acquirer достает полный текст статьи по ссылке
type Acquirer interface {
	Acquire(ctx context.Context, articleURL string) content.Result
}

// Общие для всех источников зависимости
type Deps struct {
	Client *http.Client
	// Общий лимит одновременных запросов ко всем источникам
	Limit *semaphore.Weighted
	// nil, если полный текст для источника не нужен
	Acquirer Acquirer
}

func (d Deps) client() *http.Client {
	if d.Client == nil {
		return http.DefaultClient
	}
	return d.Client
}

// get делает GET под семафором и возвращает тело ответа
func get(ctx context.Context, deps Deps, url string, timeout time.Duration) ([]byte, error) {
	if deps.Limit != nil {
		if err := deps.Limit.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer deps.Limit.Release(1)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := deps.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

// fullText пробует заменить короткое описание полным текстом статьи.
// Запросы за полным текстом идут под тем же семафором, что и ленты.
func fullText(ctx context.Context, deps Deps, link, current string) (string, bool) {
	currentLen := utf8.RuneCountInString(current)
	if deps.Acquirer == nil || link == "" || currentLen >= shortContentLength {
		return current, false
	}

	if deps.Limit != nil {
		if err := deps.Limit.Acquire(ctx, 1); err != nil {
			return current, false
		}
		defer deps.Limit.Release(1)
	}

	res := deps.Acquirer.Acquire(ctx, link)
	if res.Found && utf8.RuneCountInString(res.Text) > currentLen {
		return res.Text, true
	}
	return current, true
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
