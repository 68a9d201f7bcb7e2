package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	searchReferer = "https://www.google.com/"
	maxPageSize   = 5 << 20
)

// Strategy - один способ добыть текст статьи по ссылке
type Strategy interface {
	Name() string
	Try(ctx context.Context, articleURL string) (string, bool)
}

// Адреса сервисов обхода. Вынесены отдельно, чтобы их можно было подменить в тестах
type Mirrors struct {
	ArchiveToday string
	TwelveFt     string
	Wayback      string
}

func DefaultMirrors() Mirrors {
	return Mirrors{
		ArchiveToday: "https://archive.today",
		TwelveFt:     "https://12ft.io",
		Wayback:      "https://archive.org/wayback/available",
	}
}

// DefaultStrategies собирает цепочку в порядке от быстрых и надежных к медленным
func DefaultStrategies(client *http.Client, mirrors Mirrors) []Strategy {
	if client == nil {
		client = &http.Client{}
	}

	return []Strategy{
		NewDirectStrategy(client, 15*time.Second),
		NewPrefixStrategy(
			"archive-today",
			client,
			strings.TrimRight(mirrors.ArchiveToday, "/")+"/newest/",
			20*time.Second,
			hostOf(mirrors.ArchiveToday),
		),
		NewPrefixStrategy("12ft", client, strings.TrimRight(mirrors.TwelveFt, "/")+"/", 20*time.Second, ""),
		NewWaybackStrategy(client, mirrors.Wayback, 10*time.Second, 15*time.Second),
		NewFallbackStrategy(client, 10*time.Second),
	}
}

// Прямой запрос к сайту, притворяемся браузером, пришедшим из поисковика.
// В режиме fallback возвращаем все, что удалось извлечь, без проверки на пейволл.
type DirectStrategy struct {
	client       *http.Client
	timeout      time.Duration
	checkPaywall bool
	fallback     bool
}

func NewDirectStrategy(client *http.Client, timeout time.Duration) *DirectStrategy {
	return &DirectStrategy{client: client, timeout: timeout, checkPaywall: true}
}

func NewFallbackStrategy(client *http.Client, timeout time.Duration) *DirectStrategy {
	return &DirectStrategy{client: client, timeout: timeout, fallback: true}
}

func (s *DirectStrategy) Name() string {
	if s.fallback {
		return "fallback"
	}
	return "direct"
}

func (s *DirectStrategy) Try(ctx context.Context, articleURL string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	page, err := fetchPage(ctx, s.client, articleURL, true)
	if err != nil {
		return "", false
	}

	if !s.fallback && page.status != http.StatusOK {
		return "", false
	}

	text, ok := Extract(page.body)
	if !ok {
		return "", false
	}

	if s.checkPaywall && IsPaywalled(text) {
		return "", false
	}

	return text, true
}

// Сервисы вида https://mirror/<url>: archive.today и 12ft.io
type PrefixStrategy struct {
	name    string
	client  *http.Client
	prefix  string
	timeout time.Duration
	// Если задан, после редиректов мы должны остаться на домене зеркала
	requireHost string
}

func NewPrefixStrategy(name string, client *http.Client, prefix string, timeout time.Duration, requireHost string) *PrefixStrategy {
	return &PrefixStrategy{name: name, client: client, prefix: prefix, timeout: timeout, requireHost: requireHost}
}

func (s *PrefixStrategy) Name() string {
	return s.name
}

func (s *PrefixStrategy) Try(ctx context.Context, articleURL string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	page, err := fetchPage(ctx, s.client, s.prefix+articleURL, true)
	if err != nil || page.status != http.StatusOK {
		return "", false
	}

	if s.requireHost != "" && !sameSite(page.finalURL, s.requireHost) {
		return "", false
	}

	text, ok := Extract(page.body)
	if !ok || !longEnough(text) {
		return "", false
	}

	return text, true
}

// Ищем ближайший снимок в Wayback Machine и достаем текст из него
type WaybackStrategy struct {
	client        *http.Client
	api           string
	lookupTimeout time.Duration
	fetchTimeout  time.Duration
}

func NewWaybackStrategy(client *http.Client, api string, lookupTimeout, fetchTimeout time.Duration) *WaybackStrategy {
	return &WaybackStrategy{client: client, api: api, lookupTimeout: lookupTimeout, fetchTimeout: fetchTimeout}
}

type waybackResponse struct {
	ArchivedSnapshots struct {
		Closest struct {
			Available bool   `json:"available"`
			URL       string `json:"url"`
		} `json:"closest"`
	} `json:"archived_snapshots"`
}

func (s *WaybackStrategy) Name() string {
	return "wayback"
}

func (s *WaybackStrategy) Try(ctx context.Context, articleURL string) (string, bool) {
	snapshot, err := s.lookup(ctx, articleURL)
	if err != nil || snapshot == "" {
		return "", false
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	page, err := fetchPage(fetchCtx, s.client, snapshot, true)
	if err != nil || page.status != http.StatusOK {
		return "", false
	}

	text, ok := Extract(page.body)
	if !ok || !longEnough(text) {
		return "", false
	}

	return text, true
}

func (s *WaybackStrategy) lookup(ctx context.Context, articleURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	page, err := fetchPage(ctx, s.client, s.api+"?url="+url.QueryEscape(articleURL), false)
	if err != nil {
		return "", err
	}
	if page.status != http.StatusOK {
		return "", fmt.Errorf("wayback returned %d", page.status)
	}

	var resp waybackResponse
	if err := json.Unmarshal([]byte(page.body), &resp); err != nil {
		return "", fmt.Errorf("decode wayback response: %w", err)
	}

	closest := resp.ArchivedSnapshots.Closest
	if !closest.Available {
		return "", nil
	}

	return closest.URL, nil
}

type page struct {
	status   int
	body     string
	finalURL *url.URL
}

func fetchPage(ctx context.Context, client *http.Client, target string, browser bool) (page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return page{}, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", browserUserAgent)
	if browser {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.5")
		req.Header.Set("Referer", searchReferer)
	}

	resp, err := client.Do(req)
	if err != nil {
		return page{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return page{}, fmt.Errorf("read body: %w", err)
	}

	return page{status: resp.StatusCode, body: string(body), finalURL: resp.Request.URL}, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func sameSite(u *url.URL, host string) bool {
	if u == nil {
		return false
	}
	h := u.Hostname()
	return h == host || strings.HasSuffix(h, "."+host)
}
