// Package web отдает ленту статей в html и json, health и метрики.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kovalyov-valentin/news-digest/internal/logging"
	"github.com/kovalyov-valentin/news-digest/internal/model"
	"github.com/kovalyov-valentin/news-digest/internal/storage"
)

//go:embed templates/index.html
var templates embed.FS

var indexTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

type ArticleStore interface {
	List(ctx context.Context, filter storage.Filter) ([]model.Article, error)
	Sources(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (storage.Stats, error)
}

type Server struct {
	store  ArticleStore
	echo   *echo.Echo
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Server)

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

func New(store ArticleStore, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Server{
		store:  store,
		echo:   echo.New(),
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health" || c.Request().URL.Path == "/metrics"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				s.logger.Debug("request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				s.logger.Error("request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	s.echo.Use(middleware.Recover())

	s.echo.GET("/", s.handleIndex)
	s.echo.GET("/api/articles", s.handleArticles)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// Handler нужен тестам и для встраивания в другой http сервер
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start блокируется, пока сервер не остановят через Shutdown
func (s *Server) Start(addr string) error {
	s.logger.Info("starting web server", "address", addr)

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func filterFrom(c echo.Context) storage.Filter {
	return storage.Filter{
		Source:   c.QueryParam("source"),
		Category: c.QueryParam("category"),
		Days:     parseDays(c.QueryParam("days")),
	}
}

func (s *Server) handleIndex(c echo.Context) error {
	ctx := c.Request().Context()
	filter := filterFrom(c)
	now := s.now()

	page := indexPage{
		DayOptions: dayOptions,
		Source:     filter.Source,
		Category:   filter.Category,
		Days:       filter.Days,
		Now:        now.Format("2006-01-02 15:04"),
	}

	status := http.StatusOK
	if err := s.fillIndex(ctx, filter, now, &page); err != nil {
		s.logger.Error("failed to load articles for index", "error", err)
		status = http.StatusInternalServerError
		page.Error = "database error"
	}

	return render(c, status, page)
}

func (s *Server) fillIndex(ctx context.Context, filter storage.Filter, now time.Time, page *indexPage) error {
	articles, err := s.store.List(ctx, filter)
	if err != nil {
		return err
	}
	sources, err := s.store.Sources(ctx)
	if err != nil {
		return err
	}
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return err
	}

	page.Articles = toViews(articles, now)
	page.Sources = sources
	page.Categories = categories
	return nil
}

func render(c echo.Context, status int, page indexPage) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return indexTemplate.Execute(c.Response(), page)
}

type articlesResponse struct {
	Count    int           `json:"count"`
	Days     int           `json:"days"`
	Articles []articleView `json:"articles"`
}

func (s *Server) handleArticles(c echo.Context) error {
	filter := filterFrom(c)

	articles, err := s.store.List(c.Request().Context(), filter)
	if err != nil {
		s.logger.Error("failed to list articles", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	views := toViews(articles, s.now())
	if views == nil {
		views = []articleView{}
	}

	return c.JSON(http.StatusOK, articlesResponse{
		Count:    len(views),
		Days:     filter.Days,
		Articles: views,
	})
}

type healthResponse struct {
	Status        string     `json:"status"`
	Database      string     `json:"database"`
	ArticleCount  int64      `json:"article_count"`
	LatestArticle *time.Time `json:"latest_article"`
	OldestArticle *time.Time `json:"oldest_article"`
	Error         string     `json:"error,omitempty"`
}

func (s *Server) handleHealth(c echo.Context) error {
	stats, err := s.store.Stats(c.Request().Context())
	if err != nil {
		s.logger.Warn("health check failed", "error", err)
		return c.JSON(http.StatusInternalServerError, healthResponse{
			Status:   "unhealthy",
			Database: "error",
			Error:    err.Error(),
		})
	}

	resp := healthResponse{
		Status:       "healthy",
		Database:     "connected",
		ArticleCount: stats.Count,
	}
	if stats.Count > 0 {
		resp.LatestArticle = &stats.Newest
		resp.OldestArticle = &stats.Oldest
	}

	return c.JSON(http.StatusOK, resp)
}
