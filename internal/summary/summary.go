// Package summary генерирует краткое содержание статей через языковую модель.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/kovalyov-valentin/news-digest/internal/config"
	"github.com/kovalyov-valentin/news-digest/internal/logging"
	"github.com/kovalyov-valentin/news-digest/internal/metrics"
	"github.com/kovalyov-valentin/news-digest/internal/model"
)

type Summarizer interface {
	// Available быстро проверяет, отвечает ли модель
	Available(ctx context.Context) bool
	// Summarize никогда не возвращает ошибку: неудача это просто false
	Summarize(ctx context.Context, article model.Article) (string, bool)
}

// New выбирает реализацию по конфигу. Без блока llm суммаризация выключена
func New(cfg *config.LLMConfig, logger *slog.Logger) Summarizer {
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg == nil {
		logger.Info("llm is not configured, summaries are disabled")
		return Disabled{}
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAISummarizer(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.SummaryStyle, logger)
	default:
		return NewOllamaSummarizer(ollamaURL(cfg), cfg.Model, cfg.SummaryStyle, logger)
	}
}

func ollamaURL(cfg *config.LLMConfig) string {
	if cfg.BaseURL != "" {
		return strings.TrimRight(cfg.BaseURL, "/")
	}
	return fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
}

// Disabled используется, когда модели нет
type Disabled struct{}

func (Disabled) Available(context.Context) bool { return false }

func (Disabled) Summarize(context.Context, model.Article) (string, bool) { return "", false }

// В описаниях из лент часто лежит html, модели отдаем только текст
func plainText(content, link string) string {
	if !strings.Contains(content, "<") {
		return content
	}

	pageURL, err := url.Parse(link)
	if err != nil || link == "" {
		pageURL = &url.URL{Scheme: "https", Host: "localhost"}
	}

	if article, err := readability.FromReader(strings.NewReader(content), pageURL); err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return text
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func promptFor(style string, article model.Article) string {
	return Prompt(style, article.Title, plainText(article.Content, article.URL))
}

func finish(logger *slog.Logger, article model.Article, text string, err error) (string, bool) {
	text = strings.TrimSpace(text)
	ok := err == nil && text != ""
	metrics.RecordSummary(ok)

	if err != nil {
		logger.Error("failed to summarize article", "id", article.ID, "error", err)
		return "", false
	}
	if text == "" {
		logger.Warn("model returned an empty summary", "id", article.ID)
		return "", false
	}

	return text, true
}
