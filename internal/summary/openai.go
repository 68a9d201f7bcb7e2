package summary

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"

	"github.com/kovalyov-valentin/news-digest/internal/logging"
	"github.com/kovalyov-valentin/news-digest/internal/model"
)

const defaultOpenAIModel = "gpt-3.5-turbo"

// Та же суммаризация, но через OpenAI совместимый API
type OpenAISummarizer struct {
	// sdk для openai
	client *openai.Client
	model  string
	style  string
	// Флаг вкл/выкл summarizer
	enabled bool
	logger  *slog.Logger
	mu      sync.Mutex
}

func NewOpenAISummarizer(apiKey, baseURL, modelName, style string, logger *slog.Logger) *OpenAISummarizer {
	if logger == nil {
		logger = logging.Discard()
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if modelName == "" {
		modelName = defaultOpenAIModel
	}

	s := &OpenAISummarizer{
		client:  openai.NewClientWithConfig(cfg),
		model:   modelName,
		style:   NormalizeStyle(style),
		enabled: apiKey != "",
		logger:  logger,
	}

	logger.Info("openai summarizer configured", "enabled", s.enabled, "model", modelName)

	return s
}

func (s *OpenAISummarizer) Available(ctx context.Context) bool {
	if !s.enabled {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, ollamaTagsTimeout)
	defer cancel()

	if _, err := s.client.ListModels(ctx); err != nil {
		s.logger.Debug("openai is not reachable", "error", err)
		return false
	}
	return true
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, article model.Article) (string, bool) {
	// Обкладываем мьютексом, запросы к модели идут по одному
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, ollamaGenerateTimeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: promptFor(s.style, article),
			},
		},
		MaxTokens:   ollamaNumPredict,
		Temperature: ollamaTemperature,
	})
	if err != nil {
		return finish(s.logger, article, "", err)
	}
	if len(resp.Choices) == 0 {
		return finish(s.logger, article, "", nil)
	}

	text := resp.Choices[0].Message.Content
	if s.style != StyleBullets {
		text = trimUnfinished(text)
	}

	return finish(s.logger, article, text, nil)
}

// Модель может оборваться на полуслове по лимиту токенов, отрезаем недописанное предложение
func trimUnfinished(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, ".") {
		return raw
	}

	last := strings.LastIndex(raw, ".")
	if last < 0 {
		return raw
	}

	return raw[:last+1]
}
