package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kovalyov-valentin/news-digest/internal/logging"
	"github.com/kovalyov-valentin/news-digest/internal/model"
)

const (
	ollamaGenerateTimeout = 120 * time.Second
	ollamaTagsTimeout     = 5 * time.Second
	ollamaTemperature     = 0.2
	ollamaNumPredict      = 400
)

type OllamaSummarizer struct {
	baseURL string
	model   string
	style   string
	client  *http.Client
	logger  *slog.Logger
}

func NewOllamaSummarizer(baseURL, modelName, style string, logger *slog.Logger) *OllamaSummarizer {
	if logger == nil {
		logger = logging.Discard()
	}

	return &OllamaSummarizer{
		baseURL: baseURL,
		model:   modelName,
		style:   NormalizeStyle(style),
		client:  &http.Client{},
		logger:  logger,
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (s *OllamaSummarizer) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, ollamaTagsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("ollama is not reachable", "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

func (s *OllamaSummarizer) Summarize(ctx context.Context, article model.Article) (string, bool) {
	text, err := s.generate(ctx, promptFor(s.style, article))
	return finish(s.logger, article, text, err)
}

func (s *OllamaSummarizer) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ollamaGenerateTimeout)
	defer cancel()

	payload, err := json.Marshal(generateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: ollamaTemperature,
			NumPredict:  ollamaNumPredict,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}

	return out.Response, nil
}
