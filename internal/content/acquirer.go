package content

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/kovalyov-valentin/news-digest/internal/logging"
	"github.com/kovalyov-valentin/news-digest/internal/metrics"
)

// Результат добычи контента. Found=false значит, что ни одна стратегия не сработала
type Result struct {
	Text     string
	Found    bool
	Strategy string
}

// Acquirer перебирает стратегии по порядку до первого успеха.
// Ошибки стратегий наружу не выходят никогда.
type Acquirer struct {
	strategies []Strategy
	logger     *slog.Logger
}

func NewAcquirer(logger *slog.Logger, strategies ...Strategy) *Acquirer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Acquirer{strategies: strategies, logger: logger}
}

func (a *Acquirer) Acquire(ctx context.Context, articleURL string) Result {
	for _, strategy := range a.strategies {
		if ctx.Err() != nil {
			break
		}

		text, ok := a.try(ctx, strategy, articleURL)
		metrics.RecordAcquisition(strategy.Name(), ok)

		if ok {
			a.logger.Debug("content acquired", "strategy", strategy.Name(), "url", articleURL, "length", len(text))
			return Result{Text: text, Found: true, Strategy: strategy.Name()}
		}

		a.logger.Debug("acquisition step failed", "strategy", strategy.Name(), "url", articleURL)
	}

	a.logger.Warn("all acquisition strategies failed", "url", articleURL)
	return Result{}
}

func (a *Acquirer) try(ctx context.Context, strategy Strategy, articleURL string) (text string, ok bool) {
	// Паника в одной стратегии не должна ронять цикл
	defer func() {
		if p := recover(); p != nil {
			a.logger.Error("acquisition strategy panicked",
				"strategy", strategy.Name(), "panic", p, "stack", string(debug.Stack()))
			text, ok = "", false
		}
	}()

	return strategy.Try(ctx, articleURL)
}
