package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/kovalyov-valentin/news-digest/internal/bot"
	"github.com/kovalyov-valentin/news-digest/internal/bot/middleware"
	"github.com/kovalyov-valentin/news-digest/internal/botkit"
	"github.com/kovalyov-valentin/news-digest/internal/config"
	"github.com/kovalyov-valentin/news-digest/internal/content"
	"github.com/kovalyov-valentin/news-digest/internal/fetcher"
	"github.com/kovalyov-valentin/news-digest/internal/logging"
	"github.com/kovalyov-valentin/news-digest/internal/notifier"
	"github.com/kovalyov-valentin/news-digest/internal/scraper"
	"github.com/kovalyov-valentin/news-digest/internal/source"
	"github.com/kovalyov-valentin/news-digest/internal/storage"
	"github.com/kovalyov-valentin/news-digest/internal/summary"
	"github.com/kovalyov-valentin/news-digest/internal/web"
)

const (
	// Сколько запросов к источникам может идти одновременно
	sourceConcurrency = 5
	shutdownTimeout   = 10 * time.Second
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(env)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	//Graceful Shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("news digest stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("news digest stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	// Инициализируем подключение к БД
	db, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	articleStorage := storage.NewArticleStorage(db)
	if err := articleStorage.Migrate(ctx); err != nil {
		return err
	}

	// Инициализируем наши зависимости
	var (
		client   = &http.Client{}
		acquirer = content.NewAcquirer(
			logger.With("component", "acquirer"),
			content.DefaultStrategies(client, content.DefaultMirrors())...,
		)
		newsFetcher = fetcher.FromConfig(cfg, source.Deps{
			Client:   client,
			Limit:    semaphore.NewWeighted(sourceConcurrency),
			Acquirer: acquirer,
		}, logger.With("component", "fetcher"))
		summarizer = summary.New(cfg.LLM, logger.With("component", "summarizer"))
		worker     = scraper.New(
			newsFetcher,
			acquirer,
			articleStorage,
			summarizer,
			scraper.Options{
				Interval:      cfg.ScrapeInterval(),
				RetentionDays: cfg.RetentionDays,
				RetryLimit:    cfg.RetryLimit,
				SummaryDelay:  cfg.SummaryDelay(),
			},
			logger.With("component", "scraper"),
		)
		server = web.New(articleStorage, logger.With("component", "web"))
	)

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Telegram.BotToken != "" {
		// Создаем бота, используя токен из конфига
		botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			return err
		}

		if cfg.Telegram.ChannelID != 0 {
			worker.WithNotifier(notifier.New(botAPI, cfg.Telegram.ChannelID, logger.With("component", "notifier")))
		}

		newsBot := botkit.New(botAPI, logger.With("component", "bot"))
		newsBot.RegisterCmdView("start", bot.ViewCmdStart())
		newsBot.RegisterCmdView("latest", bot.ViewCmdLatest(articleStorage))
		newsBot.RegisterCmdView("stats", bot.ViewCmdStats(articleStorage, worker))
		newsBot.RegisterCmdView(
			"cleanup",
			middleware.AdminOnly(
				cfg.Telegram.ChannelID,
				bot.ViewCmdCleanup(articleStorage, cfg.RetentionDays),
			),
		)

		// Запуск бота
		g.Go(func() error {
			return ignoreCanceled(newsBot.Run(gCtx))
		})
	} else {
		logger.Info("telegram bot token is not set, bot and channel posting are disabled")
	}

	logger.Info("starting news digest",
		"sources", len(newsFetcher.Sources()),
		"interval", cfg.ScrapeInterval(),
		"database", cfg.Database.Driver,
	)

	// Воркер сбора статей
	g.Go(func() error {
		return ignoreCanceled(worker.Start(gCtx))
	})

	g.Go(func() error {
		return server.Start(cfg.Web.Listen)
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down web server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
