package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/news-digest/internal/botkit"
	"github.com/kovalyov-valentin/news-digest/internal/botkit/markup"
	"github.com/kovalyov-valentin/news-digest/internal/scraper"
	"github.com/kovalyov-valentin/news-digest/internal/storage"
)

type StatsProvider interface {
	Stats(ctx context.Context) (storage.Stats, error)
}

// CycleReporter - воркер, у которого можно спросить итоги последнего цикла
type CycleReporter interface {
	State() scraper.State
	LastReport() *scraper.Report
}

func ViewCmdStats(provider StatsProvider, cycles CycleReporter) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		stats, err := provider.Stats(ctx)
		if err != nil {
			return err
		}

		return botkit.Reply(bot, update, formatStats(stats, cycles))
	}
}

func formatStats(stats storage.Stats, cycles CycleReporter) string {
	text := fmt.Sprintf("Статей в базе: %d", stats.Count)
	if stats.Count > 0 {
		text += fmt.Sprintf(
			"\nСамая новая: %s\nСамая старая: %s",
			stats.Newest.Format(time.DateTime),
			stats.Oldest.Format(time.DateTime),
		)
	}

	if cycles != nil {
		text += "\nСостояние сборщика: " + cycles.State().String()

		if report := cycles.LastReport(); report != nil {
			text += fmt.Sprintf(
				"\nПоследний цикл: новых %d, дубликатов %d, summary %d, за %s",
				report.New,
				report.Duplicates,
				report.Summarized+report.Retried,
				report.Duration.Round(time.Second),
			)
		}
	}

	return markup.EscapeForMarkdown(text)
}
