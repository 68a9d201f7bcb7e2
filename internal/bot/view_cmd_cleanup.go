package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/news-digest/internal/botkit"
	"github.com/kovalyov-valentin/news-digest/internal/botkit/markup"
)

type Cleaner interface {
	Cleanup(ctx context.Context, retentionDays int) (int64, error)
}

// ViewCmdCleanup запускает удаление статей старше retentionDays вне расписания
func ViewCmdCleanup(cleaner Cleaner, retentionDays int) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		deleted, err := cleaner.Cleanup(ctx, retentionDays)
		if err != nil {
			return err
		}

		return botkit.Reply(bot, update, markup.EscapeForMarkdown(fmt.Sprintf(
			"Удалено статей старше %d дн.: %d", retentionDays, deleted,
		)))
	}
}
