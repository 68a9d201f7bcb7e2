package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/news-digest/internal/botkit"
)

const startText = "Привет\\! Я собираю новости, убираю дубликаты и пишу краткое содержание\\.\n\n" +
	"/latest \\[рубрика\\] \\- последние статьи\n" +
	"/stats \\- что сейчас в базе\n" +
	"/cleanup \\- удалить старые статьи \\(только для админов канала\\)"

func ViewCmdStart() botkit.ViewFunc {
	return func(_ context.Context, bot botkit.API, update tgbotapi.Update) error {
		return botkit.Reply(bot, update, startText)
	}
}
