// Package notifier публикует статьи с готовым summary в телеграм канал.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/news-digest/internal/botkit/markup"
	"github.com/kovalyov-valentin/news-digest/internal/logging"
	"github.com/kovalyov-valentin/news-digest/internal/model"
)

// Sender это часть клиента botAPI, которая нужна для отправки сообщений
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Notifier struct {
	// Инстанс клиента botAPI
	bot Sender
	// id канала куда мы будем постить статьи
	channelID int64
	logger    *slog.Logger
}

func New(bot Sender, channelID int64, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = logging.Discard()
	}

	return &Notifier{
		bot:       bot,
		channelID: channelID,
		logger:    logger,
	}
}

// Notify отправляет статью в канал. Статьи без summary не публикуем
func (n *Notifier) Notify(ctx context.Context, article model.Article) error {
	if !article.Summarized() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.channelID, FormatMessage(article))
	// Даем понять телеграм, чтобы это сообщение парсилось как markdown сообщение
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send article %s: %w", article.ID, err)
	}

	n.logger.Info("article published", "id", article.ID, "channel", n.channelID)

	return nil
}

// FormatMessage собирает текст поста. Сначала идет жирным заголовок, потом summary, потом рубрика и ссылка
func FormatMessage(article model.Article) string {
	const msgFormat = "%s\n\n%s\n\n_%s_ · %s"

	// Т.к. используется markdown верстка, все аргументы надо обернуть в escape
	return fmt.Sprintf(
		msgFormat,
		markup.Bold(article.Title),
		markup.EscapeForMarkdown(cleanText(article.Summary)),
		markup.EscapeForMarkdown(categoryTag(article.Category)),
		markup.EscapeForMarkdown(article.URL),
	)
}

func categoryTag(category string) string {
	if category == "" {
		category = model.Uncategorized
	}
	return "#" + category
}

// Модель любит отвечать с кучей пустых строк, три и больше подряд схлопываем в одну
var redundantNewLines = regexp.MustCompile(`\n{3,}`)

func cleanText(text string) string {
	return redundantNewLines.ReplaceAllString(strings.TrimSpace(text), "\n")
}
