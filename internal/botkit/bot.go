// Package botkit маршрутизирует команды телеграм бота по view.
package botkit

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/news-digest/internal/logging"
)

const updateTimeout = 5 * time.Second

// API - часть клиента botAPI, которой пользуются view. *tgbotapi.BotAPI ему соответствует
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetChatAdministrators(config tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error)
}

// Updater отдает канал с апдейтами от телеграма
type Updater interface {
	API
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

// Update здесь это любой эвент, который приходит от телеграма при взаимодействии пользователя с ботом.
// Это функция которая будет реагировать на определенную команду
type ViewFunc func(ctx context.Context, bot API, update tgbotapi.Update) error

type Bot struct {
	// Инстанс апи телеграма
	api Updater
	// Мапа в которой будем хранить view
	cmdViews map[string]ViewFunc
	logger   *slog.Logger
}

func New(api Updater, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = logging.Discard()
	}

	return &Bot{
		api:      api,
		cmdViews: make(map[string]ViewFunc),
		logger:   logger,
	}
}

// Метод для регистрации View для команды
func (b *Bot) RegisterCmdView(cmd string, view ViewFunc) {
	b.cmdViews[cmd] = view
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			updateCtx, updateCancel := context.WithTimeout(ctx, updateTimeout)
			b.handleUpdate(updateCtx, update)
			updateCancel()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Метод, который обрабатывает update и роутит команды на соответствующие view
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	// В процессе работы бота в каких то view может произойти паника, поэтому мы ее должны перехватить
	defer func() {
		if p := recover(); p != nil {
			b.logger.Error("panic recovered", "panic", p, "stack", string(debug.Stack()))
		}
	}()

	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	cmd := update.Message.Command()

	view, ok := b.cmdViews[cmd]
	if !ok {
		return
	}

	if err := view(ctx, b.api, update); err != nil {
		b.logger.Error("failed to handle update", "command", cmd, "error", err)

		if _, err := b.api.Send(
			tgbotapi.NewMessage(update.Message.Chat.ID, "internal error"),
		); err != nil {
			b.logger.Error("failed to send message", "error", err)
		}
	}
}

// ParseArgs делит аргументы команды по пробелам
func ParseArgs(update tgbotapi.Update) []string {
	if update.Message == nil {
		return nil
	}
	return strings.Fields(update.Message.CommandArguments())
}

// Reply отправляет ответ в MarkdownV2 в тот же чат, откуда пришла команда
func Reply(bot API, update tgbotapi.Update, text string) error {
	reply := tgbotapi.NewMessage(update.Message.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeMarkdownV2

	_, err := bot.Send(reply)
	return err
}
