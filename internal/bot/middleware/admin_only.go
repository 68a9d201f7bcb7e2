// Package middleware содержит обертки над view бота.
package middleware

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-digest/internal/botkit"
)

const forbiddenText = "У вас нет прав для выполнения этой команды"

// AdminOnly пропускает команду дальше, только если ее отправил админ канала
func AdminOnly(channelID int64, next botkit.ViewFunc) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		from := update.Message.From
		if from == nil {
			return nil
		}

		admins, err := bot.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
			ChatConfig: tgbotapi.ChatConfig{ChatID: channelID},
		})
		if err != nil {
			return err
		}

		if isAdmin(admins, from.ID) {
			return next(ctx, bot, update)
		}

		_, err = bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, forbiddenText))
		return err
	}
}

func isAdmin(admins []tgbotapi.ChatMember, userID int64) bool {
	return lo.ContainsBy(admins, func(admin tgbotapi.ChatMember) bool {
		return admin.User != nil && admin.User.ID == userID
	})
}
