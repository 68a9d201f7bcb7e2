package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-digest/internal/botkit"
	"github.com/kovalyov-valentin/news-digest/internal/botkit/markup"
	"github.com/kovalyov-valentin/news-digest/internal/model"
	"github.com/kovalyov-valentin/news-digest/internal/storage"
)

const latestLimit = 5

type ArticleLister interface {
	List(ctx context.Context, filter storage.Filter) ([]model.Article, error)
	Categories(ctx context.Context) ([]string, error)
}

// ViewCmdLatest показывает последние статьи, можно указать рубрику без учета регистра
func ViewCmdLatest(lister ArticleLister) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		filter := storage.Filter{Limit: latestLimit}

		if args := botkit.ParseArgs(update); len(args) > 0 {
			wanted := strings.Join(args, " ")

			categories, err := lister.Categories(ctx)
			if err != nil {
				return err
			}

			category, ok := lo.Find(categories, func(c string) bool {
				return strings.EqualFold(c, wanted)
			})
			if !ok {
				return botkit.Reply(bot, update, fmt.Sprintf(
					"Рубрика %s не найдена\\. Есть: %s",
					markup.Bold(wanted),
					markup.EscapeForMarkdown(strings.Join(categories, ", ")),
				))
			}
			filter.Category = category
		}

		articles, err := lister.List(ctx, filter)
		if err != nil {
			return err
		}
		if len(articles) == 0 {
			return botkit.Reply(bot, update, "Пока нет статей")
		}

		var (
			// Складываем в нее сформатированные тексты статей
			articleInfos = lo.Map(articles, func(article model.Article, _ int) string {
				return formatArticle(article)
			})
			msgText = fmt.Sprintf(
				"Последние статьи \\(%d\\):\n\n%s",
				len(articles),
				strings.Join(articleInfos, "\n\n"),
			)
		)

		return botkit.Reply(bot, update, msgText)
	}
}

func formatArticle(article model.Article) string {
	text := fmt.Sprintf(
		"📰 %s\n%s · %s\n%s",
		markup.Bold(article.Title),
		markup.EscapeForMarkdown(article.Source),
		markup.EscapeForMarkdown(article.Category),
		markup.EscapeForMarkdown(article.URL),
	)
	if article.Summarized() {
		text += "\n" + markup.EscapeForMarkdown(article.Summary)
	}
	return text
}
