package notifier

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovalyov-valentin/news-digest/internal/model"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.sent = append(s.sent, c)
	return tgbotapi.Message{}, s.err
}

var article = model.Article{
	ID:       "abc",
	Title:    "Go 1.23 released!",
	URL:      "https://go.dev/blog/go1.23",
	Category: "Tech",
	Summary:  "Iterators landed.\n\n\n\nRange over func is stable.",
}

func TestFormatMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"*Go 1\\.23 released\\!*\n\nIterators landed\\.\nRange over func is stable\\.\n\n_\\#Tech_ · https://go\\.dev/blog/go1\\.23",
		FormatMessage(article),
	)

	noCategory := article
	noCategory.Category = ""
	assert.Contains(t, FormatMessage(noCategory), "_\\#uncategorized_")
}

func TestNotify(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	n := New(sender, -100123, nil)

	require.NoError(t, n.Notify(context.Background(), article))
	require.Len(t, sender.sent, 1)

	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-100123), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdownV2, msg.ParseMode)
	assert.Equal(t, FormatMessage(article), msg.Text)
}

func TestNotifySkipsArticlesWithoutSummary(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	plain := article
	plain.Summary = ""

	require.NoError(t, New(sender, 1, nil).Notify(context.Background(), plain))
	assert.Empty(t, sender.sent)
}

func TestNotifyErrors(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{err: errors.New("Too Many Requests")}
	err := New(sender, 1, nil).Notify(context.Background(), article)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abc")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sender = &fakeSender{}
	require.ErrorIs(t, New(sender, 1, nil).Notify(ctx, article), context.Canceled)
	assert.Empty(t, sender.sent)
}
