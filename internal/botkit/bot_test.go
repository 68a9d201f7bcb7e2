package botkit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	updates chan tgbotapi.Update
	sent    chan tgbotapi.MessageConfig
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		updates: make(chan tgbotapi.Update),
		sent:    make(chan tgbotapi.MessageConfig, 10),
	}
}

func (a *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		a.sent <- msg
	}
	return tgbotapi.Message{}, nil
}

func (a *fakeAPI) GetChatAdministrators(tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error) {
	return nil, nil
}

func (a *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return a.updates
}

func command(text string) tgbotapi.Update {
	cmdLen := strings.IndexByte(text+" ", ' ')
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: 42},
		From:     &tgbotapi.User{ID: 7},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}}
}

func TestHandleUpdateRoutesCommands(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	b := New(api, nil)

	var got []string
	b.RegisterCmdView("latest", func(_ context.Context, _ API, update tgbotapi.Update) error {
		got = ParseArgs(update)
		return nil
	})

	b.handleUpdate(context.Background(), command("/latest tech  news"))
	assert.Equal(t, []string{"tech", "news"}, got)

	// Не команда и неизвестная команда молча игнорируются
	b.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{Text: "hello", Chat: &tgbotapi.Chat{ID: 42}}})
	b.handleUpdate(context.Background(), command("/unknown"))
	b.handleUpdate(context.Background(), tgbotapi.Update{})
	assert.Empty(t, api.sent)
}

func TestHandleUpdateReportsErrors(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	b := New(api, nil)
	b.RegisterCmdView("fail", func(context.Context, API, tgbotapi.Update) error {
		return errors.New("db is down")
	})
	b.RegisterCmdView("panic", func(context.Context, API, tgbotapi.Update) error {
		panic("boom")
	})

	b.handleUpdate(context.Background(), command("/fail"))
	require.Len(t, api.sent, 1)
	msg := <-api.sent
	assert.Equal(t, "internal error", msg.Text)
	assert.Equal(t, int64(42), msg.ChatID)

	assert.NotPanics(t, func() { b.handleUpdate(context.Background(), command("/panic")) })
}

func TestRun(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	b := New(api, nil)
	b.RegisterCmdView("start", func(_ context.Context, bot API, update tgbotapi.Update) error {
		return Reply(bot, update, "hi")
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	api.updates <- command("/start")

	select {
	case msg := <-api.sent:
		assert.Equal(t, "hi", msg.Text)
		assert.Equal(t, tgbotapi.ModeMarkdownV2, msg.ParseMode)
	case <-time.After(time.Second):
		t.Fatal("reply was not sent")
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestParseArgs(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ParseArgs(tgbotapi.Update{}))
	assert.Empty(t, ParseArgs(command("/latest")))
	assert.Equal(t, []string{"Security"}, ParseArgs(command("/latest Security")))
}
