package consumer

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/chucky-1/teadiary/internal/config"
	"github.com/chucky-1/teadiary/internal/model"
	"github.com/chucky-1/teadiary/internal/producer"
	"github.com/chucky-1/teadiary/internal/repository"
	"github.com/chucky-1/teadiary/internal/service"
)

var testNow = time.Date(2024, 5, 17, 22, 30, 0, 0, time.UTC)

var errTelegram = errors.New("Bad Request: wrong file identifier")

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	groups   []tgbotapi.MediaGroupConfig
	groupErr error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.groupErr != nil {
		return nil, f.groupErr
	}
	f.groups = append(f.groups, config)
	return make([]tgbotapi.Message, len(config.Media)), nil
}

// texts returns the text or caption of every sent message and edit.
func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var texts []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			texts = append(texts, m.Text)
		case tgbotapi.EditMessageTextConfig:
			texts = append(texts, m.Text)
		case tgbotapi.EditMessageCaptionConfig:
			texts = append(texts, m.Caption)
		case tgbotapi.PhotoConfig:
			texts = append(texts, m.Caption)
		}
	}
	return texts
}

func (f *fakeSender) last() string {
	texts := f.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

func (f *fakeSender) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent, f.requests, f.groups = nil, nil, nil
}

// messagesWithMarkup counts sent messages carrying the given inline keyboard.
func (f *fakeSender) messagesWithMarkup(markup tgbotapi.InlineKeyboardMarkup) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			if kb, ok := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); ok && equalMarkup(kb, markup) {
				n++
			}
		}
	}
	return n
}

func equalMarkup(a, b tgbotapi.InlineKeyboardMarkup) bool {
	if len(a.InlineKeyboard) != len(b.InlineKeyboard) {
		return false
	}
	for i := range a.InlineKeyboard {
		if len(a.InlineKeyboard[i]) != len(b.InlineKeyboard[i]) {
			return false
		}
		for j := range a.InlineKeyboard[i] {
			x, y := a.InlineKeyboard[i][j], b.InlineKeyboard[i][j]
			if x.Text != y.Text || *x.CallbackData != *y.CallbackData {
				return false
			}
		}
	}
	return true
}

func (f *fakeSender) callbackAnswers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var answers []string
	for _, c := range f.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			answers = append(answers, cb.Text)
		}
	}
	return answers
}

type brokenStates struct{}

func (brokenStates) Get(context.Context, int64) (*model.Session, error) {
	return nil, errors.New("state backend is down")
}

func (brokenStates) Set(context.Context, int64, *model.Session) error {
	return errors.New("state backend is down")
}

func (brokenStates) Clear(context.Context, int64) error {
	return errors.New("state backend is down")
}

type testBot struct {
	*Bot
	sender *fakeSender
	store  *repository.SQLite
	states *repository.StatesLocalStorage
	clock  clockwork.FakeClock
}

type botOption func(*botOptions)

type botOptions struct {
	admins     map[int64]struct{}
	production bool
	override   bool
	states     repository.States
}

func withDiagnostics(admins map[int64]struct{}, production, override bool) botOption {
	return func(o *botOptions) {
		o.admins, o.production, o.override = admins, production, override
	}
}

func withStates(states repository.States) botOption {
	return func(o *botOptions) {
		o.states = states
	}
}

func admins(ids ...int64) map[int64]struct{} {
	m := make(map[int64]struct{})
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func newTestBot(t *testing.T, opts ...botOption) *testBot {
	t.Helper()
	o := &botOptions{admins: admins()}
	for _, opt := range opts {
		opt(o)
	}
	clock := clockwork.NewFakeClockAt(testNow)
	store, err := repository.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "tastings.db"), clock)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	states := repository.NewStatesLocalStorage()
	var st repository.States = states
	if o.states != nil {
		st = o.states
	}
	info := service.DBInfo{Driver: config.DriverSQLite, File: "tastings.db", AppEnv: "dev", TZ: "UTC", RedactedURL: "sqlite://tastings.db"}
	sender := &fakeSender{}
	bot := NewBot(sender, clock, st,
		service.NewTastings(store),
		service.NewUsers(store, clock),
		service.NewAnalytics(store, clock, true),
		service.NewDiagnostics(store, info, o.admins, o.production, o.override),
		service.NewThrottle(clock, time.Second),
		producer.NewAlbums(clock, producer.AlbumDelay),
	)
	return &testBot{Bot: bot, sender: sender, store: store, states: states, clock: clock}
}

func (tb *testBot) state(t *testing.T, uid int64) *model.Session {
	t.Helper()
	s, err := tb.states.Get(context.Background(), uid)
	require.NoError(t, err)
	return s
}

func (tb *testBot) saveTasting(t *testing.T, d *model.Draft) *model.Tasting {
	t.Helper()
	card, err := service.NewTastings(tb.store).Save(context.Background(), d)
	require.NoError(t, err)
	return card.Tasting
}

func textUpdate(uid int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: uid},
		Chat:      &tgbotapi.Chat{ID: uid},
		Text:      text,
	}}
}

func commandUpdate(uid int64, text string) tgbotapi.Update {
	u := textUpdate(uid, text)
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}
	u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	return u
}

func photoUpdate(uid int64, fileID, groupID string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID:    1,
		From:         &tgbotapi.User{ID: uid},
		Chat:         &tgbotapi.Chat{ID: uid},
		MediaGroupID: groupID,
		Photo: []tgbotapi.PhotoSize{
			{FileID: fileID + "-small", Width: 90},
			{FileID: fileID, Width: 1280},
		},
	}}
}

func callbackUpdate(uid int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-" + data,
		From:    &tgbotapi.User{ID: uid},
		Message: &tgbotapi.Message{MessageID: 100, Chat: &tgbotapi.Chat{ID: uid}, Text: "prompt"},
		Data:    data,
	}}
}
