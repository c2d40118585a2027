// Package consumer turns telegram updates into diary operations.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/chucky-1/teadiary/internal/metrics"
	"github.com/chucky-1/teadiary/internal/model"
	"github.com/chucky-1/teadiary/internal/producer"
	"github.com/chucky-1/teadiary/internal/repository"
	"github.com/chucky-1/teadiary/internal/service"
	"github.com/chucky-1/teadiary/internal/view"
)

const handlerTimeout = 30 * time.Second

// Sender is the part of *tgbotapi.BotAPI the bot needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
}

// AlbumBuffer collects media groups until they are complete.
type AlbumBuffer interface {
	Add(userID, chatID int64, groupID, fileID string)
	Flush(userID int64) []producer.Album
	Discard(userID int64) int
}

// Bot handles one update at a time for a user. Updates of different users may
// be handled concurrently.
type Bot struct {
	sender      Sender
	clock       clockwork.Clock
	states      repository.States
	tastings    *service.Tastings
	users       *service.Users
	analytics   *service.Analytics
	diagnostics *service.Diagnostics
	throttle    *service.Throttle
	searches    *service.Searches
	albums      AlbumBuffer
}

func NewBot(sender Sender, clock clockwork.Clock, states repository.States, tastings *service.Tastings, users *service.Users,
	analytics *service.Analytics, diagnostics *service.Diagnostics, throttle *service.Throttle, albums AlbumBuffer) *Bot {
	return &Bot{
		sender:      sender,
		clock:       clock,
		states:      states,
		tastings:    tastings,
		users:       users,
		analytics:   analytics,
		diagnostics: diagnostics,
		throttle:    throttle,
		searches:    service.NewSearches(clock, service.SearchTTL),
		albums:      albums,
	}
}

// RegisterCommands publishes the command list shown by telegram clients.
func (b *Bot) RegisterCommands() error {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Главное меню"},
		tgbotapi.BotCommand{Command: "new", Description: "Новая дегустация"},
		tgbotapi.BotCommand{Command: "find", Description: "Поиск"},
		tgbotapi.BotCommand{Command: "last", Description: "Последние 5"},
		tgbotapi.BotCommand{Command: "tz", Description: "Часовой пояс"},
		tgbotapi.BotCommand{Command: "reset", Description: "Сброс и меню"},
		tgbotapi.BotCommand{Command: "help", Description: "Помощь"},
		tgbotapi.BotCommand{Command: "health", Description: "Проверка БД"},
		tgbotapi.BotCommand{Command: "dbinfo", Description: "Сведения о БД"},
	)
	if _, err := b.sender.Request(commands); err != nil {
		return fmt.Errorf("consumer.Bot, set commands error: %w", err)
	}
	return nil
}

// HandleUpdate never fails. Errors are counted, logged and reported to the user.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	started := b.clock.Now()
	defer func() {
		metrics.HandlerDuration.Observe(b.clock.Since(started).Seconds())
	}()
	ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	var err error
	switch {
	case update.Message != nil:
		metrics.UpdatesTotal.WithLabelValues("message").Inc()
		err = b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		metrics.UpdatesTotal.WithLabelValues("callback").Inc()
		err = b.handleCallback(ctx, update.CallbackQuery)
	default:
		metrics.UpdatesTotal.WithLabelValues("other").Inc()
		return
	}
	if err == nil {
		return
	}

	metrics.HandlerErrorsTotal.Inc()
	fields := logrus.Fields{"update_id": update.UpdateID}
	if from := update.SentFrom(); from != nil {
		fields["user_id"] = from.ID
	}
	logrus.WithFields(fields).Errorf("consumer.Bot, handle update error: %v", err)
	if chat := update.FromChat(); chat != nil {
		if sendErr := b.reply(chat.ID, view.HandlerError, nil); sendErr != nil {
			logrus.WithFields(fields).Errorf("consumer.Bot, report error: %v", sendErr)
		}
	}
}

// HandleAlbum adds a collected media group to the user's draft.
func (b *Bot) HandleAlbum(ctx context.Context, album producer.Album) {
	ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()
	if err := b.processAlbums(ctx, album.UserID, album.ChatID, []producer.Album{album}); err != nil {
		metrics.HandlerErrorsTotal.Inc()
		logrus.WithField("user_id", album.UserID).Errorf("consumer.Bot, handle album error: %v", err)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	if msg.IsCommand() {
		return b.handleCommand(ctx, msg)
	}
	if handled, err := b.handleReplyButton(ctx, msg, true); handled {
		return err
	}

	s, err := b.session(ctx, msg.From.ID)
	if err != nil {
		return err
	}
	switch {
	case strings.HasPrefix(s.State, "new:"), strings.HasPrefix(s.State, "inf:"),
		strings.HasPrefix(s.State, "es:"), strings.HasPrefix(s.State, "rs:"):
		return b.questionnaireText(ctx, msg, s)
	case s.State == model.StatePhotos:
		return b.photoMessage(ctx, msg, s)
	case strings.HasPrefix(s.State, "search:"):
		return b.searchText(ctx, msg, s)
	case s.State == model.StateEditWaiting:
		return b.editText(ctx, msg)
	}
	_, err = b.handleReplyButton(ctx, msg, false)
	return err
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.Message == nil {
		b.answer(cb.ID, "")
		return nil
	}
	prefix, value, _ := strings.Cut(cb.Data, ":")
	switch prefix {
	case view.CbNew, view.CbFind, view.CbHelp, "back", "nav":
		return b.menuCallback(ctx, cb)
	case "cat", "skip", "time", "ad", "aw", "taste", "body", "aft", "eff", "scn",
		view.CbMoreInf, view.CbFinishInf, "rate", "photos":
		return b.questionnaireCallback(ctx, cb, prefix, value)
	case "pics":
		return b.showPhotos(ctx, cb, value)
	case view.CbSearchName, view.CbSearchCat, view.CbSearchYear, view.CbSearchRate, view.CbSearchLast,
		"scat", "frate", "more":
		return b.searchCallback(ctx, cb, prefix, value)
	case "open", "edit", "del", "delok", "delno", "efld", "ecat", "erat":
		return b.cardCallback(ctx, cb, prefix, value)
	}
	logrus.WithField("data", cb.Data).Debug("consumer.Bot, unknown callback")
	b.answer(cb.ID, "")
	return nil
}

func (b *Bot) session(ctx context.Context, userID int64) (*model.Session, error) {
	s, err := b.states.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("consumer.Bot, get state error: %w", err)
	}
	return s, nil
}

func (b *Bot) saveSession(ctx context.Context, userID int64, s *model.Session) error {
	if err := b.states.Set(ctx, userID, s); err != nil {
		return fmt.Errorf("consumer.Bot, set state error: %w", err)
	}
	return nil
}

func (b *Bot) clearSession(ctx context.Context, userID int64) error {
	if err := b.states.Clear(ctx, userID); err != nil {
		return fmt.Errorf("consumer.Bot, clear state error: %w", err)
	}
	return nil
}

func (b *Bot) send(c tgbotapi.Chattable) error {
	if _, err := b.sender.Send(c); err != nil {
		return fmt.Errorf("consumer.Bot, telegram bot couldn't send message: %w", err)
	}
	return nil
}

// reply sends text with an optional keyboard. A nil markup sends no keyboard.
func (b *Bot) reply(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	return b.send(msg)
}

// answer stops the loading indicator of a pressed button.
func (b *Bot) answer(callbackID, text string) {
	if _, err := b.sender.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		logrus.Debugf("consumer.Bot, answer callback error: %v", err)
	}
}

func (b *Bot) editMarkup(msg *tgbotapi.Message, markup tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageReplyMarkup(msg.Chat.ID, msg.MessageID, markup)
	if _, err := b.sender.Request(edit); err != nil {
		logrus.Debugf("consumer.Bot, edit markup error: %v", err)
	}
}

func (b *Bot) dropMarkup(msg *tgbotapi.Message) {
	b.editMarkup(msg, view.NoKeyboard())
}

func notFound(err error) bool {
	return errors.Is(err, repository.TastingNotFoundErr)
}
