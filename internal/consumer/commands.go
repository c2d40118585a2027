package consumer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/chucky-1/teadiary/internal/model"
	"github.com/chucky-1/teadiary/internal/service"
	"github.com/chucky-1/teadiary/internal/view"
)

const (
	cmdStart  = "start"
	cmdHelp   = "help"
	cmdMenu   = "menu"
	cmdHide   = "hide"
	cmdNew    = "new"
	cmdFind   = "find"
	cmdLast   = "last"
	cmdTZ     = "tz"
	cmdEdit   = "edit"
	cmdDelete = "delete"
	cmdCancel = "cancel"
	cmdReset  = "reset"
	cmdHealth = "health"
	cmdDBInfo = "dbinfo"
	cmdWhoami = "whoami"
	cmdStats  = "stats"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	uid, chatID := msg.From.ID, msg.Chat.ID
	log := logrus.WithFields(logrus.Fields{"user_id": uid, "command": msg.Command()})
	log.Debug("command received")

	switch msg.Command() {
	case cmdStart:
		if _, err := b.users.Ensure(ctx, uid); err != nil {
			return err
		}
		b.analytics.Log(ctx, uid, chatID, model.EventStart, nil)
		return b.reply(chatID, view.MainMenuText, view.MainKeyboard())
	case cmdHelp:
		return b.reply(chatID, view.HelpText, nil)
	case cmdMenu:
		return b.reply(chatID, view.MenuShownText, view.ReplyMainKeyboard())
	case cmdHide:
		return b.reply(chatID, view.MenuHiddenText, tgbotapi.NewRemoveKeyboard(false))
	case cmdCancel, cmdReset:
		return b.cancel(ctx, uid, chatID)
	case cmdNew:
		return b.startNew(ctx, uid, chatID)
	case cmdFind:
		return b.reply(chatID, view.SearchMenuText, view.SearchMenuKeyboard())
	case cmdLast:
		return b.runSearch(ctx, uid, chatID, model.SearchLast, "")
	case cmdTZ:
		return b.timezone(ctx, uid, chatID, msg.CommandArguments())
	case cmdEdit:
		return b.editCommand(ctx, uid, chatID, msg.CommandArguments())
	case cmdDelete:
		return b.deleteCommand(ctx, uid, chatID, msg.CommandArguments())
	case cmdHealth, cmdDBInfo, cmdWhoami:
		return b.diagnosticsCommand(ctx, uid, chatID, msg.Command())
	case cmdStats:
		return b.stats(ctx, uid, chatID)
	}
	log.Debug("unknown command")
	return nil
}

// handleReplyButton routes the texts of the reply keyboard. With exact set only
// the button texts themselves match, otherwise any text containing a button word.
func (b *Bot) handleReplyButton(ctx context.Context, msg *tgbotapi.Message, exact bool) (bool, error) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return false, nil
	}
	match := func(button, word string) bool {
		if exact {
			return text == button
		}
		return strings.Contains(text, word)
	}
	uid, chatID := msg.From.ID, msg.Chat.ID
	switch {
	case match(view.BtnNew, "Новая дегустация"):
		return true, b.startNew(ctx, uid, chatID)
	case match(view.BtnFind, "Найти записи"):
		return true, b.reply(chatID, view.SearchMenuText, view.SearchMenuKeyboard())
	case match(view.BtnLast, "Последние 5"):
		return true, b.runSearch(ctx, uid, chatID, model.SearchLast, "")
	case match(view.BtnHelp, "Помощь"):
		return true, b.reply(chatID, view.HelpText, nil)
	case match(view.BtnReset, "Сброс"), !exact && strings.Contains(text, "Отмена"):
		return true, b.cancel(ctx, uid, chatID)
	}
	return false, nil
}

func (b *Bot) cancel(ctx context.Context, uid, chatID int64) error {
	b.albums.Discard(uid)
	if err := b.clearSession(ctx, uid); err != nil {
		return err
	}
	return b.reply(chatID, view.CancelText, view.MainKeyboard())
}

func (b *Bot) menuCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	defer b.answer(cb.ID, "")
	uid, chatID := cb.From.ID, cb.Message.Chat.ID
	switch cb.Data {
	case view.CbNew:
		return b.startNew(ctx, uid, chatID)
	case view.CbFind:
		return b.reply(chatID, view.SearchMenuText, view.SearchMenuKeyboard())
	case view.CbHelp:
		return b.reply(chatID, view.HelpText, view.SearchMenuKeyboard())
	case view.CbBackMain:
		return b.reply(chatID, view.MainMenuText, view.MainKeyboard())
	case view.CbNavHome:
		if err := b.clearSession(ctx, uid); err != nil {
			return err
		}
		return b.reply(chatID, view.MainMenuText, view.MainKeyboard())
	}
	return nil
}

func (b *Bot) timezone(ctx context.Context, uid, chatID int64, args string) error {
	args = strings.TrimSpace(args)
	if args == "" {
		user, err := b.users.Ensure(ctx, uid)
		if err != nil {
			return err
		}
		return b.reply(chatID, view.TZCurrent(service.FormatTZ(service.OffsetHours(user.TZOffsetMin))), nil)
	}
	hours, err := service.ParseTZ(args)
	if errors.Is(err, service.BadTZErr) {
		return b.reply(chatID, view.TZBadFormat, nil)
	}
	if _, err = b.users.Ensure(ctx, uid); err != nil {
		return err
	}
	if err = b.users.SetTZ(ctx, uid, hours); err != nil {
		return err
	}
	return b.reply(chatID, view.TZSaved(service.FormatTZ(hours)), nil)
}

// diagnosticsCommand answers only the users the current gating allows. Everyone
// else gets no reply at all.
func (b *Bot) diagnosticsCommand(ctx context.Context, uid, chatID int64, command string) error {
	d := b.diagnostics
	log := logrus.WithFields(logrus.Fields{"user_id": uid, "command": command})
	if command == cmdWhoami {
		if !d.RouterEnabled() {
			log.Debug("diagnostics disabled")
			return nil
		}
		return b.reply(chatID, d.Whoami(uid), nil)
	}

	admin := d.AdminGated() && d.IsAdmin(uid)
	if !d.Public() && !admin {
		log.Debug("diagnostics not allowed")
		return nil
	}
	var text string
	switch command {
	case cmdHealth:
		text = d.Health(ctx)
		if admin {
			extra, err := d.AdminHealth(ctx)
			if err != nil {
				log.Errorf("consumer.Bot, admin health error: %v", err)
			} else {
				text += "\n" + extra
			}
		}
	case cmdDBInfo:
		text = d.DBInfo()
		if admin {
			text += "\n" + d.AdminDBInfo()
		}
	}
	return b.reply(chatID, text, nil)
}

func (b *Bot) stats(ctx context.Context, uid, chatID int64) error {
	if !b.diagnostics.IsAdmin(uid) {
		return nil
	}
	stats, err := b.analytics.Stats(ctx)
	if err != nil {
		logrus.WithField("user_id", uid).Errorf("consumer.Bot, stats error: %v", err)
		return b.reply(chatID, view.StatsFailed, nil)
	}
	return b.reply(chatID, view.Stats(stats), nil)
}

func (b *Bot) editCommand(ctx context.Context, uid, chatID int64, ref string) error {
	if strings.TrimSpace(ref) == "" {
		return b.reply(chatID, view.EditUsage, nil)
	}
	t, err := b.tastings.Resolve(ctx, uid, ref)
	if notFound(err) {
		return b.reply(chatID, view.NotFound, nil)
	} else if err != nil {
		return fmt.Errorf("consumer.Bot, resolve %q error: %w", ref, err)
	}
	return b.openEditMenu(ctx, uid, chatID, t)
}

func (b *Bot) deleteCommand(ctx context.Context, uid, chatID int64, ref string) error {
	if strings.TrimSpace(ref) == "" {
		return b.reply(chatID, view.DeleteUsage, nil)
	}
	t, err := b.tastings.Resolve(ctx, uid, ref)
	if notFound(err) {
		return b.reply(chatID, view.NotFound, nil)
	} else if err != nil {
		return fmt.Errorf("consumer.Bot, resolve %q error: %w", ref, err)
	}
	return b.reply(chatID, view.AskDelete(t.SeqNo), view.ConfirmDeleteKeyboard(t.ID))
}
