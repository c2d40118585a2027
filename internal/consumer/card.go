package consumer

import (
	"context"
	"errors"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/chucky-1/teadiary/internal/model"
	"github.com/chucky-1/teadiary/internal/service"
	"github.com/chucky-1/teadiary/internal/view"
)

func (b *Bot) cardCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, prefix, value string) error {
	defer b.answer(cb.ID, "")
	uid, chatID := cb.From.ID, cb.Message.Chat.ID
	switch prefix {
	case "efld":
		return b.editFieldSelect(ctx, uid, chatID, value)
	case "ecat":
		return b.editCategoryPick(ctx, uid, chatID, value)
	case "erat":
		return b.editRatingPick(ctx, uid, chatID, value)
	case "delno":
		return b.reply(chatID, view.KeepText, nil)
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	switch prefix {
	case "open":
		card, err := b.tastings.Card(ctx, uid, id)
		if notFound(err) {
			return b.reply(chatID, view.NotFound, nil)
		} else if err != nil {
			return err
		}
		return b.sendCard(chatID, card)
	case "edit":
		t, err := b.tastings.Get(ctx, uid, id)
		if notFound(err) {
			return b.reply(chatID, view.NoAccess, nil)
		} else if err != nil {
			return err
		}
		return b.openEditMenu(ctx, uid, chatID, t)
	case "del":
		t, err := b.tastings.Get(ctx, uid, id)
		if notFound(err) {
			return b.reply(chatID, view.NoAccess, nil)
		} else if err != nil {
			return err
		}
		return b.reply(chatID, view.AskDelete(t.SeqNo), view.ConfirmDeleteKeyboard(t.ID))
	case "delok":
		t, err := b.tastings.Get(ctx, uid, id)
		if err == nil {
			err = b.tastings.Delete(ctx, uid, id)
		}
		if notFound(err) {
			return b.reply(chatID, view.NoAccess, nil)
		} else if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"user_id": uid, "tasting_id": id}).Info("tasting deleted")
		b.analytics.Log(ctx, uid, chatID, model.EventTastingDeleted, map[string]any{"tasting_id": id, "seq_no": t.SeqNo})
		return b.reply(chatID, view.Deleted(t.SeqNo), nil)
	}
	return nil
}

func (b *Bot) openEditMenu(ctx context.Context, uid, chatID int64, t *model.Tasting) error {
	s := &model.Session{
		State: model.StateEditChoosing,
		Edit:  model.Edit{TastingID: t.ID, SeqNo: t.SeqNo},
	}
	if err := b.saveSession(ctx, uid, s); err != nil {
		return err
	}
	return b.reply(chatID, view.EditMenu(t.SeqNo), view.EditFieldsKeyboard())
}

// editContext loads the edit session. ok is false when the context is gone,
// then the user has already been warned.
func (b *Bot) editContext(ctx context.Context, uid, chatID int64) (*model.Session, bool, error) {
	s, err := b.session(ctx, uid)
	if err != nil {
		return nil, false, err
	}
	editing := s.State == model.StateEditChoosing || s.State == model.StateEditWaiting
	if !editing || !s.Edit.Valid() {
		return nil, false, b.editLost(ctx, uid, chatID, s)
	}
	if _, err = b.tastings.Get(ctx, uid, s.Edit.TastingID); notFound(err) {
		logrus.WithFields(logrus.Fields{"user_id": uid, "tasting_id": s.Edit.TastingID}).Warn("edit context points to a missing tasting")
		return nil, false, b.editLost(ctx, uid, chatID, s)
	} else if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// editLost warns once per lost context and offers the way back to the menu.
func (b *Bot) editLost(ctx context.Context, uid, chatID int64, s *model.Session) error {
	if s.Edit.Warned {
		return nil
	}
	s.Edit.Warned = true
	if err := b.saveSession(ctx, uid, s); err != nil {
		return err
	}
	return b.reply(chatID, view.EditLost, view.HomeKeyboard())
}

func (b *Bot) editFieldSelect(ctx context.Context, uid, chatID int64, key string) error {
	s, ok, err := b.editContext(ctx, uid, chatID)
	if !ok {
		return err
	}
	if key == view.CancelValue {
		if err = b.clearSession(ctx, uid); err != nil {
			return err
		}
		if err = b.reply(chatID, view.EditCancelled, nil); err != nil {
			return err
		}
		return b.reply(chatID, view.MainMenuText, view.MainKeyboard())
	}
	f, known := service.LookupEditField(key)
	if !known {
		return nil
	}

	s.Edit.Field = f.Key
	s.Edit.AwaitingCategory = false
	s.Edit.Warned = false
	var (
		text   string
		markup any
	)
	switch f.Key {
	case "category":
		text, markup = view.AskEditCategory, view.EditCategoryKeyboard()
	case "rating":
		text, markup = view.AskEditRating, view.EditRatingKeyboard()
	default:
		s.State = model.StateEditWaiting
		text = f.Prompt
	}
	if err = b.saveSession(ctx, uid, s); err != nil {
		return err
	}
	return b.reply(chatID, text, markup)
}

func (b *Bot) editCategoryPick(ctx context.Context, uid, chatID int64, value string) error {
	s, ok, err := b.editContext(ctx, uid, chatID)
	if !ok {
		return err
	}
	switch value {
	case view.BackValue:
		return b.backToEditMenu(ctx, uid, chatID, s, "")
	case view.OtherCatValue:
		s.State = model.StateEditWaiting
		s.Edit.Field = "category"
		s.Edit.AwaitingCategory = true
		s.Edit.Warned = false
		if err = b.saveSession(ctx, uid, s); err != nil {
			return err
		}
		return b.reply(chatID, view.AskEditCatText, nil)
	}
	if !view.IsCategory(value) {
		return nil
	}
	return b.applyEdit(ctx, uid, chatID, s, "category", value)
}

func (b *Bot) editRatingPick(ctx context.Context, uid, chatID int64, value string) error {
	rating, err := service.ParseEditRating(value)
	if err != nil {
		return nil
	}
	s, ok, err := b.editContext(ctx, uid, chatID)
	if !ok {
		return err
	}
	return b.applyEdit(ctx, uid, chatID, s, "rating", rating)
}

func (b *Bot) editText(ctx context.Context, msg *tgbotapi.Message) error {
	uid, chatID := msg.From.ID, msg.Chat.ID
	s, ok, err := b.editContext(ctx, uid, chatID)
	if !ok {
		return err
	}
	f, known := service.LookupEditField(s.Edit.Field)
	if !known || f.Key == "rating" || (f.Key == "category" && !s.Edit.AwaitingCategory) {
		return b.editLost(ctx, uid, chatID, s)
	}
	value, err := service.ParseEditValue(f, msg.Text)
	var inputErr *service.InputError
	if errors.As(err, &inputErr) {
		return b.reply(chatID, inputErr.Message, nil)
	}
	return b.applyEdit(ctx, uid, chatID, s, f.Key, value)
}

// applyEdit stores a validated value and returns to the field menu.
func (b *Bot) applyEdit(ctx context.Context, uid, chatID int64, s *model.Session, key string, value any) error {
	f, _ := service.LookupEditField(key)
	err := b.tastings.SetField(ctx, uid, s.Edit.TastingID, f, value)
	if notFound(err) {
		logrus.WithFields(logrus.Fields{"user_id": uid, "tasting_id": s.Edit.TastingID, "field": key}).Warn("edit target disappeared")
		return b.editLost(ctx, uid, chatID, s)
	} else if err != nil {
		return err
	}
	return b.backToEditMenu(ctx, uid, chatID, s, view.Updated(f.Label))
}

func (b *Bot) backToEditMenu(ctx context.Context, uid, chatID int64, s *model.Session, notice string) error {
	s.State = model.StateEditChoosing
	s.Edit.Field = ""
	s.Edit.AwaitingCategory = false
	s.Edit.Warned = false
	if err := b.saveSession(ctx, uid, s); err != nil {
		return err
	}
	if notice != "" {
		if err := b.reply(chatID, notice, nil); err != nil {
			return err
		}
	}
	return b.reply(chatID, view.EditMenu(s.Edit.SeqNo), view.EditFieldsKeyboard())
}
