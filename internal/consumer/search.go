package consumer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/chucky-1/teadiary/internal/model"
	"github.com/chucky-1/teadiary/internal/service"
	"github.com/chucky-1/teadiary/internal/view"
)

func searchHeader(kind model.SearchKind, extra string) string {
	switch kind {
	case model.SearchLast:
		return view.LastHeader
	case model.SearchCategory:
		return view.FoundByCategory(extra)
	case model.SearchYear:
		return view.FoundByYear(extra)
	case model.SearchRating:
		return view.FoundByRating(extra)
	}
	return view.FoundHeader
}

// runSearch shows the first page of a search.
func (b *Bot) runSearch(ctx context.Context, uid, chatID int64, kind model.SearchKind, extra string) error {
	extra = strings.TrimSpace(extra)
	page, err := b.tastings.Page(ctx, uid, kind, extra, 0)
	if err != nil {
		return err
	}
	b.analytics.Log(ctx, uid, chatID, model.EventSearch, map[string]any{
		"kind":    string(kind),
		"results": len(page.Tastings),
	})
	if len(page.Tastings) == 0 {
		text := view.NothingFound
		if kind == model.SearchLast {
			text = view.EmptyText
		}
		return b.reply(chatID, text, view.SearchMenuKeyboard())
	}
	if err = b.reply(chatID, searchHeader(kind, extra), nil); err != nil {
		return err
	}
	if err = b.sendPage(chatID, uid, kind, extra, page); err != nil {
		return err
	}
	return b.reply(chatID, view.MoreOptionsText, view.SearchMenuKeyboard())
}

// sendPage sends one row per tasting and the "show more" button when older rows exist.
func (b *Bot) sendPage(chatID, uid int64, kind model.SearchKind, extra string, page *service.Page) error {
	for i := range page.Tastings {
		t := &page.Tastings[i]
		if err := b.reply(chatID, view.ShortRow(t), view.OpenKeyboard(t.ID)); err != nil {
			return err
		}
	}
	if !page.HasMore {
		return nil
	}
	cursor := service.Cursor{UserID: uid, BeforeID: page.MinID(), Extra: extra}
	data, ok := service.MoreCallback(kind, cursor)
	if !ok {
		cursor.Extra, cursor.Key = "", b.searches.Put(uid, kind, extra)
		data, _ = service.MoreCallback(kind, cursor)
	}
	return b.reply(chatID, view.ShowMoreText, view.MoreKeyboard(data))
}

func (b *Bot) searchText(ctx context.Context, msg *tgbotapi.Message, s *model.Session) error {
	uid, chatID := msg.From.ID, msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	if err := b.clearSession(ctx, uid); err != nil {
		return err
	}
	switch s.State {
	case model.StateSearchName:
		return b.runSearch(ctx, uid, chatID, model.SearchName, text)
	case model.StateSearchCategory:
		return b.runSearch(ctx, uid, chatID, model.SearchCategory, text)
	case model.StateSearchYear:
		if service.ParseYear(text) == nil {
			return b.reply(chatID, view.BadSearchYear, view.SearchMenuKeyboard())
		}
		return b.runSearch(ctx, uid, chatID, model.SearchYear, text)
	}
	return nil
}

func (b *Bot) searchCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, prefix, value string) error {
	uid := cb.From.ID
	t := target{chatID: cb.Message.Chat.ID, edit: cb.Message}
	if prefix == "more" {
		return b.more(ctx, cb)
	}
	defer b.answer(cb.ID, "")

	switch prefix {
	case view.CbSearchLast:
		return b.runSearch(ctx, uid, t.chatID, model.SearchLast, "")
	case view.CbSearchName:
		if err := b.saveSession(ctx, uid, &model.Session{State: model.StateSearchName}); err != nil {
			return err
		}
		return b.show(t, view.AskSearchName, nil)
	case view.CbSearchCat:
		if err := b.clearSession(ctx, uid); err != nil {
			return err
		}
		return b.show(t, view.AskSearchCat, inlineMarkup(view.CategorySearchKeyboard()))
	case view.CbSearchYear:
		if err := b.saveSession(ctx, uid, &model.Session{State: model.StateSearchYear}); err != nil {
			return err
		}
		return b.show(t, view.AskSearchYear, nil)
	case view.CbSearchRate:
		return b.show(t, view.AskMinRating, inlineMarkup(view.RatingFilterKeyboard()))
	case "scat":
		if value == view.OtherCatValue {
			if err := b.saveSession(ctx, uid, &model.Session{State: model.StateSearchCategory}); err != nil {
				return err
			}
			return b.show(t, view.AskCategoryTxt, nil)
		}
		return b.runSearch(ctx, uid, t.chatID, model.SearchCategory, value)
	case "frate":
		if _, err := strconv.Atoi(value); err != nil {
			return nil
		}
		return b.runSearch(ctx, uid, t.chatID, model.SearchRating, value)
	}
	return nil
}

// more continues a search from the cursor stored in the button.
func (b *Bot) more(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	uid, chatID := cb.From.ID, cb.Message.Chat.ID
	log := logrus.WithFields(logrus.Fields{"user_id": uid, "data": cb.Data})
	kind, cursor, err := service.ParseMoreCallback(cb.Data)
	if err != nil {
		log.Debugf("consumer.Bot, bad more payload: %v", err)
		b.answer(cb.ID, "")
		return nil
	}
	extra, ok := cursor.Extra, cursor.UserID == uid
	if ok && cursor.Key != 0 {
		extra, ok = b.searches.Get(uid, cursor.Key, kind)
	}
	if !ok {
		b.dropMarkup(cb.Message)
		b.answer(cb.ID, "")
		return b.reply(chatID, view.SearchExpired, view.SearchMenuKeyboard())
	}
	if !b.throttle.Allow(uid) {
		b.answer(cb.ID, view.TooOften)
		return nil
	}
	defer b.answer(cb.ID, "")

	page, err := b.tastings.Page(ctx, uid, kind, extra, cursor.BeforeID)
	if err != nil {
		return fmt.Errorf("consumer.Bot, more %s error: %w", kind, err)
	}
	b.dropMarkup(cb.Message)
	if len(page.Tastings) == 0 {
		text := view.NoMoreResults
		if kind == model.SearchLast {
			text = view.NoMoreLast
		}
		return b.reply(chatID, text, view.SearchMenuKeyboard())
	}
	return b.sendPage(chatID, uid, kind, extra, page)
}
