package consumer

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/chucky-1/teadiary/internal/model"
	"github.com/chucky-1/teadiary/internal/service"
	"github.com/chucky-1/teadiary/internal/view"
)

// Values of Draft.Awaiting besides the toggle list prefixes.
const (
	awaitCategory = "cat"
	awaitBody     = "body"
)

// nextStep is the questionnaire order. The infusion loop is left through
// the more/finish buttons.
var nextStep = map[string]string{
	model.StateName:          model.StateYear,
	model.StateYear:          model.StateRegion,
	model.StateRegion:        model.StateCategory,
	model.StateCategory:      model.StateGrams,
	model.StateGrams:         model.StateTempC,
	model.StateTempC:         model.StateTastedAt,
	model.StateTastedAt:      model.StateGear,
	model.StateGear:          model.StateAromaDry,
	model.StateAromaDry:      model.StateAromaWarmed,
	model.StateAromaWarmed:   model.StateInfSeconds,
	model.StateInfSeconds:    model.StateInfColor,
	model.StateInfColor:      model.StateInfTaste,
	model.StateInfTaste:      model.StateInfSpecial,
	model.StateInfSpecial:    model.StateInfBody,
	model.StateInfBody:       model.StateInfAftertaste,
	model.StateInfAftertaste: model.StateInfMore,
	model.StateEffects:       model.StateScenarios,
	model.StateScenarios:     model.StateRating,
	model.StateRating:        model.StateSummary,
	model.StateSummary:       model.StatePhotos,
}

// skipState maps the tag of a skip button to the step it skips.
var skipState = map[string]string{
	"year":      model.StateYear,
	"region":    model.StateRegion,
	"grams":     model.StateGrams,
	"temp":      model.StateTempC,
	"tasted_at": model.StateTastedAt,
	"gear":      model.StateGear,
	"color":     model.StateInfColor,
	"special":   model.StateInfSpecial,
	"summary":   model.StateSummary,
}

// toggleState maps a toggle list to the step that shows it.
var toggleState = map[string]string{
	view.ListAromaDry:    model.StateAromaDry,
	view.ListAromaWarmed: model.StateAromaWarmed,
	view.ListTaste:       model.StateInfTaste,
	view.ListAftertaste:  model.StateInfAftertaste,
	view.ListEffects:     model.StateEffects,
	view.ListScenarios:   model.StateScenarios,
}

var otherPrompt = map[string]string{
	view.ListAromaDry:    view.AskAromaDryTxt,
	view.ListAromaWarmed: view.AskAromaWarmTx,
	view.ListTaste:       view.AskTasteTxt,
	view.ListAftertaste:  view.AskAfterTxt,
	view.ListEffects:     view.AskEffectsTxt,
	view.ListScenarios:   view.AskScenarioTxt,
}

// target is where a step prompt goes. A callback message is edited in place,
// otherwise a new message is sent.
type target struct {
	chatID int64
	edit   *tgbotapi.Message
}

func inlineMarkup(m tgbotapi.InlineKeyboardMarkup) *tgbotapi.InlineKeyboardMarkup {
	return &m
}

// show edits the callback message or sends a new one when editing fails.
func (b *Bot) show(t target, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	if t.edit != nil {
		var edit tgbotapi.Chattable
		if t.edit.Caption != "" || len(t.edit.Photo) > 0 {
			cfg := tgbotapi.NewEditMessageCaption(t.chatID, t.edit.MessageID, text)
			cfg.ReplyMarkup = markup
			edit = cfg
		} else {
			cfg := tgbotapi.NewEditMessageText(t.chatID, t.edit.MessageID, text)
			cfg.ReplyMarkup = markup
			edit = cfg
		}
		_, err := b.sender.Send(edit)
		if err == nil {
			return nil
		}
		logrus.Debugf("consumer.Bot, edit message error, sending a new one: %v", err)
	}
	if markup == nil {
		return b.reply(t.chatID, text, nil)
	}
	return b.reply(t.chatID, text, *markup)
}

func (b *Bot) startNew(ctx context.Context, uid, chatID int64) error {
	if _, err := b.users.Ensure(ctx, uid); err != nil {
		return err
	}
	b.albums.Discard(uid)
	s := &model.Session{State: model.StateName, Draft: model.Draft{UserID: uid}}
	if err := b.saveSession(ctx, uid, s); err != nil {
		return err
	}
	b.analytics.Log(ctx, uid, chatID, model.EventNewTastingStarted, nil)
	return b.reply(chatID, view.AskName, nil)
}

// advance moves the questionnaire to state, prepares the draft for it and asks
// its question.
func (b *Bot) advance(ctx context.Context, uid int64, t target, s *model.Session, state string) error {
	d := &s.Draft
	s.State = state
	d.Selected = nil
	d.Awaiting = ""

	var (
		text   string
		markup *tgbotapi.InlineKeyboardMarkup
	)
	switch state {
	case model.StateYear:
		text, markup = view.AskYear, inlineMarkup(view.SkipKeyboard("year"))
	case model.StateRegion:
		text, markup = view.AskRegion, inlineMarkup(view.SkipKeyboard("region"))
	case model.StateCategory:
		text, markup = view.AskCategory, inlineMarkup(view.CategoryKeyboard())
	case model.StateGrams:
		text, markup = view.AskGrams, inlineMarkup(view.SkipKeyboard("grams"))
	case model.StateTempC:
		text, markup = view.AskTemp, inlineMarkup(view.SkipKeyboard("temp"))
	case model.StateTastedAt:
		now, err := b.users.LocalNowHM(ctx, uid)
		if err != nil {
			return err
		}
		text, markup = view.AskTastedAt(now), inlineMarkup(view.TimeKeyboard())
	case model.StateGear:
		text, markup = view.AskGear, inlineMarkup(view.SkipKeyboard("gear"))
	case model.StateAromaDry:
		text, markup = view.AskAromaDry, inlineMarkup(view.ToggleKeyboard(view.ListAromaDry, nil))
	case model.StateAromaWarmed:
		text, markup = view.AskAromaWarm, inlineMarkup(view.ToggleKeyboard(view.ListAromaWarmed, nil))
	case model.StateInfSeconds:
		d.Current = model.Infusion{N: d.NextInfusion()}
		text = view.AskSeconds(d.Current.N)
	case model.StateInfColor:
		text, markup = view.AskColor, inlineMarkup(view.SkipKeyboard("color"))
	case model.StateInfTaste:
		text, markup = view.AskTaste, inlineMarkup(view.ToggleKeyboard(view.ListTaste, nil))
	case model.StateInfSpecial:
		text, markup = view.AskSpecial, inlineMarkup(view.SkipKeyboard("special"))
	case model.StateInfBody:
		text, markup = view.AskBody, inlineMarkup(view.BodyKeyboard())
	case model.StateInfAftertaste:
		text, markup = view.AskAftertaste, inlineMarkup(view.ToggleKeyboard(view.ListAftertaste, nil))
	case model.StateInfMore:
		d.Infusions = append(d.Infusions, d.Current)
		d.Current = model.Infusion{}
		text, markup = view.AskMoreInf, inlineMarkup(view.MoreInfusionsKeyboard())
	case model.StateEffects:
		text, markup = view.AskEffects, inlineMarkup(view.ToggleKeyboard(view.ListEffects, d.Effects))
	case model.StateScenarios:
		text, markup = view.AskScenarios, inlineMarkup(view.ToggleKeyboard(view.ListScenarios, d.Scenarios))
	case model.StateRating:
		text, markup = view.AskRating, inlineMarkup(view.RatingKeyboard())
	case model.StateSummary:
		text, markup = view.AskSummary, inlineMarkup(view.SkipKeyboard("summary"))
	case model.StatePhotos:
		if n := b.albums.Discard(uid); n > 0 {
			logrus.WithField("user_id", uid).Debugf("dropped %d photos of unfinished albums", n)
		}
		d.Photos = nil
		text, markup = view.AskPhotos(), inlineMarkup(view.PhotosKeyboard())
	}
	if err := b.saveSession(ctx, uid, s); err != nil {
		return err
	}
	return b.show(t, text, markup)
}

// setOptional stores free text, or nil for an empty one, into the field of an
// optional step.
func setOptional(d *model.Draft, state, text string) {
	switch state {
	case model.StateYear:
		d.Year = service.ParseYear(text)
	case model.StateRegion:
		d.Region = service.OptionalText(text)
	case model.StateGrams:
		d.Grams = service.ParseGrams(text)
	case model.StateTempC:
		d.TempC = service.ParseTemp(text)
	case model.StateTastedAt:
		d.TastedAt = service.ParseTastedAt(text)
	case model.StateGear:
		d.Gear = service.OptionalText(text)
	case model.StateInfSeconds:
		d.Current.Seconds = service.ParseSeconds(text)
	case model.StateInfColor:
		d.Current.LiquorColor = service.OptionalText(text)
	case model.StateInfTaste:
		d.Current.Taste = service.OptionalText(text)
	case model.StateInfSpecial:
		d.Current.SpecialNotes = service.OptionalText(text)
	case model.StateRating:
		d.Rating = service.ParseRating(text)
	case model.StateSummary:
		d.Summary = service.OptionalText(text)
	}
}

func (b *Bot) questionnaireText(ctx context.Context, msg *tgbotapi.Message, s *model.Session) error {
	uid := msg.From.ID
	t := target{chatID: msg.Chat.ID}
	d := &s.Draft
	text := strings.TrimSpace(msg.Text)

	switch s.State {
	case model.StateName:
		if text == "" {
			return b.reply(t.chatID, view.AskName, nil)
		}
		d.Name = text
		return b.advance(ctx, uid, t, s, model.StateYear)
	case model.StateCategory:
		if d.Awaiting != awaitCategory {
			return nil
		}
		category, err := service.ParseCategory(text)
		var inputErr *service.InputError
		if errors.As(err, &inputErr) {
			return b.reply(t.chatID, inputErr.Message, nil)
		}
		d.Category = category
		return b.advance(ctx, uid, t, s, model.StateGrams)
	case model.StateAromaDry, model.StateAromaWarmed:
		list := view.ListAromaDry
		if s.State == model.StateAromaWarmed {
			list = view.ListAromaWarmed
		}
		if d.Awaiting != list {
			return nil
		}
		if text != "" {
			d.Selected = append(d.Selected, text)
		}
		if s.State == model.StateAromaDry {
			d.AromaDry = service.JoinSelected(d.Selected)
		} else {
			d.AromaWarmed = service.JoinSelected(d.Selected)
		}
		return b.advance(ctx, uid, t, s, nextStep[s.State])
	case model.StateInfBody:
		if d.Awaiting != awaitBody {
			return nil
		}
		d.Current.Body = service.OptionalText(text)
		return b.advance(ctx, uid, t, s, model.StateInfAftertaste)
	case model.StateInfAftertaste:
		if d.Awaiting != view.ListAftertaste {
			return b.reply(t.chatID, view.AftertasteHint, nil)
		}
		if text == "" {
			return b.reply(t.chatID, view.AskAfterTxt, nil)
		}
		d.Current.Aftertaste = &text
		return b.advance(ctx, uid, t, s, model.StateInfMore)
	case model.StateEffects, model.StateScenarios:
		list, selected := view.ListEffects, &d.Effects
		if s.State == model.StateScenarios {
			list, selected = view.ListScenarios, &d.Scenarios
		}
		if d.Awaiting != list {
			return nil
		}
		if text != "" {
			*selected = append(*selected, text)
		}
		d.Awaiting = ""
		if err := b.saveSession(ctx, uid, s); err != nil {
			return err
		}
		return b.reply(t.chatID, view.AddedMore, view.ToggleKeyboard(list, *selected))
	case model.StateInfMore:
		return nil
	}
	setOptional(d, s.State, text)
	return b.advance(ctx, uid, t, s, nextStep[s.State])
}

func (b *Bot) questionnaireCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, prefix, value string) error {
	defer b.answer(cb.ID, "")
	uid := cb.From.ID
	t := target{chatID: cb.Message.Chat.ID, edit: cb.Message}
	s, err := b.session(ctx, uid)
	if err != nil {
		return err
	}
	d := &s.Draft
	stale := func(state string) bool {
		if s.State == state {
			return false
		}
		logrus.WithFields(logrus.Fields{"user_id": uid, "data": cb.Data, "state": s.State}).Debug("stale button")
		return true
	}

	switch prefix {
	case "cat":
		if stale(model.StateCategory) {
			return nil
		}
		if value == view.OtherCategory {
			d.Awaiting = awaitCategory
			if err = b.saveSession(ctx, uid, s); err != nil {
				return err
			}
			return b.show(t, view.AskCategoryTxt, nil)
		}
		d.Category = value
		return b.advance(ctx, uid, t, s, model.StateGrams)
	case "skip":
		if value == "photos" {
			if stale(model.StatePhotos) {
				return nil
			}
			b.albums.Discard(uid)
			d.Photos = nil
			return b.finish(ctx, uid, t.chatID, s)
		}
		state, ok := skipState[value]
		if !ok || stale(state) {
			return nil
		}
		setOptional(d, state, "")
		return b.advance(ctx, uid, t, s, nextStep[state])
	case "time":
		if stale(model.StateTastedAt) {
			return nil
		}
		now, err := b.users.LocalNowHM(ctx, uid)
		if err != nil {
			return err
		}
		d.TastedAt = &now
		return b.advance(ctx, uid, t, s, model.StateGear)
	case "body":
		if stale(model.StateInfBody) {
			return nil
		}
		if value == view.OtherValue {
			d.Awaiting = awaitBody
			if err = b.saveSession(ctx, uid, s); err != nil {
				return err
			}
			return b.show(t, view.AskBodyTxt, nil)
		}
		d.Current.Body = &value
		return b.advance(ctx, uid, t, s, model.StateInfAftertaste)
	case view.CbMoreInf, view.CbFinishInf:
		if stale(model.StateInfMore) {
			return nil
		}
		if prefix == view.CbMoreInf {
			return b.advance(ctx, uid, t, s, model.StateInfSeconds)
		}
		return b.advance(ctx, uid, t, s, model.StateEffects)
	case "rate":
		if stale(model.StateRating) {
			return nil
		}
		d.Rating = service.ParseRating(value)
		return b.advance(ctx, uid, t, s, model.StateSummary)
	case "photos":
		if stale(model.StatePhotos) {
			return nil
		}
		if err = b.sendTexts(t.chatID, mergeAlbums(d, b.albums.Flush(uid))); err != nil {
			return err
		}
		return b.finish(ctx, uid, t.chatID, s)
	}
	if stale(toggleState[prefix]) {
		return nil
	}
	return b.toggle(ctx, uid, t, s, prefix, value)
}

// toggle handles the buttons of a multi-select list.
func (b *Bot) toggle(ctx context.Context, uid int64, t target, s *model.Session, list, value string) error {
	d := &s.Draft
	selected := &d.Selected
	switch list {
	case view.ListEffects:
		selected = &d.Effects
	case view.ListScenarios:
		selected = &d.Scenarios
	}

	switch value {
	case view.OtherValue:
		d.Awaiting = list
		if err := b.saveSession(ctx, uid, s); err != nil {
			return err
		}
		return b.show(t, otherPrompt[list], nil)
	case view.DoneValue:
		switch list {
		case view.ListAromaDry:
			d.AromaDry = service.JoinSelected(*selected)
		case view.ListAromaWarmed:
			d.AromaWarmed = service.JoinSelected(*selected)
		case view.ListTaste:
			d.Current.Taste = service.JoinSelected(*selected)
		case view.ListAftertaste:
			d.Current.Aftertaste = service.JoinSelected(*selected)
		}
		return b.advance(ctx, uid, t, s, nextStep[toggleState[list]])
	}

	options := view.ListOptions(list)
	i, err := strconv.Atoi(value)
	if err != nil || i < 0 || i >= len(options) {
		return nil
	}
	*selected = service.Toggle(*selected, options[i])
	if err = b.saveSession(ctx, uid, s); err != nil {
		return err
	}
	b.editMarkup(t.edit, view.ToggleKeyboard(list, *selected))
	return nil
}

// finish saves the draft, ends the questionnaire and shows the new card.
func (b *Bot) finish(ctx context.Context, uid, chatID int64, s *model.Session) error {
	card, err := b.tastings.Save(ctx, &s.Draft)
	if err != nil {
		return err
	}
	if err = b.clearSession(ctx, uid); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"user_id": uid, "tasting_id": card.Tasting.ID}).Info("tasting saved")
	b.analytics.Log(ctx, uid, chatID, model.EventTastingSaved, map[string]any{
		"tasting_id": card.Tasting.ID,
		"seq_no":     card.Tasting.SeqNo,
		"photos":     card.PhotoCount,
	})
	return b.sendCard(chatID, card)
}
