package consumer

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/chucky-1/teadiary/internal/model"
	"github.com/chucky-1/teadiary/internal/producer"
	"github.com/chucky-1/teadiary/internal/view"
)

func (b *Bot) photoMessage(ctx context.Context, msg *tgbotapi.Message, s *model.Session) error {
	uid, chatID := msg.From.ID, msg.Chat.ID
	d := &s.Draft
	if len(msg.Photo) == 0 {
		return b.reply(chatID, view.PhotosOnly, nil)
	}
	if len(d.Photos) >= model.MaxPhotos {
		return b.reply(chatID, view.PhotosFull(), nil)
	}
	// the last size is the largest one
	fileID := msg.Photo[len(msg.Photo)-1].FileID
	if msg.MediaGroupID != "" {
		b.albums.Add(uid, chatID, msg.MediaGroupID, fileID)
		return nil
	}
	d.Photos = append(d.Photos, fileID)
	if err := b.saveSession(ctx, uid, s); err != nil {
		return err
	}
	return b.reply(chatID, view.PhotosAdded(len(d.Photos)), nil)
}

func (b *Bot) processAlbums(ctx context.Context, uid, chatID int64, albums []producer.Album) error {
	s, err := b.session(ctx, uid)
	if err != nil {
		return err
	}
	if s.State != model.StatePhotos {
		logrus.WithField("user_id", uid).Debug("album arrived outside of the photos step, ignored")
		return nil
	}
	texts := mergeAlbums(&s.Draft, albums)
	if err = b.saveSession(ctx, uid, s); err != nil {
		return err
	}
	return b.sendTexts(chatID, texts)
}

// mergeAlbums adds albums to the draft up to the photo limit and returns the
// messages that report the result.
func mergeAlbums(d *model.Draft, albums []producer.Album) []string {
	var texts []string
	for _, album := range albums {
		capacity := model.MaxPhotos - len(d.Photos)
		accepted := album.FileIDs
		if capacity <= 0 {
			accepted = nil
		} else if len(accepted) > capacity {
			accepted = accepted[:capacity]
		}
		d.Photos = append(d.Photos, accepted...)
		if len(accepted) == 0 {
			texts = append(texts, view.PhotosLimit(), view.PhotosAdded(len(d.Photos)))
			continue
		}
		if len(album.FileIDs) > len(accepted) {
			texts = append(texts, view.AlbumTrimmed())
		}
		texts = append(texts, view.PhotosAdded(len(d.Photos)))
	}
	return texts
}

func (b *Bot) sendTexts(chatID int64, texts []string) error {
	for _, text := range texts {
		if err := b.reply(chatID, text, nil); err != nil {
			return err
		}
	}
	return nil
}

// sendCard shows a tasting with its photos. The actions keyboard is attached
// to exactly one message.
func (b *Bot) sendCard(chatID int64, card *model.Card) error {
	text := view.CardText(card)
	markup := view.CardActionsKeyboard(card.Tasting.ID)
	photos := card.PhotoIDs
	if len(photos) > model.MaxPhotos {
		photos = photos[:model.MaxPhotos]
	}
	log := logrus.WithField("tasting_id", card.Tasting.ID)

	markupSent := false
	sendChunks := func() error {
		for i, chunk := range view.SplitText(text, view.MessageLimit) {
			if i == 0 && !markupSent {
				markupSent = true
				if err := b.reply(chatID, chunk, markup); err != nil {
					return err
				}
				continue
			}
			if err := b.reply(chatID, chunk, nil); err != nil {
				return err
			}
		}
		return nil
	}
	ensureActions := func() error {
		if markupSent {
			return nil
		}
		markupSent = true
		return b.reply(chatID, view.ActionsText, markup)
	}

	if len(photos) == 0 {
		if err := sendChunks(); err != nil {
			return err
		}
		return ensureActions()
	}

	useCaption := text != "" && view.TextLen(text) <= view.CaptionLimit
	caption := ""
	if useCaption {
		caption = text
	}
	if err := b.sendPhotos(chatID, photos, caption); err != nil {
		log.Errorf("consumer.Bot, send card photos error: %v", err)
		if err = sendChunks(); err != nil {
			return err
		}
		if err = ensureActions(); err != nil {
			return err
		}
		for _, fileID := range photos {
			if _, err = b.sender.Send(tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))); err != nil {
				log.Errorf("consumer.Bot, send single photo error: %v", err)
			}
		}
		return nil
	}
	if !useCaption {
		if err := sendChunks(); err != nil {
			return err
		}
	}
	return ensureActions()
}

// sendPhotos sends one photo as is and several as an album. The caption goes
// to the first photo.
func (b *Bot) sendPhotos(chatID int64, fileIDs []string, caption string) error {
	if len(fileIDs) == 1 {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileIDs[0]))
		photo.Caption = caption
		return b.send(photo)
	}
	media := make([]interface{}, 0, len(fileIDs))
	for i, fileID := range fileIDs {
		photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(fileID))
		if i == 0 {
			photo.Caption = caption
		}
		media = append(media, photo)
	}
	if _, err := b.sender.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media)); err != nil {
		return fmt.Errorf("consumer.Bot, send media group error: %w", err)
	}
	return nil
}

func (b *Bot) showPhotos(ctx context.Context, cb *tgbotapi.CallbackQuery, value string) error {
	defer b.answer(cb.ID, "")
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	t := target{chatID: cb.Message.Chat.ID, edit: cb.Message}
	photos, err := b.tastings.Photos(ctx, cb.From.ID, id)
	if notFound(err) {
		return b.show(t, view.PhotosNotFound, nil)
	} else if err != nil {
		return err
	}
	if len(photos) == 0 {
		return b.show(t, view.NoPhotos, nil)
	}
	return b.sendPhotos(t.chatID, photos, "")
}
