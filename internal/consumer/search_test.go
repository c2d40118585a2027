package consumer

import (
	"context"
	"fmt"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"github.com/chucky-1/teadiary/internal/model"
	"github.com/chucky-1/teadiary/internal/view"
)

// moreData returns the payload of the last "show more" button.
func moreData(t *testing.T, f *fakeSender) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		m, ok := f.sent[i].(tgbotapi.MessageConfig)
		if !ok || m.Text != view.ShowMoreText {
			continue
		}
		kb := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
		return *kb.InlineKeyboard[0][0].CallbackData
	}
	t.Fatal("no show more button")
	return ""
}

func TestBot_SearchLast(t *testing.T) {
	ctx := context.Background()
	tb := newTestBot(t)

	tb.HandleUpdate(ctx, commandUpdate(1, "/last"))
	require.Equal(t, []string{view.EmptyText}, tb.sender.texts())

	for i := 1; i <= 7; i++ {
		tb.saveTasting(t, &model.Draft{UserID: 1, Name: fmt.Sprintf("Чай %d", i), Category: "Улун", Rating: i})
	}
	tb.saveTasting(t, &model.Draft{UserID: 2, Name: "Чужой", Category: "Улун"})

	tb.sender.reset()
	tb.HandleUpdate(ctx, commandUpdate(1, "/last"))
	require.Equal(t, []string{
		view.LastHeader,
		"#7 [Улун] Чай 7",
		"#6 [Улун] Чай 6",
		"#5 [Улун] Чай 5",
		"#4 [Улун] Чай 4",
		"#3 [Улун] Чай 3",
		view.ShowMoreText,
		view.MoreOptionsText,
	}, tb.sender.texts())
	data := moreData(t, tb.sender)
	require.LessOrEqual(t, len(data), 64)

	// a cursor of another user is refused
	tb.sender.reset()
	tb.HandleUpdate(ctx, callbackUpdate(2, data))
	require.Equal(t, []string{view.SearchExpired}, tb.sender.texts())

	tb.sender.reset()
	tb.HandleUpdate(ctx, callbackUpdate(1, data))
	require.Equal(t, []string{"#2 [Улун] Чай 2", "#1 [Улун] Чай 1"}, tb.sender.texts())

	// pressed again right away
	tb.sender.reset()
	tb.HandleUpdate(ctx, callbackUpdate(1, data))
	require.Empty(t, tb.sender.texts())
	require.Equal(t, []string{view.TooOften}, tb.sender.callbackAnswers())

	tb.clock.Advance(2 * time.Second)
	tb.sender.reset()
	tb.HandleUpdate(ctx, callbackUpdate(1, "more:last:1|1|"))
	require.Equal(t, []string{view.NoMoreLast}, tb.sender.texts())
}

func TestBot_SearchByText(t *testing.T) {
	ctx := context.Background()
	tb := newTestBot(t)
	tb.saveTasting(t, &model.Draft{UserID: 1, Name: "Лунцзин", Category: "Зелёный", Year: model.IntPtr(2021)})
	tb.saveTasting(t, &model.Draft{UserID: 1, Name: "Те Гуань Инь", Category: "Улун", Year: model.IntPtr(2020)})

	tb.HandleUpdate(ctx, callbackUpdate(1, view.CbSearchName))
	require.Equal(t, model.StateSearchName, tb.state(t, 1).State)
	tb.sender.reset()
	tb.HandleUpdate(ctx, textUpdate(1, "лунц"))
	require.Equal(t, []string{view.FoundHeader, "#1 [Зелёный] Лунцзин", view.MoreOptionsText}, tb.sender.texts())
	require.Equal(t, model.StateNone, tb.state(t, 1).State)

	tb.HandleUpdate(ctx, callbackUpdate(1, view.CbSearchYear))
	tb.HandleUpdate(ctx, textUpdate(1, "20x0"))
	require.Equal(t, view.BadSearchYear, tb.sender.last())

	tb.HandleUpdate(ctx, callbackUpdate(1, view.CbSearchYear))
	tb.sender.reset()
	tb.HandleUpdate(ctx, textUpdate(1, "2020"))
	require.Equal(t, []string{view.FoundByYear("2020"), "#2 [Улун] Те Гуань Инь", view.MoreOptionsText}, tb.sender.texts())

	tb.sender.reset()
	tb.HandleUpdate(ctx, callbackUpdate(1, "scat:Улун"))
	require.Equal(t, []string{view.FoundByCategory("Улун"), "#2 [Улун] Те Гуань Инь", view.MoreOptionsText}, tb.sender.texts())

	tb.HandleUpdate(ctx, callbackUpdate(1, "scat:"+view.OtherCatValue))
	require.Equal(t, model.StateSearchCategory, tb.state(t, 1).State)
	tb.sender.reset()
	tb.HandleUpdate(ctx, textUpdate(1, "Пуэр"))
	require.Equal(t, []string{view.NothingFound}, tb.sender.texts())
}

func TestBot_SearchMoreKeepsLongQuery(t *testing.T) {
	ctx := context.Background()
	tb := newTestBot(t)
	const uid = int64(5123456789)
	const query = "Те Гуань Инь Анси осенний"

	tb.saveTasting(t, &model.Draft{UserID: uid, Name: "Те Гуань Инь Анси весенний", Category: "Улун"})
	tb.saveTasting(t, &model.Draft{UserID: uid, Name: query, Category: "Улун"})
	tb.saveTasting(t, &model.Draft{UserID: uid, Name: "Те Гуань Инь Анси весенний", Category: "Улун"})
	for i := 0; i < 5; i++ {
		tb.saveTasting(t, &model.Draft{UserID: uid, Name: query, Category: "Улун"})
	}

	tb.HandleUpdate(ctx, callbackUpdate(uid, view.CbSearchName))
	tb.sender.reset()
	tb.HandleUpdate(ctx, textUpdate(uid, query))
	require.Equal(t, []string{
		view.FoundHeader,
		"#8 [Улун] " + query,
		"#7 [Улун] " + query,
		"#6 [Улун] " + query,
		"#5 [Улун] " + query,
		"#4 [Улун] " + query,
		view.ShowMoreText,
		view.MoreOptionsText,
	}, tb.sender.texts())
	data := moreData(t, tb.sender)
	require.LessOrEqual(t, len(data), 64)

	tb.sender.reset()
	tb.HandleUpdate(ctx, callbackUpdate(uid, data))
	require.Equal(t, []string{"#2 [Улун] " + query}, tb.sender.texts())

	// a newer search replaces the saved query
	tb.HandleUpdate(ctx, callbackUpdate(uid, view.CbSearchName))
	tb.HandleUpdate(ctx, textUpdate(uid, query))
	tb.clock.Advance(2 * time.Second)
	tb.sender.reset()
	tb.HandleUpdate(ctx, callbackUpdate(uid, data))
	require.Equal(t, []string{view.SearchExpired}, tb.sender.texts())
}
