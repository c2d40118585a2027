package view

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/chucky-1/teadiary/internal/service"
)

// Callback data of buttons without parameters.
const (
	CbNew         = "new"
	CbFind        = "find"
	CbHelp        = "help"
	CbBackMain    = "back:main"
	CbNavHome     = "nav:home"
	CbTimeNow     = "time:now"
	CbMoreInf     = "more_inf"
	CbFinishInf   = "finish_inf"
	CbPhotosDone  = "photos:done"
	CbSkipPhotos  = "skip:photos"
	CbSearchName  = "s_name"
	CbSearchCat   = "s_cat"
	CbSearchYear  = "s_year"
	CbSearchRate  = "s_rating"
	CbSearchLast  = "s_last"
	OtherValue    = "other"
	DoneValue     = "done"
	OtherCatValue = "__other__"
	BackValue     = "__back__"
	CancelValue   = "cancel"
)

// Reply keyboard texts.
const (
	BtnNew   = "📝 Новая дегустация"
	BtnFind  = "🔎 Найти записи"
	BtnLast  = "🕔 Последние 5"
	BtnHelp  = "❔ Помощь"
	BtnReset = "Сброс"
)

func button(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

// grid lays buttons out in rows of the given sizes. The last size repeats.
func grid(buttons []tgbotapi.InlineKeyboardButton, sizes ...int) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0)
	for i := 0; len(buttons) > 0; i++ {
		size := sizes[len(sizes)-1]
		if i < len(sizes) {
			size = sizes[i]
		}
		if size > len(buttons) {
			size = len(buttons)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons[:size]...))
		buttons = buttons[size:]
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// NoKeyboard removes the inline keyboard of an edited message.
func NoKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
}

func MainKeyboard() tgbotapi.InlineKeyboardMarkup {
	return grid([]tgbotapi.InlineKeyboardButton{
		button(BtnNew, CbNew),
		button(BtnFind, CbFind),
		button(BtnHelp, CbHelp),
	}, 1)
}

func ReplyMainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnNew), tgbotapi.NewKeyboardButton(BtnFind)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnLast), tgbotapi.NewKeyboardButton(BtnHelp)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnReset)),
	)
	kb.InputFieldPlaceholder = "Выбери действие"
	return kb
}

func categoryButtons(prefix string) []tgbotapi.InlineKeyboardButton {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(Categories)+2)
	for _, c := range Categories {
		buttons = append(buttons, button(c, prefix+":"+c))
	}
	return buttons
}

func CategoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	return grid(categoryButtons("cat"), 2)
}

func CategorySearchKeyboard() tgbotapi.InlineKeyboardMarkup {
	buttons := append(categoryButtons("scat"), button("Другая категория (ввести)", "scat:"+OtherCatValue))
	return grid(buttons, 2)
}

func EditCategoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	buttons := append(categoryButtons("ecat"),
		button("Другое (ввести)", "ecat:"+OtherCatValue),
		button("⬅️ Назад", "ecat:"+BackValue))
	return grid(buttons, 2)
}

func SkipKeyboard(tag string) tgbotapi.InlineKeyboardMarkup {
	return grid([]tgbotapi.InlineKeyboardButton{button("Пропустить", "skip:"+tag)}, 1)
}

func TimeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return grid([]tgbotapi.InlineKeyboardButton{
		button("Текущее время", CbTimeNow),
		button("Пропустить", "skip:tasted_at"),
	}, 1)
}

func MoreInfusionsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return grid([]tgbotapi.InlineKeyboardButton{
		button("🫖 Ещё пролив", CbMoreInf),
		button("✅ Завершить", CbFinishInf),
	}, 2)
}

func BodyKeyboard() tgbotapi.InlineKeyboardMarkup {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(BodyPresets)+1)
	for _, b := range BodyPresets {
		buttons = append(buttons, button(b, "body:"+b))
	}
	buttons = append(buttons, button("Другое", "body:"+OtherValue))
	return grid(buttons, 3, 2)
}

// ToggleKeyboard is a multi-select list. Selected options are marked, callbacks
// carry the option index.
func ToggleKeyboard(prefix string, selected []string) tgbotapi.InlineKeyboardMarkup {
	options := ListOptions(prefix)
	picked := make(map[string]bool, len(selected))
	for _, s := range selected {
		picked[s] = true
	}
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(options)+2)
	for i, item := range options {
		text := item
		if picked[item] {
			text = "✅ " + item
		}
		buttons = append(buttons, button(text, fmt.Sprintf("%s:%d", prefix, i)))
	}
	buttons = append(buttons,
		button("Другое", prefix+":"+OtherValue),
		button("Готово", prefix+":"+DoneValue))
	return grid(buttons, 2)
}

func ratingKeyboard(prefix string) tgbotapi.InlineKeyboardMarkup {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, 11)
	for i := 0; i <= 10; i++ {
		buttons = append(buttons, button(strconv.Itoa(i), prefix+":"+strconv.Itoa(i)))
	}
	return grid(buttons, 6, 5)
}

func RatingKeyboard() tgbotapi.InlineKeyboardMarkup {
	return ratingKeyboard("rate")
}

func RatingFilterKeyboard() tgbotapi.InlineKeyboardMarkup {
	return ratingKeyboard("frate")
}

func EditRatingKeyboard() tgbotapi.InlineKeyboardMarkup {
	return ratingKeyboard("erat")
}

func PhotosKeyboard() tgbotapi.InlineKeyboardMarkup {
	return grid([]tgbotapi.InlineKeyboardButton{
		button("Готово", CbPhotosDone),
		button("Пропустить", CbSkipPhotos),
	}, 2)
}

func SearchMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return grid([]tgbotapi.InlineKeyboardButton{
		button("По названию", CbSearchName),
		button("По категории", CbSearchCat),
		button("По году", CbSearchYear),
		button("По рейтингу", CbSearchRate),
		button("Последние 5", CbSearchLast),
		button("⬅️ Назад", CbBackMain),
	}, 2)
}

func OpenKeyboard(id int64) tgbotapi.InlineKeyboardMarkup {
	return grid([]tgbotapi.InlineKeyboardButton{button("Открыть", fmt.Sprintf("open:%d", id))}, 1)
}

func MoreKeyboard(data string) tgbotapi.InlineKeyboardMarkup {
	return grid([]tgbotapi.InlineKeyboardButton{button("Показать ещё", data)}, 1)
}

func CardActionsKeyboard(id int64) tgbotapi.InlineKeyboardMarkup {
	return grid([]tgbotapi.InlineKeyboardButton{
		button("✏️ Редактировать", fmt.Sprintf("edit:%d", id)),
		button("🗑️ Удалить", fmt.Sprintf("del:%d", id)),
		button("⬅️ Назад", CbBackMain),
	}, 2, 1)
}

func EditFieldsKeyboard() tgbotapi.InlineKeyboardMarkup {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(service.EditFields)+1)
	for _, f := range service.EditFields {
		buttons = append(buttons, button(f.Label, "efld:"+f.Key))
	}
	buttons = append(buttons, button("Отмена", "efld:"+CancelValue))
	return grid(buttons, 2)
}

func ConfirmDeleteKeyboard(id int64) tgbotapi.InlineKeyboardMarkup {
	return grid([]tgbotapi.InlineKeyboardButton{
		button("Да, удалить", fmt.Sprintf("delok:%d", id)),
		button("Отмена", fmt.Sprintf("delno:%d", id)),
	}, 2)
}

func HomeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return grid([]tgbotapi.InlineKeyboardButton{button("⬅️ В меню", CbNavHome)}, 1)
}
