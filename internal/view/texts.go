package view

import (
	"fmt"

	"github.com/chucky-1/teadiary/internal/model"
)

const (
	MainMenuText = "Привет! Что делаем — создать новую запись или найти уже созданную?"
	HelpText     = "/start — меню\n" +
		"/new — новая дегустация\n" +
		"/find — поиск (по названию, категории, году, рейтингу, последние 5)\n" +
		"/last — последние 5\n" +
		"/tz — часовой пояс\n" +
		"/menu — включить кнопки под вводом (сквозное меню)\n" +
		"/hide — скрыть кнопки\n" +
		"/reset — сброс и возврат в меню\n" +
		"/cancel — сброс текущего действия\n" +
		"/edit <id или #N> — редактировать запись\n" +
		"/delete <id или #N> — удалить запись"
	CancelText     = "Ок, сбросил. Возвращаю в меню."
	MenuShownText  = "Включил кнопки под полем ввода."
	MenuHiddenText = "Скрываю кнопки."
	ErrorText      = "Что-то пошло не так. Попробуй ещё раз или нажми «Сброс»."

	AskName        = "🍵 Название чая?"
	AskYear        = "📅 Год сбора? Можно пропустить."
	AskRegion      = "🗺️ Регион? Можно пропустить."
	AskCategory    = "🏷️ Категория?"
	AskCategoryTxt = "Введи категорию текстом:"
	AskGrams       = "⚖️ Граммовка? Можно пропустить."
	AskTemp        = "🌡️ Температура, °C? Можно пропустить."
	AskGear        = "🍶 Посудa дегустации? Можно пропустить."
	AskAromaDry    = "🌬️ Аромат сухого листа: выбери дескрипторы и нажми «Готово», или «Другое»."
	AskAromaDryTxt = "Введи аромат сухого листа текстом:"
	AskAromaWarm   = "🌬️ Аромат прогретого/промытого листа: выбери и нажми «Готово»."
	AskAromaWarmTx = "Введи аромат прогретого/промытого листа текстом:"
	AskColor       = "Цвет настоя пролива? Можно пропустить."
	AskTaste       = "Вкус настоя: выбери дескрипторы и нажми «Готово», или «Другое»."
	AskTasteTxt    = "Введи вкус текстом:"
	AskSpecial     = "✨ Особенные ноты пролива? (можно пропустить)"
	AskBody        = "Тело настоя?"
	AskBodyTxt     = "Введи тело настоя текстом:"
	AskAftertaste  = "Характер послевкусия: выбери пункты и нажми «Готово», или «Другое»."
	AskAfterTxt    = "Введи характер послевкусия текстом:"
	AftertasteHint = "Выбери вариант из списка или нажми «Другое», чтобы ввести свой вариант."
	AskMoreInf     = "Добавить ещё пролив или завершаем?"
	AskEffects     = "Ощущения (мультивыбор). Жми пункты, затем «Готово», либо «Другое»."
	AskEffectsTxt  = "Введи ощущение текстом:"
	AskScenarios   = "Сценарии (мультивыбор). Жми пункты, затем «Готово», либо «Другое»."
	AskScenarioTxt = "Введи сценарий текстом:"
	AddedMore      = "Добавил. Можешь выбрать ещё и нажать «Готово»."
	AskRating      = "Оценка сорта 0..10?"
	AskSummary     = "📝 Заметка по дегустации? (можно пропустить)"
	PhotosOnly     = "Пришли фото (или жми «Готово» / «Пропустить»)."

	SearchMenuText   = "Выбери способ поиска:"
	EmptyText        = "Пока пусто."
	LastHeader       = "Последние записи:"
	FoundHeader      = "Найдено:"
	NothingFound     = "Ничего не нашёл."
	ShowMoreText     = "Показать ещё:"
	MoreOptionsText  = "Ещё варианты:"
	SearchExpired    = "Контекст поиска устарел. Запусти поиск заново."
	TooOften         = "Слишком часто. Подожди секунду."
	NoMoreLast       = "Больше записей нет."
	NoMoreResults    = "Больше результатов нет."
	AskSearchName    = "Введи часть названия чая:"
	AskSearchCat     = "Выбери категорию или укажи вручную:"
	AskSearchYear    = "Введи год (4 цифры):"
	BadSearchYear    = "Нужно число, например 2020."
	AskMinRating     = "Минимальная оценка?"

	NotFound        = "Запись не найдена."
	NoAccess        = "Нет доступа к этой записи."
	KeepText        = "Ок, не удаляю."
	ActionsText     = "Действия:"
	PhotosNotFound  = "Фото не найдены."
	NoPhotos        = "Фото нет."
	EditUsage       = "Использование: /edit <id или #номер>"
	DeleteUsage     = "Использование: /delete <id или #номер>"
	EditCancelled   = "Редактирование отменено."
	EditLost        = "Контекст редактирования потерян."
	AskEditCategory = "Выбери категорию:"
	AskEditCatText  = "Пришли категорию текстом."
	AskEditRating   = "Выбери оценку:"

	TZBadFormat  = "Не понял формат. Пример: /tz +3 или /tz -5.5"
	StatsFailed  = "Не удалось получить статистику."
	HandlerError = "Не получилось выполнить действие. Попробуй ещё раз."
)

func AskTastedAt(nowHM string) string {
	return fmt.Sprintf("⏰ Время дегустации? Сейчас %s. Введи HH:MM, нажми «Текущее время» или пропусти.", nowHM)
}

func AskSeconds(n int) string {
	return fmt.Sprintf("🫖 Пролив %d. Время, сек?", n)
}

func AskPhotos() string {
	return fmt.Sprintf("📷 Добавьте фото (до %d). Добавлено 0/%d. Отправьте ещё или нажмите «Дальше».", model.MaxPhotos, model.MaxPhotos)
}

func PhotosAdded(n int) string {
	return fmt.Sprintf("Добавлено %d/%d. Отправьте ещё или нажмите «Дальше».", n, model.MaxPhotos)
}

func PhotosLimit() string {
	return fmt.Sprintf("Можно добавить максимум %d фото, лишние я не сохранил.", model.MaxPhotos)
}

func PhotosFull() string {
	return fmt.Sprintf("Можно добавить максимум %d фото. Нажми «Дальше» или «Пропустить».", model.MaxPhotos)
}

func AlbumTrimmed() string {
	return fmt.Sprintf("Из-за лимита %d фото сохранил только часть альбома.", model.MaxPhotos)
}

func FoundByCategory(category string) string {
	return fmt.Sprintf("Найдено по категории «%s»:", category)
}

func FoundByYear(year string) string {
	return fmt.Sprintf("Найдено за %s:", year)
}

func FoundByRating(threshold string) string {
	return fmt.Sprintf("Найдено с оценкой ≥ %s:", threshold)
}

func AskDelete(seqNo int) string {
	return fmt.Sprintf("Удалить #%d?", seqNo)
}

func Deleted(seqNo int) string {
	return fmt.Sprintf("Удалил #%d.", seqNo)
}

func EditMenu(seqNo int) string {
	return fmt.Sprintf("Редактирование #%d. Выбери поле.", seqNo)
}

func Updated(label string) string {
	return "Обновил " + label + "."
}

func TZCurrent(tz string) string {
	return "Твой локальный сдвиг (UTC): " + tz + "\n\nЧтобы поменять:\n/tz +3\n/tz -5.5"
}

func TZSaved(tz string) string {
	return "Запомнил " + tz + ". Теперь буду подставлять твоё локальное время."
}

func Stats(s *model.DayStats) string {
	return fmt.Sprintf("Сегодня:\n• DAU: %d\n• Начали дегустаций: %d\n• Сохранили: %d", s.DAU, s.Started, s.Saved)
}
