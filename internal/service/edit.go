package service

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	clearMark         = "-"
	MaxCategoryLength = 60
)

var validate = validator.New()

// EditField describes one field of a saved tasting the user can change.
type EditField struct {
	Key       string
	Label     string
	Column    string
	Prompt    string
	Clearable bool
}

// EditFields is the order of the edit menu.
var EditFields = []EditField{
	{Key: "name", Label: "Название", Column: "name", Prompt: "Пришли новое название."},
	{Key: "year", Label: "Год", Column: "year", Prompt: "Пришли год (4 цифры) или «-» чтобы очистить.", Clearable: true},
	{Key: "region", Label: "Регион", Column: "region", Prompt: "Пришли регион или «-» чтобы очистить.", Clearable: true},
	{Key: "category", Label: "Категория", Column: "category"},
	{Key: "grams", Label: "Граммовка", Column: "grams", Prompt: "Пришли граммовку (число) или «-».", Clearable: true},
	{Key: "temp_c", Label: "Температура", Column: "temp_c", Prompt: "Пришли температуру (°C) или «-».", Clearable: true},
	{Key: "tasted_at", Label: "Время", Column: "tasted_at", Prompt: "Пришли время в формате HH:MM или «-».", Clearable: true},
	{Key: "gear", Label: "Посуда", Column: "gear", Prompt: "Пришли посуду или «-».", Clearable: true},
	{Key: "aroma_dry", Label: "Аромат (сухой)", Column: "aroma_dry", Prompt: "Пришли аромат сухого листа или «-».", Clearable: true},
	{Key: "aroma_warmed", Label: "Аромат (прогретый)", Column: "aroma_warmed", Prompt: "Пришли аромат прогретого/промытого листа или «-».", Clearable: true},
	{Key: "effects", Label: "Ощущения", Column: "effects_csv", Prompt: "Пришли ощущения через запятую или «-».", Clearable: true},
	{Key: "scenarios", Label: "Сценарии", Column: "scenarios_csv", Prompt: "Пришли сценарии через запятую или «-».", Clearable: true},
	{Key: "rating", Label: "Оценка", Column: "rating"},
	{Key: "summary", Label: "Заметка", Column: "summary", Prompt: "Пришли заметку или «-».", Clearable: true},
}

func LookupEditField(key string) (EditField, bool) {
	for _, f := range EditFields {
		if f.Key == key {
			return f, true
		}
	}
	return EditField{}, false
}

// InputError is a validation failure whose Message can be shown to the user as is.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func inputErr(prefix string, f EditField) *InputError {
	return &InputError{Message: prefix + f.Prompt}
}

// ParseEditValue validates the text sent for a field and converts it to the
// column value. A nil value clears the column.
func ParseEditValue(f EditField, text string) (any, error) {
	text = strings.TrimSpace(text)
	switch f.Key {
	case "category":
		return ParseCategory(text)
	case "rating":
		return ParseEditRating(text)
	}
	if text == "" || (text == clearMark && !f.Clearable) {
		return nil, &InputError{Message: f.Prompt}
	}
	if text == clearMark {
		return nil, nil
	}
	switch f.Key {
	case "year":
		if err := validate.Var(text, "len=4,number"); err != nil {
			return nil, inputErr("Год должен состоять из 4 цифр. ", f)
		}
		year, _ := strconv.Atoi(text)
		return year, nil
	case "grams":
		grams, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
		if err != nil || math.IsNaN(grams) || math.IsInf(grams, 0) {
			return nil, inputErr("Не удалось распознать число. ", f)
		}
		return grams, nil
	case "temp_c":
		temp, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, inputErr("Используй целое число. ", f)
		}
		return int(temp), nil
	case "tasted_at":
		if err := validate.Var(text, "datetime=15:04"); err != nil {
			return nil, inputErr("Время должно быть в формате HH:MM. ", f)
		}
		return text, nil
	case "effects", "scenarios":
		list := SplitList(text)
		if len(list) == 0 {
			return nil, &InputError{Message: f.Prompt}
		}
		return strings.Join(list, ", "), nil
	}
	return text, nil
}

// ParseCategory checks a category typed by hand.
func ParseCategory(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == clearMark {
		return "", &InputError{Message: "Категория не может быть пустой. Пришли категорию текстом."}
	}
	if utf8.RuneCountInString(text) > MaxCategoryLength {
		return "", &InputError{Message: "Категория слишком длинная. Пришли категорию текстом покороче."}
	}
	return text, nil
}

func ParseEditRating(text string) (int, error) {
	rating, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || validate.Var(rating, "min=0,max=10") != nil {
		return 0, &InputError{Message: "Оценка должна быть от 0 до 10."}
	}
	return rating, nil
}

// SplitList splits a comma separated list and drops empty items.
func SplitList(text string) []string {
	var out []string
	for _, item := range strings.Split(text, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
