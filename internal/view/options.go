// Package view renders tastings and builds telegram keyboards.
package view

var (
	Categories = []string{"Зелёный", "Белый", "Красный", "Улун", "Шу Пуэр", "Шен Пуэр", "Хэй Ча", "Другое"}

	BodyPresets = []string{"тонкое", "лёгкое", "среднее", "плотное", "маслянистое"}

	Effects = []string{"Тепло", "Охлаждение", "Расслабление", "Фокус", "Бодрость", "Тонус", "Спокойствие", "Сонливость"}

	Scenarios = []string{"Отдых", "Работа/учеба", "Творчество", "Медитация", "Общение", "Прогулка"}

	Descriptors = []string{
		"сухофрукты", "мёд", "хлебные", "цветы", "орех", "древесный", "дымный",
		"ягоды", "фрукты", "травянистый", "овощные", "пряный", "землистый",
	}

	Aftertastes = []string{
		"сладкий", "фруктовый", "ягодный", "цветочный", "цитрусовый", "кондитерский", "хлебный",
		"древесный", "пряный", "горький", "минеральный", "овощной", "землистый",
	}
)

// OtherCategory asks for a category typed by hand.
const OtherCategory = "Другое"

// Toggle list prefixes. Each names the step the list belongs to.
const (
	ListAromaDry    = "ad"
	ListAromaWarmed = "aw"
	ListTaste       = "taste"
	ListAftertaste  = "aft"
	ListEffects     = "eff"
	ListScenarios   = "scn"
)

// ListOptions returns the options of a toggle list.
func ListOptions(prefix string) []string {
	switch prefix {
	case ListAromaDry, ListAromaWarmed, ListTaste:
		return Descriptors
	case ListAftertaste:
		return Aftertastes
	case ListEffects:
		return Effects
	case ListScenarios:
		return Scenarios
	}
	return nil
}

func IsCategory(c string) bool {
	for _, category := range Categories {
		if category == c {
			return true
		}
	}
	return false
}
