package view

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chucky-1/teadiary/internal/model"
)

func TestCardText(t *testing.T) {
	grams := 5.0
	card := &model.Card{
		Tasting: &model.Tasting{
			SeqNo:      3,
			Name:       "Да Хун Пао",
			Year:       model.IntPtr(2021),
			Region:     model.StringPtr("Уишань"),
			Grams:      &grams,
			TempC:      model.IntPtr(95),
			AromaDry:   model.StringPtr("дымный, орех"),
			EffectsCSV: model.StringPtr("Тепло"),
			Rating:     9,
		},
		Infusions: []model.Infusion{
			{N: 1, Seconds: model.IntPtr(10), Taste: model.StringPtr("мёд")},
			{N: 2},
		},
		PhotoCount: 2,
	}
	want := strings.Join([]string{
		"#3 Да Хун Пао (2021, Уишань)",
		"⭐ Оценка: 9",
		"⚖️ Граммовка: 5 г",
		"🌡️ Температура: 95 °C",
		"🌬️ Ароматы:",
		"  ▫️ сухой лист: дымный, орех",
		"🧘 Ощущения: Тепло",
		"📷 Фото: 2 шт.",
		"🫖 Проливы:",
		"  #1: 10 сек; цвет: -; вкус: мёд; ноты: -; тело: -; послевкусие: -",
		"  #2: - сек; цвет: -; вкус: -; ноты: -; тело: -; послевкусие: -",
	}, "\n")
	require.Equal(t, want, CardText(card))
}

func TestShortRow(t *testing.T) {
	require.Equal(t, "#7 [Улун] Габа", ShortRow(&model.Tasting{SeqNo: 7, Category: "Улун", Name: "Габа"}))
}

func TestSplitText(t *testing.T) {
	t.Run("short text is one part", func(t *testing.T) {
		require.Equal(t, []string{"чай"}, SplitText("чай", 10))
	})
	t.Run("paragraphs are kept together", func(t *testing.T) {
		text := "aaaa\n\nbbbb\n\ncccc"
		require.Equal(t, []string{"aaaa\n\nbbbb", "cccc"}, SplitText(text, 10))
	})
	t.Run("long paragraph splits on lines", func(t *testing.T) {
		text := "aaaa\nbbbb\ncccc\n\ndd"
		require.Equal(t, []string{"aaaa\nbbbb", "cccc", "dd"}, SplitText(text, 9))
	})
	t.Run("long line is cut", func(t *testing.T) {
		require.Equal(t, []string{"ааааа", "ааааа", "аа"}, SplitText(strings.Repeat("а", 12), 5))
	})
	t.Run("every part fits", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 500; i++ {
			b.WriteString("🍵 строка дегустации номер такой-то\n")
			if i%7 == 0 {
				b.WriteString("\n")
			}
		}
		parts := SplitText(b.String(), MessageLimit)
		require.Greater(t, len(parts), 1)
		for _, p := range parts {
			require.LessOrEqual(t, TextLen(p), MessageLimit)
			require.NotEmpty(t, p)
		}
	})
}

func TestTextLen(t *testing.T) {
	require.Equal(t, 3, TextLen("чай"))
	require.Equal(t, 2, TextLen("🍵"))
}
