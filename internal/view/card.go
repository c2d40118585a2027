package view

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/chucky-1/teadiary/internal/model"
)

const (
	MessageLimit = 4096
	CaptionLimit = 1024
)

func ShortRow(t *model.Tasting) string {
	return fmt.Sprintf("#%d [%s] %s", t.SeqNo, t.Category, t.Name)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func present(s *string) bool {
	return s != nil && *s != ""
}

// CardText renders a tasting with its infusions.
func CardText(card *model.Card) string {
	t := card.Tasting
	lines := []string{
		fmt.Sprintf("#%d %s", t.SeqNo, t.Title()),
		fmt.Sprintf("⭐ Оценка: %d", t.Rating),
	}
	if t.Grams != nil {
		lines = append(lines, fmt.Sprintf("⚖️ Граммовка: %s г", strconv.FormatFloat(*t.Grams, 'f', -1, 64)))
	}
	if t.TempC != nil {
		lines = append(lines, fmt.Sprintf("🌡️ Температура: %d °C", *t.TempC))
	}
	if present(t.TastedAt) {
		lines = append(lines, "⏰ Время дегустации: "+*t.TastedAt)
	}
	if present(t.Gear) {
		lines = append(lines, "🍶 Посуда: "+*t.Gear)
	}
	if present(t.AromaDry) || present(t.AromaWarmed) {
		lines = append(lines, "🌬️ Ароматы:")
		if present(t.AromaDry) {
			lines = append(lines, "  ▫️ сухой лист: "+*t.AromaDry)
		}
		if present(t.AromaWarmed) {
			lines = append(lines, "  ▫️ прогретый/промытый лист: "+*t.AromaWarmed)
		}
	}
	if present(t.EffectsCSV) {
		lines = append(lines, "🧘 Ощущения: "+*t.EffectsCSV)
	}
	if present(t.ScenariosCSV) {
		lines = append(lines, "🎯 Сценарии: "+*t.ScenariosCSV)
	}
	if present(t.Summary) {
		lines = append(lines, "📝 Заметка: "+*t.Summary)
	}
	if card.PhotoCount > 0 {
		lines = append(lines, fmt.Sprintf("📷 Фото: %d шт.", card.PhotoCount))
	}
	if len(card.Infusions) > 0 {
		lines = append(lines, "🫖 Проливы:")
		for _, inf := range card.Infusions {
			seconds := "-"
			if inf.Seconds != nil {
				seconds = strconv.Itoa(*inf.Seconds)
			}
			lines = append(lines, fmt.Sprintf("  #%d: %s сек; цвет: %s; вкус: %s; ноты: %s; тело: %s; послевкусие: %s",
				inf.N, seconds, orDash(inf.LiquorColor), orDash(inf.Taste), orDash(inf.SpecialNotes),
				orDash(inf.Body), orDash(inf.Aftertaste)))
		}
	}
	return strings.Join(lines, "\n")
}

// TextLen counts UTF-16 code units, the way telegram measures message length.
func TextLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// SplitText cuts text into messages of at most limit. It breaks between
// paragraphs first, then between lines, and cuts a line only when it is
// longer than limit on its own.
func SplitText(text string, limit int) []string {
	if TextLen(text) <= limit {
		return []string{text}
	}
	paragraphs := strings.Split(text, "\n\n")
	for i := range paragraphs {
		paragraphs[i] = strings.TrimSpace(paragraphs[i])
	}
	parts := pack(paragraphs, "\n\n", limit, func(paragraph string) []string {
		return pack(strings.Split(paragraph, "\n"), "\n", limit, func(line string) []string {
			return hardCut(line, limit)
		})
	})
	if len(parts) == 0 {
		return hardCut(text, limit)[:1]
	}
	return parts
}

func pack(pieces []string, sep string, limit int, split func(string) []string) []string {
	var out []string
	current := ""
	for _, piece := range pieces {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		if current != "" && TextLen(current)+TextLen(sep)+TextLen(piece) <= limit {
			current += sep + piece
			continue
		}
		if current != "" {
			out = append(out, current)
			current = ""
		}
		if TextLen(piece) <= limit {
			current = piece
			continue
		}
		out = append(out, split(piece)...)
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

func hardCut(s string, limit int) []string {
	var out []string
	var b strings.Builder
	n := 0
	for _, r := range s {
		size := utf16.RuneLen(r)
		if n+size > limit {
			out = append(out, b.String())
			b.Reset()
			n = 0
		}
		b.WriteRune(r)
		n += size
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
