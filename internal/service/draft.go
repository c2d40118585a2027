package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/chucky-1/teadiary/internal/model"
)

// The questionnaire is lenient: input that does not parse is stored as empty.

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Integer columns are 32-bit.
func fitsColumn(v float64) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}

func parseNumber(text string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func ParseYear(text string) *int {
	text = strings.TrimSpace(text)
	if !isDigits(text) {
		return nil
	}
	year, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return nil
	}
	return model.IntPtr(int(year))
}

func ParseGrams(text string) *float64 {
	grams, ok := parseNumber(text)
	if !ok {
		return nil
	}
	return &grams
}

func ParseTemp(text string) *int {
	temp, ok := parseNumber(text)
	if !ok || !fitsColumn(math.Trunc(temp)) {
		return nil
	}
	return model.IntPtr(int(temp))
}

func ParseTastedAt(text string) *string {
	text = strings.TrimSpace(text)
	if validate.Var(text, "datetime=15:04") != nil {
		return nil
	}
	return &text
}

func ParseSeconds(text string) *int {
	return ParseYear(text)
}

// ParseRating clamps digits to 0..10. Anything else is 0.
func ParseRating(text string) int {
	text = strings.TrimSpace(text)
	if !isDigits(text) {
		return 0
	}
	rating, err := strconv.Atoi(text)
	if err != nil || rating > model.MaxRating {
		return model.MaxRating
	}
	return rating
}

// OptionalText returns nil for blank input.
func OptionalText(text string) *string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return &text
}

// JoinSelected renders toggled options as "a, b". No options gives nil.
func JoinSelected(items []string) *string {
	if len(items) == 0 {
		return nil
	}
	return model.StringPtr(strings.Join(items, ", "))
}

// Toggle adds the item or removes it when it is already selected.
func Toggle(selected []string, item string) []string {
	for i, s := range selected {
		if s == item {
			return append(selected[:i:i], selected[i+1:]...)
		}
	}
	return append(selected, item)
}

// TastingFromDraft converts a finished questionnaire. The aftertaste of the
// last infusion becomes the aftertaste of the tasting.
func TastingFromDraft(d *model.Draft) (*model.Tasting, []model.Infusion, []string) {
	t := &model.Tasting{
		UserID:       d.UserID,
		Name:         d.Name,
		Year:         d.Year,
		Region:       d.Region,
		Category:     d.Category,
		Grams:        d.Grams,
		TempC:        d.TempC,
		TastedAt:     d.TastedAt,
		Gear:         d.Gear,
		AromaDry:     d.AromaDry,
		AromaWarmed:  d.AromaWarmed,
		EffectsCSV:   JoinSelected(d.Effects),
		ScenariosCSV: JoinSelected(d.Scenarios),
		Rating:       d.Rating,
		Summary:      d.Summary,
	}
	infusions := make([]model.Infusion, len(d.Infusions))
	copy(infusions, d.Infusions)
	for i := range infusions {
		infusions[i].N = i + 1
	}
	if n := len(infusions); n > 0 {
		t.AromaAfter = infusions[n-1].Aftertaste
	}
	photos := d.Photos
	if len(photos) > model.MaxPhotos {
		photos = photos[:model.MaxPhotos]
	}
	return t, infusions, photos
}
