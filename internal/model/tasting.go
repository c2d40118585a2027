package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	MaxPhotos = 3
	MaxRating = 10
)

// Tasting is one diary entry. SeqNo is the running number inside the user's diary.
type Tasting struct {
	ID           int64
	UserID       int64
	SeqNo        int
	Name         string
	Year         *int
	Region       *string
	Category     string
	Grams        *float64
	TempC        *int
	TastedAt     *string // HH:MM
	Gear         *string
	AromaDry     *string
	AromaWarmed  *string
	AromaAfter   *string
	EffectsCSV   *string
	ScenariosCSV *string
	Rating       int
	Summary      *string
	CreatedAt    time.Time
}

// Title is the name followed by the year and region when they are known.
func (t *Tasting) Title() string {
	var extra []string
	if t.Year != nil {
		extra = append(extra, fmt.Sprint(*t.Year))
	}
	if t.Region != nil && *t.Region != "" {
		extra = append(extra, *t.Region)
	}
	if len(extra) == 0 {
		return t.Name
	}
	return fmt.Sprintf("%s (%s)", t.Name, strings.Join(extra, ", "))
}

type Infusion struct {
	ID           int64
	TastingID    int64
	N            int
	Seconds      *int
	LiquorColor  *string
	Taste        *string
	SpecialNotes *string
	Body         *string
	Aftertaste   *string
}

// Card is everything needed to render a saved tasting.
type Card struct {
	Tasting    *Tasting
	Infusions  []Infusion
	PhotoIDs   []string
	PhotoCount int
}

type SearchKind string

const (
	SearchLast     SearchKind = "last"
	SearchName     SearchKind = "name"
	SearchCategory SearchKind = "cat"
	SearchYear     SearchKind = "year"
	SearchRating   SearchKind = "rating"
)

// Filter narrows a user's tastings. Nil and empty fields are not applied.
type Filter struct {
	UserID    int64
	Name      string
	Category  string
	Year      *int
	MinRating *int
}

func StringPtr(s string) *string {
	return &s
}

func IntPtr(i int) *int {
	return &i
}
