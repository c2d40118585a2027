package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chucky-1/teadiary/internal/model"
	"github.com/chucky-1/teadiary/internal/repository"
	"github.com/chucky-1/teadiary/internal/repository/mocks"
)

func saveDraft(t *testing.T, s *Tastings, userID int64, name, category string, year *int, rating int) *model.Tasting {
	t.Helper()
	card, err := s.Save(context.Background(), &model.Draft{UserID: userID, Name: name, Category: category, Year: year, Rating: rating})
	require.NoError(t, err)
	return card.Tasting
}

func TestTastings_SaveAndCard(t *testing.T) {
	ctx := context.Background()
	s := NewTastings(newStore(t, clockwork.NewFakeClockAt(testNow)))

	card, err := s.Save(ctx, &model.Draft{
		UserID:    1,
		Name:      "Шен Пуэр",
		Category:  "Шен Пуэр",
		Scenarios: []string{"Работа/учеба"},
		Photos:    []string{"a", "b"},
		Infusions: []model.Infusion{{Seconds: model.IntPtr(5)}, {Seconds: model.IntPtr(8)}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, card.Tasting.SeqNo)
	require.Equal(t, 2, card.PhotoCount)

	got, err := s.Card(ctx, 1, card.Tasting.ID)
	require.NoError(t, err)
	require.Equal(t, card.Tasting.ID, got.Tasting.ID)
	require.Len(t, got.Infusions, 2)
	require.Equal(t, 2, got.Infusions[1].N)
	require.Equal(t, []string{"a", "b"}, got.PhotoIDs)
	require.Equal(t, model.StringPtr("Работа/учеба"), got.Tasting.ScenariosCSV)

	_, err = s.Card(ctx, 2, card.Tasting.ID)
	require.ErrorIs(t, err, repository.TastingNotFoundErr)
	_, err = s.Photos(ctx, 2, card.Tasting.ID)
	require.ErrorIs(t, err, repository.TastingNotFoundErr)

	second := saveDraft(t, s, 1, "Габа", "Улун", nil, 5)
	require.Equal(t, 2, second.SeqNo)
}

func TestTastings_SaveRetriesSeqConflict(t *testing.T) {
	repo := mocks.NewTastings(t)
	repo.On("CreateTasting", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("insert: %w", repository.DuplicateSeqErr)).Once()
	repo.On("CreateTasting", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	card, err := NewTastings(repo).Save(context.Background(), &model.Draft{UserID: 1, Name: "Те Гуань Инь"})
	require.NoError(t, err)
	require.Equal(t, "Те Гуань Инь", card.Tasting.Name)
}

func TestTastings_SaveGivesUpAfterSecondConflict(t *testing.T) {
	repo := mocks.NewTastings(t)
	repo.On("CreateTasting", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(repository.DuplicateSeqErr).Twice()

	_, err := NewTastings(repo).Save(context.Background(), &model.Draft{UserID: 1, Name: "Те Гуань Инь"})
	require.ErrorIs(t, err, repository.DuplicateSeqErr)
}

func TestTastings_Page(t *testing.T) {
	ctx := context.Background()
	s := NewTastings(newStore(t, clockwork.NewFakeClockAt(testNow)))
	var saved []*model.Tasting
	for i := 0; i < 7; i++ {
		saved = append(saved, saveDraft(t, s, 1, fmt.Sprintf("Улун %d", i), "Улун", model.IntPtr(2018+i%2), i))
	}
	saveDraft(t, s, 2, "Чужой улун", "Улун", nil, 10)

	page, err := s.Page(ctx, 1, model.SearchLast, "", 0)
	require.NoError(t, err)
	require.Len(t, page.Tastings, PageSize)
	require.True(t, page.HasMore)
	require.Equal(t, saved[6].ID, page.Tastings[0].ID)
	require.Equal(t, saved[2].ID, page.MinID())

	next, err := s.Page(ctx, 1, model.SearchLast, "", page.MinID())
	require.NoError(t, err)
	require.Len(t, next.Tastings, 2)
	require.False(t, next.HasMore)
	require.Equal(t, saved[0].ID, next.MinID())

	byYear, err := s.Page(ctx, 1, model.SearchYear, "2019", 0)
	require.NoError(t, err)
	require.Len(t, byYear.Tastings, 3)
	require.False(t, byYear.HasMore)

	byRating, err := s.Page(ctx, 1, model.SearchRating, "5", 0)
	require.NoError(t, err)
	require.Len(t, byRating.Tastings, 2)

	byName, err := s.Page(ctx, 1, model.SearchName, "улун 3", 0)
	require.NoError(t, err)
	require.Len(t, byName.Tastings, 1)
	require.Equal(t, saved[3].ID, byName.Tastings[0].ID)

	byCategory, err := s.Page(ctx, 1, model.SearchCategory, "УЛУН", 0)
	require.NoError(t, err)
	require.Len(t, byCategory.Tastings, PageSize)
	require.True(t, byCategory.HasMore)

	invalid, err := s.Page(ctx, 1, model.SearchYear, "двадцатый", 0)
	require.NoError(t, err)
	require.Empty(t, invalid.Tastings)
	require.False(t, invalid.HasMore)
}

func TestTastings_Resolve(t *testing.T) {
	ctx := context.Background()
	s := NewTastings(newStore(t, clockwork.NewFakeClockAt(testNow)))
	first := saveDraft(t, s, 1, "Бай Хао Инь Чжэнь", "Белый", nil, 8)
	saveDraft(t, s, 1, "Шоу Мэй", "Белый", nil, 6)
	foreign := saveDraft(t, s, 2, "Бай Му Дань", "Белый", nil, 7)

	got, err := s.Resolve(ctx, 1, "#1")
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)

	got, err = s.Resolve(ctx, 1, fmt.Sprint(first.ID))
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)

	for _, ref := range []string{fmt.Sprint(foreign.ID), "#3", "#0", "#x", "abc", "", "-1"} {
		_, err = s.Resolve(ctx, 1, ref)
		require.ErrorIs(t, err, repository.TastingNotFoundErr, ref)
	}
}

func TestTastings_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewTastings(newStore(t, clockwork.NewFakeClockAt(testNow)))
	tasting := saveDraft(t, s, 1, "Дянь Хун", "Красный", model.IntPtr(2020), 7)

	require.NoError(t, s.UpdateField(ctx, 1, tasting.ID, field(t, "year"), "-"))
	require.NoError(t, s.UpdateField(ctx, 1, tasting.ID, field(t, "grams"), "4,5"))
	require.NoError(t, s.UpdateField(ctx, 1, tasting.ID, field(t, "effects"), "Тепло,Бодрость"))
	require.NoError(t, s.SetField(ctx, 1, tasting.ID, field(t, "rating"), 9))

	var inputErr *InputError
	require.ErrorAs(t, s.UpdateField(ctx, 1, tasting.ID, field(t, "tasted_at"), "полдень"), &inputErr)
	require.ErrorIs(t, s.UpdateField(ctx, 2, tasting.ID, field(t, "name"), "Чужое"), repository.TastingNotFoundErr)

	got, err := s.Get(ctx, 1, tasting.ID)
	require.NoError(t, err)
	require.Nil(t, got.Year)
	require.NotNil(t, got.Grams)
	require.Equal(t, 4.5, *got.Grams)
	require.Equal(t, model.StringPtr("Тепло, Бодрость"), got.EffectsCSV)
	require.Equal(t, 9, got.Rating)
	require.Equal(t, "Дянь Хун", got.Name)

	require.ErrorIs(t, s.Delete(ctx, 2, tasting.ID), repository.TastingNotFoundErr)
	require.NoError(t, s.Delete(ctx, 1, tasting.ID))
	_, err = s.Get(ctx, 1, tasting.ID)
	require.ErrorIs(t, err, repository.TastingNotFoundErr)
}
