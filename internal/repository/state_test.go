package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chucky-1/teadiary/internal/model"
)

func TestStatesLocalStorage_SetGetClear(t *testing.T) {
	ctx := context.Background()
	s := NewStatesLocalStorage()

	session, err := s.Get(ctx, 125)
	require.NoError(t, err)
	require.Equal(t, model.StateNone, session.State)

	session.State = model.StateInfTaste
	session.Draft.Name = "Да Хун Пао"
	session.Draft.Year = model.IntPtr(2019)
	session.Draft.Selected = []string{"мёд", "камень"}
	session.Draft.Infusions = []model.Infusion{{N: 1, Seconds: model.IntPtr(15)}}
	require.NoError(t, s.Set(ctx, 125, session))
	require.Equal(t, 1, len(s.m))

	got, err := s.Get(ctx, 125)
	require.NoError(t, err)
	require.Equal(t, session, got)
	require.Equal(t, 2, got.Draft.NextInfusion())

	// stored sessions are copies
	got.Draft.Name = "changed"
	again, err := s.Get(ctx, 125)
	require.NoError(t, err)
	require.Equal(t, "Да Хун Пао", again.Draft.Name)

	require.NoError(t, s.Clear(ctx, 125))
	require.Equal(t, 0, len(s.m))
}
