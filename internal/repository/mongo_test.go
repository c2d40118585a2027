//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chucky-1/teadiary/internal/model"
)

func TestMongo_EventStats(t *testing.T) {
	ctx := context.Background()
	repo := NewMongo(mongoCli, "teadiary_test")
	defer func() {
		require.NoError(t, mongoCli.Database("teadiary_test").Drop(ctx))
	}()
	require.NoError(t, repo.EnsureIndexes(ctx))

	day := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)
	first, second := int64(1), int64(2)
	events := []model.Event{
		{TS: day.Add(time.Hour), UserID: &first, Event: model.EventNewTastingStarted},
		{TS: day.Add(2 * time.Hour), UserID: &first, Event: model.EventTastingSaved, Props: map[string]any{"seq_no": 1}},
		{TS: day.Add(3 * time.Hour), UserID: &second, Event: model.EventStart},
		{TS: day.Add(4 * time.Hour), Event: model.EventSearch},
		{TS: day.Add(-time.Hour), UserID: &second, Event: model.EventTastingSaved},
	}
	for i := range events {
		require.NoError(t, repo.AddEvent(ctx, &events[i]))
	}

	stats, err := repo.EventStats(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, &model.DayStats{DAU: 2, Started: 1, Saved: 1}, stats)
}
