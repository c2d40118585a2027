package producer

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, a *Albums) Album {
	t.Helper()
	select {
	case album := <-a.Albums():
		return album
	case <-time.After(time.Second):
		t.Fatal("album was not delivered")
	}
	return Album{}
}

func TestAlbums_DeliverAfterSilence(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := NewAlbums(clock, AlbumDelay)

	a.Add(1, 10, "g1", "p1")
	clock.Advance(time.Second)
	a.Add(1, 10, "g1", "p2")
	clock.Advance(1500 * time.Millisecond)

	select {
	case <-a.Albums():
		t.Fatal("album delivered before the delay passed")
	default:
	}

	clock.Advance(time.Second)
	album := receive(t, a)
	require.Equal(t, Album{UserID: 1, ChatID: 10, GroupID: "g1", FileIDs: []string{"p1", "p2"}}, album)
}

func TestAlbums_GroupsAreSeparate(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := NewAlbums(clock, AlbumDelay)

	a.Add(1, 10, "g1", "p1")
	a.Add(2, 20, "g1", "q1")
	clock.Advance(AlbumDelay)

	got := map[int64][]string{}
	for i := 0; i < 2; i++ {
		album := receive(t, a)
		got[album.UserID] = album.FileIDs
	}
	require.Equal(t, map[int64][]string{1: {"p1"}, 2: {"q1"}}, got)
}

func TestAlbums_FlushAndDiscard(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := NewAlbums(clock, AlbumDelay)

	a.Add(1, 10, "g1", "p1")
	a.Add(1, 10, "g1", "p2")
	a.Add(1, 10, "g2", "p3")
	a.Add(2, 20, "g3", "q1")

	flushed := a.Flush(1)
	require.Len(t, flushed, 2)
	require.Empty(t, a.Flush(1))

	require.Equal(t, 1, a.Discard(2))
	require.Zero(t, a.Discard(2))

	clock.Advance(AlbumDelay)
	select {
	case album := <-a.Albums():
		t.Fatalf("taken album delivered again: %v", album)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAlbums_ProduceStops(t *testing.T) {
	a := NewAlbums(clockwork.NewFakeClock(), AlbumDelay)
	a.Add(1, 10, "g1", "p1")

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Produce(ctx)
	}()
	cancel()
	require.NoError(t, <-errCh)
	require.Empty(t, a.Flush(1))
}
