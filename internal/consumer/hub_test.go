package consumer

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"github.com/chucky-1/teadiary/internal/producer"
)

type recordingHandler struct {
	mu      sync.Mutex
	texts   map[int64][]string
	albums  []producer.Album
	handled chan int64
	block   chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		texts:   make(map[int64][]string),
		handled: make(chan int64, 16),
		block:   make(chan struct{}),
	}
}

func (h *recordingHandler) HandleUpdate(_ context.Context, update tgbotapi.Update) {
	uid := update.Message.From.ID
	if update.Message.Text == "block" {
		<-h.block
	}
	h.mu.Lock()
	h.texts[uid] = append(h.texts[uid], update.Message.Text)
	h.mu.Unlock()
	h.handled <- uid
}

func (h *recordingHandler) HandleAlbum(_ context.Context, album producer.Album) {
	h.mu.Lock()
	h.albums = append(h.albums, album)
	h.mu.Unlock()
	h.handled <- album.UserID
}

func waitHandled(t *testing.T, h *recordingHandler) int64 {
	t.Helper()
	select {
	case uid := <-h.handled:
		return uid
	case <-time.After(time.Second):
		t.Fatal("update was not handled")
		return 0
	}
}

func TestHub_Lanes(t *testing.T) {
	updates := make(chan tgbotapi.Update)
	albums := make(chan producer.Album)
	h := newRecordingHandler()
	hub := NewHub(updates, albums, h)

	done := make(chan error)
	go func() {
		done <- hub.Consume(context.Background())
	}()

	updates <- textUpdate(1, "block")
	updates <- textUpdate(1, "second")
	updates <- textUpdate(2, "other user")

	// user 2 is not held up by the busy lane of user 1
	require.Equal(t, int64(2), waitHandled(t, h))

	albums <- producer.Album{UserID: 2, FileIDs: []string{"a"}}
	require.Equal(t, int64(2), waitHandled(t, h))

	close(h.block)
	require.Equal(t, int64(1), waitHandled(t, h))
	require.Equal(t, int64(1), waitHandled(t, h))

	// idle lanes are dropped and reopened on the next update
	require.Eventually(t, func() bool { return hub.laneCount() == 0 }, time.Second, 10*time.Millisecond)
	updates <- textUpdate(1, "third")
	require.Equal(t, int64(1), waitHandled(t, h))

	close(updates)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	require.Equal(t, []string{"block", "second", "third"}, h.texts[1])
	require.Equal(t, []string{"other user"}, h.texts[2])
	require.Len(t, h.albums, 1)
}

func TestHub_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(make(chan tgbotapi.Update), make(chan producer.Album), newRecordingHandler())

	done := make(chan error)
	go func() {
		done <- hub.Consume(ctx)
	}()
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
}
