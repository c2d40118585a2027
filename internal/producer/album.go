// Package producer collects photo albums that telegram delivers as separate messages.
package producer

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/chucky-1/teadiary/internal/metrics"
)

// AlbumDelay is how long an album has to stay silent before it is delivered.
const AlbumDelay = 2 * time.Second

// Album is a media group of one user in arrival order.
type Album struct {
	UserID  int64
	ChatID  int64
	GroupID string
	FileIDs []string
}

type albumKey struct {
	userID  int64
	groupID string
}

type pendingAlbum struct {
	album Album
	timer clockwork.Timer
}

// Albums buffers photos by media group and delivers every group once no new
// photo arrived for the delay.
type Albums struct {
	clock clockwork.Clock
	delay time.Duration

	mu      sync.Mutex
	pending map[albumKey]*pendingAlbum

	albumsCh chan Album
	done     chan struct{}
	stopOnce sync.Once
}

func NewAlbums(clock clockwork.Clock, delay time.Duration) *Albums {
	return &Albums{
		clock:    clock,
		delay:    delay,
		pending:  make(map[albumKey]*pendingAlbum),
		albumsCh: make(chan Album, 16),
		done:     make(chan struct{}),
	}
}

// Albums is the channel of delivered albums.
func (a *Albums) Albums() <-chan Album {
	return a.albumsCh
}

// Add appends a photo to its media group and restarts the group's timer.
func (a *Albums) Add(userID, chatID int64, groupID, fileID string) {
	key := albumKey{userID: userID, groupID: groupID}
	a.mu.Lock()
	defer a.mu.Unlock()
	if p, ok := a.pending[key]; ok {
		p.album.FileIDs = append(p.album.FileIDs, fileID)
		p.timer.Reset(a.delay)
		return
	}
	p := &pendingAlbum{album: Album{UserID: userID, ChatID: chatID, GroupID: groupID, FileIDs: []string{fileID}}}
	p.timer = a.clock.AfterFunc(a.delay, func() {
		a.deliver(key, p)
	})
	a.pending[key] = p
}

func (a *Albums) deliver(key albumKey, p *pendingAlbum) {
	a.mu.Lock()
	if a.pending[key] != p {
		a.mu.Unlock()
		return
	}
	delete(a.pending, key)
	a.mu.Unlock()

	metrics.AlbumsFlushedTotal.Inc()
	select {
	case a.albumsCh <- p.album:
	case <-a.done:
		logrus.WithField("user_id", key.userID).Debug("album collector stopped, album dropped")
	}
}

// Flush takes the user's pending albums right away.
func (a *Albums) Flush(userID int64) []Album {
	albums := a.take(userID)
	metrics.AlbumsFlushedTotal.Add(float64(len(albums)))
	return albums
}

// Discard drops the user's pending albums and returns how many photos were dropped.
func (a *Albums) Discard(userID int64) int {
	n := 0
	for _, album := range a.take(userID) {
		n += len(album.FileIDs)
	}
	return n
}

func (a *Albums) take(userID int64) []Album {
	a.mu.Lock()
	defer a.mu.Unlock()
	var albums []Album
	for key, p := range a.pending {
		if key.userID != userID {
			continue
		}
		p.timer.Stop()
		delete(a.pending, key)
		albums = append(albums, p.album)
	}
	return albums
}

// Produce blocks until ctx is done, then stops every pending timer.
func (a *Albums) Produce(ctx context.Context) error {
	logrus.Info("album collector started")
	<-ctx.Done()
	a.stopOnce.Do(func() {
		close(a.done)
	})
	a.mu.Lock()
	for key, p := range a.pending {
		p.timer.Stop()
		delete(a.pending, key)
	}
	a.mu.Unlock()
	logrus.Infof("album collector stopped: %v", ctx.Err())
	return nil
}
