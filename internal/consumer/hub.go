package consumer

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/chucky-1/teadiary/internal/producer"
)

const laneBuffer = 32

// Handler processes the work of one user.
type Handler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
	HandleAlbum(ctx context.Context, album producer.Album)
}

type lane struct {
	jobs    chan func(context.Context)
	pending int
}

// Hub gives every user a lane: updates of one user are handled in arrival
// order, different users do not wait for each other. A lane is dropped as soon
// as its queue runs empty.
type Hub struct {
	updatesChan tgbotapi.UpdatesChannel
	albumsChan  <-chan producer.Album
	handler     Handler

	mu    sync.Mutex
	lanes map[int64]*lane
	wg    sync.WaitGroup
}

func NewHub(updatesChan tgbotapi.UpdatesChannel, albumsChan <-chan producer.Album, handler Handler) *Hub {
	return &Hub{
		updatesChan: updatesChan,
		albumsChan:  albumsChan,
		handler:     handler,
		lanes:       make(map[int64]*lane),
	}
}

// Consume returns when ctx is done or the updates channel is closed, after
// the running handlers finish.
func (h *Hub) Consume(ctx context.Context) error {
	logrus.Info("hub consumer started")
	defer func() {
		h.mu.Lock()
		for _, l := range h.lanes {
			close(l.jobs)
		}
		h.mu.Unlock()
		h.wg.Wait()
	}()
	for {
		select {
		case <-ctx.Done():
			logrus.Infof("hub consumer stopped: %v", ctx.Err())
			return nil
		case update, ok := <-h.updatesChan:
			if !ok {
				logrus.Info("hub consumer stopped: updates channel closed")
				return nil
			}
			from := update.SentFrom()
			if from == nil {
				h.handler.HandleUpdate(ctx, update)
				continue
			}
			h.dispatch(ctx, from.ID, func(ctx context.Context) {
				h.handler.HandleUpdate(ctx, update)
			})
		case album := <-h.albumsChan:
			h.dispatch(ctx, album.UserID, func(ctx context.Context) {
				h.handler.HandleAlbum(ctx, album)
			})
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, userID int64, job func(context.Context)) {
	h.mu.Lock()
	l, ok := h.lanes[userID]
	if !ok {
		logrus.WithField("user_id", userID).Debug("hub consumer opened a lane")
		l = &lane{jobs: make(chan func(context.Context), laneBuffer)}
		h.lanes[userID] = l
		h.wg.Add(1)
		go h.run(ctx, userID, l)
	}
	l.pending++
	h.mu.Unlock()

	select {
	case l.jobs <- job:
	case <-ctx.Done():
		h.mu.Lock()
		l.pending--
		h.mu.Unlock()
	}
}

// run handles the jobs of one lane and exits once nothing is pending. Only
// run removes its lane, so dispatch never sends to a lane without a reader.
func (h *Hub) run(ctx context.Context, userID int64, l *lane) {
	defer h.wg.Done()
	for job := range l.jobs {
		if ctx.Err() == nil {
			job(ctx)
		}
		h.mu.Lock()
		l.pending--
		if l.pending == 0 {
			delete(h.lanes, userID)
			h.mu.Unlock()
			return
		}
		h.mu.Unlock()
	}
}

func (h *Hub) laneCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.lanes)
}
