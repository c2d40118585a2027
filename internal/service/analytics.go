package service

import (
	"context"
	"time"

	"github.com/chucky-1/teadiary/internal/metrics"
	"github.com/chucky-1/teadiary/internal/model"
	"github.com/chucky-1/teadiary/internal/repository"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

const eventTimeout = 5 * time.Second

// Analytics records bot events. Logging never fails the caller.
type Analytics struct {
	repo    repository.Events
	clock   clockwork.Clock
	enabled bool
}

func NewAnalytics(repo repository.Events, clock clockwork.Clock, enabled bool) *Analytics {
	return &Analytics{
		repo:    repo,
		clock:   clock,
		enabled: enabled,
	}
}

func (a *Analytics) Log(ctx context.Context, userID, chatID int64, event string, props map[string]any) {
	if !a.enabled || event == "" {
		return
	}
	if len(event) > model.MaxEventLength {
		event = event[:model.MaxEventLength]
	}
	e := &model.Event{
		TS:    a.clock.Now().UTC(),
		Event: event,
		Props: props,
	}
	if userID != 0 {
		e.UserID = &userID
	}
	if chatID != 0 {
		e.ChatID = &chatID
	}
	ctx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()
	if err := a.repo.AddEvent(ctx, e); err != nil {
		metrics.EventsTotal.WithLabelValues(event, "error").Inc()
		logrus.WithFields(logrus.Fields{"event": event, "user_id": userID}).Errorf("service.Analytics, log event error: %v", err)
		return
	}
	metrics.EventsTotal.WithLabelValues(event, "ok").Inc()
}

// Stats reports the current UTC day.
func (a *Analytics) Stats(ctx context.Context) (*model.DayStats, error) {
	now := a.clock.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return a.repo.EventStats(ctx, from, from.Add(24*time.Hour))
}
