package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/chucky-1/teadiary/internal/model"
)

// States keeps per-user conversation state. A missing state is an empty session.
type States interface {
	Get(ctx context.Context, userID int64) (*model.Session, error)
	Set(ctx context.Context, userID int64, session *model.Session) error
	Clear(ctx context.Context, userID int64) error
}

type StatesLocalStorage struct {
	mu sync.Mutex
	m  map[int64][]byte
}

func NewStatesLocalStorage() *StatesLocalStorage {
	return &StatesLocalStorage{
		m: make(map[int64][]byte),
	}
}

func (l *StatesLocalStorage) Get(_ context.Context, userID int64) (*model.Session, error) {
	l.mu.Lock()
	data, ok := l.m[userID]
	l.mu.Unlock()
	if !ok {
		return &model.Session{}, nil
	}
	return decodeSession(data)
}

func (l *StatesLocalStorage) Set(_ context.Context, userID int64, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("repository.StatesLocalStorage.Set marshal error: %w", err)
	}
	l.mu.Lock()
	l.m[userID] = data
	l.mu.Unlock()
	return nil
}

func (l *StatesLocalStorage) Clear(_ context.Context, userID int64) error {
	l.mu.Lock()
	delete(l.m, userID)
	l.mu.Unlock()
	return nil
}

func decodeSession(data []byte) (*model.Session, error) {
	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("repository.States, decode session error: %w", err)
	}
	return &session, nil
}
