// Package memstore keeps sessions in process memory. It is the default store
// when no database is configured.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
)

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[models.ObjectID]*models.Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[models.ObjectID]*models.Session),
		now:      time.Now,
	}
}

func (s *SessionStore) Create(_ context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = models.NewObjectID()
	}
	now := s.now()
	session.CreatedAt = now
	session.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *SessionStore) Get(_ context.Context, id models.ObjectID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return session.Clone(), nil
}

func (s *SessionStore) Save(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; !ok {
		return models.ErrNotFound
	}
	session.UpdatedAt = s.now()
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id models.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}
