package prefs

import (
	"context"
	"sync"
)

// Preferences 保存用户的客户端偏好设置。
type Preferences struct {
	Theme string `json:"theme"`
}

// Store is an injectable preference store with a pluggable persistence
// backend. Implementations must return the configured defaults for users
// that have never saved preferences.
type Store interface {
	Get(ctx context.Context, userID uint) (Preferences, error)
	Set(ctx context.Context, userID uint, p Preferences) error
}

// memoryStore 是 Store 的进程内默认实现。
type memoryStore struct {
	mu       sync.RWMutex
	prefs    map[uint]Preferences
	defaults Preferences
}

// NewMemoryStore creates the in-memory default backend.
func NewMemoryStore(defaults Preferences) Store {
	return &memoryStore{
		prefs:    make(map[uint]Preferences),
		defaults: defaults,
	}
}

func (s *memoryStore) Get(_ context.Context, userID uint) (Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.prefs[userID]; ok {
		return p, nil
	}
	return s.defaults, nil
}

func (s *memoryStore) Set(_ context.Context, userID uint, p Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[userID] = p
	return nil
}
