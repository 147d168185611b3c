package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolayk812/storefront-client/internal/port"
)

type memoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() port.Store {
	return &memoryStore{
		values: make(map[string]string),
	}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("key is empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	return value, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

func (s *memoryStore) Remove(_ context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

func (s *memoryStore) CompareAndSwap(_ context.Context, key string, old, next *string) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("key is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.values[key]
	if !matches(current, ok, old) {
		return false, nil
	}

	if next == nil {
		delete(s.values, key)
	} else {
		s.values[key] = *next
	}

	return true, nil
}

// matches reports whether the stored state equals the expected one,
// where a nil expectation means absent.
func matches(current string, present bool, expected *string) bool {
	if expected == nil {
		return !present
	}
	return present && current == *expected
}
