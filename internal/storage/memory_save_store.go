package storage

import (
	"context"
	"sync"
)

// MemorySaveStore хранит сохранения в памяти.
// Используется в тестах и для запуска без внешнего хранилища.
// ВНИМАНИЕ: Данные теряются при перезапуске!
type MemorySaveStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemorySaveStore создает пустое хранилище в памяти
func NewMemorySaveStore() *MemorySaveStore {
	return &MemorySaveStore{
		data: make(map[string][]byte),
	}
}

// Get читает значение ключа
func (s *MemorySaveStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := checkContext(ctx); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, false, ErrClosed
	}
	value, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Set записывает значение ключа
func (s *MemorySaveStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete удаляет ключ
func (s *MemorySaveStore) Delete(ctx context.Context, key string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	delete(s.data, key)
	return nil
}

// Close помечает хранилище закрытым
func (s *MemorySaveStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Keys возвращает сохранённые ключи (для отладки и тестов)
func (s *MemorySaveStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
