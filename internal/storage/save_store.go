package storage

import (
	"context"
	"errors"
)

// ErrClosed возвращается при обращении к закрытому хранилищу
var ErrClosed = errors.New("storage: store closed")

// SaveStore определяет ключ-значение хранилище сохранений игрока.
// Схема значений принадлежит вызывающему (progression), хранилище их не разбирает.
type SaveStore interface {
	// Get читает значение ключа.
	// Возвращает:
	//   []byte - значение
	//   bool - false если ключ отсутствует
	//   error - ошибка backend'а
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set записывает значение ключа, перезаписывая прежнее
	Set(ctx context.Context, key string, value []byte) error

	// Delete удаляет ключ. Отсутствующий ключ не ошибка.
	Delete(ctx context.Context, key string) error

	// Close освобождает ресурсы backend'а
	Close() error
}

// checkContext проверяет контекст на отмену
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
