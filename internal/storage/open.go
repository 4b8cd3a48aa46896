package storage

import (
	"context"
	"fmt"

	"github.com/annel0/roguelite-platformer/internal/config"
	"github.com/annel0/roguelite-platformer/internal/logging"
)

// SlotSaveStore изолирует ключи профиля префиксом "<slot>/"
type SlotSaveStore struct {
	inner SaveStore
	slot  string
}

// WithSlot возвращает представление хранилища для слота
func WithSlot(inner SaveStore, slot string) SaveStore {
	if slot == "" {
		return inner
	}
	return &SlotSaveStore{inner: inner, slot: slot}
}

func (s *SlotSaveStore) key(k string) string { return s.slot + "/" + k }

// Get читает ключ слота
func (s *SlotSaveStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.key(key))
}

// Set пишет ключ слота
func (s *SlotSaveStore) Set(ctx context.Context, key string, value []byte) error {
	return s.inner.Set(ctx, s.key(key), value)
}

// Delete удаляет ключ слота
func (s *SlotSaveStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.key(key))
}

// Close закрывает внутреннее хранилище
func (s *SlotSaveStore) Close() error {
	return s.inner.Close()
}

// Open создаёт хранилище по конфигурации: backend, затем сжатие, затем слот
func Open(cfg config.StorageConfig) (SaveStore, error) {
	log := logging.GetStorageLogger()

	var (
		store SaveStore
		err   error
	)
	switch cfg.Backend {
	case "", "memory":
		store = NewMemorySaveStore()
	case "file":
		store, err = NewFileSaveStore(cfg.FilePath)
	case "badger":
		store, err = NewBadgerSaveStore(cfg.BadgerPath)
	case "redis":
		store, err = NewRedisSaveStore(&RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisPrefix,
		})
	case "maria":
		store, err = NewMariaSaveStore(cfg.MariaDSN)
	case "mongo":
		store, err = NewMongoSaveStore(MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	default:
		return nil, fmt.Errorf("неизвестный backend хранилища %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("открытие хранилища %s: %w", cfg.Backend, err)
	}

	if cfg.Compress {
		compressed, err := NewCompressedSaveStore(store)
		if err != nil {
			store.Close()
			return nil, err
		}
		store = compressed
	}

	log.Info("Save store opened: backend=%s compress=%v slot=%s", cfg.Backend, cfg.Compress, cfg.Slot)
	return WithSlot(store, cfg.Slot), nil
}
