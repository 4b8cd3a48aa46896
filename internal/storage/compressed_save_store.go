package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// CompressedSaveStore сжимает значения zstd поверх другого хранилища
type CompressedSaveStore struct {
	inner        SaveStore
	compressor   *zstd.Encoder
	decompressor *zstd.Decoder

	mu     sync.RWMutex
	closed bool
}

// NewCompressedSaveStore оборачивает inner сжатием
func NewCompressedSaveStore(inner SaveStore) (*CompressedSaveStore, error) {
	compressor, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create compressor: %w", err)
	}
	decompressor, err := zstd.NewReader(nil)
	if err != nil {
		compressor.Close()
		return nil, fmt.Errorf("failed to create decompressor: %w", err)
	}
	return &CompressedSaveStore{
		inner:        inner,
		compressor:   compressor,
		decompressor: decompressor,
	}, nil
}

// Get читает и распаковывает значение
func (s *CompressedSaveStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}

	raw, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	value, err := s.decompressor.DecodeAll(raw, nil)
	if err != nil {
		return nil, false, fmt.Errorf("decompress %s: %w", key, err)
	}
	return value, true, nil
}

// Set сжимает и записывает значение
func (s *CompressedSaveStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return s.inner.Set(ctx, key, s.compressor.EncodeAll(value, nil))
}

// Delete удаляет ключ
func (s *CompressedSaveStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// Close закрывает кодеки и внутреннее хранилище
func (s *CompressedSaveStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.compressor.Close()
	s.decompressor.Close()
	return s.inner.Close()
}
