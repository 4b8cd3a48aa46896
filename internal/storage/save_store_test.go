package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/roguelite-platformer/internal/config"
)

// exerciseStore проверяет общий контракт SaveStore
func exerciseStore(t *testing.T, store SaveStore) {
	ctx := context.Background()

	t.Run("Missing key", func(t *testing.T) {
		value, found, err := store.Get(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, value)
	})

	t.Run("Set and Get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "playerUpgrades", []byte(`{"coins":40}`)))
		value, found, err := store.Get(ctx, "playerUpgrades")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `{"coins":40}`, string(value))
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "unlockedLevels", []byte("1")))
		require.NoError(t, store.Set(ctx, "unlockedLevels", []byte("3")))
		value, _, err := store.Get(ctx, "unlockedLevels")
		require.NoError(t, err)
		assert.Equal(t, "3", string(value))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "playerUpgrades"))
		_, found, err := store.Get(ctx, "playerUpgrades")
		require.NoError(t, err)
		assert.False(t, found)
		assert.NoError(t, store.Delete(ctx, "playerUpgrades"), "повторное удаление не ошибка")
	})

	t.Run("Closed", func(t *testing.T) {
		require.NoError(t, store.Close())
		_, _, err := store.Get(ctx, "unlockedLevels")
		assert.True(t, errors.Is(err, ErrClosed))
		assert.True(t, errors.Is(store.Set(ctx, "k", []byte("v")), ErrClosed))
	})
}

func TestMemorySaveStore(t *testing.T) {
	exerciseStore(t, NewMemorySaveStore())
}

func TestMemorySaveStoreCancelledContext(t *testing.T) {
	store := NewMemorySaveStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Set(ctx, "k", []byte("v")), context.Canceled)
	assert.Empty(t, store.Keys())
}

func TestFileSaveStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves", "save.json")
	store, err := NewFileSaveStore(path)
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestFileSaveStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	ctx := context.Background()

	store, err := NewFileSaveStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "unlockedLevels", []byte("4")))
	require.NoError(t, store.Close())

	reopened, err := NewFileSaveStore(path)
	require.NoError(t, err)
	value, found, err := reopened.Get(ctx, "unlockedLevels")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "4", string(value))
}

func TestBadgerSaveStore(t *testing.T) {
	store, err := NewBadgerSaveStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestCompressedSaveStore(t *testing.T) {
	inner := NewMemorySaveStore()
	store, err := NewCompressedSaveStore(inner)
	require.NoError(t, err)

	ctx := context.Background()
	payload := []byte(`{"coins":120,"currentUpgrades":{"weaponDamage":0,"weaponLevel":2,"health":1,"speed":0}}`)
	require.NoError(t, store.Set(ctx, "playerUpgrades", payload))

	raw, found, err := inner.Get(ctx, "playerUpgrades")
	require.NoError(t, err)
	require.True(t, found)
	assert.NotEqual(t, payload, raw, "внутри хранится сжатое значение")

	value, found, err := store.Get(ctx, "playerUpgrades")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload, value)

	// Несжатые данные не распаковываются
	require.NoError(t, inner.Set(ctx, "broken", []byte("plain")))
	_, _, err = store.Get(ctx, "broken")
	assert.Error(t, err)

	exerciseStore(t, store)
}

func TestSlotIsolation(t *testing.T) {
	inner := NewMemorySaveStore()
	ctx := context.Background()

	a := WithSlot(inner, "alice")
	b := WithSlot(inner, "bob")
	require.NoError(t, a.Set(ctx, "unlockedLevels", []byte("5")))

	_, found, err := b.Get(ctx, "unlockedLevels")
	require.NoError(t, err)
	assert.False(t, found)
	assert.ElementsMatch(t, []string{"alice/unlockedLevels"}, inner.Keys())
	assert.Same(t, inner, WithSlot(inner, ""))
}

func TestOpen(t *testing.T) {
	cfg := config.Default().Storage
	cfg.Backend = "file"
	cfg.FilePath = filepath.Join(t.TempDir(), "save.json")
	cfg.Compress = true

	store, err := Open(cfg)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "unlockedLevels", []byte("2")))
	value, found, err := store.Get(ctx, "unlockedLevels")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2", string(value))

	_, err = Open(config.StorageConfig{Backend: "floppy"})
	assert.Error(t, err)
}
