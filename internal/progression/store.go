// Package progression хранит экономику между забегами: монеты, временные
// улучшения с ослаблением при смерти, постоянные способности и открытые уровни.
package progression

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/annel0/roguelite-platformer/internal/catalog"
	"github.com/annel0/roguelite-platformer/internal/logging"
	"github.com/annel0/roguelite-platformer/internal/notify"
	"github.com/annel0/roguelite-platformer/internal/storage"
)

// persistTimeout ограничивает синхронную запись в хранилище
const persistTimeout = 5 * time.Second

// Store прогресс игрока поверх SaveStore. Делится между симуляцией и API хаба.
type Store struct {
	mu       sync.Mutex
	save     storage.SaveStore
	upgrades catalog.UpgradeSpec
	maxLevel int

	state    UpgradeState
	unlocked int

	emitMu  sync.RWMutex
	emitter notify.Emitter

	log *logging.Logger
}

// NewStore создаёт хранилище прогресса и загружает сохранение
func NewStore(save storage.SaveStore, cat *catalog.Catalog, emitter notify.Emitter) *Store {
	maxLevel := cat.Level.MaxLevel
	if maxLevel <= 0 {
		maxLevel = 10
	}
	s := &Store{
		save:     save,
		upgrades: cat.Upgrades,
		maxLevel: maxLevel,
		unlocked: 1,
		emitter:  notify.OrNop(emitter),
		log:      logging.GetProgressionLogger(),
	}
	s.Reload()
	return s
}

// SetEmitter меняет получателя уведомлений
func (s *Store) SetEmitter(e notify.Emitter) {
	s.emitMu.Lock()
	s.emitter = notify.OrNop(e)
	s.emitMu.Unlock()
}

func (s *Store) emit(events ...notify.Event) {
	s.emitMu.RLock()
	em := s.emitter
	s.emitMu.RUnlock()
	for _, e := range events {
		em.Emit(e)
	}
}

// Reload перечитывает сохранение. Повреждённые данные заменяются значениями
// по умолчанию с предупреждением.
func (s *Store) Reload() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = UpgradeState{}
	s.unlocked = 1

	raw, found, err := s.save.Get(ctx, KeyPlayerUpgrades)
	switch {
	case err != nil:
		s.log.Warn("Failed to read %s, using defaults: %v", KeyPlayerUpgrades, err)
	case found:
		state, err := DecodeState(raw)
		if err != nil {
			s.log.Warn("Corrupted save, using defaults: %v", err)
		} else {
			s.state = state
		}
	}

	raw, found, err = s.save.Get(ctx, KeyUnlockedLevels)
	switch {
	case err != nil:
		s.log.Warn("Failed to read %s, using 1: %v", KeyUnlockedLevels, err)
	case found:
		n, err := strconv.Atoi(string(raw))
		if err != nil {
			s.log.Warn("Corrupted %s %q, using 1", KeyUnlockedLevels, string(raw))
		} else {
			s.unlocked = s.clampLevel(n)
		}
	}

	s.log.Debug("Loaded progress: coins=%d upgrades=%+v unlocked=%d", s.state.Coins, s.state.CurrentUpgrades, s.unlocked)
}

// Snapshot копия текущего состояния
func (s *Store) Snapshot() UpgradeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Coins баланс монет
func (s *Store) Coins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Coins
}

// UpgradeLevel уровень временного улучшения
func (s *Store) UpgradeLevel(t catalog.UpgradeType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CurrentUpgrades.Get(t)
}

// HasMovementUnlock открыта ли способность передвижения
func (s *Store) HasMovementUnlock(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.HasMovementUnlock(tag)
}

// AddCoins начисляет монеты. Неположительная сумма игнорируется.
func (s *Store) AddCoins(amount int) {
	if amount <= 0 {
		return
	}

	s.mu.Lock()
	s.state.Coins += amount
	coins := s.state.Coins
	s.persistUpgradesLocked()
	s.mu.Unlock()

	s.emit(notify.CoinsChanged{Coins: coins})
}

// PurchaseUpgrade покупает уровень улучшения по плоской цене.
// Нехватка монет или неизвестный тип возвращают false без изменений.
func (s *Store) PurchaseUpgrade(t catalog.UpgradeType) bool {
	cost, ok := s.upgrades.Costs[t]
	if !ok || cost <= 0 {
		s.log.Debug("Unknown upgrade %q", t)
		return false
	}

	s.mu.Lock()
	if s.state.Coins < cost {
		have := s.state.Coins
		s.mu.Unlock()
		s.log.Debug("Cannot purchase %s: need %d, have %d", t, cost, have)
		return false
	}
	s.state.Coins -= cost
	p := s.state.CurrentUpgrades.field(t)
	*p++
	value, coins := *p, s.state.Coins
	s.persistUpgradesLocked()
	s.mu.Unlock()

	s.log.Info("Purchased %s for %d coins (level %d)", t, cost, value)
	s.emit(
		notify.UpgradeChanged{Upgrade: string(t), Value: value},
		notify.CoinsChanged{Coins: coins},
	)
	return true
}

// ApplyDeathDecay ослабляет временные улучшения (floor(x * rate)) и сохраняет.
// Постоянные способности не затрагиваются.
func (s *Store) ApplyDeathDecay() {
	s.mu.Lock()
	events := make([]notify.Event, 0, len(catalog.UpgradeTypes))
	for _, t := range catalog.UpgradeTypes {
		p := s.state.CurrentUpgrades.field(t)
		*p = int(math.Floor(float64(*p) * s.upgrades.DecayRate))
		events = append(events, notify.UpgradeChanged{Upgrade: string(t), Value: *p})
	}
	decayed := s.state.CurrentUpgrades
	s.persistUpgradesLocked()
	s.mu.Unlock()

	s.log.Info("Death decay applied: %+v", decayed)
	s.emit(events...)
}

// UnlockMovement открывает способность. Повторный вызов ничего не меняет,
// неизвестный тег игнорируется.
func (s *Store) UnlockMovement(tag string) bool {
	s.mu.Lock()
	p := s.state.PermanentUpgrades.MovementUnlocks.field(tag)
	if p == nil {
		s.mu.Unlock()
		s.log.Debug("Unknown movement unlock %q ignored", tag)
		return false
	}
	if *p {
		s.mu.Unlock()
		return true
	}
	*p = true
	s.persistUpgradesLocked()
	s.mu.Unlock()

	s.emit(notify.MovementUnlocked{Unlock: tag})
	return true
}

// UnlockedLevels число открытых уровней (1..max)
func (s *Store) UnlockedLevels() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked
}

// MaxLevel номер последнего уровня
func (s *Store) MaxLevel() int { return s.maxLevel }

// IsLevelUnlocked доступен ли уровень для выбора в хабе
func (s *Store) IsLevelUnlocked(level int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return level >= 1 && level <= s.unlocked
}

// CompleteLevel отмечает прохождение уровня. Следующий открывается, только если
// пройден самый дальний открытый уровень и он не последний. Закрытый уровень
// ничего не открывает.
func (s *Store) CompleteLevel(level int) (unlocked int, newUnlock bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if level == s.unlocked && level < s.maxLevel {
		s.unlocked = s.clampLevel(level + 1)
		newUnlock = true
		s.persistLevelsLocked()
		s.log.Info("Level %d complete, unlocked %d", level, s.unlocked)
	}
	return s.unlocked, newUnlock
}

// Reset стирает весь прогресс: удаляет улучшения и закрывает уровни кроме первого
func (s *Store) Reset() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	s.mu.Lock()
	s.state = UpgradeState{}
	s.unlocked = 1
	if err := s.save.Delete(ctx, KeyPlayerUpgrades); err != nil {
		s.log.Error("Failed to delete %s: %v", KeyPlayerUpgrades, err)
	}
	s.persistLevelsLocked()
	s.mu.Unlock()

	s.log.Info("Progress reset")
	s.emit(notify.CoinsChanged{Coins: 0})
}

func (s *Store) clampLevel(n int) int {
	if n < 1 {
		return 1
	}
	if n > s.maxLevel {
		return s.maxLevel
	}
	return n
}

func (s *Store) persistUpgradesLocked() {
	data, err := s.state.Encode()
	if err != nil {
		s.log.Error("Failed to encode %s: %v", KeyPlayerUpgrades, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.save.Set(ctx, KeyPlayerUpgrades, data); err != nil {
		s.log.Error("Failed to save %s: %v", KeyPlayerUpgrades, err)
	}
}

func (s *Store) persistLevelsLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.save.Set(ctx, KeyUnlockedLevels, []byte(strconv.Itoa(s.unlocked))); err != nil {
		s.log.Error("Failed to save %s: %v", KeyUnlockedLevels, err)
	}
}
