// Package weapon выбирает форму атаки по уровню оружия и состоянию игрока и
// передаёт хитбоксы резолверу боя.
package weapon

import (
	"fmt"

	"github.com/annel0/roguelite-platformer/internal/catalog"
)

// Weapon оружие с уровнем эволюции 0..4
type Weapon struct {
	key   string
	spec  catalog.WeaponSpec
	level int
	bonus float64 // прибавка урона от улучшений weaponDamage
}

// New создаёт оружие нулевого уровня
func New(key string, spec catalog.WeaponSpec) *Weapon {
	return &Weapon{key: key, spec: spec}
}

// Key ключ оружия в каталоге
func (w *Weapon) Key() string { return w.key }

// Level текущий уровень
func (w *Weapon) Level() int { return w.level }

// Stats параметры текущего уровня
func (w *Weapon) Stats() catalog.WeaponLevelStats {
	if w.level < len(w.spec.Levels) {
		return w.spec.Levels[w.level]
	}
	return w.spec.Levels[len(w.spec.Levels)-1]
}

// Damage урон удара с учётом бонуса
func (w *Weapon) Damage() float64 {
	return w.Stats().Damage + w.bonus
}

// SetBonusDamage задаёт прибавку урона
func (w *Weapon) SetBonusDamage(bonus float64) {
	w.bonus = bonus
}

// LevelUp повышает уровень на один. На последнем уровне ничего не делает.
func (w *Weapon) LevelUp() bool {
	if w.level >= w.maxLevel() {
		return false
	}
	w.level++
	return true
}

// SetLevel задаёт уровень с ограничением диапазоном 0..max
func (w *Weapon) SetLevel(level int) {
	if level < 0 {
		level = 0
	}
	if level > w.maxLevel() {
		level = w.maxLevel()
	}
	w.level = level
}

func (w *Weapon) maxLevel() int {
	return len(w.spec.Levels) - 1
}

// Label подпись для HUD, например "Sword Lv.2"
func (w *Weapon) Label() string {
	return fmt.Sprintf("%s Lv.%d", w.spec.Name, w.level)
}
