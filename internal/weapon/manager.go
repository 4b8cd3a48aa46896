package weapon

import (
	"github.com/annel0/roguelite-platformer/internal/catalog"
	"github.com/annel0/roguelite-platformer/internal/notify"
)

// DefaultWeapon оружие, с которым начинает игрок
const DefaultWeapon = "sword"

// Manager инвентарь оружия и текущий выбор
type Manager struct {
	weapons map[string]*Weapon
	order   []string
	current string
	emitter notify.Emitter
}

// NewManager создаёт инвентарь со всем оружием каталога
func NewManager(cat *catalog.Catalog, emitter notify.Emitter) *Manager {
	m := &Manager{
		weapons: make(map[string]*Weapon),
		emitter: notify.OrNop(emitter),
	}
	for _, key := range cat.WeaponNames() {
		spec, _ := cat.Weapon(key)
		m.weapons[key] = New(key, spec)
		m.order = append(m.order, key)
	}
	if _, ok := m.weapons[DefaultWeapon]; ok {
		m.current = DefaultWeapon
	} else if len(m.order) > 0 {
		m.current = m.order[0]
	}
	return m
}

// Current текущее оружие
func (m *Manager) Current() *Weapon {
	return m.weapons[m.current]
}

// Names ключи оружия в инвентаре
func (m *Manager) Names() []string {
	return append([]string(nil), m.order...)
}

// Switch переключает оружие. Уровень улучшения переходит к новому оружию,
// неизвестный ключ игнорируется.
func (m *Manager) Switch(key string) bool {
	w, ok := m.weapons[key]
	if !ok {
		return false
	}
	if cur := m.Current(); cur != nil {
		w.SetLevel(cur.Level())
	}
	m.current = key
	m.announce(w)
	return true
}

// Cycle переключает на следующее оружие по порядку ключей
func (m *Manager) Cycle() *Weapon {
	if len(m.order) < 2 {
		return m.Current()
	}
	next := m.order[0]
	for i, key := range m.order {
		if key == m.current {
			next = m.order[(i+1)%len(m.order)]
			break
		}
	}
	m.Switch(next)
	return m.Current()
}

// UpgradeCurrent повышает уровень текущего оружия
func (m *Manager) UpgradeCurrent() bool {
	w := m.Current()
	if w == nil || !w.LevelUp() {
		return false
	}
	m.announce(w)
	return true
}

// SetCurrentLevel выставляет уровень текущего оружия из сохранённых улучшений
func (m *Manager) SetCurrentLevel(level int) {
	w := m.Current()
	if w == nil {
		return
	}
	w.SetLevel(level)
	m.announce(w)
}

// SetBonusDamage задаёт прибавку урона всему оружию
func (m *Manager) SetBonusDamage(bonus float64) {
	for _, w := range m.weapons {
		w.SetBonusDamage(bonus)
	}
}

func (m *Manager) announce(w *Weapon) {
	m.emitter.Emit(notify.WeaponChanged{Label: w.Label(), Level: w.Level()})
}
