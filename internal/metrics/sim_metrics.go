// Package metrics экспортирует счётчики симуляции в Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/roguelite-platformer/internal/notify"
)

// SimMetrics слушатель уведомлений и наблюдатель тиков.
//
// Метрики:
// * sim_events_total{kind}: все уведомления по типу
// * sim_enemies_killed_total{archetype,tier}
// * sim_coins_awarded_total: монеты за убийства
// * sim_damage_dealt_total: урон по врагам
// * sim_health_healed_total: лечение аптечками
// * sim_tick_duration_seconds: histogram
type SimMetrics struct {
	events       *prometheus.CounterVec
	killed       *prometheus.CounterVec
	coins        prometheus.Counter
	damage       prometheus.Counter
	healed       prometheus.Counter
	tickDuration prometheus.Histogram
}

// NewSimMetrics создаёт метрики и регистрирует их в reg (nil = глобальный регистр)
func NewSimMetrics(reg prometheus.Registerer) (*SimMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &SimMetrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sim",
			Name:      "events_total",
			Help:      "Уведомления симуляции по типу.",
		}, []string{"kind"}),
		killed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sim",
			Name:      "enemies_killed_total",
			Help:      "Уничтоженные враги по архетипу и тиру.",
		}, []string{"archetype", "tier"}),
		coins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sim",
			Name:      "coins_awarded_total",
			Help:      "Монеты, выданные за убийства.",
		}),
		damage: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sim",
			Name:      "damage_dealt_total",
			Help:      "Суммарный урон по врагам.",
		}),
		healed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sim",
			Name:      "health_healed_total",
			Help:      "Здоровье, восстановленное аптечками.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sim",
			Name:      "tick_duration_seconds",
			Help:      "Длительность одного тика симуляции.",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.0167},
		}),
	}

	for _, c := range []prometheus.Collector{m.events, m.killed, m.coins, m.damage, m.healed, m.tickDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// OnEvent реализует notify.Listener
func (m *SimMetrics) OnEvent(e notify.Event) {
	m.events.WithLabelValues(string(e.Kind())).Inc()

	switch ev := e.(type) {
	case notify.EnemyKilled:
		m.killed.WithLabelValues(ev.Archetype, ev.Tier).Inc()
		if ev.Reward > 0 {
			m.coins.Add(float64(ev.Reward))
		}
	case notify.EnemyDamaged:
		m.damage.Add(ev.Amount)
	case notify.HealthPackCollected:
		m.healed.Add(ev.Healed)
	}
}

// ObserveTick реализует game.TickObserver
func (m *SimMetrics) ObserveTick(d time.Duration) {
	m.tickDuration.Observe(d.Seconds())
}
