package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/roguelite-platformer/internal/logging"
	"github.com/annel0/roguelite-platformer/internal/notify"
)

// PayloadVersion версия JSON схемы уведомлений
const PayloadVersion = 1

// Приоритеты конвертов
const (
	PriorityLow      = 1
	PriorityHigh     = 7
	publishTimeout   = 2 * time.Second
	defaultQueueSize = 1024
	// Сколько высокий приоритет ждёт места в очереди, прежде чем отбросить конверт
	highPriorityWait = 50 * time.Millisecond
)

// highPriority уведомления, которые ждут места в очереди вместо немедленного отброса
var highPriority = map[notify.Kind]bool{
	notify.KindPlayerDied:       true,
	notify.KindLevelComplete:    true,
	notify.KindUpgradeChanged:   true,
	notify.KindMovementUnlocked: true,
	notify.KindCoinsChanged:     true,
}

// NewEnvelope упаковывает уведомление в конверт
func NewEnvelope(source, runID string, e notify.Event) (*Envelope, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", e.Kind(), err)
	}
	prio := PriorityLow
	if highPriority[e.Kind()] {
		prio = PriorityHigh
	}
	return &Envelope{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Source:        source,
		EventType:     string(e.Kind()),
		Version:       PayloadVersion,
		CorrelationID: runID,
		Priority:      prio,
		Payload:       payload,
	}, nil
}

var decoders = map[notify.Kind]func([]byte) (notify.Event, error){
	notify.KindHealthChanged:       decodeAs[notify.HealthChanged],
	notify.KindCoinsChanged:        decodeAs[notify.CoinsChanged],
	notify.KindWeaponChanged:       decodeAs[notify.WeaponChanged],
	notify.KindPlayerDied:          decodeAs[notify.PlayerDied],
	notify.KindLevelComplete:       decodeAs[notify.LevelComplete],
	notify.KindUpgradeChanged:      decodeAs[notify.UpgradeChanged],
	notify.KindMovementUnlocked:    decodeAs[notify.MovementUnlocked],
	notify.KindParrySuccess:        decodeAs[notify.ParrySuccess],
	notify.KindEnemyDamaged:        decodeAs[notify.EnemyDamaged],
	notify.KindEnemyKilled:         decodeAs[notify.EnemyKilled],
	notify.KindHealthPackCollected: decodeAs[notify.HealthPackCollected],
}

func decodeAs[T notify.Event](data []byte) (notify.Event, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Decode восстанавливает уведомление из конверта
func Decode(ev *Envelope) (notify.Event, error) {
	dec, ok := decoders[notify.Kind(ev.EventType)]
	if !ok {
		return nil, fmt.Errorf("неизвестный тип события %q", ev.EventType)
	}
	e, err := dec(ev.Payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ev.EventType, err)
	}
	return e, nil
}

// Forwarder пересылает уведомления симуляции в шину. Emit не блокирует тик:
// конверты уходят через очередь, при переполнении низкий приоритет отбрасывается
// сразу, высокий после ожидания highPriorityWait.
type Forwarder struct {
	bus    EventBus
	source string
	runID  string

	mu      sync.RWMutex
	closed  bool
	queue   chan *Envelope
	wg      sync.WaitGroup
	dropped uint64
	log     *logging.Logger
}

// NewForwarder запускает пересылку. runID попадает в CorrelationID, "" = новый UUID.
func NewForwarder(bus EventBus, source, runID string) *Forwarder {
	return newForwarder(bus, source, runID, defaultQueueSize)
}

func newForwarder(bus EventBus, source, runID string, queueSize int) *Forwarder {
	if runID == "" {
		runID = uuid.NewString()
	}
	f := &Forwarder{
		bus:    bus,
		source: source,
		runID:  runID,
		queue:  make(chan *Envelope, queueSize),
		log:    logging.GetComponentLogger("eventbus"),
	}
	f.wg.Add(1)
	go f.loop()
	return f
}

// RunID идентификатор забега в конвертах
func (f *Forwarder) RunID() string { return f.runID }

// OnEvent реализует notify.Listener
func (f *Forwarder) OnEvent(e notify.Event) {
	env, err := NewEnvelope(f.source, f.runID, e)
	if err != nil {
		f.log.Warn("Skip %s: %v", e.Kind(), err)
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		atomic.AddUint64(&f.dropped, 1)
		return
	}
	if env.Priority >= PriorityHigh {
		timer := time.NewTimer(highPriorityWait)
		defer timer.Stop()
		select {
		case f.queue <- env:
		case <-timer.C:
			atomic.AddUint64(&f.dropped, 1)
			f.log.Warn("Queue full, %s dropped", env.EventType)
		}
		return
	}
	select {
	case f.queue <- env:
	default:
		atomic.AddUint64(&f.dropped, 1)
	}
}

// Emit позволяет передать Forwarder как notify.Emitter
func (f *Forwarder) Emit(e notify.Event) { f.OnEvent(e) }

// Dropped число отброшенных при переполнении конвертов
func (f *Forwarder) Dropped() uint64 { return atomic.LoadUint64(&f.dropped) }

func (f *Forwarder) loop() {
	defer f.wg.Done()
	for env := range f.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := f.bus.Publish(ctx, env); err != nil {
			f.log.Warn("Publish %s failed: %v", env.EventType, err)
		}
		cancel()
	}
}

// Close дожидается отправки очереди. Шину не закрывает.
func (f *Forwarder) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	close(f.queue)
	f.mu.Unlock()

	f.wg.Wait()
}
