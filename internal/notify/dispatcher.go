package notify

import "sync"

// Emitter принимает уведомления от компонентов ядра
type Emitter interface {
	Emit(e Event)
}

// Listener подписчик на уведомления
type Listener interface {
	OnEvent(e Event)
}

// ListenerFunc адаптер функции к Listener
type ListenerFunc func(e Event)

// OnEvent вызывает функцию
func (f ListenerFunc) OnEvent(e Event) { f(e) }

// Nop эмиттер без подписчиков
var Nop Emitter = nopEmitter{}

type nopEmitter struct{}

func (nopEmitter) Emit(Event) {}

// OrNop возвращает Nop вместо nil
func OrNop(e Emitter) Emitter {
	if e == nil {
		return Nop
	}
	return e
}

// Dispatcher синхронно доставляет уведомления подписчикам в порядке подписки.
// Безопасен для вызова из нескольких горутин (хранилище прогресса делится с API).
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[Kind][]Listener
	all       []Listener
}

// NewDispatcher создаёт новый диспетчер
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		listeners: make(map[Kind][]Listener),
	}
}

// Subscribe подписка на один тип уведомлений
func (d *Dispatcher) Subscribe(kind Kind, l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[kind] = append(d.listeners[kind], l)
}

// SubscribeFunc подписка функцией
func (d *Dispatcher) SubscribeFunc(kind Kind, fn func(e Event)) {
	d.Subscribe(kind, ListenerFunc(fn))
}

// SubscribeAll подписка на все уведомления
func (d *Dispatcher) SubscribeAll(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.all = append(d.all, l)
}

// Unsubscribe отписка от типа уведомлений
func (d *Dispatcher) Unsubscribe(kind Kind, l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if listeners, exists := d.listeners[kind]; exists {
		for i, existing := range listeners {
			if existing == l {
				d.listeners[kind] = append(listeners[:i:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Emit отправка уведомления всем подписчикам
func (d *Dispatcher) Emit(e Event) {
	if e == nil {
		return
	}
	d.mu.RLock()
	targeted := d.listeners[e.Kind()]
	all := d.all
	d.mu.RUnlock()

	for _, l := range targeted {
		l.OnEvent(e)
	}
	for _, l := range all {
		l.OnEvent(e)
	}
}

// Recorder запоминает уведомления; используется в тестах и headless-прогоне
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

// OnEvent сохраняет уведомление
func (r *Recorder) OnEvent(e Event) {
	r.mu.Lock()
	r.Events = append(r.Events, e)
	r.mu.Unlock()
}

// Emit позволяет использовать Recorder как Emitter
func (r *Recorder) Emit(e Event) { r.OnEvent(e) }

// OfKind возвращает записанные уведомления заданного типа
func (r *Recorder) OfKind(kind Kind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.Events {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

// Last возвращает последнее уведомление заданного типа
func (r *Recorder) Last(kind Kind) (Event, bool) {
	events := r.OfKind(kind)
	if len(events) == 0 {
		return nil, false
	}
	return events[len(events)-1], true
}
