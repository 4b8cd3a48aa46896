// Package schedule реализует очередь отложенных событий, привязанных к тикам симуляции.
// Очередь заменяет таймеры движка: колбэки хранят только идентификатор владельца
// и пропускаются, если владелец к моменту срабатывания уже не жив.
package schedule

import (
	"container/heap"
	"time"
)

// Tick номер тика симуляции
type Tick uint64

// DefaultTickRate тиков симуляции в секунду
const DefaultTickRate = 60

// NoOwner владелец, не требующий проверки жизни
const NoOwner uint64 = 0

// Liveness сообщает, жив ли владелец события
type Liveness func(owner uint64) bool

// Handle идентификатор запланированного события для отмены
type Handle uint64

type event struct {
	at    Tick
	seq   uint64
	owner uint64
	fn    func()
	index int
}

type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *eventHeap) Push(x interface{}) {
	e := x.(*event)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Queue очередь событий по тикам. Не потокобезопасна: работает внутри тика.
type Queue struct {
	now      Tick
	tickRate int
	seq      uint64
	events   eventHeap
	byHandle map[Handle]*event
	alive    Liveness
}

// New создаёт очередь для заданной частоты тиков в секунду
func New(tickRate int) *Queue {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return &Queue{
		tickRate: tickRate,
		byHandle: make(map[Handle]*event),
	}
}

// SetLiveness задаёт проверку жизни владельцев
func (q *Queue) SetLiveness(fn Liveness) {
	q.alive = fn
}

// Now текущий тик
func (q *Queue) Now() Tick {
	return q.now
}

// TickRate тиков в секунду
func (q *Queue) TickRate() int {
	return q.tickRate
}

// NowMs время симуляции в миллисекундах
func (q *Queue) NowMs() int64 {
	return int64(q.now) * 1000 / int64(q.tickRate)
}

// TicksFor переводит длительность в тики с округлением вверх. Минимум один тик.
func (q *Queue) TicksFor(d time.Duration) Tick {
	ms := d.Milliseconds()
	if ms <= 0 {
		return 1
	}
	ticks := (ms*int64(q.tickRate) + 999) / 1000
	if ticks < 1 {
		ticks = 1
	}
	return Tick(ticks)
}

// At планирует fn на тик at. Прошедшие тики срабатывают на следующем Advance.
func (q *Queue) At(at Tick, owner uint64, fn func()) Handle {
	q.seq++
	e := &event{at: at, seq: q.seq, owner: owner, fn: fn}
	heap.Push(&q.events, e)
	h := Handle(q.seq)
	q.byHandle[h] = e
	return h
}

// After планирует fn через длительность d от текущего тика
func (q *Queue) After(d time.Duration, owner uint64, fn func()) Handle {
	return q.At(q.now+q.TicksFor(d), owner, fn)
}

// Every вызывает fn каждые interval в течение lifetime (первый вызов через interval).
// Повтор прекращается, если fn вернула false или владелец умер. done, если задан,
// вызывается после последнего повтора или по истечении lifetime.
func (q *Queue) Every(interval, lifetime time.Duration, owner uint64, fn func() bool, done func()) {
	step := q.TicksFor(interval)
	deadline := q.now + q.TicksFor(lifetime)
	finish := func() {
		if done != nil {
			done()
		}
	}
	var tick func()
	tick = func() {
		if !fn() {
			finish()
			return
		}
		next := q.now + step
		switch {
		case next <= deadline:
			q.At(next, owner, tick)
		case q.now < deadline:
			q.At(deadline, owner, finish)
		default:
			finish()
		}
	}
	if q.now+step <= deadline {
		q.At(q.now+step, owner, tick)
	} else {
		q.At(deadline, owner, finish)
	}
}

// Cancel отменяет событие. Повторная отмена безопасна.
func (q *Queue) Cancel(h Handle) {
	e, ok := q.byHandle[h]
	if !ok {
		return
	}
	delete(q.byHandle, h)
	if e.index >= 0 {
		heap.Remove(&q.events, e.index)
	}
}

// Advance переводит очередь на следующий тик и выполняет все наступившие события.
// Возвращает число выполненных колбэков.
func (q *Queue) Advance() int {
	q.now++
	return q.Drain()
}

// Drain выполняет события, наступившие к текущему тику, не сдвигая время.
// События, добавленные колбэками на текущий тик, выполняются в этом же вызове.
func (q *Queue) Drain() int {
	ran := 0
	for len(q.events) > 0 && q.events[0].at <= q.now {
		e := heap.Pop(&q.events).(*event)
		delete(q.byHandle, Handle(e.seq))
		if e.owner != NoOwner && q.alive != nil && !q.alive(e.owner) {
			continue
		}
		e.fn()
		ran++
	}
	return ran
}

// Len число ожидающих событий
func (q *Queue) Len() int {
	return len(q.events)
}

// Clear удаляет все ожидающие события (разбор уровня)
func (q *Queue) Clear() {
	q.events = nil
	q.byHandle = make(map[Handle]*event)
}
