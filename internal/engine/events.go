package engine

import "sync"

// EventType identifies a state-change notification. External layers subscribe
// to these instead of the engine depending on any UI framework.
type EventType string

const (
	EventHabitChanged EventType = "habit.changed"
	EventXPChanged    EventType = "xp.changed"
	EventLevelUp      EventType = "level.up"
)

type Event struct {
	Type     EventType
	Identity string
	HabitID  string
	Day      string
	TotalXP  int
	Level    int
}

type Handler func(Event)

// Bus is a small in-memory subscription registry. Handlers run synchronously
// on the publisher's goroutine; subscribers that need to do real work should
// hand off to their own.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	all      []Handler
}

func NewBus() *Bus {
	return &Bus{handlers: map[EventType][]Handler{}}
}

func (b *Bus) Subscribe(t EventType, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[ev.Type])+len(b.all))
	handlers = append(handlers, b.handlers[ev.Type]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
