// Package notify fans out move and vote events to any number of subscribers.
//
// Every subscriber gets its own buffered channel and Subscription handle.
// A slow subscriber loses events rather than blocking the publisher.
package notify

import (
	"sync"
	"time"
)

// EventType names what happened.
type EventType string

const (
	EventSubscribed      EventType = "subscribed"
	EventMoveCreated     EventType = "move.created"
	EventMoveEdited      EventType = "move.edited"
	EventMoveDeleted     EventType = "move.deleted"
	EventVoteCast        EventType = "vote.cast"
	EventMoveApproved    EventType = "move.approved"
	EventMovesSwept      EventType = "moves.swept"
	EventSettingsUpdated EventType = "settings.updated"
)

// Event is a change in a group's moves, votes or settings.
type Event struct {
	Type    EventType
	GroupID string
	MoveID  string
	UserID  string
	// Count is the vote count for vote events and the number removed for sweeps.
	Count int
	At    time.Time
}

// Filter selects the events a subscriber receives. A nil Filter accepts all.
type Filter func(Event) bool

// ForGroup returns a Filter accepting only events of one group.
func ForGroup(groupID string) Filter {
	return func(e Event) bool { return e.GroupID == groupID }
}

const defaultBuffer = 32

// Broker is a publish/subscribe hub. The zero value is not usable; call NewBroker.
type Broker struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	onDrop func(Event)
}

// Option configures a Broker.
type Option func(*Broker)

// WithBuffer sets the per-subscriber channel capacity.
func WithBuffer(n int) Option {
	return func(b *Broker) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// WithDropHandler is called for every event dropped because a subscriber was full.
func WithDropHandler(fn func(Event)) Option {
	return func(b *Broker) { b.onDrop = fn }
}

// NewBroker creates an empty Broker.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		subs:   make(map[uint64]*Subscription),
		buffer: defaultBuffer,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a new subscriber. Call Close on the returned handle to
// stop receiving events.
func (b *Broker) Subscribe(filter Filter) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:     b.nextID,
		ch:     make(chan Event, b.buffer),
		filter: filter,
		broker: b,
	}
	b.subs[sub.id] = sub
	return sub
}

// Publish delivers the event to every current subscriber whose filter accepts
// it, and returns how many received it.
func (b *Broker) Publish(e Event) int {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, sub := range b.subs {
		if sub.filter != nil && !sub.filter(e) {
			continue
		}
		select {
		case sub.ch <- e:
			delivered++
		default:
			if b.onDrop != nil {
				b.onDrop(e)
			}
		}
	}
	return delivered
}

// Len returns the number of active subscriptions.
func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broker) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	id     uint64
	ch     chan Event
	filter Filter
	broker *Broker
	once   sync.Once
}

// Events returns the channel events are delivered on. It is closed by Close.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.broker.remove(s.id) })
}
