package editor

import (
	"context"
	"sync"
)

const defaultEventBuffer = 1

// EventBus hands each published UiEvent to at most one subscriber: the most recently
// attached one. Events published while nobody is attached, or while that subscriber's
// buffer is full, are dropped. Nothing is replayed to late subscribers.
type EventBus struct {
	mu          sync.Mutex
	subscribers []*eventSubscriber
	nextID      int64
	bufferSize  int
}

type eventSubscriber struct {
	id     int64
	stream chan UiEvent
}

func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = defaultEventBuffer
	}
	return &EventBus{bufferSize: bufferSize}
}

// Subscribe attaches a receiver. The stream is closed by the returned cleanup or when ctx ends.
func (b *EventBus) Subscribe(ctx context.Context) (<-chan UiEvent, func()) {
	subscriber := &eventSubscriber{
		stream: make(chan UiEvent, b.bufferSize),
	}
	b.mu.Lock()
	b.nextID++
	subscriber.id = b.nextID
	b.subscribers = append(b.subscribers, subscriber)
	b.mu.Unlock()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			b.unregisterSubscriber(subscriber.id)
		})
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return subscriber.stream, cleanup
}

// Publish never blocks. It reports whether a subscriber accepted the event.
func (b *EventBus) Publish(event UiEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.subscribers) == 0 {
		return false
	}
	subscriber := b.subscribers[len(b.subscribers)-1]
	select {
	case subscriber.stream <- event:
		return true
	default:
		return false
	}
}

// Subscribers returns the number of attached receivers.
func (b *EventBus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

func (b *EventBus) unregisterSubscriber(subscriberID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for index, subscriber := range b.subscribers {
		if subscriber.id == subscriberID {
			b.subscribers = append(b.subscribers[:index], b.subscribers[index+1:]...)
			close(subscriber.stream)
			return
		}
	}
}
