package session

import (
	"log"
	"strings"
)

// Topic names a logical field of the session that listeners can observe
type Topic string

const (
	TopicSession          Topic = "session"
	TopicCurrentProblem   Topic = "currentProblem"
	TopicSelection        Topic = "selection"
	TopicSelectionCount   Topic = "selectionCount"
	TopicStagedChoice     Topic = "stagedChoice"
	TopicProblemCompleted Topic = "problemCompleted"
	TopicReset            Topic = "reset"

	// TopicAllUI matches every ui.<flag> topic
	TopicAllUI Topic = "ui.*"
	// TopicAll matches every topic
	TopicAll Topic = "*"
)

const uiPrefix = "ui."

// UITopic returns the topic published when a UI flag changes
func UITopic(flag UIFlag) Topic {
	return Topic(uiPrefix + string(flag))
}

// IsUI reports whether t is a ui.<flag> topic
func (t Topic) IsUI() bool {
	return strings.HasPrefix(string(t), uiPrefix) && t != TopicAllUI
}

// Event is delivered to listeners after the state has been mutated
type Event struct {
	Topic    Topic
	Value    any
	Previous any
}

// Listener reacts to an event. A returned error is logged and does not stop
// delivery to other listeners.
type Listener func(Event) error

type subscription struct {
	id       int
	listener Listener
}

// Bus is a synchronous listener registry keyed by topic
type Bus struct {
	listeners map[Topic][]subscription
	nextID    int
	debug     bool
}

// NewBus creates an empty bus. With debug set every published event is logged.
func NewBus(debug bool) *Bus {
	return &Bus{
		listeners: make(map[Topic][]subscription),
		debug:     debug,
	}
}

// Subscribe registers l for topic and returns a function that removes it
func (b *Bus) Subscribe(topic Topic, l Listener) (unsubscribe func()) {
	b.nextID++
	id := b.nextID
	b.listeners[topic] = append(b.listeners[topic], subscription{id: id, listener: l})

	return func() {
		subs := b.listeners[topic]
		for i, s := range subs {
			if s.id == id {
				b.listeners[topic] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers e to exact listeners, then ui.* listeners for UI topics,
// then wildcard listeners. Each group runs in registration order.
func (b *Bus) Publish(e Event) {
	if b.debug {
		log.Printf("[DEBUG] session %s: %v", e.Topic, e.Value)
	}

	b.deliver(e.Topic, e)
	if e.Topic.IsUI() {
		b.deliver(TopicAllUI, e)
	}
	b.deliver(TopicAll, e)
}

func (b *Bus) deliver(key Topic, e Event) {
	// Copy so listeners may unsubscribe while being notified.
	subs := append([]subscription(nil), b.listeners[key]...)
	for _, s := range subs {
		b.call(s.listener, e)
	}
}

func (b *Bus) call(l Listener, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: session listener for %s panicked: %v", e.Topic, r)
		}
	}()
	if err := l(e); err != nil {
		log.Printf("Warning: session listener for %s failed: %v", e.Topic, err)
	}
}
