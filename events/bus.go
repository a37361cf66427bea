// Package events is a small synchronous publish/subscribe bus used to fan out
// catalog changes (such as input price updates) to secondary consumers.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Type identifies an event.
type Type string

const (
	// InputPriceChangedType is published after an input price history entry is stored.
	InputPriceChangedType Type = "input.price_changed"
)

// InputPriceChanged is the payload for InputPriceChangedType.
type InputPriceChanged struct {
	OwnerID  string
	InputID  string
	OldPrice float64
	NewPrice float64
}

// Event is the envelope delivered to subscribers.
type Event struct {
	ctx       context.Context
	Type      Type
	Timestamp time.Time
	Data      any
}

// New builds an Event stamped with the current time.
func New(ctx context.Context, t Type, data any) Event {
	return Event{ctx: ctx, Type: t, Timestamp: time.Now(), Data: data}
}

// Context returns the publisher's context, or Background when none was given.
func (e Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// Handler processes one event.
type Handler func(Event) error

type subscription struct {
	id uint64
	h  Handler
}

// Bus dispatches events to subscribers synchronously, in subscription order.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Type][]subscription
	nextID uint64
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Type][]subscription)}
}

// Subscribe registers h for t and returns a function that removes it.
func (b *Bus) Subscribe(t Type, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[t] = append(b.subs[t], subscription{id: id, h: h})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[t]
		for i, s := range list {
			if s.id == id {
				b.subs[t] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(b.subs[t]) == 0 {
			delete(b.subs, t)
		}
	}
}

// SubscribeTyped registers a handler that only sees payloads of type T.
// Events carrying another payload type are skipped.
func SubscribeTyped[T any](b *Bus, t Type, h func(ctx context.Context, payload T) error) (unsubscribe func()) {
	return b.Subscribe(t, func(e Event) error {
		payload, ok := e.Data.(T)
		if !ok {
			log.Debugf("events: %s carries %T, handler expects %T", t, e.Data, *new(T))
			return nil
		}
		return h(e.Context(), payload)
	})
}

// Publish runs every handler for e.Type and returns the errors they produced,
// one entry per failing handler. A panicking handler is reported as an error.
// Handlers are skipped once the event context is cancelled.
func (b *Bus) Publish(e Event) []error {
	if err := e.Context().Err(); err != nil {
		return []error{fmt.Errorf("event %s: context cancelled before publish: %w", e.Type, err)}
	}

	b.mu.RLock()
	handlers := append([]subscription(nil), b.subs[e.Type]...)
	b.mu.RUnlock()

	var errs []error
	for _, s := range handlers {
		if err := e.Context().Err(); err != nil {
			errs = append(errs, fmt.Errorf("event %s: context cancelled: %w", e.Type, err))
			break
		}
		if err := invoke(s, e); err != nil {
			log.WithFields(log.Fields{"event": e.Type, "handler": s.id}).Errorf("events: handler failed: %v", err)
			errs = append(errs, err)
		}
	}
	return errs
}

func invoke(s subscription, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %d panicked on %s: %v", s.id, e.Type, r)
		}
	}()
	return s.h(e)
}
