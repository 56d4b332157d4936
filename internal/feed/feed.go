// Package feed publishes plan lifecycle events to in-process subscribers.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/alexanderramin/planbook/internal/domain"
)

// ActivationEvent is published when a plan becomes active.
type ActivationEvent struct {
	Definition *domain.PlanDefinition
}

// DeleteEvent is published after a plan has been deleted.
type DeleteEvent struct {
	ID    string
	Alias string
}

// Handler receives events of type T.
type Handler[T any] func(ctx context.Context, event T) error

type subscription[T any] struct {
	id      int
	handler Handler[T]
}

// Feed fans events out to its subscribers. Handlers run synchronously, in
// subscription order.
type Feed[T any] struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription[T]
}

// NewActivationFeed creates an empty activation feed.
func NewActivationFeed() *Feed[ActivationEvent] {
	return &Feed[ActivationEvent]{}
}

// NewDeleteFeed creates an empty deletion feed.
func NewDeleteFeed() *Feed[DeleteEvent] {
	return &Feed[DeleteEvent]{}
}

// Subscribe registers h and returns a function that removes it.
func (f *Feed[T]) Subscribe(h Handler[T]) (unsubscribe func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.subs = append(f.subs, subscription[T]{id: id, handler: h})

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, s := range f.subs {
				if s.id == id {
					f.subs = append(f.subs[:i:i], f.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers event to every subscriber. All handlers run even when
// some fail; their errors are joined.
func (f *Feed[T]) Publish(ctx context.Context, event T) error {
	f.mu.RLock()
	subs := make([]subscription[T], len(f.subs))
	copy(subs, f.subs)
	f.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := s.handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogHandler returns a handler that logs every event at info level.
func LogHandler[T any](logger *slog.Logger, msg string) Handler[T] {
	return func(ctx context.Context, event T) error {
		logger.InfoContext(ctx, msg, "event", describe(event))
		return nil
	}
}

func describe(event any) any {
	switch e := event.(type) {
	case ActivationEvent:
		if e.Definition == nil {
			return nil
		}
		return slog.GroupValue(
			slog.String("id", e.Definition.ID()),
			slog.String("alias", e.Definition.Alias()),
		)
	case DeleteEvent:
		return slog.GroupValue(slog.String("id", e.ID), slog.String("alias", e.Alias))
	default:
		return event
	}
}
