// Package lifecycle exposes journal watcher events as a lifecycle.Source.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/flow/pkg/core"
)

type journalSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits the events of a journal
// watcher. The source's channel closes when the watcher's does.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &journalSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *journalSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *journalSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
