package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// BroadcastFacility delivers enriched events to live subscribers. Publish is
// best effort: it must not wait for subscribers to acknowledge.
type BroadcastFacility interface {
	Publish(ctx context.Context, env Envelope) error
}

// Envelope is the message written to every transport. ID is shared by all
// transports carrying the same event.
type Envelope struct {
	ID   string        `json:"id"`
	Type string        `json:"type"`
	Data EnrichedEvent `json:"data"`
}

func NewEnvelope(evt EnrichedEvent) Envelope {
	return Envelope{
		ID:   uuid.NewString(),
		Type: "position",
		Data: evt,
	}
}

type namedFacility struct {
	name     string
	facility BroadcastFacility
}

// Fanout publishes to several facilities. A failing facility does not keep
// the event from the others.
type Fanout struct {
	targets []namedFacility
}

func NewFanout() *Fanout {
	return &Fanout{}
}

func (f *Fanout) Add(name string, facility BroadcastFacility) *Fanout {
	f.targets = append(f.targets, namedFacility{name: name, facility: facility})
	return f
}

func (f *Fanout) Publish(ctx context.Context, env Envelope) error {
	var errs []error
	for _, t := range f.targets {
		if err := t.facility.Publish(ctx, env); err != nil {
			publishErrors.WithLabelValues(t.name).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
		}
	}
	return errors.Join(errs...)
}
