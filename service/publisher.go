package service

import (
	"context"
)

// Publisher paces and hands enriched events to the broadcast facility.
type Publisher struct {
	facility BroadcastFacility
	logger   Logger
	observer Observer
}

func NewPublisher(facility BroadcastFacility, logger Logger, observer Observer) *Publisher {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Publisher{facility: facility, logger: logger, observer: observer}
}

// Publish waits for the batch pacer, then publishes. It returns an error only
// when ctx ends before the event went out; facility errors are logged.
func (p *Publisher) Publish(ctx context.Context, pacer *BatchPacer, evt EnrichedEvent) error {
	if err := pacer.Wait(ctx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.observer.Broadcasting(ctx, evt)

	// Delivery belongs to the facility from here on.
	env := NewEnvelope(evt)
	if err := p.facility.Publish(context.WithoutCancel(ctx), env); err != nil {
		p.logger.ErrorContext(ctx, "broadcast failed",
			"tracker_ident", evt.TrackerIdent,
			"envelope_id", env.ID,
			"error", err,
		)
	}
	return nil
}
