package service

import (
	"context"
	"encoding/json"
)

// Pipeline turns a batch of raw tracker reports into enriched broadcasts:
// normalize, filter blacklisted fixes, resolve the vehicle, correlate the
// active dispatch, publish. It performs no writes to the directory or the
// dispatch store, and does not deduplicate resubmitted batches.
type Pipeline struct {
	blacklist *Blacklist
	directory DirectoryLookup
	dispatch  DispatchQuery
	publisher *Publisher
	pacer     *Pacer
	logger    Logger
	observer  Observer
}

// PipelineDeps are the collaborators injected into a Pipeline.
type PipelineDeps struct {
	Blacklist *Blacklist
	Directory DirectoryLookup
	Dispatch  DispatchQuery
	Broadcast BroadcastFacility
	Pacer     *Pacer
	Logger    Logger
	// Observer defaults to a LogObserver on Logger.
	Observer Observer
}

func NewPipeline(d PipelineDeps) *Pipeline {
	obs := d.Observer
	if obs == nil {
		obs = NewLogObserver(d.Logger)
	}
	return &Pipeline{
		blacklist: d.Blacklist,
		directory: d.Directory,
		dispatch:  d.Dispatch,
		publisher: NewPublisher(d.Broadcast, d.Logger, obs),
		pacer:     d.Pacer,
		logger:    d.Logger,
		observer:  obs,
	}
}

// Process runs every record of batch through the pipeline and returns one
// outcome per record, in input order. An empty batch is rejected as a whole.
// When ctx ends, records not yet reached are reported as cancelled.
func (p *Pipeline) Process(ctx context.Context, batch []json.RawMessage) BatchResponse {
	if len(batch) == 0 {
		p.logger.WarnContext(ctx, "no valid data received")
		batchesTotal.WithLabelValues("rejected").Inc()
		return rejectedBatch()
	}

	pacer := p.pacer.Batch()
	outcomes := make([]RecordOutcome, len(batch))

	for i, raw := range batch {
		if ctx.Err() != nil {
			p.logger.WarnContext(ctx, "batch cancelled",
				"processed", i,
				"remaining", len(batch)-i,
			)
			for j := i; j < len(batch); j++ {
				outcomes[j] = failed(MsgRequestCancelled)
				recordsTotal.WithLabelValues(OutcomeFailed).Inc()
			}
			break
		}
		outcomes[i] = p.processRecord(ctx, pacer, raw)
		recordsTotal.WithLabelValues(outcomes[i].Status).Inc()
	}

	batchesTotal.WithLabelValues(batchStatusProcessed).Inc()
	return BatchResponse{Status: batchStatusProcessed, Responses: outcomes}
}

func (p *Pipeline) processRecord(ctx context.Context, pacer *BatchPacer, raw json.RawMessage) RecordOutcome {
	rec := Normalize(raw)
	if rec.Ident == "" {
		p.logger.WarnContext(ctx, "tracker identifier is missing")
		return failed(MsgIdentMissing)
	}

	if zone, ok := p.blacklist.Match(rec); ok {
		p.logger.InfoContext(ctx, "ignoring blacklisted coordinates",
			"tracker_ident", rec.Ident,
			"latitude", *rec.Latitude,
			"longitude", *rec.Longitude,
			"zone_latitude", zone.Latitude,
			"zone_longitude", zone.Longitude,
		)
		return ignored(MsgBlacklisted)
	}

	p.observer.RecordAccepted(ctx, rec)

	vehicleID := p.resolveVehicle(ctx, rec.Ident)
	dispatch := p.findDispatch(ctx, vehicleID)

	evt := NewEnrichedEvent(rec, vehicleID, dispatch)
	if err := p.publisher.Publish(ctx, pacer, evt); err != nil {
		return failed(MsgRequestCancelled)
	}
	return succeeded(rec.Ident)
}

// resolveVehicle treats lookup errors like an unbound tracker.
func (p *Pipeline) resolveVehicle(ctx context.Context, ident string) *string {
	vehicleID, err := p.directory.ResolveVehicle(ctx, ident)
	if err != nil {
		lookupsTotal.WithLabelValues("error").Inc()
		p.logger.ErrorContext(ctx, "vehicle lookup failed",
			"tracker_ident", ident,
			"error", err,
		)
		return nil
	}
	if vehicleID == nil {
		lookupsTotal.WithLabelValues("unbound").Inc()
	} else {
		lookupsTotal.WithLabelValues("bound").Inc()
	}
	return vehicleID
}

func (p *Pipeline) findDispatch(ctx context.Context, vehicleID *string) *DispatchSnapshot {
	if vehicleID == nil {
		return nil
	}
	snap, err := p.dispatch.FindActiveDispatch(ctx, *vehicleID)
	if err != nil {
		p.logger.ErrorContext(ctx, "dispatch lookup failed",
			"vehicle_id", *vehicleID,
			"error", err,
		)
		return nil
	}
	return snap
}
