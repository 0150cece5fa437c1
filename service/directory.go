package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/CATRANCO-Fleet-Management-System/tracker/db"
)

// DirectoryLookup resolves a tracker to the vehicle it is mounted on.
// An unbound tracker yields a nil vehicle id and no error.
type DirectoryLookup interface {
	ResolveVehicle(ctx context.Context, trackerIdent string) (*string, error)
}

// PostgresDirectory reads tracker_vehicle_mapping.
type PostgresDirectory struct {
	queries *db.Queries
}

func NewPostgresDirectory(q *db.Queries) *PostgresDirectory {
	return &PostgresDirectory{queries: q}
}

func (d *PostgresDirectory) ResolveVehicle(ctx context.Context, trackerIdent string) (*string, error) {
	vehicleID, err := d.queries.ResolveVehicle(ctx, trackerIdent)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve vehicle: %w", err)
	}
	return &vehicleID, nil
}

// unboundMarker is cached for trackers without a vehicle so that misses are
// not re-queried on every fix. Vehicle ids are never empty.
const unboundMarker = ""

// CachedDirectory is a read-through Redis cache in front of another
// DirectoryLookup. Redis failures fall back to the wrapped lookup.
type CachedDirectory struct {
	next   DirectoryLookup
	client *redis.Client
	ttl    time.Duration
}

func NewCachedDirectory(next DirectoryLookup, client *redis.Client, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{next: next, client: client, ttl: ttl}
}

func (c *CachedDirectory) ResolveVehicle(ctx context.Context, trackerIdent string) (*string, error) {
	key := c.key(trackerIdent)

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		lookupsTotal.WithLabelValues("cache_hit").Inc()
		if cached == unboundMarker {
			return nil, nil
		}
		return &cached, nil
	case !errors.Is(err, redis.Nil):
		lookupsTotal.WithLabelValues("cache_error").Inc()
		return c.next.ResolveVehicle(ctx, trackerIdent)
	}

	lookupsTotal.WithLabelValues("cache_miss").Inc()
	vehicleID, err := c.next.ResolveVehicle(ctx, trackerIdent)
	if err != nil {
		return nil, err
	}

	value := unboundMarker
	if vehicleID != nil {
		value = *vehicleID
	}
	// A failed write only costs a future miss.
	_ = c.client.Set(ctx, key, value, c.ttl).Err()

	return vehicleID, nil
}

func (c *CachedDirectory) key(trackerIdent string) string {
	return "tracker:vehicle:" + trackerIdent
}
