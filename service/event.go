package service

import (
	"encoding/json"
	"time"
)

// Dispatch statuses that mean the vehicle is currently on a trip.
const (
	StatusOnAlley = "on alley"
	StatusOnRoad  = "on road"
)

// ActiveStatuses is the status set the correlator queries for.
var ActiveStatuses = []string{StatusOnAlley, StatusOnRoad}

// Location of a fix. Unset fields encode as null.
type Location struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Speed     *float64 `json:"speed"`
}

// Personnel is a crew member attached to a vehicle assignment.
type Personnel struct {
	ID       int64  `json:"user_profile_id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Status   string `json:"status"`
}

type VehicleAssignment struct {
	ID        int64       `json:"vehicle_assignment_id"`
	Personnel []Personnel `json:"user_profiles"`
}

// DispatchSnapshot is the active trip of a vehicle at lookup time.
type DispatchSnapshot struct {
	ID                int64             `json:"dispatch_logs_id"`
	StartTime         *time.Time        `json:"start_time"`
	EndTime           *time.Time        `json:"end_time"`
	Status            string            `json:"status"`
	Route             string            `json:"route"`
	VehicleAssignment VehicleAssignment `json:"vehicle_assignment"`
}

// EnrichedEvent is what live subscribers receive for each accepted fix.
type EnrichedEvent struct {
	TrackerIdent string            `json:"tracker_ident"`
	VehicleID    *string           `json:"vehicle_id"`
	Location     Location          `json:"location"`
	Timestamp    json.RawMessage   `json:"timestamp"`
	Dispatch     *DispatchSnapshot `json:"dispatch_log"`
}

// NewEnrichedEvent assembles the outbound event for a normalized record.
func NewEnrichedEvent(rec TelemetryRecord, vehicleID *string, dispatch *DispatchSnapshot) EnrichedEvent {
	ts := rec.Timestamp
	if len(ts) == 0 {
		ts = json.RawMessage("null")
	}
	return EnrichedEvent{
		TrackerIdent: rec.Ident,
		VehicleID:    vehicleID,
		Location: Location{
			Latitude:  rec.Latitude,
			Longitude: rec.Longitude,
			Speed:     rec.Speed,
		},
		Timestamp: ts,
		Dispatch:  dispatch,
	}
}
