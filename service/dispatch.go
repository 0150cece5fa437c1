package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/CATRANCO-Fleet-Management-System/tracker/db"
)

// DispatchQuery finds the active dispatch of a vehicle together with its
// assignment crew. No active dispatch yields nil and no error.
type DispatchQuery interface {
	FindActiveDispatch(ctx context.Context, vehicleID string) (*DispatchSnapshot, error)
}

// DispatchReader is the subset of db.Queries used by PostgresDispatch.
type DispatchReader interface {
	ListActiveDispatches(ctx context.Context, arg db.ListActiveDispatchesParams) ([]db.DispatchLog, error)
	ListAssignmentPersonnel(ctx context.Context, vehicleAssignmentID int64) ([]db.UserProfile, error)
}

// PostgresDispatch reads dispatch_logs joined with the assignment crew.
type PostgresDispatch struct {
	reader DispatchReader
}

func NewPostgresDispatch(r DispatchReader) *PostgresDispatch {
	return &PostgresDispatch{reader: r}
}

func (d *PostgresDispatch) FindActiveDispatch(ctx context.Context, vehicleID string) (*DispatchSnapshot, error) {
	logs, err := d.reader.ListActiveDispatches(ctx, db.ListActiveDispatchesParams{
		VehicleID: vehicleID,
		Statuses:  ActiveStatuses,
	})
	if err != nil {
		return nil, fmt.Errorf("list active dispatches: %w", err)
	}
	if len(logs) == 0 {
		return nil, nil
	}

	chosen := latestStarted(logs)

	crew, err := d.reader.ListAssignmentPersonnel(ctx, chosen.VehicleAssignmentID)
	if err != nil {
		return nil, fmt.Errorf("list assignment personnel: %w", err)
	}

	snap := &DispatchSnapshot{
		ID:        chosen.DispatchLogsID,
		StartTime: timeOrNil(chosen.StartTime),
		EndTime:   timeOrNil(chosen.EndTime),
		Status:    chosen.Status,
		Route:     chosen.Route.String,
		VehicleAssignment: VehicleAssignment{
			ID:        chosen.VehicleAssignmentID,
			Personnel: make([]Personnel, 0, len(crew)),
		},
	}
	for _, p := range crew {
		snap.VehicleAssignment.Personnel = append(snap.VehicleAssignment.Personnel, Personnel{
			ID:       p.UserProfileID,
			Name:     strings.TrimSpace(p.FirstName + " " + p.LastName),
			Position: p.Position.String,
			Status:   p.Status.String,
		})
	}
	return snap, nil
}

// latestStarted picks the most recently started dispatch; a missing start
// time sorts last and equal starts fall back to the highest id. The result
// does not depend on the order of logs.
func latestStarted(logs []db.DispatchLog) db.DispatchLog {
	best := logs[0]
	for _, l := range logs[1:] {
		if startsAfter(l, best) {
			best = l
		}
	}
	return best
}

func startsAfter(a, b db.DispatchLog) bool {
	switch {
	case a.StartTime.Valid && !b.StartTime.Valid:
		return true
	case !a.StartTime.Valid && b.StartTime.Valid:
		return false
	case a.StartTime.Valid && !a.StartTime.Time.Equal(b.StartTime.Time):
		return a.StartTime.Time.After(b.StartTime.Time)
	}
	return a.DispatchLogsID > b.DispatchLogsID
}

func timeOrNil(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}
