package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLogger(w io.Writer) *slog.Logger {
	return slog.New(NewContextHandler(slog.NewJSONHandler(w, nil)))
}

// mockDirectory implements DirectoryLookup for testing.
type mockDirectory struct {
	mu       sync.Mutex
	bindings map[string]string
	err      error
	calls    []string
}

func (m *mockDirectory) ResolveVehicle(ctx context.Context, ident string) (*string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, ident)
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.bindings[ident]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// mockDispatch implements DispatchQuery for testing.
type mockDispatch struct {
	mu        sync.Mutex
	snapshots map[string]*DispatchSnapshot
	err       error
	calls     []string
}

func (m *mockDispatch) FindActiveDispatch(ctx context.Context, vehicleID string) (*DispatchSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, vehicleID)
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshots[vehicleID], nil
}

type published struct {
	at  time.Time
	env Envelope
}

// mockBroadcaster implements BroadcastFacility for testing.
type mockBroadcaster struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (m *mockBroadcaster) Publish(ctx context.Context, env Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, published{at: time.Now(), env: env})
	return m.err
}

func (m *mockBroadcaster) Events() []EnrichedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EnrichedEvent, len(m.events))
	for i, p := range m.events {
		out[i] = p.env.Data
	}
	return out
}

func (m *mockBroadcaster) Envelopes() []Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Envelope, len(m.events))
	for i, p := range m.events {
		out[i] = p.env
	}
	return out
}

func (m *mockBroadcaster) Times() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Time, len(m.events))
	for i, p := range m.events {
		out[i] = p.at
	}
	return out
}

func onRoadDispatch() *DispatchSnapshot {
	start := time.Date(2024, 11, 4, 6, 30, 0, 0, time.UTC)
	return &DispatchSnapshot{
		ID:        42,
		StartTime: &start,
		Status:    StatusOnRoad,
		Route:     "Canitoan - Silver Creek",
		VehicleAssignment: VehicleAssignment{
			ID: 7,
			Personnel: []Personnel{
				{ID: 3, Name: "Juan Dela Cruz", Position: "driver", Status: "on_duty"},
				{ID: 4, Name: "Maria Santos", Position: "passenger_assistant_officer", Status: "on_duty"},
			},
		},
	}
}

type pipelineFixture struct {
	directory *mockDirectory
	dispatch  *mockDispatch
	broadcast *mockBroadcaster
	pipeline  *Pipeline
}

func newPipelineFixture(zones []Zone, minInterval time.Duration) *pipelineFixture {
	f := &pipelineFixture{
		directory: &mockDirectory{bindings: map[string]string{"9171006261": "001"}},
		dispatch:  &mockDispatch{snapshots: map[string]*DispatchSnapshot{"001": onRoadDispatch()}},
		broadcast: &mockBroadcaster{},
	}
	f.pipeline = NewPipeline(PipelineDeps{
		Blacklist: NewBlacklist(zones),
		Directory: f.directory,
		Dispatch:  f.dispatch,
		Broadcast: f.broadcast,
		Pacer:     NewPacer(minInterval, 0, 0),
		Logger:    discardLogger(),
	})
	return f
}
