// Package store provides an in-memory RequestStore for tests and demo mode.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/fleetops/roster-engine/leave"
	"github.com/fleetops/roster-engine/roster"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	requests  map[string]leave.Request
	overrides []leave.OverrideRecord
}

func NewMemory() *Memory {
	return &Memory{requests: make(map[string]leave.Request)}
}

func (m *Memory) FetchRequests(_ context.Context, filter leave.Filter) ([]leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []leave.Request
	for _, r := range m.requests {
		if filter.Matches(r) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Start.Equal(result[j].Start) {
			return result[i].Start.Before(result[j].Start)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) GetRequest(_ context.Context, id string) (leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.requests[id]
	if !ok {
		return leave.Request{}, leave.ErrNotFound
	}
	return r, nil
}

func (m *Memory) SaveRequest(_ context.Context, r leave.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[r.ID] = r
	return nil
}

func (m *Memory) CommitRescheduled(_ context.Context, id string, newStart, newEnd roster.Date, expectedVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[id]
	if !ok {
		return leave.ErrNotFound
	}
	if r.Version != expectedVersion {
		return leave.ErrVersionConflict
	}
	r.Start = newStart
	r.End = newEnd
	r.Version++
	m.requests[id] = r
	return nil
}

func (m *Memory) PersistOverride(_ context.Context, rec leave.OverrideRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides = append(m.overrides, rec)
	return nil
}

func (m *Memory) ListOverrides(_ context.Context, leaveRequestID string) ([]leave.OverrideRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []leave.OverrideRecord
	for _, rec := range m.overrides {
		if leaveRequestID == "" || rec.LeaveRequestID == leaveRequestID {
			result = append(result, rec)
		}
	}
	return result, nil
}
