package presence

import (
	"context"
	"sort"
	"sync"
)

// Memory is a process-local Registry. Rooms are pruned when they empty.
type Memory struct {
	mu    sync.Mutex
	rooms map[string]map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[string]map[string]struct{}),
	}
}

var _ Registry = (*Memory)(nil)

func (m *Memory) Join(_ context.Context, gameID, connectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room := m.rooms[gameID]
	if room == nil {
		room = make(map[string]struct{})
		m.rooms[gameID] = room
	}
	room[connectionID] = struct{}{}
	return nil
}

func (m *Memory) Leave(_ context.Context, gameID, connectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room := m.rooms[gameID]
	if room == nil {
		return nil
	}
	delete(room, connectionID)
	if len(room) == 0 {
		delete(m.rooms, gameID)
	}
	return nil
}

func (m *Memory) Members(_ context.Context, gameID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room := m.rooms[gameID]
	members := make([]string, 0, len(room))
	for id := range room {
		members = append(members, id)
	}
	sort.Strings(members)
	return members, nil
}

func (m *Memory) Count(_ context.Context, gameID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms[gameID]), nil
}

func (m *Memory) Close() error {
	return nil
}
