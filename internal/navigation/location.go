package navigation

import "sync"

// MemoryLocation is an in-memory Location with browser-like back/forward
// history.
type MemoryLocation struct {
	mu      sync.Mutex
	entries []string
	cur     int
}

// NewMemoryLocation starts a history at search.
func NewMemoryLocation(search string) *MemoryLocation {
	return &MemoryLocation{entries: []string{search}}
}

func (m *MemoryLocation) Search() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.cur]
}

// Push drops any forward entries and appends search.
func (m *MemoryLocation) Push(search string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries[:m.cur+1], search)
	m.cur++
}

// Back moves one entry back. It reports false at the start of history.
func (m *MemoryLocation) Back() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == 0 {
		return false
	}
	m.cur--
	return true
}

// Forward moves one entry forward. It reports false at the end of history.
func (m *MemoryLocation) Forward() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == len(m.entries)-1 {
		return false
	}
	m.cur++
	return true
}

// Len returns the number of history entries.
func (m *MemoryLocation) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
