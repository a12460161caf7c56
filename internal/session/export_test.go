package session

import "time"

func (m *Manager) SetClock(now func() time.Time) { m.now = now }

func (m *Manager) CachedUsers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}
