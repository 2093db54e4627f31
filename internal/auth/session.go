package auth

import "sync"

// SessionContext is a per-client key/value store that lives as long as the
// client's session. The throttle keeps its attempt records in it.
//
// Values stored by this package are plain structs that are registered with
// encoding/gob, so cookie based implementations can serialize them.
type SessionContext interface {
	Get(key any) (any, bool)
	Set(key, value any)
	Clear(key any)
}

// MemSession is an in-memory SessionContext.
// The zero value is not ready to use, create one with NewMemSession.
type MemSession struct {
	mu     sync.Mutex
	values map[any]any
}

func NewMemSession() *MemSession {
	return &MemSession{
		values: make(map[any]any),
	}
}

func (m *MemSession) Get(key any) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	return v, ok
}

func (m *MemSession) Set(key, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
}

func (m *MemSession) Clear(key any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
}

// Len returns the number of stored values.
func (m *MemSession) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.values)
}
