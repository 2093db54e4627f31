package sessions

import (
	"encoding/gob"

	"github.com/gorilla/sessions"
	"github.com/minitienda/minitienda/internal/auth"
)

const identityKey = "identity"

func init() {
	gob.Register(auth.Identity{})
}

// Session wraps a gorilla session. It is the auth.SessionContext of a client,
// so the login throttle keeps its records in it.
type Session struct {
	base      *sessions.Session
	needsSave bool
	renew     bool
}

func (s *Session) NeedsSave() bool {
	return s.needsSave
}

// Get implements auth.SessionContext.
func (s *Session) Get(key any) (any, bool) {
	v, ok := s.base.Values[key]
	return v, ok
}

// Set implements auth.SessionContext.
func (s *Session) Set(key, value any) {
	s.needsSave = true
	s.base.Values[key] = value
}

// Clear implements auth.SessionContext.
func (s *Session) Clear(key any) {
	if _, ok := s.base.Values[key]; !ok {
		return
	}

	s.needsSave = true
	delete(s.base.Values, key)
}

// Renew makes the next save issue the session under a new ID. The values are kept,
// the session stored under the old ID is removed.
func (s *Session) Renew() {
	s.needsSave = true
	s.renew = true
}

// Identity returns the identity of the logged in account, if any.
func (s *Session) Identity() (auth.Identity, bool) {
	id, ok := s.base.Values[identityKey].(auth.Identity)
	return id, ok
}

func (s *Session) SetIdentity(id auth.Identity) {
	s.Set(identityKey, id)
}

func (s *Session) ClearIdentity() {
	s.Clear(identityKey)
}

func (s *Session) AddFlash(flash string) {
	s.needsSave = true
	s.base.AddFlash(flash)
}

// ConsumeFlashes returns the flash messages and removes them from the session.
func (s *Session) ConsumeFlashes() []any {
	flashes := s.base.Flashes()
	if len(flashes) > 0 {
		s.needsSave = true
	}
	return flashes
}
