package relief

import (
	"sync"

	"relief-go/internal/model"
)

// Session is the single slot holding the logged-in user. It is persisted
// under KeySession so a restart keeps the user logged in. The stored copy
// never carries credentials.
type Session struct {
	layer *Layer

	mu      sync.RWMutex
	current *model.User
}

// NewSession restores the session stored in layer. A missing or corrupt
// session value starts empty.
func NewSession(layer *Layer) *Session {
	var current *model.User
	if u := Read[*model.User](layer, KeySession, nil); u != nil && u.ID != "" {
		current = u
	}
	return &Session{layer: layer, current: current}
}

// Current returns the logged-in user.
func (s *Session) Current() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return model.User{}, false
	}
	return *s.current, true
}

func (s *Session) set(u model.User) error {
	u.Password = ""
	u.SecurityAnswer = ""

	s.mu.Lock()
	s.current = &u
	s.mu.Unlock()
	return s.layer.Write(KeySession, u)
}

// Clear empties the slot. It is safe to call when nobody is logged in.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	return s.layer.Write(KeySession, nil)
}
