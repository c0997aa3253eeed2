package db

import (
	"fmt"

	"github.com/Arvi89/planning-taki/models"
)

// Store is an in-memory registry of sessions plus the session each connection
// has joined. It is owned by the hub goroutine and takes no locks.
type Store struct {
	sessions    map[string]*models.Session
	memberships map[string]string
	scales      models.Scales
	rules       models.Rules
}

// NewStore creates an empty registry. New sessions get rules; a join may pick
// any scale listed in scales.
func NewStore(rules models.Rules, scales models.Scales) *Store {
	if scales == nil {
		scales = models.BuiltinScales()
	}
	return &Store{
		sessions:    make(map[string]*models.Session),
		memberships: make(map[string]string),
		scales:      scales,
		rules:       rules,
	}
}

// GetOrCreate returns the session with the given id, creating it in the lobby
// if needed. The second return reports whether it was created. scale names
// the deck for a new session; an unknown or empty name keeps the default.
func (s *Store) GetOrCreate(id, scale string) (*models.Session, bool) {
	if session, exists := s.sessions[id]; exists {
		return session, false
	}

	rules := s.rules
	if sc, ok := s.scales.Lookup(scale, rules.Scale.Name); ok {
		rules.Scale = sc
	}
	session := models.NewSession(id, rules)
	s.sessions[id] = session
	return session, true
}

// Get returns a session by id
func (s *Store) Get(id string) (*models.Session, error) {
	session, exists := s.sessions[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", models.ErrSessionNotFound, id)
	}
	return session, nil
}

// DeleteIfEmpty removes the session once its last player is gone
func (s *Store) DeleteIfEmpty(id string) bool {
	session, exists := s.sessions[id]
	if !exists || !session.IsEmpty() {
		return false
	}
	delete(s.sessions, id)
	return true
}

// CleanupEmptySessions removes every session that has no players
func (s *Store) CleanupEmptySessions() int {
	count := 0
	for id, session := range s.sessions {
		if session.IsEmpty() {
			delete(s.sessions, id)
			count++
		}
	}
	return count
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	return len(s.sessions)
}

// Bind records that connID has joined sessionID.
func (s *Store) Bind(connID, sessionID string) {
	s.memberships[connID] = sessionID
}

// Membership returns the session connID has joined.
func (s *Store) Membership(connID string) (string, bool) {
	id, ok := s.memberships[connID]
	return id, ok
}

// Unbind forgets connID's membership and returns the session it was in.
func (s *Store) Unbind(connID string) (string, bool) {
	id, ok := s.memberships[connID]
	if ok {
		delete(s.memberships, connID)
	}
	return id, ok
}

// SessionOf resolves the session connID has joined.
func (s *Store) SessionOf(connID string) (*models.Session, error) {
	id, ok := s.memberships[connID]
	if !ok {
		return nil, models.ErrNotJoined
	}
	return s.Get(id)
}
