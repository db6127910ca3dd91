// Package session holds the process-wide Session Store: the single source of
// truth for who is logged in, persisted across restarts.
//
// The store is the only writer of the durable copy. Readers (guards, the API
// client, the dashboard resolver) take value snapshots, so a reader always
// sees either the old or the new session in full.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tastetrail/tastetrail/internal/core/domain"
	"github.com/tastetrail/tastetrail/internal/core/ports"
)

// Store is safe for concurrent use.
type Store struct {
	storage ports.SessionStorage
	log     zerolog.Logger

	mu      sync.RWMutex
	current domain.Session
	subs    map[int]chan domain.Session
	nextSub int

	ready     chan struct{}
	readyOnce sync.Once
}

// New returns a store in the Loading state. Call Restore before making any
// routing decision.
func New(storage ports.SessionStorage, log zerolog.Logger) *Store {
	return &Store{
		storage: storage,
		log:     log.With().Str("component", "session").Logger(),
		current: domain.Session{Loading: true},
		subs:    make(map[int]chan domain.Session),
		ready:   make(chan struct{}),
	}
}

// Restore loads a persisted session. It never fails: missing, partial or
// malformed data degrades to the logged-out state and is wiped.
func (s *Store) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, token, ok := s.readPersisted()
	if ok {
		s.current = domain.Session{User: user, Token: token}
	} else {
		s.current = domain.Session{}
	}
	s.markReady()
	s.publish()
}

func (s *Store) readPersisted() (*domain.Identity, string, bool) {
	token, hasToken, err := s.storage.Get(ports.SlotToken)
	if err != nil {
		s.readFailed(err, "read persisted token")
		return nil, "", false
	}
	raw, hasUser, err := s.storage.Get(ports.SlotUser)
	if err != nil {
		s.readFailed(err, "read persisted user")
		return nil, "", false
	}
	if !hasToken && !hasUser {
		return nil, "", false
	}

	var user domain.Identity
	if !hasToken || !hasUser || token == "" {
		s.log.Warn().Bool("has_token", hasToken).Bool("has_user", hasUser).Msg("partial persisted session discarded")
		s.wipe()
		return nil, "", false
	}
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == "" {
		s.log.Warn().Err(err).Msg("malformed persisted session discarded")
		s.wipe()
		return nil, "", false
	}
	return &user, token, true
}

// Login replaces the session with user and token and persists both. The new
// token is visible to readers as soon as Login returns. If persisting fails
// the store ends up logged out rather than holding a session the disk lacks.
func (s *Store) Login(user *domain.Identity, token string) error {
	if user == nil || user.ID == "" || token == "" {
		return &domain.ValidationError{Fields: domain.FieldErrors{"session": "user and token are both required"}}
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(token, string(raw)); err != nil {
		// The durable copy is now unknown; drop both copies so they agree.
		s.wipe()
		s.current = domain.Session{}
		s.markReady()
		s.publish()
		return fmt.Errorf("persist session: %w", err)
	}

	u := *user
	s.current = domain.Session{User: &u, Token: token}
	s.markReady()
	s.publish()
	s.log.Debug().Str("user_id", u.ID).Str("role", string(u.Role)).Msg("session started")
	return nil
}

// Logout clears the session in memory and on disk. It is safe to call when
// already logged out. The returned decision sends the caller to the login page.
func (s *Store) Logout() domain.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasLoggedIn := s.current.User != nil
	s.current = domain.Session{}
	s.wipe()
	s.markReady()
	s.publish()
	if wasLoggedIn {
		s.log.Debug().Msg("session cleared")
	}
	return domain.LoginRedirect("")
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Token returns the current credential token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Ready blocks until the initial restore (or a login/logout) has completed.
func (s *Store) Ready(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns a channel that receives the latest session after every
// change. Slow readers only ever see the most recent value. Call the returned
// func to unsubscribe.
func (s *Store) Subscribe() (<-chan domain.Session, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan domain.Session, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// persist writes both slots together. Callers hold mu.
func (s *Store) persist(token, user string) error {
	if b, ok := s.storage.(ports.BatchStorage); ok {
		return b.SetMany(map[string]string{ports.SlotToken: token, ports.SlotUser: user})
	}
	if err := s.storage.Set(ports.SlotToken, token); err != nil {
		return err
	}
	return s.storage.Set(ports.SlotUser, user)
}

// readFailed logs a failed read. Undecodable data is removed so the warning
// does not repeat on every restore; I/O errors leave storage untouched.
func (s *Store) readFailed(err error, msg string) {
	if errors.Is(err, ports.ErrCorruptStorage) {
		s.log.Warn().Err(err).Msg("malformed persisted session discarded")
		s.wipe()
		return
	}
	s.log.Warn().Err(err).Msg(msg)
}

// wipe removes both slots. Callers hold mu.
func (s *Store) wipe() {
	if err := s.storage.Remove(ports.SlotToken, ports.SlotUser); err != nil {
		s.log.Warn().Err(err).Msg("clear persisted session")
	}
}

func (s *Store) markReady() {
	s.current.Loading = false
	s.readyOnce.Do(func() { close(s.ready) })
}

// publish fans the current session out to subscribers. Callers hold mu.
func (s *Store) publish() {
	snap := s.current.Clone()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
