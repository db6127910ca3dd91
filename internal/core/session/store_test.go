package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tastetrail/tastetrail/internal/core/domain"
	"github.com/tastetrail/tastetrail/internal/core/ports"
	"github.com/tastetrail/tastetrail/internal/infrastructure/storage"
)

// failingStorage fails every write and optionally every read.
type failingStorage struct {
	*storage.Memory
	readErr  error
	writeErr error
}

func (f *failingStorage) Get(key string) (string, bool, error) {
	if f.readErr != nil {
		return "", false, f.readErr
	}
	return f.Memory.Get(key)
}

func (f *failingStorage) Set(key, value string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.Memory.Set(key, value)
}

func newStore(st ports.SessionStorage) *Store {
	return New(st, zerolog.Nop())
}

func TestStore_StartsLoading(t *testing.T) {
	s := newStore(storage.NewMemory())
	if !s.Snapshot().Loading {
		t.Fatalf("expected Loading before restore")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := s.Ready(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected Ready to block before restore, got %v", err)
	}
}

func TestStore_RestoreEmptyIsIdempotent(t *testing.T) {
	s := newStore(storage.NewMemory())

	s.Restore()
	first := s.Snapshot()
	if first.Loading || first.User != nil || first.Token != "" {
		t.Fatalf("unexpected session after first restore: %+v", first)
	}
	if err := s.Ready(context.Background()); err != nil {
		t.Fatalf("Ready after restore: %v", err)
	}

	s.Restore()
	second := s.Snapshot()
	if second.Loading || second.User != nil || second.Token != "" {
		t.Fatalf("unexpected session after second restore: %+v", second)
	}
}

func TestStore_LoginRoundTripsThroughRestore(t *testing.T) {
	st := storage.NewMemory()
	s := newStore(st)
	s.Restore()

	u := &domain.Identity{ID: "1", Name: "Alice", Email: "a@example.com", Role: domain.RoleUser}
	if err := s.Login(u, "tok123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	snap := s.Snapshot()
	if snap.User == nil || snap.User.ID != "1" || snap.Token != "tok123" {
		t.Fatalf("expected user and token together, got %+v", snap)
	}
	if s.Token() != "tok123" {
		t.Fatalf("Token() not updated: %q", s.Token())
	}

	reloaded := newStore(st)
	reloaded.Restore()
	got := reloaded.Snapshot()
	if got.User == nil || *got.User != *u || got.Token != "tok123" {
		t.Fatalf("restore mismatch: %+v", got)
	}
}

func TestStore_LoginCopiesIdentity(t *testing.T) {
	s := newStore(storage.NewMemory())
	u := &domain.Identity{ID: "1", Role: domain.RoleUser}
	_ = s.Login(u, "tok")

	u.Role = domain.RoleAdmin
	if s.Snapshot().Role() != domain.RoleUser {
		t.Fatalf("store identity mutated through caller pointer")
	}

	snap := s.Snapshot()
	snap.User.Role = domain.RoleAdmin
	if s.Snapshot().Role() != domain.RoleUser {
		t.Fatalf("store identity mutated through snapshot")
	}
}

func TestStore_LoginRejectsHalfSession(t *testing.T) {
	s := newStore(storage.NewMemory())
	s.Restore()

	if err := s.Login(nil, "tok"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for nil user, got %v", err)
	}
	if err := s.Login(&domain.Identity{ID: "1"}, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty token, got %v", err)
	}
	if s.Snapshot().User != nil {
		t.Fatalf("session must stay empty")
	}
}

func TestStore_LoginPersistFailureLogsOut(t *testing.T) {
	st := &failingStorage{Memory: storage.NewMemory()}
	s := newStore(st)
	_ = s.Login(&domain.Identity{ID: "1"}, "old")

	st.writeErr = errors.New("disk full")
	// Hide SetMany so the store falls back to per-slot writes.
	s.storage = struct{ ports.SessionStorage }{st}

	if err := s.Login(&domain.Identity{ID: "2"}, "new"); err == nil {
		t.Fatalf("expected persist error")
	}
	snap := s.Snapshot()
	if snap.User != nil || snap.Token != "" {
		t.Fatalf("expected logged-out session after failed persist, got %+v", snap)
	}
	if st.Len() != 0 {
		t.Fatalf("expected storage wiped, %d slots left", st.Len())
	}
}

func TestStore_LogoutClearsEverything(t *testing.T) {
	st := storage.NewMemory()
	s := newStore(st)
	s.Restore()
	_ = s.Login(&domain.Identity{ID: "1"}, "tok")

	d := s.Logout()
	if d.Kind != domain.RedirectToLogin || d.ReturnTo != "" {
		t.Fatalf("unexpected logout decision: %+v", d)
	}
	if snap := s.Snapshot(); snap.User != nil || snap.Token != "" {
		t.Fatalf("memory not cleared: %+v", snap)
	}
	if st.Len() != 0 {
		t.Fatalf("storage not cleared: %d slots", st.Len())
	}

	// idempotent
	_ = s.Logout()

	reloaded := newStore(st)
	reloaded.Restore()
	if snap := reloaded.Snapshot(); snap.User != nil || snap.Token != "" {
		t.Fatalf("restore after logout should be empty: %+v", snap)
	}
}

func TestStore_RestoreDiscardsPartialOrMalformed(t *testing.T) {
	tests := []struct {
		name  string
		slots map[string]string
	}{
		{name: "token_without_user", slots: map[string]string{ports.SlotToken: "tok"}},
		{name: "user_without_token", slots: map[string]string{ports.SlotUser: `{"id":"1"}`}},
		{name: "empty_token", slots: map[string]string{ports.SlotToken: "", ports.SlotUser: `{"id":"1"}`}},
		{name: "bad_json", slots: map[string]string{ports.SlotToken: "tok", ports.SlotUser: "{"}},
		{name: "missing_id", slots: map[string]string{ports.SlotToken: "tok", ports.SlotUser: `{"name":"x"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := storage.NewMemory()
			_ = st.SetMany(tt.slots)

			s := newStore(st)
			s.Restore()

			snap := s.Snapshot()
			if snap.Loading || snap.User != nil || snap.Token != "" {
				t.Fatalf("expected empty session, got %+v", snap)
			}
			if st.Len() != 0 {
				t.Fatalf("expected junk slots wiped, %d left", st.Len())
			}
		})
	}
}

func TestStore_RestoreReadErrorDegrades(t *testing.T) {
	st := &failingStorage{Memory: storage.NewMemory(), readErr: errors.New("io")}
	s := newStore(st)
	s.Restore()

	snap := s.Snapshot()
	if snap.Loading || snap.User != nil {
		t.Fatalf("expected logged-out session, got %+v", snap)
	}
}

func TestStore_RestoreReadErrorKeepsStorage(t *testing.T) {
	st := &failingStorage{Memory: storage.NewMemory()}
	if err := st.Memory.Set(ports.SlotToken, "tok"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	st.readErr = errors.New("permission denied")
	newStore(st).Restore()

	if st.Len() != 1 {
		t.Fatalf("an unreadable store must not be wiped, %d slots left", st.Len())
	}
}

func TestStore_RestoreRemovesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := newStore(storage.NewFile(path))
	s.Restore()

	if snap := s.Snapshot(); snap.Authenticated() || snap.Loading {
		t.Fatalf("expected logged-out session, got %+v", snap)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("corrupt session file should be removed, stat err=%v", err)
	}
}

func TestStore_SubscribeSeesLatest(t *testing.T) {
	s := newStore(storage.NewMemory())
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Restore()
	_ = s.Login(&domain.Identity{ID: "1"}, "a")
	_ = s.Login(&domain.Identity{ID: "2"}, "b")

	got := <-ch
	if got.User == nil || got.User.ID != "2" || got.Token != "b" {
		t.Fatalf("expected latest session, got %+v", got)
	}
}

func TestStore_SnapshotsAreNeverTorn(t *testing.T) {
	s := newStore(storage.NewMemory())
	s.Restore()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				_ = s.Login(&domain.Identity{ID: "even"}, "even-token")
			} else {
				_ = s.Login(&domain.Identity{ID: "odd"}, "odd-token")
			}
		}
	}()

	for i := 0; i < 2000; i++ {
		snap := s.Snapshot()
		if snap.User == nil {
			continue
		}
		if snap.Token != snap.User.ID+"-token" {
			close(stop)
			wg.Wait()
			t.Fatalf("torn session: user=%s token=%s", snap.User.ID, snap.Token)
		}
	}
	close(stop)
	wg.Wait()
}
