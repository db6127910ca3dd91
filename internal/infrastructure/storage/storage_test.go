package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tastetrail/tastetrail/internal/core/ports"
)

func TestFile_SetManyGetRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	f := NewFile(path)

	if _, ok, err := f.Get("authToken"); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	if err := f.SetMany(map[string]string{"authToken": "tok", "authUser": `{"id":"1"}`}); err != nil {
		t.Fatalf("SetMany: %v", err)
	}

	v, ok, err := f.Get("authUser")
	if err != nil || !ok || v != `{"id":"1"}` {
		t.Fatalf("unexpected user slot: %q ok=%v err=%v", v, ok, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != fileMode {
		t.Fatalf("expected mode %o, got %o", fileMode, info.Mode().Perm())
	}

	if err := f.Remove("authToken", "authUser"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
	if err := f.Remove("authToken"); err != nil {
		t.Fatalf("Remove on missing file: %v", err)
	}
}

func TestFile_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := NewFile(path).Set("authToken", "tok"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	v, ok, err := NewFile(path).Get("authToken")
	if err != nil || !ok || v != "tok" {
		t.Fatalf("expected persisted token, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestFile_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	f := NewFile(path)

	if _, _, err := f.Get("authToken"); !errors.Is(err, ports.ErrCorruptStorage) {
		t.Fatalf("expected corrupt storage error, got %v", err)
	}
	if err := f.Remove("authToken", "authUser"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, err := f.Get("authToken"); err != nil || ok {
		t.Fatalf("expected clean store after remove, ok=%v err=%v", ok, err)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	_ = m.SetMany(map[string]string{"a": "1", "b": "2"})
	if m.Len() != 2 {
		t.Fatalf("expected 2 slots, got %d", m.Len())
	}
	_ = m.Remove("a", "b", "c")
	if _, ok, _ := m.Get("a"); ok {
		t.Fatalf("expected a removed")
	}
}
