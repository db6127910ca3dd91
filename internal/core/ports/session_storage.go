package ports

import "errors"

// ErrCorruptStorage marks stored data that exists but cannot be decoded.
// Unlike an I/O failure it is safe to discard.
var ErrCorruptStorage = errors.New("corrupt session storage")

// Durable storage slot names. Both are written together and cleared together.
const (
	SlotToken = "authToken"
	SlotUser  = "authUser"
)

// SessionStorage is the durable client-side key/value storage that survives
// restarts. Only the session store writes to it.
type SessionStorage interface {
	// Get returns the value stored under key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(keys ...string) error
}

// BatchStorage is implemented by storages that can write several slots in
// one atomic step.
type BatchStorage interface {
	SetMany(values map[string]string) error
}
