package storage

import "errors"

// Slot names for the four persisted documents.
const (
	SlotProjects = "projects"
	SlotTasks    = "tasks"
	SlotUsers    = "users"
	SlotSettings = "settings"
)

var (
	// ErrNotFound means the slot has never been written.
	ErrNotFound = errors.New("slot not found")
	// ErrDecode means the slot holds data that no longer decodes.
	ErrDecode = errors.New("slot data malformed")
)

// Store reads and writes raw document bytes to named slots. A Write replaces
// the prior contents atomically: a concurrent reader sees either the old
// document or the new one, never a partial write.
type Store interface {
	Write(slot string, data []byte) error
	Read(slot string) ([]byte, error)
	Close() error
}
