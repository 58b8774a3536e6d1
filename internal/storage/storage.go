package storage

import (
	"errors"

	"quantum-chat/internal/history"
)

var (
	ErrNotFound  = errors.New("conversation file not found")
	ErrMalformed = errors.New("conversation file is malformed")
)

// Store persists whole transcripts. Save never appends to an existing file
// and Load never merges into the current transcript.
// List returns a fresh snapshot of saved file names on every call.
type Store interface {
	Save(msgs []history.Message) (string, error)
	List() ([]string, error)
	Load(path string) ([]history.Message, error)
	Resolve(name string) (string, error)
}
