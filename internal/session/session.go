// Package session holds the mutable state of one running chat session: the
// accepted API key and the transcript. A State is created once per session
// and handed to every flow explicitly.
package session

import (
	"sync"

	"quantum-chat/internal/auth"
	"quantum-chat/internal/history"
)

type KeyStatus int

const (
	KeyEmpty KeyStatus = iota
	KeyValid
	KeyInvalid
)

func (s KeyStatus) String() string {
	switch s {
	case KeyValid:
		return "valid"
	case KeyInvalid:
		return "invalid"
	default:
		return "empty"
	}
}

type State struct {
	mu         sync.RWMutex
	apiKey     string
	transcript *history.Transcript
}

func New() *State {
	return &State{transcript: history.NewTranscript()}
}

// SetKey checks input and stores it only when it is a well-formed key.
// An empty or malformed input leaves the previously accepted key in place.
func (s *State) SetKey(input string) KeyStatus {
	if input == "" {
		return KeyEmpty
	}
	if !auth.IsValidKey(input) {
		return KeyInvalid
	}
	s.mu.Lock()
	s.apiKey = input
	s.mu.Unlock()
	return KeyValid
}

func (s *State) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

func (s *State) Transcript() *history.Transcript { return s.transcript }
