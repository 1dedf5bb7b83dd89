package session

import (
	"errors"
	"strings"
)

// DictationState enum
type DictationState string

const (
	DictationIdle      DictationState = "idle"
	DictationListening DictationState = "listening"
)

// DictationLocale is fixed; capture is single-utterance, non-interim.
const DictationLocale = "en-US"

// ErrNotListening indicates a dictation transition arrived while idle.
var ErrNotListening = errors.New("dictation is not active")

// StartDictation moves the machine to Listening. Starting while already
// listening is a no-op.
func (s *Session) StartDictation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dictation = DictationListening
}

// DictationResult appends a recognized transcript to the pending input
// buffer and stops capture. A transcript arriving while idle (a late event
// after stop) is dropped with ErrNotListening; it never mutates the buffer.
func (s *Session) DictationResult(transcript string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dictation != DictationListening {
		return ErrNotListening
	}
	transcript = strings.TrimSpace(transcript)
	if transcript != "" {
		if s.input != "" {
			s.input += " "
		}
		s.input += transcript
	}
	s.dictation = DictationIdle
	return nil
}

// StopDictation returns the machine to Idle. Covers both the user stopping
// capture and the recognizer's error/end events.
func (s *Session) StopDictation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dictation = DictationIdle
}
