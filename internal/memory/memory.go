// Package memory keeps the in-process conversation log per session.
// Persistence across restarts belongs to the conversation store; this
// log only feeds the prompt builder's rolling history window.
package memory

import (
	"sync"

	"github.com/nextmile/chatbot/internal/model"
)

// Log is an append-only sequence of turns for one session. Storage is
// unbounded; only Recent caps what callers see. All methods are safe
// for concurrent use, serializing appends so two in-flight turns cannot
// interleave.
type Log struct {
	mu    sync.Mutex
	turns []model.Turn
}

func (l *Log) Append(turn model.Turn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, turn)
}

// Recent returns the last n turns in insertion order.
func (l *Log) Recent(n int) []model.Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || len(l.turns) == 0 {
		return nil
	}
	start := len(l.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]model.Turn, len(l.turns)-start)
	copy(out, l.turns[start:])
	return out
}

func (l *Log) All() []model.Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.turns)
}

// Clear resets the log; it is the only way turns are removed.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = nil
}

// Sessions hands out one Log per session id.
type Sessions struct {
	mu   sync.Mutex
	logs map[string]*Log
}

func NewSessions() *Sessions {
	return &Sessions{logs: make(map[string]*Log)}
}

func (s *Sessions) Get(sessionID string) *Log {
	s.mu.Lock()
	defer s.mu.Unlock()
	log, ok := s.logs[sessionID]
	if !ok {
		log = &Log{}
		s.logs[sessionID] = log
	}
	return log
}

// Drop removes a session's log entirely.
func (s *Sessions) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, sessionID)
}
