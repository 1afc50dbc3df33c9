package model

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ConsoleSession is a connected human-agent console.
type ConsoleSession struct {
	OperatorID    string
	Conn          *websocket.Conn
	SessionID     string
	ClientIP      string
	LastHeartbeat time.Time
	MissedBeats   int
	mu            sync.RWMutex
}

// UpdateHeartbeat resets the heartbeat clock.
func (s *ConsoleSession) UpdateHeartbeat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastHeartbeat = time.Now()
	s.MissedBeats = 0
}

// IncrementMissedBeats counts one missed heartbeat tick.
func (s *ConsoleSession) IncrementMissedBeats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MissedBeats++
}

// ShouldBeCleaned reports whether the session missed too many heartbeats.
func (s *ConsoleSession) ShouldBeCleaned() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.MissedBeats >= 3
}

// WriteMessage writes JSON to the console connection. Safe for concurrent use.
func (s *ConsoleSession) WriteMessage(message interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Conn.WriteJSON(message)
}
