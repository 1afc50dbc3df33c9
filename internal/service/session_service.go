package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/cobrancabot/cobrancabot-go/internal/model"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var ErrNoConsoles = fmt.Errorf("no agent console connected")

// SessionService tracks connected human-agent consoles and routes
// escalation notices to them.
type SessionService struct {
	consoles          map[string]*model.ConsoleSession // operatorID -> session
	sessionToOperator map[string]string                // sessionID -> operatorID
	mu                sync.RWMutex
	logger            *zap.Logger
}

// NewSessionService creates the console registry and starts heartbeat
// sweeping.
func NewSessionService(logger *zap.Logger) *SessionService {
	s := &SessionService{
		consoles:          make(map[string]*model.ConsoleSession),
		sessionToOperator: make(map[string]string),
		logger:            logger,
	}
	go s.heartbeatChecker()
	return s
}

// RegisterConsole registers an operator console, closing any previous
// connection for the same operator.
func (s *SessionService) RegisterConsole(operatorID string, conn *websocket.Conn, sessionID, clientIP string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.consoles[operatorID]; ok {
		s.logger.Info("operator reconnected, closing old console",
			zap.String("operatorId", operatorID),
			zap.String("oldSessionId", existing.SessionID))
		existing.Conn.Close()
		delete(s.sessionToOperator, existing.SessionID)
	}

	session := &model.ConsoleSession{
		OperatorID:    operatorID,
		Conn:          conn,
		SessionID:     sessionID,
		ClientIP:      clientIP,
		LastHeartbeat: time.Now(),
	}
	s.consoles[operatorID] = session
	s.sessionToOperator[sessionID] = operatorID

	s.logger.Info("agent console registered",
		zap.String("operatorId", operatorID),
		zap.String("sessionId", sessionID))
}

// RemoveBySessionID drops a console by its session id.
func (s *SessionService) RemoveBySessionID(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	operatorID, ok := s.sessionToOperator[sessionID]
	if !ok {
		return
	}
	delete(s.sessionToOperator, sessionID)
	delete(s.consoles, operatorID)
	s.logger.Info("agent console removed", zap.String("operatorId", operatorID))
}

// UpdateHeartbeat resets the heartbeat for an operator console.
func (s *SessionService) UpdateHeartbeat(operatorID string) {
	s.mu.RLock()
	session, ok := s.consoles[operatorID]
	s.mu.RUnlock()
	if ok {
		session.UpdateHeartbeat()
	}
}

// SendToOperator writes one message to a single operator console.
func (s *SessionService) SendToOperator(operatorID string, msg model.ConsoleMessage) error {
	s.mu.RLock()
	session, ok := s.consoles[operatorID]
	s.mu.RUnlock()
	if !ok {
		return ErrNoConsoles
	}
	return session.WriteMessage(msg)
}

// NotifyEscalation pushes an escalated conversation to every connected
// console. Returns ErrNoConsoles when nobody is listening.
func (s *SessionService) NotifyEscalation(phone string, resp model.Response) error {
	s.mu.RLock()
	sessions := make([]*model.ConsoleSession, 0, len(s.consoles))
	for _, session := range s.consoles {
		sessions = append(sessions, session)
	}
	s.mu.RUnlock()

	if len(sessions) == 0 {
		return ErrNoConsoles
	}

	msg := model.ConsoleMessage{
		Type:      "ESCALATION",
		Phone:     phone,
		Text:      resp.Text,
		Intent:    resp.Intent,
		Emotion:   resp.EmotionalState,
		Timestamp: time.Now(),
	}
	for _, session := range sessions {
		if err := session.WriteMessage(msg); err != nil {
			s.logger.Error("escalation push failed",
				zap.String("operatorId", session.OperatorID),
				zap.Error(err))
		}
	}
	return nil
}

// heartbeatChecker sweeps stale consoles every 30 seconds.
func (s *SessionService) heartbeatChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		for operatorID, session := range s.consoles {
			session.IncrementMissedBeats()
			if session.ShouldBeCleaned() {
				s.logger.Warn("console heartbeat lost, cleaning up",
					zap.String("operatorId", operatorID))
				session.Conn.Close()
				delete(s.sessionToOperator, session.SessionID)
				delete(s.consoles, operatorID)
			}
		}
		s.mu.Unlock()
	}
}
