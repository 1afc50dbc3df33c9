package handler

import (
	"net/http"
	"time"

	"github.com/cobrancabot/cobrancabot-go/internal/model"
	"github.com/cobrancabot/cobrancabot-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the console frontend origin before exposing this
		// endpoint publicly.
		return true
	},
}

// WebSocketHandler manages human-agent console connections.
type WebSocketHandler struct {
	sessionService *service.SessionService
	logger         *zap.Logger
}

// NewWebSocketHandler creates the console websocket handler.
func NewWebSocketHandler(sessionService *service.SessionService, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		sessionService: sessionService,
		logger:         logger,
	}
}

// HandleConsole upgrades an operator connection and keeps it registered for
// escalation pushes. GET /ws/console?operator=<id>
func (h *WebSocketHandler) HandleConsole(c *gin.Context) {
	operatorID := c.Query("operator")
	if operatorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "operator is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sessionID := uuid.New().String()
	h.sessionService.RegisterConsole(operatorID, conn, sessionID, c.ClientIP())
	defer h.sessionService.RemoveBySessionID(sessionID)

	h.logger.Info("console connected",
		zap.String("operatorId", operatorID),
		zap.String("sessionId", sessionID))

	for {
		var msg model.ConsoleMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("console read error", zap.Error(err))
			}
			break
		}

		switch msg.Type {
		case "HEARTBEAT":
			h.sessionService.UpdateHeartbeat(operatorID)
			_ = h.sessionService.SendToOperator(operatorID, model.ConsoleMessage{Type: "HEARTBEAT_ACK", Timestamp: time.Now()})
		default:
			h.logger.Warn("unknown console message type",
				zap.String("operatorId", operatorID),
				zap.String("type", msg.Type))
		}
	}

	h.logger.Info("console disconnected", zap.String("operatorId", operatorID))
}
