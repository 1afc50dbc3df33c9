package handler

import (
	"net/http"
	"time"

	"github.com/cobrancabot/cobrancabot-go/internal/model"
	"github.com/cobrancabot/cobrancabot-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WebhookHandler receives inbound channel events and runs them through the
// classification engine.
type WebhookHandler struct {
	classifier     *service.ClassifierService
	sessionService *service.SessionService
	logger         *zap.Logger
}

// NewWebhookHandler creates the webhook handler.
func NewWebhookHandler(classifier *service.ClassifierService, sessionService *service.SessionService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		classifier:     classifier,
		sessionService: sessionService,
		logger:         logger,
	}
}

// HandleMessage processes one inbound customer message.
// POST /api/message  {"phone": "...", "text": "...", "name": "..."}
func (h *WebhookHandler) HandleMessage(c *gin.Context) {
	var msg model.InboundMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone is required"})
		return
	}

	messageID := uuid.New().String()
	h.logger.Info("inbound message received",
		zap.String("messageId", messageID),
		zap.String("phone", msg.Phone))

	resp := h.classifier.Classify(c.Request.Context(), msg.Phone, msg.Text, msg.Name)

	if resp.Escalate {
		if err := h.sessionService.NotifyEscalation(msg.Phone, resp); err != nil {
			h.logger.Warn("escalation not delivered",
				zap.String("phone", msg.Phone),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, model.WebhookReply{
		MessageID: messageID,
		Phone:     msg.Phone,
		Reply:     resp,
		Timestamp: time.Now(),
	})
}
