package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/cobrancabot/cobrancabot-go/internal/config"
	"github.com/cobrancabot/cobrancabot-go/internal/handler"
	"github.com/cobrancabot/cobrancabot-go/internal/memory"
	"github.com/cobrancabot/cobrancabot-go/internal/middleware"
	"github.com/cobrancabot/cobrancabot-go/internal/service"
	"github.com/cobrancabot/cobrancabot-go/pkg/logger"
	"github.com/cobrancabot/cobrancabot-go/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig("configs/webhook.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("webhook service starting...")

	// Conversation memory, with the Redis persistence hook when configured.
	// The engine works the same without it; memory is then process-local.
	var hook memory.PersistenceHook
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewRedisClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("connect redis", zap.Error(err))
		}
		hook = memory.NewRedisHook(redisClient, cfg.Engine.MemoryTTL)
		zapLogger.Info("redis persistence hook enabled")
	}
	store := memory.NewStore(hook, zapLogger)

	composer := service.NewResponseService(zapLogger)
	classifier := service.NewClassifierService(store, composer, cfg.Engine, zapLogger)
	sessionService := service.NewSessionService(zapLogger)

	webhookHandler := handler.NewWebhookHandler(classifier, sessionService, zapLogger)
	wsHandler := handler.NewWebSocketHandler(sessionService, zapLogger)

	r := gin.Default()
	r.Use(middleware.CORS())

	r.POST("/api/message", webhookHandler.HandleMessage)
	r.GET("/ws/console", wsHandler.HandleConsole)
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "UP",
			"service": cfg.Server.Name,
		})
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	zapLogger.Info("webhook service started", zap.Int("port", cfg.Server.Port))

	if err := r.Run(addr); err != nil {
		zapLogger.Fatal("server exited", zap.Error(err))
	}
}
