package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/cobrancabot/cobrancabot-go/internal/config"
	"github.com/cobrancabot/cobrancabot-go/internal/memory"
	"github.com/cobrancabot/cobrancabot-go/internal/service"
	"github.com/cobrancabot/cobrancabot-go/pkg/logger"
)

// Local developer loop: type messages, see classifications. No Redis, no HTTP.
func main() {
	cfg := config.Default()

	zapLogger, err := logger.NewLogger("warn")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zapLogger.Sync()

	store := memory.NewStore(nil, zapLogger)
	composer := service.NewResponseService(zapLogger)
	classifier := service.NewClassifierService(store, composer, cfg.Engine, zapLogger)

	fmt.Println("cobrancabot repl - digite uma mensagem (ctrl-d para sair)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		resp := classifier.Classify(context.Background(), "repl", text, "")
		fmt.Printf("[%s conf=%.2f emo=%s fallback=%q escalate=%v]\n%s\n\n",
			resp.Intent, resp.Confidence, resp.EmotionalState, resp.FallbackLevel, resp.Escalate, resp.Text)
	}
}
