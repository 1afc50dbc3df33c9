package service

import (
	"context"
	"time"

	"github.com/cobrancabot/cobrancabot-go/internal/config"
	"github.com/cobrancabot/cobrancabot-go/internal/memory"
	"github.com/cobrancabot/cobrancabot-go/internal/model"
	"github.com/cobrancabot/cobrancabot-go/internal/nlp"
	"go.uber.org/zap"
)

// ClassifierService runs the full classification pipeline for inbound
// messages: normalize, extract, analyze, score, resolve, compose. The
// contract is a total function from (key, text) to Response; no internal
// error ever reaches the caller.
type ClassifierService struct {
	normalizer *nlp.Normalizer
	extractor  *nlp.EntityExtractor
	emotion    *nlp.EmotionAnalyzer
	patterns   *nlp.PatternScorer
	semantic   *nlp.SemanticScorer
	cascade    *FallbackCascade
	composer   *ResponseService
	memory     *memory.Store
	acceptance float64
	timeout    time.Duration
	logger     *zap.Logger
}

// NewClassifierService creates the engine. The memory store and composer are
// injected; the leaf analyzers are owned by the engine.
func NewClassifierService(
	store *memory.Store,
	composer *ResponseService,
	cfg config.EngineConfig,
	logger *zap.Logger,
) *ClassifierService {
	semantic := nlp.NewSemanticScorer()
	return &ClassifierService{
		normalizer: nlp.NewNormalizer(),
		extractor:  nlp.NewEntityExtractor(),
		emotion:    nlp.NewEmotionAnalyzer(),
		patterns:   nlp.NewPatternScorer(),
		semantic:   semantic,
		cascade:    NewFallbackCascade(semantic, logger),
		composer:   composer,
		memory:     store,
		acceptance: cfg.AcceptanceThreshold,
		timeout:    cfg.Timeout,
		logger:     logger,
	}
}

// Classify processes one inbound message for a conversation key. Messages
// for the same key are serialized; different keys run in parallel. Memory is
// committed only after a complete Response is produced; a timed-out run
// leaves memory untouched.
func (s *ClassifierService) Classify(ctx context.Context, key, text, displayName string) model.Response {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	conv, release := s.memory.Acquire(ctx, key)
	defer release()
	if ctx.Err() != nil {
		return emergencyResponse()
	}
	convo := snapshotConversation(conv)

	type pipeOut struct {
		resp   model.Response
		result *model.ClassificationResult
	}
	done := make(chan pipeOut, 1)
	go func() {
		resp, result := s.process(convo, text, displayName)
		done <- pipeOut{resp: resp, result: result}
	}()

	select {
	case <-ctx.Done():
		s.logger.Warn("classification timed out, memory not committed",
			zap.String("key", key),
			zap.Error(ctx.Err()))
		return emergencyResponse()
	case out := <-done:
		if out.result != nil {
			now := time.Now()
			conv.Update(out.result, text, now)
			conv.Learn(out.result, now)
			s.memory.Persist(context.Background(), key, conv)
		}
		s.logger.Info("message classified",
			zap.String("key", key),
			zap.String("intent", out.resp.Intent),
			zap.Float64("confidence", out.resp.Confidence),
			zap.String("emotion", out.resp.EmotionalState),
			zap.String("fallbackLevel", out.resp.FallbackLevel))
		return out.resp
	}
}

// process runs the synchronous pipeline over a memory snapshot. Any panic in
// a stage is caught here and redirected into the fallback cascade.
func (s *ClassifierService) process(convo convoContext, raw, displayName string) (resp model.Response, result *model.ClassificationResult) {
	normalized := ""
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		s.logger.Error("pipeline stage failed, entering fallback cascade",
			zap.Any("panic", r))
		outcome := s.cascade.Run(normalized, convo)
		result = resultFromFallback(outcome, normalized)
		resp = s.composer.Compose(result, convo, displayName, outcome.Level, outcome.RequiresConfirmation)
	}()

	msg := s.normalizer.NormalizeMessage(raw)
	normalized = msg.Normalized

	if normalized == "" {
		// Whitespace-only input: Unknown with zero confidence, which the
		// acceptance gate routes straight into the cascade.
		result = &model.ClassificationResult{
			PrimaryIntent:       model.IntentUnknown,
			EmotionalState:      model.EmotionNeutral,
			TemporalFrame:       model.FramePresent,
			ContextualCoherence: firstTurnCoherence,
		}
	} else {
		entities := s.extractor.Extract(normalized)
		emotion := s.emotion.Analyze(msg.Normalized, msg.Raw)
		frame := s.emotion.TemporalFrame(normalized)
		neg := s.emotion.Negation(normalized)
		best, all := s.semantic.BestMatch(normalized)
		result = s.resolve(normalized, entities, emotion, frame, neg, best, all, convo)
	}

	if result.Confidence >= s.acceptance {
		resp = s.composer.Compose(result, convo, displayName, "", false)
		return resp, result
	}

	outcome := s.cascade.Run(normalized, convo)
	final := *result
	final.PrimaryIntent = outcome.Intent
	final.Confidence = outcome.Confidence
	resp = s.composer.Compose(&final, convo, displayName, outcome.Level, outcome.RequiresConfirmation)
	return resp, &final
}

// resultFromFallback builds the minimal classification recorded in memory
// when the primary pipeline never produced one.
func resultFromFallback(outcome FallbackOutcome, normalized string) *model.ClassificationResult {
	return &model.ClassificationResult{
		PrimaryIntent:        outcome.Intent,
		Confidence:           outcome.Confidence,
		EmotionalState:       model.EmotionNeutral,
		TemporalFrame:        model.FramePresent,
		ContextualCoherence:  firstTurnCoherence,
		LinguisticComplexity: nlp.LinguisticComplexity(normalized),
	}
}

// emergencyResponse is the fixed reply for a timed-out or fully exhausted
// classification.
func emergencyResponse() model.Response {
	return model.Response{
		Text:                 "Desculpe, não consegui processar sua mensagem agora. Pode me dizer se é sobre boleto, valor ou negociação?",
		Intent:               string(model.IntentClarificationRequest),
		Confidence:           0.1,
		EmotionalState:       string(model.EmotionNeutral),
		Escalate:             true,
		FallbackLevel:        LevelEmergency,
		RequiresConfirmation: true,
	}
}
