package ai

import (
	"context"
	"fmt"

	"github.com/dermatocheck/dermatocheck-api/internal/constants"
	"github.com/dermatocheck/dermatocheck-api/internal/util"
	"github.com/dermatocheck/dermatocheck-api/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ModelManager routes generation calls to Gemini with an optional OpenAI
// fallback, behind a shared circuit breaker.
type ModelManager struct {
	gemini         *GeminiProvider
	openai         *OpenAIProvider
	logger         *zap.Logger
	enableFallback bool
	circuitBreaker *util.CircuitBreaker
}

type ModelManagerConfig struct {
	GeminiAPIKey   string
	OpenAIAPIKey   string
	GeminiModel    string
	OpenAIModel    string
	EnableFallback bool
}

func NewModelManager(ctx context.Context, cfg ModelManagerConfig, logger *zap.Logger) (*ModelManager, error) {
	geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	geminiModel := cfg.GeminiModel
	if geminiModel == "" {
		geminiModel = "gemini-2.5-flash"
	}
	openaiModel := cfg.OpenAIModel
	if openaiModel == "" {
		openaiModel = "gpt-4.1-mini"
	}

	geminiProvider := NewGeminiProvider(geminiClient, geminiModel, logger)
	openaiProvider := NewOpenAIProvider(cfg.OpenAIAPIKey, openaiModel, logger)
	if openaiProvider != nil {
		logger.Info("OpenAI fallback enabled", zap.String("model", openaiModel))
	} else {
		logger.Info("OpenAI fallback disabled (no API key)")
	}

	mm := &ModelManager{
		gemini: geminiProvider,
		openai: openaiProvider,
		logger: logger,
	}
	mm.enableFallback = cfg.EnableFallback && openaiProvider != nil

	mm.circuitBreaker = util.NewCircuitBreaker(
		constants.CircuitBreakerConfig.FailureThreshold,
		constants.CircuitBreakerConfig.ResetTimeout,
		constants.CircuitBreakerConfig.HealthCheckInterval,
		mm.healthCheckPing,
		logger,
	)

	return mm, nil
}

// Generate runs the primary provider and falls back when enabled. The
// returned error keeps the raw provider message so the remediation
// classifier can inspect it.
func (mm *ModelManager) Generate(ctx context.Context, input GenerateInput) (GenerateOutput, error) {
	if !mm.circuitBreaker.CanExecute() {
		mm.logger.Error("AI service unavailable (Circuit OPEN)",
			zap.Int("failure_count", mm.circuitBreaker.FailureCount()),
			zap.Time("next_retry", mm.circuitBreaker.NextRetryTime()),
		)
		return GenerateOutput{}, errors.NewAIProviderError(
			"remediation.generic", "circuit", "circuit breaker open", nil)
	}

	out, primaryErr := mm.gemini.Generate(ctx, input)
	if primaryErr == nil {
		mm.circuitBreaker.RecordSuccess()
		return out, nil
	}

	if mm.enableFallback {
		fallbackOut, fallbackErr := mm.openai.Generate(ctx, input)
		if fallbackErr == nil {
			mm.circuitBreaker.RecordSuccess()
			mm.logger.Warn("Primary provider failed, served by fallback",
				zap.String("primary_error", primaryErr.Error()),
			)
			return fallbackOut, nil
		}
		mm.logger.Error("Both providers failed",
			zap.NamedError("gemini", primaryErr),
			zap.NamedError("openai", fallbackErr),
		)
	}

	mm.circuitBreaker.RecordFailure(0)
	return GenerateOutput{}, errors.NewAIProviderError(
		"errors.analysis_failed", mm.gemini.Name(), primaryErr.Error(), primaryErr)
}

func (mm *ModelManager) healthCheckPing() bool {
	ctx, cancel := context.WithTimeout(context.Background(), constants.CircuitBreakerConfig.HealthCheckTimeout)
	defer cancel()

	if mm.gemini.Ping(ctx) {
		return true
	}
	if mm.enableFallback {
		return mm.openai.Ping(ctx)
	}
	return false
}
