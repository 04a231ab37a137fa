// Package explain turns a computed rate context into a narrative. The
// numbers always come from the engine; a generator only phrases them.
package explain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"boqrate/internal/rate"
)

// ErrUnavailable wraps every generator failure, including timeouts.
var ErrUnavailable = errors.New("explanation unavailable")

// Request is what a generator receives: the rendered prompt and the context
// it was rendered from.
type Request struct {
	Prompt  string
	Context rate.Context
}

type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// Config selects and configures the generator.
type Config struct {
	APIKey   string
	Model    string
	Endpoint string
}

// NewGenerator returns the OpenAI generator when an API key is configured
// and the local template generator otherwise.
func NewGenerator(cfg Config, logger *zap.Logger) Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		logger.Warn("explain: OPENAI_API_KEY not set; falling back to local generator")
		return NewLocalGenerator()
	}
	gen := NewOpenAIGenerator(cfg)
	logger.Info("explain: OpenAI generator selected", zap.String("model", gen.model), zap.String("endpoint", cfg.Endpoint))
	return gen
}

type Service struct {
	gen     Generator
	timeout time.Duration
	logger  *zap.Logger
}

func NewService(gen Generator, timeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Service{gen: gen, timeout: timeout, logger: logger}
}

// Provider names the underlying generator.
func (s *Service) Provider() string { return s.gen.Name() }

// Explain renders the prompt for c and asks the generator for a narrative.
func (s *Service) Explain(ctx context.Context, c rate.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := Request{Prompt: BuildPrompt(c), Context: c}
	start := time.Now()
	text, err := s.gen.Generate(ctx, req)
	if err != nil {
		s.logger.Warn("explain: generator failed",
			zap.String("provider", s.gen.Name()),
			zap.String("item_code", c.ItemCode),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, s.gen.Name(), err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s returned an empty narrative", ErrUnavailable, s.gen.Name())
	}
	s.logger.Debug("explain: narrative generated",
		zap.String("provider", s.gen.Name()),
		zap.String("item_code", c.ItemCode),
		zap.Duration("elapsed", time.Since(start)))
	return text, nil
}
