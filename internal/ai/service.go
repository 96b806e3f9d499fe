package ai

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/waajacu/minerals/internal/metrics"
	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/i18n"
	"github.com/waajacu/minerals/pkg/logging"
	"github.com/waajacu/minerals/pkg/minerals"
)

var tracer = otel.Tracer("github.com/waajacu/minerals/internal/ai")

// Config selects and configures a provider.
type Config struct {
	Provider    string // openai, gemini, none or empty for auto
	OpenAIKey   string
	OpenAIModel string
	GeminiKey   string
	GeminiModel string
}

// New returns the configured Service. With an empty provider the first
// provider that has a key wins; with no keys at all the disabled service is
// returned.
func New(cfg Config) (Service, error) {
	var svc Service
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI:
		svc = NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel)
	case ProviderGemini:
		svc = NewGemini(cfg.GeminiKey, cfg.GeminiModel)
	case ProviderNone:
		svc = Disabled{}
	case "":
		switch {
		case cfg.OpenAIKey != "":
			svc = NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel)
		case cfg.GeminiKey != "":
			svc = NewGemini(cfg.GeminiKey, cfg.GeminiModel)
		default:
			svc = Disabled{}
		}
	default:
		return nil, errors.NewConfigError("ai", "unknown provider "+cfg.Provider, nil)
	}
	return Instrument(svc), nil
}

// Disabled is the Service used when no provider is configured. Every call
// fails with ErrAPIKeyRequired.
type Disabled struct{}

// Name implements Service.
func (Disabled) Name() string { return ProviderNone }

// Suggest implements Service.
func (Disabled) Suggest(context.Context, SuggestRequest) (Suggestion, error) {
	return Suggestion{}, &errors.APIError{Provider: ProviderNone, Message: "no AI provider configured", Err: errors.ErrAPIKeyRequired}
}

// Translate implements Service.
func (Disabled) Translate(context.Context, minerals.Text, i18n.Language) (minerals.Text, error) {
	return minerals.Text{}, &errors.APIError{Provider: ProviderNone, Message: "no AI provider configured", Err: errors.ErrAPIKeyRequired}
}

// IsDisabled reports whether svc never reaches a provider.
func IsDisabled(svc Service) bool {
	if svc == nil {
		return true
	}
	return svc.Name() == ProviderNone
}

type instrumented struct {
	next Service
}

// Instrument wraps svc with tracing, metrics and debug logging.
func Instrument(svc Service) Service {
	if _, ok := svc.(*instrumented); ok {
		return svc
	}
	return &instrumented{next: svc}
}

func (s *instrumented) Name() string { return s.next.Name() }

func (s *instrumented) Suggest(ctx context.Context, req SuggestRequest) (Suggestion, error) {
	ctx, span := tracer.Start(ctx, "ai.suggest")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", s.next.Name()),
		attribute.Int("ai.image_bytes", len(req.Image)),
	)

	start := time.Now()
	out, err := s.next.Suggest(ctx, req)
	s.record(ctx, span, "suggest", start, err)
	return out, err
}

func (s *instrumented) Translate(ctx context.Context, source minerals.Text, target i18n.Language) (minerals.Text, error) {
	ctx, span := tracer.Start(ctx, "ai.translate")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", s.next.Name()),
		attribute.String("ai.target_lang", string(target.Code)),
	)

	start := time.Now()
	out, err := s.next.Translate(ctx, source, target)
	s.record(ctx, span, "translate", start, err)
	return out, err
}

func (s *instrumented) record(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		if errors.IsTimeout(err) {
			result = "timeout"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.AIRequests.WithLabelValues(s.next.Name(), op, result).Inc()
	logging.FromContext(ctx).Debug().
		Str("provider", s.next.Name()).
		Str("operation", op).
		Str("result", result).
		Dur("duration", time.Since(start)).
		Msg("AI request finished")
}
