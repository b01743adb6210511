package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "prep",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of completion-service requests",
	}, []string{"model", "mode"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prep",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of failed completion-service requests",
	}, []string{"model", "mode"})
)

// OpenAIConfig defines configuration options for the OpenAI interviewer.
type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	ReplyMaxTokens  int
	EvalTemperature float32
	Logger          zerolog.Logger
}

// OpenAIInterviewer implements Interviewer against the OpenAI chat
// completion API.
type OpenAIInterviewer struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIInterviewer builds a client using the provided configuration.
func NewOpenAIInterviewer(cfg OpenAIConfig) (*OpenAIInterviewer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}

	if cfg.ReplyMaxTokens == 0 {
		cfg.ReplyMaxTokens = 512
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIInterviewer{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/prepwise/prepwise-api/pkg/ai/openai"),
		logger: logger,
	}, nil
}

// StreamReply opens a completion stream. The upstream request is made here,
// so a bad key or unreachable endpoint fails before the caller has emitted
// anything; token delivery happens through the returned ReplyStream.
func (o *OpenAIInterviewer) StreamReply(parent context.Context, messages []Message) (ReplyStream, error) {
	_, span := o.tracer.Start(parent, "openai.stream_reply", trace.WithAttributes(
		attribute.String("model", o.cfg.Model),
		attribute.Int("prompt.messages", len(messages)),
	))

	request := openai.ChatCompletionRequest{
		Model:     o.cfg.Model,
		MaxTokens: o.cfg.ReplyMaxTokens,
		Messages:  toChatMessages(messages),
		Stream:    true,
	}

	start := time.Now()
	stream, err := o.client.CreateChatCompletionStream(parent, request)
	if err != nil {
		o.observe("stream", start, err, span)
		span.End()
		return nil, fmt.Errorf("openai stream: %w", err)
	}

	return &openAIReplyStream{stream: stream, owner: o, span: span, start: start}, nil
}

// openAIReplyStream adapts the SDK stream to ReplyStream: empty deltas are
// skipped, and metrics/span bookkeeping happens once per stream.
type openAIReplyStream struct {
	stream *openai.ChatCompletionStream
	owner  *OpenAIInterviewer
	span   trace.Span
	start  time.Time
	done   bool
}

func (s *openAIReplyStream) Recv() (string, error) {
	for {
		response, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			s.finish(nil)
			return "", io.EOF
		}
		if err != nil {
			s.finish(err)
			return "", fmt.Errorf("openai stream recv: %w", err)
		}

		if len(response.Choices) == 0 {
			continue
		}
		if token := response.Choices[0].Delta.Content; token != "" {
			return token, nil
		}
	}
}

func (s *openAIReplyStream) Close() error {
	s.finish(nil)
	return s.stream.Close()
}

func (s *openAIReplyStream) finish(err error) {
	if s.done {
		return
	}
	s.done = true
	s.owner.observe("stream", s.start, err, s.span)
	s.span.End()
}

// CompleteJSON issues one JSON-object-mode request and returns the raw
// message content. The caller owns parsing.
func (o *OpenAIInterviewer) CompleteJSON(parent context.Context, prompt string, maxTokens int) (string, error) {
	ctx, span := o.tracer.Start(parent, "openai.complete_json", trace.WithAttributes(
		attribute.String("model", o.cfg.Model),
	))
	defer span.End()

	if maxTokens <= 0 {
		maxTokens = 1024
	}

	request := openai.ChatCompletionRequest{
		Model:       o.cfg.Model,
		MaxTokens:   maxTokens,
		Temperature: o.cfg.EvalTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	start := time.Now()
	response, err := o.client.CreateChatCompletion(ctx, request)
	if err != nil {
		o.observe("json", start, err, span)
		return "", fmt.Errorf("openai complete: %w", err)
	}

	if len(response.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		o.observe("json", start, err, span)
		return "", err
	}

	o.observe("json", start, nil, span)
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func (o *OpenAIInterviewer) observe(mode string, start time.Time, err error, span trace.Span) {
	aiDuration.WithLabelValues(o.cfg.Model, mode).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(o.cfg.Model, mode).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Warn().Err(err).Str("mode", mode).Msg("completion request failed")
	}
}

func toChatMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, message := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    message.Role,
			Content: message.Content,
		})
	}
	return out
}
