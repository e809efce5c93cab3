package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marcelsud/telegram-ragbot/persona"
	"github.com/rs/zerolog"
)

const defaultTopK = 5

// ErrDisabled is returned by Answer when no generator is configured
var ErrDisabled = errors.New("rag responder disabled")

/* Service turns user text into an answer
 * It never returns partial text: callers either get an answer
 * or an error and use Fallback
 */
type Service struct {
	generator Generator
	persona   persona.Persona
	retriever Retriever
	topK      int
	logger    zerolog.Logger
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithRetriever grounds answers in the k passages most relevant to the question
func WithRetriever(r Retriever, k int) ServiceOption {
	return func(s *Service) {
		s.retriever = r
		if k > 0 {
			s.topK = k
		}
	}
}

// WithLogger reports retrieval failures, which do not stop an answer
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a responder. A nil generator disables answering.
func NewService(generator Generator, p persona.Persona, opts ...ServiceOption) *Service {
	s := &Service{
		generator: generator,
		persona:   p,
		topK:      defaultTopK,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether a generator is configured
func (s *Service) Enabled() bool {
	return s.generator != nil
}

// Answer generates a reply for text, trimmed to the persona's length limit
func (s *Service) Answer(ctx context.Context, text string) (string, error) {
	if s.generator == nil {
		return "", ErrDisabled
	}

	var passages []Passage
	if s.retriever != nil {
		var err error
		passages, err = s.retriever.Retrieve(ctx, text, s.topK)
		if err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("retrieving passages: %w", err)
			}
			s.logger.Warn().Err(err).Msg("retrieval failed, answering without documents")
		}
	}

	out, err := s.generator.Generate(ctx, s.Prompt(text, passages))
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return s.truncate(out), nil
}

// Prompt wraps the user message with the retrieved passages and the persona guidelines
func (s *Service) Prompt(text string, passages []Passage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s's personal assistant. A user has asked: %q\n\n", s.persona.Owner, text)
	fmt.Fprintf(&b, "Query type: %s\n\n", Classify(text))
	if len(passages) > 0 {
		b.WriteString("Retrieved documents:\n")
		for i, p := range passages {
			fmt.Fprintf(&b, "[%d] (%s)\n%s\n\n", i+1, p.Source, p.Text)
		}
	}
	b.WriteString("Response guidelines:\n")
	b.WriteString(s.persona.Guidelines)
	return b.String()
}

// Fallback picks a canned reply for text
func (s *Service) Fallback(text string) string {
	words := normalize(text)
	switch {
	case containsAny(words, greetingWords):
		return s.persona.Fallback(persona.FallbackGreeting)
	case containsAny(words, thanksWords):
		return s.persona.Fallback(persona.FallbackThanks)
	case containsAny(words, questionWords):
		return s.persona.Fallback(persona.FallbackQuestion)
	case containsAny(words, helpWords):
		return s.persona.Fallback(persona.FallbackHelp)
	default:
		return s.persona.Fallback(persona.FallbackDefault)
	}
}

func (s *Service) truncate(text string) string {
	limit := s.persona.MaxReplyLength
	r := []rune(text)
	if limit <= 0 || len(r) <= limit {
		return text
	}
	keep := max(limit-100, 0)
	return string(r[:keep]) + s.persona.TruncationNote
}
