// Package answer is the composer: retrieved context plus the original query
// go to the generation backend, its text comes back to the caller.
package answer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Result carries the generated answer together with the context block it
// was produced from, so the transport can expose the context for debugging.
type Result struct {
	Answer  string
	Context string
}

// Service composes answers.
type Service struct {
	retriever Retriever
	generator Generator
	logger    *zap.Logger
}

// New creates a composer.
func New(retriever Retriever, generator Generator, logger *zap.Logger) *Service {
	return &Service{retriever: retriever, generator: generator, logger: logger}
}

// Answer retrieves context for the query and hands both to the generator.
func (s *Service) Answer(ctx context.Context, query string, k int) (Result, error) {
	contextBlock, err := s.retriever.Retrieve(ctx, query, k)
	if err != nil {
		return Result{}, fmt.Errorf("retrieve context: %w", err)
	}

	text, err := s.generator.Generate(ctx, contextBlock, query)
	if err != nil {
		return Result{}, fmt.Errorf("generate answer: %w", err)
	}

	s.logger.Debug("Composed answer",
		zap.Int("context_bytes", len(contextBlock)),
		zap.Int("answer_bytes", len(text)),
	)
	return Result{Answer: text, Context: contextBlock}, nil
}
