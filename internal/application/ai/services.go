package ai

import (
	"context"
	"time"

	"github.com/bryanwahyu/automaton-analyst/internal/domain/ai"
	"github.com/bryanwahyu/automaton-analyst/internal/domain/ingest"
	"github.com/bryanwahyu/automaton-analyst/internal/infra/ai/prompt"
)

// Service turns a question plus the upload summary into an analysis script.
type Service struct {
	client  ai.Client
	timeout time.Duration
}

func NewService(client ai.Client, timeout time.Duration) *Service {
	return &Service{client: client, timeout: timeout}
}

// Generate asks the model once (no retry) and extracts the fenced code.
func (s *Service) Generate(ctx context.Context, question string, summary ingest.Summary) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	reply, err := s.client.Complete(ctx, prompt.SystemPrompt(summary.JSON()), prompt.UserPrompt(question))
	if err != nil {
		return "", err
	}
	return prompt.ExtractCode(reply), nil
}
