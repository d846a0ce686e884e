package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainai "github.com/bryanwahyu/automaton-analyst/internal/domain/ai"
	"github.com/bryanwahyu/automaton-analyst/internal/domain/ingest"
)

type fakeClient struct {
	system, user string
	reply        string
	err          error
	deadline     bool
}

func (f *fakeClient) Complete(ctx context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	_, f.deadline = ctx.Deadline()
	return f.reply, f.err
}

func TestGenerateExtractsCode(t *testing.T) {
	c := &fakeClient{reply: "Sure!\n```lua\nresult = 2 + 2\n```"}
	s := NewService(c, time.Second)

	summary := ingest.NewContext(nil).Summary
	summary.Files = append(summary.Files, "salaries.csv")
	code, err := s.Generate(t.Context(), "what is 2+2", summary)
	require.NoError(t, err)

	assert.Equal(t, "result = 2 + 2", code)
	assert.Contains(t, c.user, "what is 2+2")
	assert.Contains(t, c.system, `"salaries.csv"`)
	assert.True(t, c.deadline)
}

func TestGeneratePropagatesErrors(t *testing.T) {
	c := &fakeClient{err: domainai.ErrQuotaExceeded}
	_, err := NewService(c, 0).Generate(t.Context(), "q", ingest.Summary{})
	assert.True(t, errors.Is(err, domainai.ErrQuotaExceeded))
	assert.False(t, c.deadline)
}
