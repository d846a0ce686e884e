package openai

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "strings"

    "github.com/bryanwahyu/automaton-analyst/internal/domain/ai"
    "github.com/sashabaranov/go-openai"
)

const (
    defaultMaxTokens = 2048
    defaultModel     = "gpt-4o-mini"
)

type Client struct {
    *openai.Client
    Model     string
    MaxTokens int
}

// NewClient builds a chat client. baseURL kosong = endpoint OpenAI; isi untuk
// provider yang kompatibel (Gemini OpenAI endpoint, proxy lokal, dll).
func NewClient(apiKey, model, baseURL string) *Client {
    cfg := openai.DefaultConfig(apiKey)
    if baseURL != "" {
        cfg.BaseURL = strings.TrimRight(baseURL, "/")
    }
    return &Client{Client: openai.NewClientWithConfig(cfg), Model: model, MaxTokens: defaultMaxTokens}
}

func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
    model := c.Model
    if model == "" {
        model = defaultModel
    }
    maxTokens := c.MaxTokens
    if maxTokens <= 0 {
        maxTokens = defaultMaxTokens
    }
    req := openai.ChatCompletionRequest{
        Model: model,
        Messages: []openai.ChatCompletionMessage{
            {Role: openai.ChatMessageRoleSystem, Content: system},
            {Role: openai.ChatMessageRoleUser, Content: user},
        },
    }
    // For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
    if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
        req.MaxCompletionTokens = maxTokens
    } else {
        req.MaxTokens = maxTokens
    }

    resp, err := c.CreateChatCompletion(ctx, req)
    if err != nil {
        if isQuota(err) {
            return "", fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
        }
        return "", fmt.Errorf("failed to create chat completion: %w", err)
    }
    if len(resp.Choices) == 0 {
        return "", ai.ErrEmptyResponse
    }
    return resp.Choices[0].Message.Content, nil
}

func isQuota(err error) bool {
    var apiErr *openai.APIError
    if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
        return true
    }
    var reqErr *openai.RequestError
    return errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests
}
