package openai

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/bryanwahyu/automaton-analyst/internal/domain/ai"
)

func TestCompleteSendsSystemAndUser(t *testing.T) {
    var got struct {
        Model     string `json:"model"`
        MaxTokens int    `json:"max_tokens"`
        Messages  []struct {
            Role    string `json:"role"`
            Content string `json:"content"`
        } `json:"messages"`
    }
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "/v1/chat/completions", r.URL.Path)
        assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
        require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
        w.Header().Set("Content-Type", "application/json")
        _, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"` + "```lua\\nresult = 4\\n```" + `"},"finish_reason":"stop"}]}`))
    }))
    defer srv.Close()

    c := NewClient("test-key", "gemini-2.0-flash", srv.URL+"/v1/")
    out, err := c.Complete(t.Context(), "sys", "what is 2+2")
    require.NoError(t, err)

    assert.Equal(t, "```lua\nresult = 4\n```", out)
    assert.Equal(t, "gemini-2.0-flash", got.Model)
    assert.Equal(t, defaultMaxTokens, got.MaxTokens)
    require.Len(t, got.Messages, 2)
    assert.Equal(t, "system", got.Messages[0].Role)
    assert.Equal(t, "sys", got.Messages[0].Content)
    assert.Equal(t, "what is 2+2", got.Messages[1].Content)
}

func TestCompleteMapsQuotaErrors(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "application/json")
        w.WriteHeader(http.StatusTooManyRequests)
        _, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
    }))
    defer srv.Close()

    c := NewClient("k", "", srv.URL+"/v1")
    _, err := c.Complete(t.Context(), "s", "u")
    assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
}

func TestCompleteEmptyChoices(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "application/json")
        _, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[]}`))
    }))
    defer srv.Close()

    _, err := NewClient("k", "m", srv.URL+"/v1").Complete(t.Context(), "s", "u")
    assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}
