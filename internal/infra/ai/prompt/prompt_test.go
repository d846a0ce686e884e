package prompt

import (
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestExtractCode(t *testing.T) {
    cases := []struct {
        name  string
        reply string
        want  string
    }{
        {"lua fence", "Here:\n```lua\nresult = 2 + 2\n```\nDone.", "result = 2 + 2"},
        {"lua fence wins over earlier fence", "```text\nnote\n```\n```lua\nresult = 1\n```", "result = 1"},
        {"plain fence", "```\nresult = 3\n```", "result = 3"},
        {"plain fence with info string", "```python\nresult = 5\n```", "result = 5"},
        {"no fence", "  result = 7  \n", "result = 7"},
        {"unterminated lua fence", "```lua\nresult = 8\n", "result = 8"},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            assert.Equal(t, tc.want, ExtractCode(tc.reply))
        })
    }
}

func TestPrompts(t *testing.T) {
    sys := SystemPrompt(`{"files": ["a.csv"]}`)
    assert.Contains(t, sys, "'result'")
    assert.Contains(t, sys, "plot_base64")
    assert.Contains(t, sys, "scrape_table")
    assert.True(t, strings.HasSuffix(sys, `{"files": ["a.csv"]}`))

    assert.Contains(t, UserPrompt("what is 2+2"), "what is 2+2")
}
