package prompt

import (
    "regexp"
    "strings"
)

var (
    luaFence = regexp.MustCompile("(?s)```lua[ \t]*\\r?\\n?(.*?)```")
    anyFence = regexp.MustCompile("(?s)```(?:[^\\n`]*\\n)?(.*?)```")
)

// ExtractCode pulls the script out of a model reply: a ```lua fence first,
// then the first fence of any kind, else the whole reply. The result is trimmed.
// An unterminated fence runs to the end of the reply.
func ExtractCode(reply string) string {
    if m := luaFence.FindStringSubmatch(reply); m != nil {
        return strings.TrimSpace(m[1])
    }
    if i := strings.Index(reply, "```lua"); i >= 0 {
        return strings.TrimSpace(reply[i+len("```lua"):])
    }
    if m := anyFence.FindStringSubmatch(reply); m != nil {
        return strings.TrimSpace(m[1])
    }
    if i := strings.Index(reply, "```"); i >= 0 {
        rest := reply[i+3:]
        if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
            rest = rest[nl+1:]
        }
        return strings.TrimSpace(rest)
    }
    return strings.TrimSpace(reply)
}
