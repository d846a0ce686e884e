package mysql

import (
    "encoding/json"
    "strings"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
    if strings.TrimSpace(s) == "" {
        return "-"
    }
    return s
}

// encodeFiles menyimpan daftar file sebagai JSON array (tidak pernah null)
func encodeFiles(files []string) (string, error) {
    if files == nil {
        files = []string{}
    }
    b, err := json.Marshal(files)
    return string(b), err
}

func decodeFiles(raw string) ([]string, error) {
    files := []string{}
    if strings.TrimSpace(raw) == "" {
        return files, nil
    }
    if err := json.Unmarshal([]byte(raw), &files); err != nil {
        return nil, err
    }
    return files, nil
}
