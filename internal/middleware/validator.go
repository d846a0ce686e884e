package middleware

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/bryanwahyu/automaton-analyst/internal/domain/analysis"
)

// Input validation and sanitization utilities

// MaxListLimit is the largest page /api/tasks will return.
const MaxListLimit = 100

// ValidateURL validates URLs fetched on behalf of analysis scripts
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (allowed: http, https)", u.Scheme)
	}

	// Check for localhost/internal IPs (SSRF protection)
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("URL has no host")
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".internal") {
		return fmt.Errorf("localhost/internal IPs are not allowed")
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsUnspecified() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return fmt.Errorf("localhost/internal IPs are not allowed")
		}
		if ip.IsPrivate() {
			return fmt.Errorf("private IP ranges are not allowed")
		}
	}
	return nil
}

// ValidateQuestion checks the decoded questions file
func ValidateQuestion(q string) error {
	if !utf8.ValidString(q) {
		return fmt.Errorf("%w: questions file must be UTF-8 text", analysis.ErrInvalidInput)
	}
	if strings.TrimSpace(q) == "" {
		return fmt.Errorf("%w: questions file is empty", analysis.ErrMissingQuestion)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// ValidateLimit validates list limit (default and max 100)
func ValidateLimit(limit int) int {
	if limit <= 0 || limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
