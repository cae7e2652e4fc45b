package services

import (
	"crossroads-gps/internal/domain"
	"fmt"
	"log/slog"
	"strings"
)

// ValidateResponse checks that the first line of raw is exactly header.
// On mismatch the whole response is logged, since it is usually an
// error page from the server.
func ValidateResponse(raw string, header string) error {
	first, _, _ := strings.Cut(raw, "\n")
	if first == header {
		return nil
	}

	slog.Error("unexpected response from server", "want_header", header, "response", raw)
	return fmt.Errorf("validate response: first line %q: %w", clip(first, 80), domain.ErrInvalidResponse)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
