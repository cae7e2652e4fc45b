package services

import (
	"bytes"
	"crossroads-gps/internal/domain"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestValidateResponse(t *testing.T) {
	body := "@lat\t@lon\t@count\n33.5605235\t-112.0652852\n1"
	if err := ValidateResponse(body, IntersectionHeader); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// header only, no trailing newline
	if err := ValidateResponse(IntersectionHeader, IntersectionHeader); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateResponseRejectsHTML(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))

	body := "<?xml version=\"1.0\"?>\n<html><body>runtime error: Query timed out</body></html>"
	err := ValidateResponse(body, IntersectionHeader)
	if !errors.Is(err, domain.ErrInvalidResponse) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}

	// the full body is surfaced for diagnostics
	if !strings.Contains(buf.String(), "Query timed out") {
		t.Fatalf("raw response not logged: %s", buf.String())
	}
}

func TestValidateResponseExactMatch(t *testing.T) {
	for _, body := range []string{
		"@lat\t@lon\n1",
		" @lat\t@lon\t@count\n0",
		"@lat @lon @count\n0",
		"",
	} {
		if err := ValidateResponse(body, IntersectionHeader); !errors.Is(err, domain.ErrInvalidResponse) {
			t.Errorf("ValidateResponse(%q) = %v, want ErrInvalidResponse", body, err)
		}
	}
}
