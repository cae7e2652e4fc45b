package services

import (
	"crossroads-gps/internal/domain"
	"crossroads-gps/internal/platform/dlist"
	"fmt"
	"strconv"
	"strings"
)

// Characters a numeric coordinate token may contain.
const numericChars = "0123456789.+-"

// Split raw into numbered lines. Empty lines are skipped but keep their
// place in the numbering; a trailing CR is dropped.
func SplitLines(raw string) *dlist.List[domain.TextLine] {
	lines := dlist.New[domain.TextLine](nil, nil)

	for i, s := range strings.Split(raw, "\n") {
		s = strings.TrimSuffix(s, "\r")
		if s == "" {
			continue
		}
		lines.PushBack(domain.TextLine{Num: i + 1, Text: s})
	}

	return lines
}

// ParseIntersectionResult decodes a validated intersection reply.
//
// The last line holds the node count N. The N lines after the header each
// hold one node as "latitude longitude". The reply must consist of exactly
// those N+2 non-empty lines.
func ParseIntersectionResult(raw string, fence domain.Geofence) ([]domain.GeoPoint, error) {
	lines := SplitLines(raw)
	defer lines.Destroy()

	if lines.Len() == 0 {
		return nil, fmt.Errorf("parse result: empty response: %w", domain.ErrInvalidResponse)
	}

	n, err := parseCount(lines.Tail().Value)
	if err != nil {
		return nil, fmt.Errorf("parse result: %w", err)
	}
	if n > domain.MaxNodes {
		return nil, fmt.Errorf("parse result: count %d (max %d): %w", n, domain.MaxNodes, domain.ErrTooManyNodes)
	}
	if lines.Len() != n+2 {
		return nil, fmt.Errorf(
			"parse result: count %d but %d lines between header and count: %w",
			n, max(lines.Len()-2, 0), domain.ErrCountMismatch,
		)
	}

	points := make([]domain.GeoPoint, 0, n)
	for e := lines.Head().Next(); e != lines.Tail(); e = e.Next() {
		p, err := ParseGeoPoint(e.Value, fence)
		if err != nil {
			return nil, fmt.Errorf("parse result: %w", err)
		}
		points = append(points, p)
	}

	return points, nil
}

// ParseGeoPoint decodes "latitude longitude" separated by spaces or tabs.
func ParseGeoPoint(line domain.TextLine, fence domain.Geofence) (domain.GeoPoint, error) {
	fields := strings.Fields(line.Text)
	if len(fields) != 2 {
		return domain.GeoPoint{}, &domain.ParseError{
			Line:  line.Num,
			Token: line.Text,
			Err:   fmt.Errorf("want 2 coordinates, got %d: %w", len(fields), domain.ErrInvalidToken),
		}
	}

	lat, err := parseCoordinate(line.Num, fields[0], "latitude", fence.LatOK)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	lon, err := parseCoordinate(line.Num, fields[1], "longitude", fence.LonOK)
	if err != nil {
		return domain.GeoPoint{}, err
	}

	return domain.GeoPoint{Lon: lon, Lat: lat}, nil
}

// ParseBoundingBox decodes "swLat, swLon, neLat, neLon".
func ParseBoundingBox(line domain.TextLine, fence domain.Geofence) (domain.BoundingBox, error) {
	tokens := strings.Split(line.Text, ",")
	if len(tokens) != 4 {
		return domain.BoundingBox{}, &domain.ParseError{
			Line:  line.Num,
			Token: line.Text,
			Err:   fmt.Errorf("want 4 comma separated values, got %d: %w", len(tokens), domain.ErrParse),
		}
	}

	var v [4]float64
	for i, tok := range tokens {
		kind, ok := "latitude", fence.LatOK
		if i%2 == 1 {
			kind, ok = "longitude", fence.LonOK
		}

		f, err := parseCoordinate(line.Num, TrimName(tok), kind, ok)
		if err != nil {
			return domain.BoundingBox{}, err
		}
		v[i] = f
	}

	box := domain.BoundingBox{
		SW: domain.GeoPoint{Lat: v[0], Lon: v[1]},
		NE: domain.GeoPoint{Lat: v[2], Lon: v[3]},
	}
	if !box.IsValid() {
		return domain.BoundingBox{}, &domain.ParseError{
			Line:  line.Num,
			Token: line.Text,
			Err:   domain.ErrInvalidBoundingBox,
		}
	}

	return box, nil
}

func parseCoordinate(num int, tok string, kind string, inFence func(float64) bool) (float64, error) {
	if tok == "" {
		return 0, &domain.ParseError{Line: num, Token: tok, Err: fmt.Errorf("empty %s: %w", kind, domain.ErrInvalidToken)}
	}
	if i := strings.IndexFunc(tok, func(r rune) bool { return !strings.ContainsRune(numericChars, r) }); i >= 0 {
		return 0, &domain.ParseError{Line: num, Token: tok, Err: fmt.Errorf("%s at offset %d: %w", kind, i, domain.ErrDisallowedChar)}
	}

	// The character filter leaves ParseFloat with sign, digits and dots only.
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, &domain.ParseError{Line: num, Token: tok, Err: fmt.Errorf("malformed %s: %w", kind, domain.ErrInvalidToken)}
	}
	if !inFence(f) {
		return 0, &domain.ParseError{Line: num, Token: tok, Err: fmt.Errorf("%s outside service area: %w", kind, domain.ErrInvalidToken)}
	}

	return f, nil
}

func parseCount(line domain.TextLine) (int, error) {
	tok := strings.TrimSpace(line.Text)

	n, err := strconv.ParseUint(tok, 10, 32)
	if err != nil {
		return 0, &domain.ParseError{Line: line.Num, Token: tok, Err: fmt.Errorf("node count: %w", domain.ErrInvalidToken)}
	}

	return int(n), nil
}
