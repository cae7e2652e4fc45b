package services

import (
	"crossroads-gps/internal/domain"
	"fmt"
	"strings"
)

const (
	// Upper bound for a rendered query, in bytes.
	MaxQueryLen = 8192

	// First line of every valid intersection reply.
	IntersectionHeader = "@lat\t@lon\t@count"

	// bbox order is south, west, north, east. The two name filters are
	// case-insensitive regular expressions.
	intersectionTemplate = "[out:csv(::lat,::lon,::count)][bbox:%10.7f,%10.7f,%10.7f,%10.7f];" +
		"(way['highway'!='service']['name'~'%s', i];>;)->.outNS;" +
		"(way['highway'!='service']['name'~'%s', i];>;)->.outEW;" +
		"node.outNS.outEW;out; out count;"

	streetNamesTemplate = "[out:csv('name' ;false)];way(%10.7f ,%10.7f ,%10.7f ,%10.7f)[highway]; out;"
)

// BlankNamePolicy decides what happens to a road name that is empty after trimming.
type BlankNamePolicy int

const (
	// Fail with ErrInvalidArgument.
	RejectBlankNames BlankNamePolicy = iota
	// Pass the empty name through; the API then matches every named way.
	AllowBlankNames
)

// Render the intersection query for two road names inside box.
func BuildIntersectionQuery(
	box domain.BoundingBox,
	first string,
	second string,
	policy BlankNamePolicy,
) (string, error) {
	if !box.IsValid() {
		return "", fmt.Errorf("build query: bbox %s: %w", box, domain.ErrInvalidBoundingBox)
	}

	a, err := queryName(first, policy)
	if err != nil {
		return "", fmt.Errorf("build query: first road: %w", err)
	}
	b, err := queryName(second, policy)
	if err != nil {
		return "", fmt.Errorf("build query: second road: %w", err)
	}

	q := fmt.Sprintf(intersectionTemplate, box.SW.Lat, box.SW.Lon, box.NE.Lat, box.NE.Lon, a, b)
	if len(q) > MaxQueryLen {
		return "", fmt.Errorf("build query: %d bytes (max %d): %w", len(q), MaxQueryLen, domain.ErrQueryTooLarge)
	}

	return q, nil
}

// Render the query listing the names of every highway inside box.
func BuildStreetNamesQuery(box domain.BoundingBox) (string, error) {
	if !box.IsValid() {
		return "", fmt.Errorf("build names query: bbox %s: %w", box, domain.ErrInvalidBoundingBox)
	}

	q := fmt.Sprintf(streetNamesTemplate, box.SW.Lat, box.SW.Lon, box.NE.Lat, box.NE.Lon)
	if len(q) > MaxQueryLen {
		return "", fmt.Errorf("build names query: %d bytes (max %d): %w", len(q), MaxQueryLen, domain.ErrQueryTooLarge)
	}

	return q, nil
}

// TrimName strips leading and trailing spaces and tabs.
func TrimName(s string) string {
	return strings.Trim(s, " \t")
}

func queryName(s string, policy BlankNamePolicy) (string, error) {
	name := TrimName(s)
	if name == "" && policy == RejectBlankNames {
		return "", fmt.Errorf("road name %q is blank: %w", s, domain.ErrInvalidArgument)
	}

	// Keep the name inside its single-quoted QL string.
	return strings.ReplaceAll(name, "'", `\'`), nil
}
