package domain

import (
	"errors"
	"math"
	"testing"
)

func TestIntersectionSetResult(t *testing.T) {
	x := NewIntersection("East Camelback Road", "North 24Th Street")

	if _, ok := x.Primary(); ok {
		t.Fatalf("expected no primary point before resolve")
	}

	points := []GeoPoint{
		{Lon: -112.0300000, Lat: 33.5090000},
		{Lon: -112.0310000, Lat: 33.5100000},
	}

	err := x.SetResult(points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// mutating the caller slice must not leak into the record
	points[0].Lon = 0

	p, ok := x.Primary()
	if !ok {
		t.Fatalf("expected primary point after resolve")
	}
	if p.Lon != -112.03 || p.Lat != 33.509 {
		t.Fatalf("primary = %+v, want {-112.03 33.509}", p)
	}
	if x.NodesFound() != 2 {
		t.Fatalf("nodes = %d, want 2", x.NodesFound())
	}

	mid, ok := x.Midpoint()
	if !ok {
		t.Fatalf("expected midpoint")
	}
	if math.Abs(mid.Lon-(-112.0305)) > 1e-9 || math.Abs(mid.Lat-33.5095) > 1e-9 {
		t.Fatalf("midpoint = %+v, want {-112.0305 33.5095}", mid)
	}

	err = x.SetResult(nil)
	if !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("second SetResult err = %v, want ErrAlreadyResolved", err)
	}
}

func TestIntersectionSetResultTooManyNodes(t *testing.T) {
	x := NewIntersection("A", "B")

	points := make([]GeoPoint, MaxNodes+1)
	err := x.SetResult(points)
	if !errors.Is(err, ErrTooManyNodes) {
		t.Fatalf("err = %v, want ErrTooManyNodes", err)
	}
	if x.Resolved() {
		t.Fatalf("record must stay unresolved after a rejected result")
	}
}

func TestIntersectionCopyIsDeep(t *testing.T) {
	x := NewIntersection("A", "B")
	if err := x.SetResult([]GeoPoint{{Lon: -112, Lat: 33.5}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := x.Copy()
	c.FirstRoad = "Z"
	c.points[0].Lat = 0

	if x.FirstRoad != "A" {
		t.Errorf("original road changed to %q", x.FirstRoad)
	}
	if p, _ := x.Primary(); p.Lat != 33.5 {
		t.Errorf("original point changed to %+v", p)
	}
	if !c.Resolved() {
		t.Errorf("copy lost resolved state")
	}
}

func TestIntersectionString(t *testing.T) {
	x := NewIntersection("Ash", "Butler")
	if got := x.String(); got != "[ Ash & Butler ]" {
		t.Fatalf("String() = %q, want %q", got, "[ Ash & Butler ]")
	}
}
