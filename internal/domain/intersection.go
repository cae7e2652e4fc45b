package domain

import (
	"fmt"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Maximum number of nodes kept for one intersection.
const MaxNodes = 8

// Intersection of two named roads and the nodes where they meet.
//
// The result is set exactly once by the resolver; afterwards the record
// is read-only.
type Intersection struct {
	FirstRoad  string
	SecondRoad string

	points   []GeoPoint
	resolved bool
}

func NewIntersection(first, second string) *Intersection {
	return &Intersection{
		FirstRoad:  first,
		SecondRoad: second,
	}
}

// Record the nodes returned for this intersection.
func (x *Intersection) SetResult(points []GeoPoint) error {
	if x.resolved {
		return fmt.Errorf("set result %s: %w", x, ErrAlreadyResolved)
	}
	if len(points) > MaxNodes {
		return fmt.Errorf("set result %s: %d nodes (max %d): %w", x, len(points), MaxNodes, ErrTooManyNodes)
	}

	x.points = slices.Clone(points)
	x.resolved = true
	return nil
}

func (x *Intersection) Resolved() bool { return x.resolved }

func (x *Intersection) NodesFound() int { return len(x.points) }

// Return a copy of every node found, in response order.
func (x *Intersection) Points() []GeoPoint { return slices.Clone(x.points) }

// Return the first node found. ok is false when nothing was found.
func (x *Intersection) Primary() (p GeoPoint, ok bool) {
	if len(x.points) == 0 {
		return GeoPoint{}, false
	}
	return x.points[0], true
}

// Return the centroid of all nodes found. ok is false when nothing was found.
func (x *Intersection) Midpoint() (p GeoPoint, ok bool) {
	if len(x.points) == 0 {
		return GeoPoint{}, false
	}

	mp := make(orb.MultiPoint, 0, len(x.points))
	for _, pt := range x.points {
		mp = append(mp, pt.Orb())
	}

	c, _ := planar.CentroidArea(mp)
	return GeoPoint{Lon: c.Lon(), Lat: c.Lat()}, true
}

// Deep copy, including the node slice.
func (x *Intersection) Copy() *Intersection {
	return &Intersection{
		FirstRoad:  x.FirstRoad,
		SecondRoad: x.SecondRoad,
		points:     slices.Clone(x.points),
		resolved:   x.resolved,
	}
}

func (x *Intersection) String() string {
	return fmt.Sprintf("[ %s & %s ]", x.FirstRoad, x.SecondRoad)
}
