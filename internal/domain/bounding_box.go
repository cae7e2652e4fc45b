package domain

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Axis-aligned search area in longitude/latitude.
type BoundingBox struct {
	SW GeoPoint
	NE GeoPoint
}

// Report whether the southwest corner lies strictly below and left of the northeast corner.
func (b BoundingBox) IsValid() bool {
	return b.SW.Lon < b.NE.Lon && b.SW.Lat < b.NE.Lat
}

// Return the box as an orb.Bound.
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{Min: b.SW.Orb(), Max: b.NE.Orb()}
}

// String renders the box in Overpass order: south, west, north, east.
func (b BoundingBox) String() string {
	return fmt.Sprintf("%.7f, %.7f, %.7f, %.7f", b.SW.Lat, b.SW.Lon, b.NE.Lat, b.NE.Lon)
}
