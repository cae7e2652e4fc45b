package domain

import "github.com/paulmach/orb"

// Geographic point (longitude, latitude).
type GeoPoint struct {
	Lon float64
	Lat float64
}

// Return the point as an orb.Point ([lon, lat]) for geometry encoding.
func (p GeoPoint) Orb() orb.Point { return orb.Point{p.Lon, p.Lat} }

// Geofence bounds the service region. Both intervals are closed.
type Geofence struct {
	MinLon float64 `mapstructure:"min_lon"`
	MaxLon float64 `mapstructure:"max_lon"`
	MinLat float64 `mapstructure:"min_lat"`
	MaxLat float64 `mapstructure:"max_lat"`
}

// Greater Phoenix metropolitan area.
func DefaultGeofence() Geofence {
	return Geofence{
		MinLon: -113.0,
		MaxLon: -111.0,
		MinLat: 32.8,
		MaxLat: 33.95,
	}
}

func (f Geofence) IsValid() bool {
	return f.MinLon < f.MaxLon && f.MinLat < f.MaxLat
}

// NaN is never inside the fence.
func (f Geofence) LonOK(lon float64) bool { return lon >= f.MinLon && lon <= f.MaxLon }

func (f Geofence) LatOK(lat float64) bool { return lat >= f.MinLat && lat <= f.MaxLat }

func (f Geofence) Contains(p GeoPoint) bool { return f.LonOK(p.Lon) && f.LatOK(p.Lat) }
