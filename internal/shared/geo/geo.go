// Package geo measures distances on the WGS-84 ellipsoid.
package geo

import "github.com/tidwall/geodesic"

const metersPerMile = 1609.344

// GeodesicMeters returns the shortest distance along the WGS-84 ellipsoid
// between two points given in decimal degrees.
func GeodesicMeters(lat1, lng1, lat2, lng2 float64) float64 {
	var s12 float64
	geodesic.WGS84.Inverse(lat1, lng1, lat2, lng2, &s12, nil, nil)
	return s12
}

// GeodesicMiles is GeodesicMeters in statute miles.
func GeodesicMiles(lat1, lng1, lat2, lng2 float64) float64 {
	return GeodesicMeters(lat1, lng1, lat2, lng2) / metersPerMile
}
