// Package geo holds the coordinate math shared by the catalog filters and
// the sourcetable scorer: great-circle distance, centi-degree coverage
// tests, and the 1-degree grid used for geographic blacklisting.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for Haversine distances.
const EarthRadiusKm = 6371.0

// Rect is an axis-aligned coverage rectangle in signed centi-degrees.
// LatMin <= LatMax always holds; LonMax < LonMin marks a rectangle that
// wraps the antimeridian.
type Rect struct {
	LatMin int16
	LatMax int16
	LonMin int16
	LonMax int16
}

// Wraps reports whether the rectangle crosses the antimeridian.
func (r Rect) Wraps() bool {
	return r.LonMax < r.LonMin
}

// Center returns the rectangle centroid in decimal degrees.
func (r Rect) Center() (lat, lon float64) {
	lat = (float64(r.LatMin) + float64(r.LatMax)) / 200.0
	lon = (float64(r.LonMin) + float64(r.LonMax)) / 200.0
	return lat, lon
}

// Distance returns the great-circle distance in kilometers between two
// points given in decimal degrees (Haversine).
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180.0
	lon1r := lon1 * math.Pi / 180.0
	lat2r := lat2 * math.Pi / 180.0
	lon2r := lon2 * math.Pi / 180.0

	dlat := lat2r - lat1r
	dlon := lon2r - lon1r

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// InCoverage reports whether the point lies inside the rectangle.
//
// The user coordinate is rounded (not truncated) to centi-degrees so that
// behavior is symmetric around boundaries; points exactly on an edge are
// inside.
func InCoverage(r Rect, lat, lon float64) bool {
	latCd := int16(math.Round(lat * 100.0))
	lonCd := int16(math.Round(lon * 100.0))

	if latCd < r.LatMin || latCd > r.LatMax {
		return false
	}
	if r.Wraps() {
		// Wrapping rectangle covers [LonMin, 180] and [-180, LonMax].
		return lonCd >= r.LonMin || lonCd <= r.LonMax
	}
	return lonCd >= r.LonMin && lonCd <= r.LonMax
}

// DistanceToCenter returns the distance in kilometers from the point to the
// rectangle centroid.
func DistanceToCenter(r Rect, lat, lon float64) float64 {
	clat, clon := r.Center()
	return Distance(lat, lon, clat, clon)
}

// DistanceToEdge returns the distance in kilometers from the point to the
// nearest point of the rectangle. Zero when the point is inside.
func DistanceToEdge(r Rect, lat, lon float64) float64 {
	if InCoverage(r, lat, lon) {
		return 0.0
	}

	closestLat := lat
	closestLon := lon

	latMin := float64(r.LatMin) / 100.0
	latMax := float64(r.LatMax) / 100.0
	lonMin := float64(r.LonMin) / 100.0
	lonMax := float64(r.LonMax) / 100.0

	if closestLat < latMin {
		closestLat = latMin
	}
	if closestLat > latMax {
		closestLat = latMax
	}
	if closestLon < lonMin {
		closestLon = lonMin
	}
	if closestLon > lonMax {
		closestLon = lonMax
	}

	return Distance(lat, lon, closestLat, closestLon)
}

// Cell is a 1-degree grid cell, anchored at whole degrees.
type Cell struct {
	Lat int16
	Lon int16
}

// GridCell maps a coordinate to its 1-degree grid cell. Cells are anchored
// toward negative infinity, so 40.2 -> 40 and -74.2 -> -75; all points
// within the same cell compare equal.
func GridCell(lat, lon float64) Cell {
	return Cell{Lat: int16(math.Floor(lat)), Lon: int16(math.Floor(lon))}
}
