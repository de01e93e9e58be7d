// Package geodesy converts between geodetic and Earth-centered coordinates on the
// WGS84 ellipsoid.
//
// ECEF (Earth-Centered, Earth-Fixed) coordinates are r3.Vectors in meters. Geodetic
// coordinates are latitude/longitude in degrees with altitude in meters above the
// ellipsoid.
package geodesy

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	geo "github.com/kellydunn/golang-geo"
)

// WGS84 ellipsoid parameters.
const (
	wgs84A  = 6378137.0        // semi-major axis (meters)
	wgs84E2 = 0.00669437999014 // first eccentricity squared
)

// ecefToLLAIterations is the fixed iteration count of the latitude/altitude
// fixed-point scheme. The scheme converges well before the budget; there is
// deliberately no early exit, so conversions are bit-reproducible.
const ecefToLLAIterations = 10

// LLACoord is a geodetic coordinate: latitude and longitude in degrees, altitude in
// meters above the WGS84 ellipsoid. Longitude is not range-restricted; values outside
// [-180, 180] refer to the geometrically equivalent meridian.
type LLACoord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Alt float64 `json:"alt"`
}

// GeoPoint returns the coordinate's horizontal position as a geo.Point.
func (lla LLACoord) GeoPoint() *geo.Point {
	return geo.NewPoint(lla.Lat, lla.Lon)
}

// GreatCircleDistanceKm returns the great-circle distance in kilometers between the
// horizontal positions of two coordinates.
func GreatCircleDistanceKm(a, b LLACoord) float64 {
	return a.GeoPoint().GreatCircleDistance(b.GeoPoint())
}

// InvalidLatitudeError is when a conversion was given, or produced, a latitude outside
// [-90, 90] degrees.
type InvalidLatitudeError struct {
	Latitude float64
}

func (e *InvalidLatitudeError) Error() string {
	return fmt.Sprintf("invalid latitude %v, must be -90 to 90", e.Latitude)
}

// LLAToECEF converts a geodetic coordinate to ECEF meters using the closed-form WGS84
// conversion. It fails with InvalidLatitudeError when the latitude is out of range.
func LLAToECEF(lla LLACoord) (r3.Vector, error) {
	if lla.Lat < -90.0 || lla.Lat > 90.0 {
		return r3.Vector{}, &InvalidLatitudeError{lla.Lat}
	}

	latRad := lla.Lat * math.Pi / 180.0
	lonRad := lla.Lon * math.Pi / 180.0

	sinLat, cosLat := math.Sin(latRad), math.Cos(latRad)
	sinLon, cosLon := math.Sin(lonRad), math.Cos(lonRad)

	// prime-vertical radius of curvature
	n := wgs84A / math.Sqrt(1.0-wgs84E2*sinLat*sinLat)

	return r3.Vector{
		X: (n + lla.Alt) * cosLat * cosLon,
		Y: (n + lla.Alt) * cosLat * sinLon,
		Z: (n*(1.0-wgs84E2) + lla.Alt) * sinLat,
	}, nil
}

// ECEFToLLA converts ECEF meters to a geodetic coordinate. Longitude is closed-form;
// latitude and altitude have no closed form and are recovered by a fixed-point scheme
// run for a fixed number of iterations. It fails with InvalidLatitudeError when the
// recovered latitude falls outside [-90, 90], which only happens for numerically
// pathological input such as points near the rotation axis with nonzero x or y.
func ECEFToLLA(ecef r3.Vector) (LLACoord, error) {
	p := math.Sqrt(ecef.X*ecef.X + ecef.Y*ecef.Y)

	lon := math.Atan2(ecef.Y, ecef.X) * 180.0 / math.Pi

	lat := math.Atan(ecef.Z / p)
	alt := 0.0
	for i := 0; i < ecefToLLAIterations; i++ {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1.0-wgs84E2*sinLat*sinLat)
		alt = p/math.Cos(lat) - n
		lat = math.Atan(ecef.Z / p / (1.0 - wgs84E2*n/(n+alt)))
	}

	latDeg := lat * 180.0 / math.Pi
	if latDeg < -90.0 || latDeg > 90.0 {
		return LLACoord{}, &InvalidLatitudeError{latDeg}
	}

	return LLACoord{Lat: latDeg, Lon: lon, Alt: alt}, nil
}
