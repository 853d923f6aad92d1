// Package geo resolves the closest registered waste collection point to a
// shared location.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// Facility is one registered waste collection point (TPS).
type Facility struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
	Link string  `yaml:"link"`
}

// Match is a facility together with its distance from the query point.
type Match struct {
	Facility   Facility
	DistanceKm float64
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance returns the great-circle distance in kilometres between two
// points given in degrees, using the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat + math.Cos(radians(lat1))*math.Cos(radians(lat2))*sinLon*sinLon

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Nearest scans facilities in order and returns the one closest to
// (lat, lon). Ties keep the earliest entry. The bool is false only when
// facilities is empty.
func Nearest(lat, lon float64, facilities []Facility) (Match, bool) {
	if len(facilities) == 0 {
		return Match{}, false
	}

	best := Match{
		Facility:   facilities[0],
		DistanceKm: Distance(lat, lon, facilities[0].Lat, facilities[0].Lon),
	}
	for _, f := range facilities[1:] {
		d := Distance(lat, lon, f.Lat, f.Lon)
		if d < best.DistanceKm {
			best = Match{Facility: f, DistanceKm: d}
		}
	}
	return best, true
}
