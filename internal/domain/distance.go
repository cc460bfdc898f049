package domain

import "math"

// earthRadiusKm is the IUGG mean earth radius.
const earthRadiusKm = 6371.0088

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h just past 1 for antipodal points.
	h = math.Min(1, h)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// NearestFire returns the fire closest to c and its distance in kilometres.
// found is false when fires is empty.
func NearestFire(c Coordinate, fires []FireLocation) (nearest FireLocation, distanceKm float64, found bool) {
	distanceKm = math.Inf(1)
	for _, f := range fires {
		d := Distance(c, f.Coordinate())
		if d < distanceKm {
			nearest, distanceKm, found = f, d, true
		}
	}
	if !found {
		return FireLocation{}, 0, false
	}
	return nearest, distanceKm, true
}
