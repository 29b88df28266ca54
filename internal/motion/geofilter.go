package motion

// GeoFilter smooths raw GPS coordinates with a fixed-gain scalar correction
// applied independently to latitude and longitude:
//
//	new = prev + K*(raw - prev), K = Q/(Q+R)
//
// With equal process and measurement noise the gain is 0.5. The first fix
// primes the filter and passes through unchanged.
type GeoFilter struct {
	gain   float64
	lat    float64
	lng    float64
	primed bool
}

func NewGeoFilter(processNoise, measurementNoise float64) *GeoFilter {
	return &GeoFilter{gain: processNoise / (processNoise + measurementNoise)}
}

// Filter returns the smoothed coordinates for a raw fix and advances the
// filter state. Calling it again with raw equal to the previous output
// returns that output unchanged.
func (f *GeoFilter) Filter(rawLat, rawLng float64) (float64, float64) {
	if !f.primed {
		f.lat, f.lng = rawLat, rawLng
		f.primed = true
		return f.lat, f.lng
	}
	f.lat += f.gain * (rawLat - f.lat)
	f.lng += f.gain * (rawLng - f.lng)
	return f.lat, f.lng
}

// Reset discards the filter state so the next fix primes it again.
func (f *GeoFilter) Reset() {
	f.lat, f.lng = 0, 0
	f.primed = false
}
