package store

// GeoPoint is a geographic position; each driver stores it in its native form.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

type serverTimestamp struct{}

// ServerTimestamp is a sentinel field value replaced by the write time on the server.
var ServerTimestamp = serverTimestamp{}

// IsServerTimestamp reports whether 'v' is the ServerTimestamp sentinel.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// MaxBatchSize is the largest batch any driver accepts.
const MaxBatchSize = 500
