package poi

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var iso_layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp is a point in time serialized as {"_seconds", "_nanoseconds"}. A zero
// Timestamp stands for "assigned by the server at write time".
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{t.UTC()}
}

// IsServerAssigned reports whether the timestamp should be filled in by the database.
func (t *Timestamp) IsServerAssigned() bool {
	return t == nil || t.Time.IsZero()
}

func (t Timestamp) MarshalJSON() ([]byte, error) {

	if t.Time.IsZero() {
		return []byte("null"), nil
	}

	m := map[string]int64{
		"_seconds":     t.Time.Unix(),
		"_nanoseconds": int64(t.Time.Nanosecond()),
	}

	return json.Marshal(m)
}

func (t *Timestamp) UnmarshalJSON(body []byte) error {

	v, _ := ParseTimestamp(gjson.ParseBytes(body))
	t.Time = v
	return nil
}

// ParseTimestamp accepts an epoch object ({"_seconds", "_nanoseconds"}) or an ISO-8601
// string. Naive strings are read as UTC. The boolean is false, and the time zero, when
// 'r' cannot be parsed.
func ParseTimestamp(r gjson.Result) (time.Time, bool) {

	switch {
	case r.IsObject():

		secs := r.Get("_seconds")

		if !secs.Exists() {
			secs = r.Get("seconds")
		}

		if secs.Type != gjson.Number {
			return time.Time{}, false
		}

		nanos := r.Get("_nanoseconds")

		if !nanos.Exists() {
			nanos = r.Get("nanoseconds")
		}

		return time.Unix(secs.Int(), nanos.Int()).UTC(), true

	case r.Type == gjson.String:

		v := strings.TrimSpace(r.String())

		for _, layout := range iso_layouts {

			t, err := time.Parse(layout, v)

			if err == nil {
				return t.UTC(), true
			}
		}
	}

	return time.Time{}, false
}
