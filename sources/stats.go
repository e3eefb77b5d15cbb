package sources

import (
	"errors"
	"fmt"
	"io"

	"github.com/allspots/go-poi-import/poi"
	"github.com/dustin/go-humanize"
)

// Stats counts what happened to the records of one import run.
type Stats struct {
	Fetched   int
	Converted int
	// Invalid counts records rejected for missing or invalid coordinates.
	Invalid int
	// OutOfBounds counts records rejected by the territory check.
	OutOfBounds int
	Skipped     int
	Requests    int
}

// Reject records why a record was not converted.
func (s *Stats) Reject(err error) {

	switch {
	case errors.Is(err, poi.ErrOutOfBounds):
		s.OutOfBounds += 1
	case errors.Is(err, poi.ErrInvalidLocation):
		s.Invalid += 1
	default:
		s.Skipped += 1
	}
}

func (s *Stats) Add(other *Stats) {
	s.Fetched += other.Fetched
	s.Converted += other.Converted
	s.Invalid += other.Invalid
	s.OutOfBounds += other.OutOfBounds
	s.Skipped += other.Skipped
	s.Requests += other.Requests
}

// Summary writes a human-readable report of 's' to 'wr'.
func (s *Stats) Summary(wr io.Writer, label string) {
	fmt.Fprintf(wr, "%s\n", label)
	fmt.Fprintf(wr, "  fetched:       %s\n", humanize.Comma(int64(s.Fetched)))
	fmt.Fprintf(wr, "  converted:     %s\n", humanize.Comma(int64(s.Converted)))
	fmt.Fprintf(wr, "  invalid:       %s\n", humanize.Comma(int64(s.Invalid)))
	fmt.Fprintf(wr, "  out of bounds: %s\n", humanize.Comma(int64(s.OutOfBounds)))
	fmt.Fprintf(wr, "  skipped:       %s\n", humanize.Comma(int64(s.Skipped)))
	fmt.Fprintf(wr, "  requests:      %s\n", humanize.Comma(int64(s.Requests)))
}
