package identity

import (
	"fmt"
	"io"
	"strings"

	"github.com/allspots/go-poi-import/poi"
	"github.com/dustin/go-humanize"
)

// DefaultPriorities ranks sources when two records describe the same place. Sources are
// matched by exact name first, then by prefix (for example "datagouv_" matches every
// open-data dataset).
var DefaultPriorities = map[string]int{
	SourceGooglePlaces:  40,
	SourceUnesco:        30,
	SourceOpenStreetMap: 20,
	"datagouv_":         10,
}

// MergeStats describes how collisions were resolved.
type MergeStats struct {
	Input      int
	Output     int
	Collisions int
	// Collisions where at least one record carried a source-native identifier.
	NativeResolved int
	// Collisions decided on the name and coordinates heuristic alone.
	HeuristicResolved int
	Replaced          int
}

// HeuristicNote is printed with every merge summary.
const HeuristicNote = "Records without a native id are matched on name and coordinates. This is a best-effort heuristic and may merge distinct places or miss duplicates."

// Summary writes the merge counts to 'wr', separating collisions decided by native ids
// from those decided by the name and coordinates heuristic.
func (s MergeStats) Summary(wr io.Writer) {

	fmt.Fprintf(wr, "Input records  : %s\n", humanize.Comma(int64(s.Input)))
	fmt.Fprintf(wr, "Merged records : %s\n", humanize.Comma(int64(s.Output)))
	fmt.Fprintf(wr, "Collisions     : %s (%s by native id, %s by name and coordinates, best effort)\n",
		humanize.Comma(int64(s.Collisions)),
		humanize.Comma(int64(s.NativeResolved)),
		humanize.Comma(int64(s.HeuristicResolved)))
	fmt.Fprintf(wr, "Replaced       : %s\n", humanize.Comma(int64(s.Replaced)))
	fmt.Fprintf(wr, "Note: %s\n", HeuristicNote)
}

// Merger accumulates records from several sources and keeps one record per geographic
// identity (MatchKey).
//
// When two records collide the winner is decided, in order, by:
//  1. a record carrying a stable native identifier (OSM id, Places id, UNESCO id) beats
//     one that does not;
//  2. the higher source priority wins;
//  3. on a full tie the record added last wins.
type Merger struct {
	Priorities map[string]int
	order      []string
	records    map[string]*poi.POI
	stats      *MergeStats
}

func NewMerger() *Merger {
	return NewMergerWithPriorities(DefaultPriorities)
}

func NewMergerWithPriorities(priorities map[string]int) *Merger {

	m := &Merger{
		Priorities: priorities,
		order:      make([]string, 0),
		records:    make(map[string]*poi.POI),
		stats:      new(MergeStats),
	}

	return m
}

// Add merges 'records' in order. It returns the number of records that replaced an
// existing one.
func (m *Merger) Add(records ...*poi.POI) int {

	replaced := 0

	for _, p := range records {

		m.stats.Input += 1

		k := MatchKey(p)
		existing, exists := m.records[k]

		if !exists {
			m.records[k] = p
			m.order = append(m.order, k)
			continue
		}

		m.stats.Collisions += 1

		if HasNativeId(existing) || HasNativeId(p) {
			m.stats.NativeResolved += 1
		} else {
			m.stats.HeuristicResolved += 1
		}

		if m.Prefer(p, existing) {
			m.records[k] = p
			m.stats.Replaced += 1
			replaced += 1
		}
	}

	return replaced
}

// Prefer reports whether 'candidate' should replace 'existing'.
func (m *Merger) Prefer(candidate *poi.POI, existing *poi.POI) bool {

	c_native := HasNativeId(candidate)
	e_native := HasNativeId(existing)

	if c_native != e_native {
		return c_native
	}

	c_priority := m.Priority(candidate.Source)
	e_priority := m.Priority(existing.Source)

	if c_priority != e_priority {
		return c_priority > e_priority
	}

	return true
}

// Priority returns the priority of 'source'; unknown sources rank 0.
func (m *Merger) Priority(source string) int {

	v, ok := m.Priorities[source]

	if ok {
		return v
	}

	best := 0
	best_len := 0

	for prefix, v := range m.Priorities {

		if strings.HasSuffix(prefix, "_") && strings.HasPrefix(source, prefix) && len(prefix) > best_len {
			best = v
			best_len = len(prefix)
		}
	}

	return best
}

// Records returns the merged records in first-seen order.
func (m *Merger) Records() []*poi.POI {

	out := make([]*poi.POI, len(m.order))

	for i, k := range m.order {
		out[i] = m.records[k]
	}

	return out
}

func (m *Merger) Stats() MergeStats {

	s := *m.stats
	s.Output = len(m.order)
	return s
}

// HasNativeId reports whether 'p' carries an identifier assigned by its source.
func HasNativeId(p *poi.POI) bool {
	return p.OSMId != 0 || p.PlaceId != "" || p.UnescoId != ""
}
