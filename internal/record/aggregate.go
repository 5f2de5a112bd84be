package record

// MarkerSet is the set of type labels that start a new group.
type MarkerSet map[string]struct{}

// Marker labels used by the housing bureau page
const (
	MarkerSubtotal = "小计"
	MarkerTotal    = "总计"
)

// DefaultMarkers splits groups on subtotal and total rows.
var DefaultMarkers = NewMarkerSet(MarkerSubtotal, MarkerTotal)

// NewMarkerSet builds a MarkerSet from labels.
func NewMarkerSet(labels ...string) MarkerSet {
	m := make(MarkerSet, len(labels))
	for _, l := range labels {
		m[l] = struct{}{}
	}
	return m
}

// Contains reports whether typ is a marker label. Matching is exact.
func (m MarkerSet) Contains(typ string) bool {
	_, ok := m[typ]
	return ok
}

// Group splits raws into groups, each starting at a marker record.
// Records before the first marker form their own leading group.
func Group(raws []Raw, markers MarkerSet) [][]Raw {
	groups := make([][]Raw, 0)
	var current []Raw

	for _, r := range raws {
		if markers.Contains(r.Type) {
			if len(current) > 0 {
				groups = append(groups, current)
			}
			current = []Raw{r}
			continue
		}
		current = append(current, r)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	return groups
}

// Aggregate builds one Summary per group holding at least two records: the
// first record supplies the region and subtotal figures, the second the
// detail figures. Further records in a group are ignored and groups of one
// are dropped.
func Aggregate(raws []Raw, markers MarkerSet) []Summary {
	summaries := make([]Summary, 0)
	for _, g := range Group(raws, markers) {
		if len(g) < 2 {
			continue
		}
		marker, detail := g[0], g[1]
		summaries = append(summaries, Summary{
			Region:        marker.Region,
			SubtotalCount: marker.Count,
			SubtotalArea:  marker.Area,
			DetailCount:   detail.Count,
			DetailArea:    detail.Area,
		})
	}
	return summaries
}
