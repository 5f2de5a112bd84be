package record

// Raw is one physical table row after rowspan flattening. Values are kept as
// the page renders them; counts and areas may contain dashes or footnotes.
type Raw struct {
	Region string `json:"region"`
	Type   string `json:"type"`
	Count  string `json:"count"`
	Area   string `json:"area"`
}

// Summary is one report row built from a marker row and its detail row.
type Summary struct {
	Region        string `json:"region"`
	SubtotalCount string `json:"subtotal_count"`
	SubtotalArea  string `json:"subtotal_area"`
	DetailCount   string `json:"detail_count"`
	DetailArea    string `json:"detail_area"`
}

// Column labels in report order
const (
	LabelRegion        = "区域"
	LabelSubtotalCount = "小计套数"
	LabelSubtotalArea  = "小计面积"
	LabelDetailCount   = "住宅套数"
	LabelDetailArea    = "住宅面积"
)

// Columns returns the report header labels in the same order as Values.
func Columns() []string {
	return []string{
		LabelRegion,
		LabelSubtotalCount,
		LabelSubtotalArea,
		LabelDetailCount,
		LabelDetailArea,
	}
}

// Values returns the summary fields in column order.
func (s Summary) Values() []string {
	return []string{s.Region, s.SubtotalCount, s.SubtotalArea, s.DetailCount, s.DetailArea}
}

// SummaryFromValues is the inverse of Values. Missing trailing values are left empty.
func SummaryFromValues(values []string) Summary {
	get := func(i int) string {
		if i < len(values) {
			return values[i]
		}
		return ""
	}
	return Summary{
		Region:        get(0),
		SubtotalCount: get(1),
		SubtotalArea:  get(2),
		DetailCount:   get(3),
		DetailArea:    get(4),
	}
}

// RowSpanState carries the region label of the last rowspan header cell
// across the rows it covers.
type RowSpanState struct {
	CurrentRegion     string
	RemainingSpanRows int
}

// Open starts a new region block spanning span rows, including the current one.
func (s *RowSpanState) Open(region string, span int) {
	s.CurrentRegion = region
	s.RemainingSpanRows = span - 1
	if s.RemainingSpanRows < 0 {
		s.RemainingSpanRows = 0
	}
}

// Advance consumes one row of the current span. The region is kept after the
// span runs out; only a new header cell replaces it.
func (s *RowSpanState) Advance() {
	if s.RemainingSpanRows > 0 {
		s.RemainingSpanRows--
	}
}
