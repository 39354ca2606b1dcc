package pipeline

import (
	"strings"
	"time"

	"github.com/Sternrassler/krishi-connect/pkg/listing"
	"github.com/Sternrassler/krishi-connect/pkg/pagination"
)

// Source tells where the committed items came from.
type Source string

const (
	SourceNone    Source = "none"
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
	SourceSample  Source = "sample"
)

// State is a snapshot of what the pipeline has committed.
type State struct {
	Items  []listing.Record
	Total  int
	Source Source

	// Page is the server page the items were fetched for.
	Page int

	// Banner is the user-facing notice for degraded results.
	Banner string

	// Err is the last exhausted fetch error, kept for inspection.
	Err error

	// Seq is the sequence number of the run that last committed.
	Seq       uint64
	UpdatedAt time.Time

	// Loading is set while the latest started run has not finished.
	Loading bool
}

func (s State) clone() State {
	if s.Items != nil {
		s.Items = append([]listing.Record(nil), s.Items...)
	}
	return s
}

// View is one displayable page of the committed state.
type View struct {
	Items     []listing.Record `json:"items"`
	Query     string           `json:"query"`
	Page      int              `json:"page"`
	PageCount int              `json:"pageCount"`
	Total     int              `json:"total"`
	Source    Source           `json:"source"`
	Banner    string           `json:"banner,omitempty"`
	Error     string           `json:"error,omitempty"`
	Loading   bool             `json:"loading"`
}

// BuildView filters the state's items by query and cuts out the requested
// page.
//
// The total is the larger of the server-reported total and the number of
// held items, so a server that under-reports never hides records. An active
// query that narrows the held items replaces the total with the filtered
// count so the page count matches what can be displayed.
//
// The held items are either the whole collection or, when the total is
// larger, one server page. In the latter case the items are shown as they
// are and the view is labeled with the page they were fetched for, which
// differs from the requested page while that page is loading or failed.
func BuildView(st State, query string, page, pageSize int) View {
	filtered := listing.Filter(st.Items, query)

	total := st.Total
	if total < len(st.Items) {
		total = len(st.Items)
	}
	narrowed := strings.TrimSpace(query) != "" && len(filtered) < len(st.Items)
	if narrowed {
		total = len(filtered)
	}

	pageCount := pagination.PageCount(total, pageSize)
	page = pagination.ClampPage(page, pageCount)

	var items []listing.Record
	if st.Total > len(st.Items) && !narrowed {
		page = pagination.ClampPage(max(st.Page, 1), pageCount)
		items = pagination.Slice(filtered, 1, pageSize)
	} else {
		items = pagination.Slice(filtered, page, pageSize)
	}

	v := View{
		Items:     append([]listing.Record{}, items...),
		Query:     query,
		Page:      page,
		PageCount: pageCount,
		Total:     total,
		Source:    st.Source,
		Banner:    st.Banner,
		Loading:   st.Loading,
	}
	if st.Err != nil {
		v.Error = st.Err.Error()
	}
	return v
}
