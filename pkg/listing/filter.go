package listing

import "strings"

// Filter returns the records whose title, description or category contain
// query, ignoring case. An empty query returns items unchanged.
func Filter(items []Record, query string) []Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}

	out := make([]Record, 0, len(items))
	for _, it := range items {
		if it.matches(q) {
			out = append(out, it)
		}
	}
	return out
}

// Find returns the first record whose id renders as id.
func Find(items []Record, id string) (Record, bool) {
	for _, it := range items {
		if it.ID.String() == id {
			return it, true
		}
	}
	return Record{}, false
}

func containsFold(s, lowerSubstr string) bool {
	return strings.Contains(strings.ToLower(s), lowerSubstr)
}
