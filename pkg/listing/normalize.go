package listing

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	// UntitledScheme is the title of records whose source has none.
	UntitledScheme = "Untitled scheme"

	// NoDescription is used when neither a description nor any secondary
	// field is available.
	NoDescription = "No description available."

	// UnknownCategory is the category placeholder.
	UnknownCategory = "—"

	descriptionSeparator = " • "
)

// Scheme field rules, evaluated in priority order.
var (
	schemeIDField          = Field{Keys: []string{"schemeId", "id", "_id"}}
	schemeTitleField       = Field{Keys: []string{"schemeName", "scheme", "title", "name"}, Fallback: UntitledScheme, Truthy: true}
	schemeDescriptionField = Field{Keys: []string{"description"}, Truthy: true}
	schemeEligibilityField = Field{Keys: []string{"eligibility"}, Truthy: true}
	schemeBenefitsField    = Field{Keys: []string{"benefits"}, Truthy: true}
	schemeMissionField     = Field{Keys: []string{"ministry", "mission", "sector"}, Truthy: true}
	schemeStateField       = Field{Keys: []string{"ministry", "sector", "state", "org_type"}, Fallback: UnknownCategory}
	schemeApplyField       = Field{Keys: []string{"applyUrl", "apply_url", "website", "url", "link", "apply_link"}, Truthy: true}
	schemePostedField      = Field{Keys: []string{"launchYear", "postedOn"}}

	// Budget actuals reported by the data.gov.in allocation resource, one
	// field per financial year.
	schemeAmountFields = []Field{
		{Keys: []string{"actual___2022_23", "actual_2022_23", "actual2022"}},
		{Keys: []string{"actual___2023_24", "actual_2023_24", "actual2023"}},
		{Keys: []string{"actual___2024_25", "actual_2024_25", "actual2024"}},
	}
)

// DetailsPath returns the in-app locator of the record with the given id.
func DetailsPath(id ID) string {
	return "/schemes/" + url.PathEscape(id.String())
}

// Normalize maps one source record onto a Record. index is the record's
// position in the source collection and stands in for a missing id. A nil
// raw record yields a record made entirely of fallbacks.
func Normalize(raw map[string]any, index int) Record {
	id := IndexID(index)
	if v, ok := schemeIDField.Lookup(raw); ok {
		id = IDFromValue(v)
	}

	applyURL := strings.TrimSpace(schemeApplyField.String(raw))
	if applyURL == "#" {
		applyURL = ""
	}

	return Record{
		ID:          id,
		Title:       schemeTitleField.String(raw),
		Description: describe(raw),
		State:       schemeStateField.String(raw),
		ApplyURL:    applyURL,
		DetailsPath: DetailsPath(id),
		PostedOn:    schemePostedField.String(raw),
		Raw:         raw,
	}
}

// NormalizeAll normalizes a collection, preserving order and length.
func NormalizeAll(raws []map[string]any) []Record {
	out := make([]Record, len(raws))
	for i, raw := range raws {
		out[i] = Normalize(raw, i)
	}
	return out
}

func describe(raw map[string]any) string {
	if v, ok := schemeDescriptionField.Lookup(raw); ok {
		return Stringify(v)
	}

	parts := make([]string, 0, 4)
	for _, f := range []Field{schemeEligibilityField, schemeBenefitsField, schemeMissionField} {
		if s := f.String(raw); s != "" {
			parts = append(parts, s)
		}
	}
	if amounts := describeAmounts(raw); amounts != "" {
		parts = append(parts, amounts)
	}

	if len(parts) == 0 {
		return NoDescription
	}
	return strings.Join(parts, descriptionSeparator)
}

func describeAmounts(raw map[string]any) string {
	var labels []string
	for _, f := range schemeAmountFields {
		v, ok := f.Lookup(raw)
		if !ok {
			continue
		}
		labels = append(labels, fmt.Sprintf("Year%d: %s", len(labels)+1, FormatAmount(v)))
	}
	return strings.Join(labels, descriptionSeparator)
}

// FormatAmount renders a budget figure with thousands separators. Whole
// numbers print without decimals, others with at most two. Values that are
// not numeric are returned as text and a missing value reads "NA".
func FormatAmount(v any) string {
	var n float64
	switch t := v.(type) {
	case nil:
		return "NA"
	case string:
		if t == "NA" {
			return "NA"
		}
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return "0"
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return t
		}
		n = f
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		n = f
	case float64:
		n = t
	case int:
		n = float64(t)
	default:
		return Stringify(v)
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Stringify(v)
	}
	if n == math.Trunc(n) {
		return groupThousands(strconv.FormatFloat(n, 'f', 0, 64))
	}
	s := strconv.FormatFloat(n, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return groupThousands(s)
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}

// IDFromValue converts a decoded JSON id into an ID, keeping numbers
// numeric.
func IDFromValue(v any) ID {
	switch t := v.(type) {
	case json.Number:
		return ID{value: t.String(), numeric: true}
	case float64:
		return ID{value: strconv.FormatFloat(t, 'f', -1, 64), numeric: true}
	case int:
		return IndexID(t)
	default:
		return StringID(Stringify(v))
	}
}
