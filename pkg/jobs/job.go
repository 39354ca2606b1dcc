// Package jobs reads the agritech job feed and maps its loosely shaped
// entries onto Job using the same declarative field rules as scheme
// listings.
package jobs

import (
	"strconv"
	"strings"

	"github.com/Sternrassler/krishi-connect/pkg/listing"
)

// CollectionKeys are the fields the feed may carry its entries under.
var CollectionKeys = []string{"Joblisting", "jobListings", "joblisting", "jobs"}

const (
	UnknownCompany  = "Unknown Company"
	DefaultLocation = "Remote / India"
	NoDescription   = "No description available."
	NoApplyLink     = "#"

	TypeGovernment = "Government"
	TypePrivate    = "Private"
)

var (
	idField          = listing.Field{Keys: []string{"id", "jobId"}}
	titleField       = listing.Field{Keys: []string{"title", "role", "jobTitle"}}
	companyField     = listing.Field{Keys: []string{"company", "organization", "employer"}, Fallback: UnknownCompany}
	typeField        = listing.Field{Keys: []string{"type", "sector"}}
	locationField    = listing.Field{Keys: []string{"location", "city"}, Fallback: DefaultLocation}
	descriptionField = listing.Field{Keys: []string{"description", "summary", "about"}, Fallback: NoDescription}
	salaryField      = listing.Field{Keys: []string{"salary", "pay"}}
	experienceField  = listing.Field{Keys: []string{"experience", "experienceRequired"}}
	skillsField      = listing.Field{Keys: []string{"skills", "keySkills"}}
	applyField       = listing.Field{Keys: []string{"applyLink", "url"}, Fallback: NoApplyLink}
	postedField      = listing.Field{Keys: []string{"postedOn", "datePosted"}}

	// metaFields are joined into the subtitle when non-empty.
	metaFields = []listing.Field{
		{Keys: []string{"sector"}, Truthy: true},
		{Keys: []string{"organization"}, Truthy: true},
		{Keys: []string{"city"}, Truthy: true},
	}
)

// Job is one normalized posting.
type Job struct {
	ID          listing.ID `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Type        string     `json:"type"`
	Location    string     `json:"location"`
	Meta        string     `json:"meta,omitempty"`
	Description string     `json:"description"`
	Salary      string     `json:"salary,omitempty"`
	Experience  string     `json:"experience,omitempty"`
	Skills      []string   `json:"skills"`
	ApplyLink   string     `json:"applyLink"`
	PostedOn    string     `json:"postedOn,omitempty"`
}

// Normalize maps one feed entry onto a Job. index is the entry's position
// and stands in for a missing id and title.
func Normalize(raw map[string]any, index int) Job {
	id := listing.IndexID(index)
	if v, ok := idField.Lookup(raw); ok {
		id = listing.IDFromValue(v)
	}

	title := titleField.String(raw)
	if _, ok := titleField.Lookup(raw); !ok {
		title = "Job " + strconv.Itoa(index+1)
	}

	return Job{
		ID:          id,
		Title:       title,
		Company:     companyField.String(raw),
		Type:        jobType(raw),
		Location:    locationField.String(raw),
		Meta:        meta(raw),
		Description: descriptionField.String(raw),
		Salary:      salaryField.String(raw),
		Experience:  experienceField.String(raw),
		Skills:      skills(raw),
		ApplyLink:   applyField.String(raw),
		PostedOn:    postedField.String(raw),
	}
}

// NormalizeAll normalizes a feed, preserving order and length.
func NormalizeAll(raws []map[string]any) []Job {
	out := make([]Job, len(raws))
	for i, raw := range raws {
		out[i] = Normalize(raw, i)
	}
	return out
}

func jobType(raw map[string]any) string {
	if v, ok := typeField.Lookup(raw); ok {
		return listing.Stringify(v)
	}
	org, _ := raw["organization"].(string)
	if strings.Contains(strings.ToLower(org), "gov") {
		return TypeGovernment
	}
	return TypePrivate
}

func meta(raw map[string]any) string {
	var parts []string
	for _, f := range metaFields {
		if v, ok := f.Lookup(raw); ok {
			parts = append(parts, listing.Stringify(v))
		}
	}
	return strings.Join(parts, " • ")
}

func skills(raw map[string]any) []string {
	v, ok := skillsField.Lookup(raw)
	if !ok {
		return []string{}
	}
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, s := range t {
			if str := listing.Stringify(s); str != "" {
				out = append(out, str)
			}
		}
		return out
	case string:
		var out []string
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		if out == nil {
			return []string{}
		}
		return out
	default:
		return []string{listing.Stringify(t)}
	}
}
