package listing

// sampleSchemes is shown when no real data is available.
var sampleSchemes = []map[string]any{
	{
		"id":          "pmkisan",
		"title":       "PM-Kisan Samman Nidhi",
		"state":       "Central",
		"description": "Direct income support to farmer families",
		"applyUrl":    "https://pmkisan.gov.in",
	},
	{
		"id":          "crop-ins",
		"title":       "Crop Insurance (Demo)",
		"state":       "State",
		"description": "Crop insurance scheme example",
		"applyUrl":    "#",
	},
	{
		"id":          "soil-health",
		"title":       "Soil Health Card",
		"state":       "Central",
		"description": "Soil testing & advisory",
		"applyUrl":    "#",
	},
}

// Sample returns the built-in fallback records. Each call returns a fresh
// slice.
func Sample() []Record {
	raws := make([]map[string]any, len(sampleSchemes))
	for i, s := range sampleSchemes {
		raw := make(map[string]any, len(s))
		for k, v := range s {
			raw[k] = v
		}
		raws[i] = raw
	}
	return NormalizeAll(raws)
}
