package pipeline

import (
	"regexp"

	"github.com/Sternrassler/krishi-connect/pkg/client"
)

// Banner texts shown alongside degraded results.
const (
	BannerNoRecords   = "API returned no records; showing sample data."
	BannerCORS        = "CORS or blocked by browser — consider using a dev proxy."
	BannerRateLimited = "Rate-limited by API — try again later."
	BannerNetwork     = "Network/API error. Showing cached/sample data."
)

var (
	corsPattern      = regexp.MustCompile(`(?i)cors|access-control`)
	rateLimitPattern = regexp.MustCompile(`(?i)429|rate limit`)
)

// ClassifyBanner picks the banner for an exhausted fetch. Access-control
// failures win over rate limiting, which wins over everything else.
func ClassifyBanner(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	switch {
	case corsPattern.MatchString(msg):
		return BannerCORS
	case client.ClassifyError(err) == client.ErrorClassRateLimit, rateLimitPattern.MatchString(msg):
		return BannerRateLimited
	default:
		return BannerNetwork
	}
}
