package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/krishi-connect/pkg/client"
	"github.com/Sternrassler/krishi-connect/pkg/listing"
	"github.com/Sternrassler/krishi-connect/pkg/logging"
	"github.com/Sternrassler/krishi-connect/pkg/pagination"
	"github.com/rs/zerolog"
)

// PageSize is the number of jobs per page.
const PageSize = 10

// DefaultTTL is how long a fetched feed is reused.
const DefaultTTL = 5 * time.Minute

// Page is one page of the feed.
type Page struct {
	Jobs      []Job `json:"jobs"`
	Page      int   `json:"page"`
	PageCount int   `json:"pageCount"`
	Total     int   `json:"total"`
}

// Feed fetches and normalizes the job feed. The whole feed is fetched at
// once and paged locally.
type Feed struct {
	url     string
	fetcher client.Fetcher
	ttl     time.Duration
	logger  zerolog.Logger
	now     func() time.Time

	mu        sync.Mutex
	jobs      []Job
	fetchedAt time.Time
}

// NewFeed creates a feed reader. ttl 0 disables reuse between calls.
func NewFeed(url string, fetcher client.Fetcher, ttl time.Duration) (*Feed, error) {
	if url == "" {
		return nil, fmt.Errorf("jobs feed url is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	return &Feed{
		url:     url,
		fetcher: fetcher,
		ttl:     ttl,
		logger:  logging.NewLogger("jobs"),
		now:     time.Now,
	}, nil
}

// All returns every job in the feed.
func (f *Feed) All(ctx context.Context) ([]Job, error) {
	f.mu.Lock()
	if f.jobs != nil && f.ttl > 0 && f.now().Sub(f.fetchedAt) < f.ttl {
		jobs := f.jobs
		f.mu.Unlock()
		return jobs, nil
	}
	f.mu.Unlock()

	res := f.fetcher.Fetch(ctx, f.url)
	if res.Outcome != client.OutcomeSuccess {
		return nil, fmt.Errorf("fetch jobs: %w", res.Err)
	}

	payload, err := listing.DecodePayload(res.Body, CollectionKeys)
	if err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}
	jobs := NormalizeAll(payload.Records)

	f.logger.Info().Int("jobs", len(jobs)).Msg("Fetched job feed")

	f.mu.Lock()
	f.jobs = jobs
	f.fetchedAt = f.now()
	f.mu.Unlock()

	return jobs, nil
}

// Page returns the given 1-based page, clamped to the available pages.
func (f *Feed) Page(ctx context.Context, page int) (Page, error) {
	jobs, err := f.All(ctx)
	if err != nil {
		return Page{}, err
	}

	count := pagination.PageCount(len(jobs), PageSize)
	page = pagination.ClampPage(page, count)

	return Page{
		Jobs:      append([]Job{}, pagination.Slice(jobs, page, PageSize)...),
		Page:      page,
		PageCount: count,
		Total:     len(jobs),
	}, nil
}
