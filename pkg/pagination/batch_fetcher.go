package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel requests.
	// data.gov.in throttles aggressively, keep this small.
	MaxConcurrency int
	// Timeout per page fetch
	Timeout time.Duration
	// MaxPages caps how many pages are fetched (0 = no cap)
	MaxPages int
}

// DefaultConfig returns a conservative configuration for public data APIs
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
		MaxPages:       200,
	}
}

// PageFetcher fetches a single page and reports the total page count.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, page int) (data T, totalPages int, err error)
}

// BatchFetcher handles parallel fetching of multiple pages
type BatchFetcher[T any] struct {
	fetcher PageFetcher[T]
	config  Config
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher[T any](fetcher PageFetcher[T], config Config) *BatchFetcher[T] {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &BatchFetcher[T]{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchAllPages fetches every page in parallel.
// Returns map of pageNumber -> data. On error the map holds the pages that
// completed before the failure.
func (bf *BatchFetcher[T]) FetchAllPages(ctx context.Context) (map[int]T, error) {
	start := time.Now()

	firstCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	first, totalPages, err := bf.fetcher.FetchPage(firstCtx, 1)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	if bf.config.MaxPages > 0 && totalPages > bf.config.MaxPages {
		log.Warn().
			Int("total_pages", totalPages).
			Int("max_pages", bf.config.MaxPages).
			Msg("Page count capped")
		totalPages = bf.config.MaxPages
	}

	results := map[int]T{1: first}
	if totalPages <= 1 {
		log.Info().
			Int("pages", 1).
			Dur("duration", time.Since(start)).
			Msg("Fetch complete (single page)")
		return results, nil
	}

	log.Info().
		Int("total_pages", totalPages).
		Msg("Starting parallel page fetch")

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bf.config.MaxConcurrency)

	for page := 2; page <= totalPages; page++ {
		g.Go(func() error {
			pageCtx, cancel := context.WithTimeout(gctx, bf.config.Timeout)
			defer cancel()

			data, _, err := bf.fetcher.FetchPage(pageCtx, page)
			if err != nil {
				log.Warn().
					Err(err).
					Int("page", page).
					Msg("Page fetch failed")
				return fmt.Errorf("page %d: %w", page, err)
			}

			mu.Lock()
			results[page] = data
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		mu.Lock()
		fetched := len(results)
		mu.Unlock()
		return results, fmt.Errorf("partial data: %d/%d pages: %w", fetched, totalPages, err)
	}

	log.Info().
		Int("pages", len(results)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return results, nil
}

// Ordered flattens fetched pages into page order, skipping gaps.
func Ordered[T any](pages map[int][]T) []T {
	maxPage := 0
	for p := range pages {
		maxPage = max(maxPage, p)
	}

	var out []T
	for p := 1; p <= maxPage; p++ {
		out = append(out, pages[p]...)
	}
	return out
}
