package pipeline

import (
	"context"
	"fmt"

	"github.com/Sternrassler/krishi-connect/pkg/cache"
	"github.com/Sternrassler/krishi-connect/pkg/client"
	"github.com/Sternrassler/krishi-connect/pkg/listing"
	"github.com/Sternrassler/krishi-connect/pkg/pagination"
)

// SyncResult summarizes a Sync.
type SyncResult struct {
	Pages int
	Items int
}

// pageSource fetches unfiltered listing pages for the batch fetcher.
type pageSource struct {
	p *Pipeline
}

// FetchPage implements pagination.PageFetcher.
func (s pageSource) FetchPage(ctx context.Context, page int) ([]listing.Record, int, error) {
	res := s.p.fetcher.Fetch(ctx, s.p.pageURL("", page))
	if res.Outcome != client.OutcomeSuccess {
		return nil, 0, res.Err
	}

	payload, err := listing.DecodePayload(res.Body, s.p.config.CollectionKeys)
	if err != nil {
		return nil, 0, err
	}

	pages := 1
	if payload.HasTotal {
		pages = pagination.PageCount(payload.Total, s.p.config.PageSize)
	}

	// IDs are positional across the whole collection, not per page.
	offset := (page - 1) * s.p.config.PageSize
	records := make([]listing.Record, len(payload.Records))
	for i, raw := range payload.Records {
		records[i] = listing.Normalize(raw, offset+i)
	}
	return records, pages, nil
}

// Sync fetches every page of the unfiltered listing concurrently and
// stores the result under cache.SnapshotKey, where Lookup finds records
// that are not on the most recently fetched page. Nothing is stored unless
// every page arrived. Committed state is not touched.
func (p *Pipeline) Sync(ctx context.Context, cfg pagination.Config) (SyncResult, error) {
	if p.store == nil {
		return SyncResult{}, fmt.Errorf("sync requires a cache store")
	}

	fetcher := pagination.NewBatchFetcher[[]listing.Record](pageSource{p: p}, cfg)
	pages, err := fetcher.FetchAllPages(ctx)
	if err != nil {
		return SyncResult{Pages: len(pages)}, fmt.Errorf("sync listing: %w", err)
	}

	items := pagination.Ordered(pages)
	if len(items) == 0 {
		return SyncResult{Pages: len(pages)}, fmt.Errorf("sync listing: no records")
	}

	if err := p.store.Put(ctx, cache.SnapshotKey, cache.NewEntry(items, len(items))); err != nil {
		return SyncResult{Pages: len(pages)}, fmt.Errorf("store snapshot: %w", err)
	}

	p.logger.Info().
		Int("pages", len(pages)).
		Int("items", len(items)).
		Msg("Stored listing snapshot")
	return SyncResult{Pages: len(pages), Items: len(items)}, nil
}
