// Package pagination provides page arithmetic for listing views and a
// parallel batch fetcher for paginated upstream endpoints.
//
// Page numbers are 1-based everywhere. PageCount never returns less than 1,
// so an empty result set still has one (empty) page to display:
//
//	count := pagination.PageCount(95, 10)      // 10
//	page := pagination.ClampPage(11, count)    // 10
//	items := pagination.Slice(all, page, 10)
//
// The batch fetcher:
//   - Fetches the first page to learn the total page count
//   - Fetches the remaining pages on a bounded errgroup
//   - Stops at the first failing page and returns what it already has
//
// Example usage:
//
//	fetcher := pagination.NewBatchFetcher[[]listing.Record](source, pagination.DefaultConfig())
//	pages, err := fetcher.FetchAllPages(ctx)
package pagination
