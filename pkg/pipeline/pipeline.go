// Package pipeline implements the listing fetch pipeline: it shows cached
// data immediately, fetches the requested page with bounded retries, and
// commits either fresh, cached or sample data.
//
// Every run takes a sequence number when it starts. Only the run holding the
// latest number may commit, so overlapping runs resolve to the last one
// started no matter in which order their responses arrive. Starting a run
// also cancels the previous run's context. A canceled run leaves the state
// as it found it: an optimistic cache commit it made is rolled back.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sternrassler/krishi-connect/pkg/cache"
	"github.com/Sternrassler/krishi-connect/pkg/client"
	"github.com/Sternrassler/krishi-connect/pkg/listing"
	"github.com/Sternrassler/krishi-connect/pkg/logging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultPageSize is the number of records per page.
const DefaultPageSize = 10

// cacheWriteTimeout bounds a cache write that outlives its run's context.
const cacheWriteTimeout = 5 * time.Second

// ErrClosed is returned for runs started after Close.
var ErrClosed = errors.New("pipeline closed")

// Fetcher performs a GET with retries. *client.Client implements it.
type Fetcher = client.Fetcher

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc = client.FetcherFunc

// Config holds pipeline configuration.
type Config struct {
	// URL is the listing endpoint. Page parameters are added per run.
	URL string

	// PageSize is sent as pageSize and used for client-side paging.
	PageSize int

	// CollectionKeys are the payload fields searched for records.
	CollectionKeys []string

	// CacheKey is where successful fetches are stored.
	CacheKey cache.Key
}

// DefaultConfig returns the configuration for a scheme endpoint.
func DefaultConfig(endpoint string) Config {
	return Config{
		URL:            endpoint,
		PageSize:       DefaultPageSize,
		CollectionKeys: listing.SchemeCollectionKeys,
		CacheKey:       cache.DefaultKey,
	}
}

// Outcome tells how a run ended.
type Outcome string

const (
	// OutcomeFresh means fetched records were committed and cached.
	OutcomeFresh Outcome = "fresh"
	// OutcomeSample means the endpoint answered without records.
	OutcomeSample Outcome = "sample"
	// OutcomeFallback means every attempt failed and cache or sample data
	// was committed with a banner.
	OutcomeFallback Outcome = "fallback"
	// OutcomeCanceled means the run was canceled. The state is what it was
	// before the run started.
	OutcomeCanceled Outcome = "canceled"
	// OutcomeStale means a newer run started before this one could commit.
	OutcomeStale Outcome = "stale"
)

// Result describes a finished run.
type Result struct {
	RunID    string
	Seq      uint64
	Outcome  Outcome
	Attempts int

	// Query and Page are what the run requested.
	Query string
	Page  int

	// State is what the run committed. It is the zero State for canceled
	// and stale runs.
	State State

	// Err is the fetch error for fallback and canceled runs.
	Err error
}

// Committed reports whether the run's own data was committed.
func (r Result) Committed() bool {
	return r.Outcome != OutcomeCanceled && r.Outcome != OutcomeStale
}

type request struct {
	query string
	page  int
}

// Pipeline owns the committed listing state.
type Pipeline struct {
	config  Config
	fetcher Fetcher
	store   cache.Store
	logger  zerolog.Logger
	now     func() time.Time

	// seq is only incremented while mu is held so commit checks are exact.
	seq atomic.Uint64

	mu      sync.RWMutex
	state   State
	req     request
	done    uint64
	cancel  context.CancelFunc
	closed  bool
	subs    map[int]func(State)
	nextSub int

	// writeMu orders cache writes of committed runs.
	writeMu sync.Mutex
}

// New creates a pipeline. A nil store disables caching.
func New(cfg Config, fetcher Fetcher, store cache.Store) (*Pipeline, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("listing url is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid listing url: %w", err)
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if len(cfg.CollectionKeys) == 0 {
		cfg.CollectionKeys = listing.SchemeCollectionKeys
	}
	if cfg.CacheKey.Name == "" {
		cfg.CacheKey = cache.DefaultKey
	}

	return &Pipeline{
		config:  cfg,
		fetcher: fetcher,
		store:   store,
		logger:  logging.NewLogger("pipeline"),
		now:     time.Now,
		state:   State{Source: SourceNone},
		req:     request{page: 1},
		subs:    make(map[int]func(State)),
	}, nil
}

// Run fetches the given query and 1-based page and commits the result if
// no newer run has started meanwhile.
func (p *Pipeline) Run(ctx context.Context, query string, page int) Result {
	return p.run(ctx, query, page, true)
}

// Refresh re-runs the most recently requested query and page. With
// showBanner false degraded results are committed without a banner.
func (p *Pipeline) Refresh(ctx context.Context, showBanner bool) Result {
	p.mu.RLock()
	req := p.req
	p.mu.RUnlock()

	return p.run(ctx, req.query, req.page, showBanner)
}

func (p *Pipeline) run(ctx context.Context, query string, page int, showBanner bool) Result {
	page = max(page, 1)
	runID := uuid.NewString()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Result{RunID: runID, Outcome: OutcomeCanceled, Err: ErrClosed}
	}
	seq := p.seq.Add(1)
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	p.req = request{query: query, page: page}
	prev := p.state.clone()
	p.mu.Unlock()

	defer p.finish(seq)

	logger := p.logger.With().
		Str("run_id", runID).
		Uint64("seq", seq).
		Str("query", query).
		Int("page", page).
		Logger()

	res := Result{RunID: runID, Seq: seq, Query: query, Page: page}

	// Show whatever was cached while the network round trip is pending.
	if cached := p.readCache(runCtx, p.config.CacheKey, logger); !cached.IsEmpty() && runCtx.Err() == nil {
		if _, ok := p.commitChanged(seq, func(s *State) {
			s.Items = cached.Items
			s.Total = totalOf(cached)
			s.Page = pageOf(cached)
			s.Source = SourceCache
			s.Banner = ""
			s.Err = nil
		}); ok {
			logger.Debug().Int("items", len(cached.Items)).Msg("Committed cached entry")
		}
	}

	fetched := p.fetcher.Fetch(runCtx, p.pageURL(query, page))
	res.Attempts = fetched.Attempts
	fetchAttemptsTotal.WithLabelValues(fetched.Outcome.String()).Add(float64(fetched.Attempts))

	// A cancellation that lands after the fetch returned still wins.
	if fetched.Outcome == client.OutcomeCanceled || runCtx.Err() != nil {
		res.Outcome = OutcomeCanceled
		res.Err = fetched.Err
		if fetched.Outcome != client.OutcomeCanceled {
			res.Err = fmt.Errorf("%w: %v", client.ErrCanceled, context.Cause(runCtx))
		}
		p.restore(seq, prev)
		logger.Debug().Msg("Run canceled")
		runsTotal.WithLabelValues(string(res.Outcome)).Inc()
		return res
	}

	if fetched.Outcome == client.OutcomeSuccess {
		res.Outcome, res.State = p.commitFetched(runCtx, seq, page, fetched.Body, showBanner, logger)
	} else {
		res.Outcome, res.State = p.commitFallback(runCtx, seq, fetched.Err, showBanner, logger)
		res.Err = fetched.Err
	}
	res.State.Loading = false

	runsTotal.WithLabelValues(string(res.Outcome)).Inc()
	return res
}

// commitFetched handles a 2xx body.
func (p *Pipeline) commitFetched(ctx context.Context, seq uint64, page int, body []byte, showBanner bool, logger zerolog.Logger) (Outcome, State) {
	payload, err := listing.DecodePayload(body, p.config.CollectionKeys)
	if err != nil {
		logger.Warn().Err(err).Msg("Unreadable listing payload, treating as empty")
	}

	if payload.Empty() {
		sample := listing.Sample()
		banner := ""
		if showBanner {
			banner = BannerNoRecords
		}
		st, ok := p.commit(seq, func(s *State) {
			s.Items = sample
			s.Total = len(sample)
			s.Page = 1
			s.Source = SourceSample
			s.Banner = banner
			s.Err = nil
		})
		if !ok {
			return OutcomeStale, State{}
		}
		cacheFallbacksTotal.WithLabelValues(string(SourceSample)).Inc()
		logger.Warn().Msg("Endpoint returned no records, committed sample data")
		return OutcomeSample, st
	}

	items := listing.NormalizeAll(payload.Records)
	total := len(items)
	if payload.HasTotal {
		total = payload.Total
	}

	st, ok := p.commit(seq, func(s *State) {
		s.Items = items
		s.Total = total
		s.Page = page
		s.Source = SourceNetwork
		s.Banner = ""
		s.Err = nil
	})
	if !ok {
		return OutcomeStale, State{}
	}

	entry := cache.NewEntry(items, total)
	entry.Page = page
	p.writeCache(ctx, seq, entry, logger)
	logger.Info().
		Int("items", len(items)).
		Int("total", total).
		Msg("Committed fetched records")
	return OutcomeFresh, st
}

// commitFallback handles an exhausted fetch: cached data if any, sample
// data otherwise, with the error kept and a banner.
func (p *Pipeline) commitFallback(ctx context.Context, seq uint64, fetchErr error, showBanner bool, logger zerolog.Logger) (Outcome, State) {
	banner := ""
	if showBanner {
		banner = ClassifyBanner(fetchErr)
	}

	items, source := listing.Sample(), SourceSample
	total, page := len(items), 1
	if cached := p.readCache(ctx, p.config.CacheKey, logger); !cached.IsEmpty() {
		items, source = cached.Items, SourceCache
		total, page = totalOf(cached), pageOf(cached)
	}

	st, ok := p.commit(seq, func(s *State) {
		s.Items = items
		s.Total = total
		s.Page = page
		s.Source = source
		s.Banner = banner
		s.Err = fetchErr
	})
	if !ok {
		return OutcomeStale, State{}
	}

	cacheFallbacksTotal.WithLabelValues(string(source)).Inc()
	logger.Error().
		Err(fetchErr).
		Str("source", string(source)).
		Str("banner", banner).
		Msg("Fetch failed, committed fallback data")
	return OutcomeFallback, st
}

// commit applies mutate if seq is still the latest run and returns the
// committed snapshot.
func (p *Pipeline) commit(seq uint64, mutate func(*State)) (State, bool) {
	return p.apply(seq, mutate, false)
}

// commitChanged is commit for a mutation that may leave the listing as it
// is. Nothing is committed or published in that case.
func (p *Pipeline) commitChanged(seq uint64, mutate func(*State)) (State, bool) {
	return p.apply(seq, mutate, true)
}

func (p *Pipeline) apply(seq uint64, mutate func(*State), skipUnchanged bool) (State, bool) {
	p.mu.Lock()
	if p.closed || seq != p.seq.Load() {
		p.mu.Unlock()
		staleDiscardsTotal.Inc()
		return State{}, false
	}

	next := p.state
	mutate(&next)
	if skipUnchanged && sameListing(next, p.state) {
		p.mu.Unlock()
		return State{}, false
	}
	next.Seq = seq
	next.UpdatedAt = p.now()
	p.state = next

	return p.publishAndUnlock(), true
}

// restore puts back the state a canceled run found when it started. It does
// nothing when a newer run has started or the run never committed.
func (p *Pipeline) restore(seq uint64, prev State) {
	p.mu.Lock()
	if seq != p.seq.Load() || p.state.Seq != seq {
		p.mu.Unlock()
		return
	}
	p.state = prev
	p.publishAndUnlock()
}

// publishAndUnlock snapshots the state, releases mu and notifies
// subscribers outside the lock.
func (p *Pipeline) publishAndUnlock() State {
	snapshot := p.snapshotLocked()
	subs := make([]func(State), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return snapshot
}

func sameListing(a, b State) bool {
	return a.Source == b.Source &&
		a.Total == b.Total &&
		a.Page == b.Page &&
		a.Banner == b.Banner &&
		a.Err == b.Err &&
		reflect.DeepEqual(a.Items, b.Items)
}

func (p *Pipeline) finish(seq uint64) {
	p.mu.Lock()
	if seq == p.seq.Load() {
		p.done = seq
	}
	p.mu.Unlock()
}

func (p *Pipeline) snapshotLocked() State {
	st := p.state.clone()
	st.Loading = p.seq.Load() != p.done
	return st
}

// readCache returns the entry under key or nil. Storage failures are
// logged and treated as an empty cache.
func (p *Pipeline) readCache(ctx context.Context, key cache.Key, logger zerolog.Logger) *cache.Entry {
	if p.store == nil {
		return nil
	}
	entry, err := p.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) && ctx.Err() == nil {
			logger.Warn().Err(err).Str("key", key.String()).Msg("Cache read failed")
		}
		return nil
	}
	return entry
}

// writeCache stores a committed result unless a newer run has started.
func (p *Pipeline) writeCache(ctx context.Context, seq uint64, entry *cache.Entry, logger zerolog.Logger) {
	if p.store == nil {
		return
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if seq != p.seq.Load() {
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheWriteTimeout)
	defer cancel()

	if err := p.store.Put(writeCtx, p.config.CacheKey, entry); err != nil {
		logger.Warn().Err(err).Msg("Cache write failed")
	}
}

func (p *Pipeline) pageURL(query string, page int) string {
	u, err := url.Parse(p.config.URL)
	if err != nil {
		return p.config.URL
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(p.config.PageSize))
	if query != "" {
		q.Set("q", query)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func totalOf(entry *cache.Entry) int {
	if entry.Total > 0 {
		return entry.Total
	}
	return len(entry.Items)
}

// pageOf returns the page an entry was fetched for. Entries written without
// one hold the first page.
func pageOf(entry *cache.Entry) int {
	return max(entry.Page, 1)
}

// State returns a snapshot of the committed state.
func (p *Pipeline) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

// View returns the displayable page for the most recently requested query
// and page.
func (p *Pipeline) View() View {
	p.mu.RLock()
	st := p.snapshotLocked()
	req := p.req
	p.mu.RUnlock()

	return BuildView(st, req.query, req.page, p.config.PageSize)
}

// ViewFor returns the displayable page of what res committed, for the query
// and page res requested. Later commits by other runs do not show through.
func (p *Pipeline) ViewFor(res Result) View {
	return BuildView(res.State, res.Query, res.Page, p.config.PageSize)
}

// Lookup resolves a record by ID from the cached entry, then from the
// all-pages snapshot. A record that is not cached is reported as not found.
func (p *Pipeline) Lookup(ctx context.Context, id string) (listing.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return listing.Record{}, false, err
	}

	for _, key := range []cache.Key{p.config.CacheKey, cache.SnapshotKey} {
		entry := p.readCache(ctx, key, p.logger)
		if entry == nil {
			continue
		}
		if rec, ok := listing.Find(entry.Items, id); ok {
			return rec, true, nil
		}
	}
	return listing.Record{}, false, nil
}

// Subscribe registers fn to receive every committed state. The returned
// function unregisters it.
func (p *Pipeline) Subscribe(fn func(State)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// Close cancels the in-flight run. Later runs return ErrClosed.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}
