package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/krishi-connect/pkg/debounce"
	"github.com/Sternrassler/krishi-connect/pkg/pipeline"
)

const browseHelp = "type to search, :n next page, :p previous page, :r refresh, :q quit"

func newBrowseCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Search schemes interactively",
		Long:  "Read search input line by line. Searches are debounced; every committed result is printed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), root.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			b := newBrowser(cmd.Context(), a.pipeline, cmd.OutOrStdout(), root.cfg.Listing.Debounce)
			return b.run(cmd.InOrStdin())
		},
	}
}

// browser keeps the current query and page and reprints the view on every
// commit. Debounced searches run on the timer goroutine, paging and refresh
// on the input goroutine; the pipeline keeps whichever started last.
type browser struct {
	ctx      context.Context
	pipeline *pipeline.Pipeline
	search   *debounce.Debouncer[string]

	outMu sync.Mutex
	out   io.Writer

	mu    sync.Mutex
	query string
	page  int
}

func newBrowser(ctx context.Context, p *pipeline.Pipeline, out io.Writer, delay time.Duration) *browser {
	b := &browser{ctx: ctx, pipeline: p, out: out, page: 1}
	b.search = debounce.New(delay, func(query string) {
		b.mu.Lock()
		b.query = query
		b.page = 1
		b.mu.Unlock()
		b.fetch()
	})
	return b
}

func (b *browser) run(in io.Reader) error {
	unsubscribe := b.pipeline.Subscribe(func(pipeline.State) { b.render() })
	defer unsubscribe()

	b.println(browseHelp)
	b.fetch()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case ":q":
			b.search.Stop()
			return nil
		case ":n", ":p":
			b.search.Flush()
			b.mu.Lock()
			if line == ":n" {
				b.page++
			} else if b.page > 1 {
				b.page--
			}
			b.mu.Unlock()
			b.fetch()
		case ":r":
			b.search.Flush()
			b.pipeline.Refresh(b.ctx, true)
		default:
			b.search.Trigger(line)
		}
	}

	b.search.Flush()
	b.search.Stop()
	return scanner.Err()
}

func (b *browser) fetch() {
	b.mu.Lock()
	query, page := b.query, b.page
	b.mu.Unlock()

	b.pipeline.Run(b.ctx, query, page)
}

// render prints the latest view and adopts its clamped page.
func (b *browser) render() {
	view := b.pipeline.View()

	b.mu.Lock()
	b.page = view.Page
	b.mu.Unlock()

	b.outMu.Lock()
	defer b.outMu.Unlock()
	_ = renderView(b.out, view)
}

func (b *browser) println(s string) {
	b.outMu.Lock()
	defer b.outMu.Unlock()
	fmt.Fprintln(b.out, s)
}
