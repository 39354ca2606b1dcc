package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Sternrassler/krishi-connect/pkg/listing"
	"github.com/Sternrassler/krishi-connect/pkg/pipeline"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderView prints a view as a table followed by the page footer.
func renderView(w io.Writer, view pipeline.View) error {
	if view.Banner != "" {
		fmt.Fprintf(w, "! %s\n", view.Banner)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY")
	for _, rec := range view.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.ID, truncate(rec.Title, 60), truncate(rec.State, 30))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "page %d/%d  total %d  source %s\n", view.Page, view.PageCount, view.Total, view.Source)
	return err
}

func renderRecord(w io.Writer, rec listing.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", rec.ID)
	fmt.Fprintf(tw, "Title\t%s\n", rec.Title)
	fmt.Fprintf(tw, "Category\t%s\n", rec.State)
	fmt.Fprintf(tw, "Description\t%s\n", rec.Description)
	if rec.PostedOn != "" {
		fmt.Fprintf(tw, "Launched\t%s\n", rec.PostedOn)
	}
	if rec.ApplyURL != "" {
		fmt.Fprintf(tw, "Apply\t%s\n", rec.ApplyURL)
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
