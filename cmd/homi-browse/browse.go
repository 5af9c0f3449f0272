package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/homi-client/pkg/analytics"
	"github.com/Sternrassler/homi-client/pkg/client"
	"github.com/Sternrassler/homi-client/pkg/listing"
	"github.com/Sternrassler/homi-client/pkg/pagination"
	"github.com/Sternrassler/homi-client/pkg/saved"
)

type browser struct {
	opts      options
	pageSize  int
	publisher analytics.Publisher
	logger    zerolog.Logger
	out       io.Writer
	saved     *saved.Jobs
}

// browse loads the filtered list and prints it. Without -all the first page
// is fetched through the reconciler and every further page is requested the
// way a scrolled-into-view sentinel would.
func browse[T any](ctx context.Context, b *browser, res *client.Resource[T], render func(T) string) error {
	if b.opts.all {
		cfg := pagination.DefaultConfig()
		cfg.PageSize = b.pageSize
		items, err := pagination.NewBatchFetcher[T](res, cfg, b.logger).FetchAll(ctx, b.opts.state)
		writeView(b.out, listing.NewView(items, false, false, false, err), render)
		return err
	}

	ctrl := pagination.NewController[T](res, b.pageSize, b.logger)
	rec := pagination.NewReconciler(ctrl, b.publisher, res.Path(), b.logger)
	if _, err := rec.Observe(ctx, b.opts.state); err != nil {
		writeView(b.out, ctrl.State().View(), render)
		return err
	}

	sentinel := pagination.NewSentinel(ctrl, pagination.DefaultThreshold)
	var scrollErr error
	for page := 1; page < b.opts.pages; page++ {
		advanced, err := sentinel.Visible(ctx, 1)
		if err != nil {
			scrollErr = err
			break
		}
		if !advanced {
			break
		}
	}

	writeView(b.out, ctrl.State().View(), render)
	return scrollErr
}

func writeView[T any](w io.Writer, v listing.View[T], render func(T) string) {
	switch v.State {
	case listing.RenderSkeleton:
		fmt.Fprintln(w, "Loading...")
		return
	case listing.RenderEmpty:
		fmt.Fprintln(w, "No results match these filters.")
	default:
		for _, item := range v.Items {
			fmt.Fprintln(w, render(item))
		}
	}

	switch {
	case v.Failed:
		fmt.Fprintln(w, "-- could not load more results")
	case v.HasMore:
		fmt.Fprintf(w, "-- %d shown, more available\n", len(v.Items))
	case len(v.Items) > 0:
		fmt.Fprintf(w, "-- %d shown, end of results\n", len(v.Items))
	}
}

func renderProfessional(p listing.Professional) string {
	line := fmt.Sprintf("%-10s %-28s %-14s %-12s %6s/h  %.1f (%d reviews)",
		p.ID, p.Name, p.Category, p.City, money(p.HourlyRate), p.Rating, p.ReviewCount)
	if p.Verified {
		line += "  verified"
	}
	if !p.IsAvailable() {
		line += "  unavailable"
	}
	return line
}

func (b *browser) renderJob(j listing.Job) string {
	mark := " "
	if b.saved != nil && b.saved.Has(j.ID) {
		mark = "*"
	}
	line := fmt.Sprintf("%s %-10s %-32s %-14s %-12s %s-%s  %d proposals",
		mark, j.ID, j.Title, j.Category, j.City, money(j.BudgetMin), money(j.BudgetMax), j.ProposalCount)
	if !j.IsOpen() {
		line += "  " + j.Status
	}
	return line
}

func money(v float64) string {
	return "£" + strconv.FormatFloat(v, 'f', -1, 64)
}

// optionalFloat is a flag.Value that stays nil until set.
type optionalFloat struct {
	ptr *float64
}

func (f *optionalFloat) String() string {
	if f == nil || f.ptr == nil {
		return ""
	}
	return strconv.FormatFloat(*f.ptr, 'f', -1, 64)
}

func (f *optionalFloat) Set(raw string) error {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	f.ptr = &v
	return nil
}
