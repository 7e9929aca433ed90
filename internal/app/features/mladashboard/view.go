package mladashboard

import (
	"context"
	"net/http"

	dashboardstore "github.com/dalemusser/civictrack/internal/app/store/dashboards"
	issuestore "github.com/dalemusser/civictrack/internal/app/store/issues"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"golang.org/x/sync/errgroup"
)

// ServeDashboard handles GET /api/mla-dashboard/{constituencyId}.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.constituency(ctx, r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	var view dashboardView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := dashboardstore.New(h.DB).GetOrCreate(gctx, c.ConstituencyID, c.MLAID)
		if err != nil {
			return err
		}
		view.MLADashboard = *d
		return nil
	})
	g.Go(func() error {
		var err error
		view.Stats, err = issuestore.New(h.DB).Stats(gctx, c.ConstituencyID)
		return err
	})
	if err := g.Wait(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusOK, view, "")
}

// ServeStats handles GET /api/mla-dashboard/{constituencyId}/stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.constituency(ctx, r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	stats, err := issuestore.New(h.DB).Stats(ctx, c.ConstituencyID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusOK, stats, "")
}
