package constituencies

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/civictrack/internal/app/hierarchy"
	"github.com/dalemusser/civictrack/internal/app/system/authz"
	"github.com/dalemusser/civictrack/internal/app/system/limits"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// HandleCreate handles POST /api/constituencies.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in hierarchy.ConstituencyInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Hierarchy.CreateConstituency(ctx, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusCreated, c, "Constituency created successfully")
}

// HandleBulkCreate handles POST /api/constituencies/bulk.
func (h *Handler) HandleBulkCreate(w http.ResponseWriter, r *http.Request) {
	var in hierarchy.BulkConstituencyInput
	if err := respond.DecodeLimit(w, r, &in, limits.MaxBulkBody); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	res, err := h.Hierarchy.BulkCreateConstituencies(ctx, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Bulk(w, res.Created, res.Errors,
		fmt.Sprintf("%d constituencies created, %d failed", len(res.Created), len(res.Errors)))
}

// HandleAddPanchayats handles POST /api/constituencies/{id}/panchayats.
func (h *Handler) HandleAddPanchayats(w http.ResponseWriter, r *http.Request) {
	var in hierarchy.ConstituencyPanchayatsInput
	if err := respond.DecodeLimit(w, r, &in, limits.MaxBulkBody); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(hierarchy.WithGuard(r.Context(), authz.ConstituencyGuard(r)), timeouts.Batch())
	defer cancel()

	res, err := h.Hierarchy.AddPanchayatsToConstituency(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Bulk(w, res.Created, res.Errors,
		fmt.Sprintf("%d panchayats created, %d failed", len(res.Created), len(res.Errors)))
}
