package panchayats

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/civictrack/internal/app/hierarchy"
	"github.com/dalemusser/civictrack/internal/app/system/limits"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
)

// HandleCreate handles POST /api/panchayats.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in hierarchy.PanchayatInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(scoped(r), timeouts.Medium())
	defer cancel()

	p, err := h.Hierarchy.CreatePanchayat(ctx, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusCreated, p, "Panchayat created successfully")
}

// HandleBulkCreate handles POST /api/panchayats/bulk.
func (h *Handler) HandleBulkCreate(w http.ResponseWriter, r *http.Request) {
	var in hierarchy.BulkPanchayatInput
	if err := respond.DecodeLimit(w, r, &in, limits.MaxBulkBody); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(scoped(r), timeouts.Batch())
	defer cancel()

	res, err := h.Hierarchy.BulkCreatePanchayats(ctx, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Bulk(w, res.Created, res.Errors,
		fmt.Sprintf("%d panchayats created, %d failed", len(res.Created), len(res.Errors)))
}
