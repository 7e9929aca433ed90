package panchayats

import (
	"context"
	"net/http"

	"github.com/dalemusser/civictrack/internal/app/hierarchy"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// HandleUpdate handles PUT /api/panchayats/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in hierarchy.UpdatePanchayatInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(scoped(r), timeouts.Medium())
	defer cancel()

	p, err := h.Hierarchy.UpdatePanchayat(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusOK, p, "Panchayat updated successfully")
}

// HandleAddWards handles PUT /api/panchayats/add-wards/{id}.
func (h *Handler) HandleAddWards(w http.ResponseWriter, r *http.Request) {
	var in hierarchy.AddWardsInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(scoped(r), timeouts.Short())
	defer cancel()

	p, err := h.Hierarchy.AddWards(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusOK, p, "Wards added successfully")
}

// HandleDelete handles DELETE /api/panchayats/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(scoped(r), timeouts.Medium())
	defer cancel()

	if err := h.Hierarchy.DeletePanchayat(ctx, chi.URLParam(r, "id")); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusOK, nil, "Panchayat deleted successfully")
}
