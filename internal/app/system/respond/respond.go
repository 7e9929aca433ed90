// Package respond writes the API's JSON envelopes and decodes request bodies.
//
// Success:  { "success": true, "message": "...", "data": ... }
// Failure:  { "success": false, "message": "...", "error": "ValidationError" }
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/limits"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Envelope is the success body.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorBody is the failure body.
type ErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Field   string `json:"field,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode JSON response failed", zap.Error(err))
	}
}

// OK writes a success envelope.
func OK(w http.ResponseWriter, status int, data any, msg string) {
	JSON(w, status, Envelope{Success: true, Message: msg, Data: data})
}

// Error writes err using its apierr classification. Internal errors are
// logged with the request id and rendered with a generic message.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	e := apierr.From(err)
	if e.Kind == apierr.KindInternal && log != nil {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	JSON(w, e.Status, ErrorBody{
		Success: false,
		Message: e.Message,
		Error:   e.Kind.String(),
		Field:   e.Field,
	})
}

// Decode reads a JSON body into v. Unknown fields, trailing data, and
// malformed JSON are reported as validation errors.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	return DecodeLimit(w, r, v, limits.MaxJSONBody)
}

// DecodeLimit is Decode with a caller-chosen body size cap.
func DecodeLimit(w http.ResponseWriter, r *http.Request, v any, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apierr.Validation("", "request body must contain a single JSON object")
	}
	return nil
}

func decodeError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError

	switch {
	case errors.Is(err, io.EOF):
		return apierr.Validation("", "request body is required")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return apierr.Validation("", "request body is not valid JSON")
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return apierr.Validation("", "request body must be a JSON object")
		}
		return apierr.Validation(typeErr.Field, fmt.Sprintf("%s has an invalid type", typeErr.Field))
	case errors.As(err, &maxErr):
		return apierr.Validation("", "request body is too large")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return apierr.Validation(field, field+" is not allowed")
	default:
		return apierr.Validation("", "invalid request body")
	}
}

// BulkBody is the body of bulk-create responses. Created and Errors are
// always arrays, possibly empty.
type BulkBody struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Created any    `json:"created"`
	Errors  any    `json:"errors"`
}

// Bulk writes a 201 bulk body. The batch was accepted even when some
// items failed; per-item outcomes are in created and errors.
func Bulk(w http.ResponseWriter, created, errs any, msg string) {
	JSON(w, http.StatusCreated, BulkBody{Success: true, Message: msg, Created: created, Errors: errs})
}

// PageBody is a success body for paginated lists.
type PageBody struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Meta    any  `json:"meta"`
}

// Page writes a 200 paginated list.
func Page(w http.ResponseWriter, data, meta any) {
	JSON(w, http.StatusOK, PageBody{Success: true, Data: data, Meta: meta})
}
