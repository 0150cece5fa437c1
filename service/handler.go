package service

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const maxBodyBytes = 10 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// Handler receives telemetry batches pushed by the Flespi stream.
type Handler struct {
	pipeline *Pipeline
	logger   Logger
}

// NewHandler creates a handler running batches through p.
func NewHandler(p *Pipeline, logger Logger) *Handler {
	return &Handler{pipeline: p, logger: logger}
}

// ServeHTTP handles POST /flespi.
// Always expects a non-empty array of telemetry objects. Every other body is
// answered with a batch level failure; record level problems are reported
// per record.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	batch, err := DecodeBatch(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.WarnContext(r.Context(), "rejecting telemetry body", "error", err)
	}

	resp := h.pipeline.Process(r.Context(), batch)
	if r.Context().Err() != nil {
		h.logger.WarnContext(r.Context(), "client went away before the batch completed")
	}

	writeJSON(w, http.StatusOK, resp)
}

// DecodeBatch reads a JSON array of telemetry objects. Elements are kept raw
// so a malformed element only affects its own record. Anything that is not a
// non-empty array yields ErrNoData, possibly wrapping the decode error.
func DecodeBatch(body io.Reader) ([]json.RawMessage, error) {
	var batch []json.RawMessage
	if err := json.NewDecoder(body).Decode(&batch); err != nil {
		return nil, errors.Join(ErrNoData, err)
	}
	if len(batch) == 0 {
		return nil, ErrNoData
	}
	return batch, nil
}
