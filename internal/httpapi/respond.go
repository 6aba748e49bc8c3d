package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 16 << 20

type resultEnvelope struct {
	Result     any    `json:"result"`
	NextCursor string `json:"next_cursor,omitempty"`
}

type errorEnvelope struct {
	Message string `json:"message"`
}

// writeJSON writes v with status. The header is already sent when
// encoding fails, so the failure can only be logged.
func writeJSON(w http.ResponseWriter, log *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("encode response", zap.Int("status", status), zap.Error(err))
	}
}

func writeResult(w http.ResponseWriter, log *zap.Logger, status int, v any) {
	writeJSON(w, log, status, resultEnvelope{Result: v})
}

func writePage[T any](w http.ResponseWriter, log *zap.Logger, p types.Page[T]) {
	writeJSON(w, log, http.StatusOK, resultEnvelope{Result: p.Items, NextCursor: p.NextCursor})
}

// statusOf maps an error kind to its HTTP status.
func statusOf(err error) int {
	switch types.Kind(err) {
	case types.ErrValidation:
		return http.StatusBadRequest
	case types.ErrUnauthenticated:
		return http.StatusUnauthorized
	case types.ErrTierTooLow:
		return http.StatusForbidden
	case types.ErrNotFound:
		return http.StatusNotFound
	case types.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorWriter renders failures. Store faults are logged and replaced by a
// generic message.
func errorWriter(log *zap.Logger) func(w http.ResponseWriter, r *http.Request, err error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		status := statusOf(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
			msg = "internal error"
		}
		writeJSON(w, log, status, errorEnvelope{Message: msg})
	}
}

// readBody returns the request body, bounded by maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, types.Invalid("", "payload exceeds %d bytes", maxBodyBytes)
		}
		return nil, types.Invalid("", "payload could not be read")
	}
	return body, nil
}

// decodeBody unmarshals a JSON object body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return types.Invalid("", "payload must be a JSON object")
	}
	return nil
}

// pageRequest reads ?limit= and ?cursor=.
func pageRequest(r *http.Request) (types.PageRequest, error) {
	q := r.URL.Query()
	p := types.PageRequest{Cursor: q.Get("cursor")}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, types.Invalid("limit", "must be an integer")
		}
		p.Limit = n
	}
	return p, nil
}
