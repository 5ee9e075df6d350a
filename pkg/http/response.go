package http

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	apperrors "bedbook/pkg/errors"
)

// Payload is merged into the top-level success envelope.
type Payload map[string]any

var exposeErrorDetail atomic.Bool

// ExposeErrorDetail toggles the "error" field on 5xx responses. Enabled in
// development only.
func ExposeErrorDetail(enabled bool) {
	exposeErrorDetail.Store(enabled)
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)

	body := map[string]any{
		"success": false,
		"message": appErr.Message,
		"code":    appErr.Code,
	}
	for k, v := range appErr.Details {
		body[k] = v
	}
	if appErr.StatusCode() >= http.StatusInternalServerError && exposeErrorDetail.Load() && appErr.Err != nil {
		body["error"] = appErr.Err.Error()
	}

	return WriteJSON(w, appErr.StatusCode(), body)
}

// WriteMessage writes a failure envelope for middleware that has no AppError.
func WriteMessage(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]any{
		"success": false,
		"message": message,
	})
}

func WriteSuccess(w http.ResponseWriter, payload Payload) error {
	return WriteJSON(w, http.StatusOK, envelope(payload))
}

func WriteCreated(w http.ResponseWriter, payload Payload) error {
	return WriteJSON(w, http.StatusCreated, envelope(payload))
}

func WritePaginated(w http.ResponseWriter, key string, data any, totalCount int64, limit int, offset int64) error {
	return WriteSuccess(w, Payload{
		key:          data,
		"totalCount": totalCount,
		"limit":      limit,
		"offset":     offset,
	})
}

func envelope(payload Payload) map[string]any {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	return body
}
