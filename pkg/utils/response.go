package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

const contentTypeJSON = "application/json"

type errorBody struct {
	Error string `json:"error"`
}

// RespondJSON marshals payload before touching w. A payload that cannot be
// encoded turns into a 500 with an error body.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("failed to encode response", zap.Int("status", status), zap.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorBody{Error: "internal error"})
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		zap.L().Debug("failed to write response", zap.Int("status", status), zap.Error(err))
	}
}

// RespondError writes {"error": message} with status.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, errorBody{Error: message})
}

// DecodeJSON decodes a request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
