package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	apperrors "github.com/atelierhq/studio-platform/internal/errors"
)

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.Validation("invalid request body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps service errors onto their HTTP status; anything untyped is
// an internal error.
func writeError(w http.ResponseWriter, err error) {
	serviceErr := apperrors.GetServiceError(err)
	if serviceErr == nil {
		serviceErr = apperrors.Internal("internal error", err)
	}

	payload := map[string]any{
		"error":   serviceErr.Code,
		"message": serviceErr.Message,
	}
	if len(serviceErr.Details) > 0 {
		payload["details"] = serviceErr.Details
	}
	writeJSON(w, serviceErr.HTTPStatus, payload)
}
