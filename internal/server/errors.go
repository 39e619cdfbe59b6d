package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/rasterd/pkg/errors"
)

// statusForCode maps structured error codes to HTTP statuses. Caller
// mistakes are 400s, upstream conversion failures surface as gateway
// errors, and everything else is a plain 500.
func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeEmptyBody, errors.ErrCodeInvalidParameter, errors.ErrCodeBodyTooLarge:
		return http.StatusBadRequest
	case errors.ErrCodeUpstream, errors.ErrCodeUpstreamUnreachable:
		return http.StatusBadGateway
	case errors.ErrCodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusForCode(code)

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", code,
			"error", err)
	}

	writeJSON(w, status, map[string]string{"error": errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
