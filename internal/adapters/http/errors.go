package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"

	api "ownership/internal/api"
	"ownership/internal/domain"
)

type runtimeError struct {
	code int
	msg  string
}

func (e *runtimeError) Error() string { return e.msg }

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(api.Error{Error: msg})
}

// requestError handles bodies the strict handler could not decode.
func (s *Server) requestError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
}

// paramError handles path parameters that fail to bind. A malformed job id
// cannot name an existing job.
func (s *Server) paramError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *api.InvalidParamFormatError
	if errors.As(err, &pe) && pe.ParamName == "job_id" {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// responseError maps errors returned by handlers to status codes.
func (s *Server) responseError(w http.ResponseWriter, r *http.Request, err error) {
	var re *runtimeError
	switch {
	case errors.As(err, &re):
		writeError(w, re.code, re.msg)
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
