package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hlop3z/erdpad/internal/alerr"
)

// errorResponse is the envelope for every error body.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string         `json:"code,omitempty"`
	Status  int            `json:"status"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
	Help    []string       `json:"help,omitempty"`
	Cause   string         `json:"cause,omitempty"`
}

// writeJSON serializes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code by its error code and writes the
// standard envelope. Errors without a code are reported as internal.
func writeError(w http.ResponseWriter, err error) {
	var e *alerr.Error
	if !errors.As(err, &e) {
		e = alerr.Wrap(alerr.EInternalError, err, "internal error")
	}
	status := statusFor(e.GetCode())
	detail := errorDetail{
		Code:    string(e.GetCode()),
		Status:  status,
		Message: e.GetMessage(),
		Context: e.GetContext(),
		Help:    e.Helps(),
	}
	if cause := e.GetCause(); cause != nil {
		detail.Cause = cause.Error()
	}
	writeJSON(w, status, errorResponse{Error: detail})
}

// statusFor returns the HTTP status for an error code.
func statusFor(code alerr.Code) int {
	switch code {
	case alerr.ErrDocumentInvalid,
		alerr.ErrDocumentRead,
		alerr.ErrInvalidReference,
		alerr.ErrInvalidType,
		alerr.ErrInvalidCardinality,
		alerr.ErrInvalidDirection,
		alerr.ErrDuplicateID:
		return http.StatusBadRequest
	case alerr.ErrTableNotFound,
		alerr.ErrColumnNotFound,
		alerr.ErrRelationshipNotFound:
		return http.StatusNotFound
	case alerr.ErrNoDraft:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// readJSON decodes the request body into v, rejecting unknown fields. An
// empty body leaves v untouched and reports false.
func readJSON(r *http.Request, v any) (bool, error) {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, alerr.Wrap(alerr.ErrDocumentInvalid, err, "request body is not valid JSON")
	}
	return true, nil
}

// limitBody caps the request body at the configured size.
func (s *Server) limitBody(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodySize)
	}
}
