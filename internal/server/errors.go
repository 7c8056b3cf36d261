package server

import (
	"errors"
	"net/http"

	"apnode/internal/domain"
)

type errorBody struct {
	Error string `json:"error"`
}

// StatusFor maps a domain error onto an HTTP status.
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.ErrValidation:
		return http.StatusBadRequest
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrConflict:
		return http.StatusConflict
	case domain.ErrCrypto:
		return http.StatusUnprocessableEntity
	case domain.ErrDelivery:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	}
	var de *domain.Error
	if errors.As(err, &de) && de.Msg != "" && status != http.StatusInternalServerError {
		msg = de.Msg
	}
	writeJSON(w, status, "", errorBody{Error: msg})
}
