package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/jonathan/talentflow/internal/service"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound   *service.NotFoundError
		validation *service.ValidationError
		conflict   *service.ConflictError
		simulated  *service.SimulatedError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &simulated):
		return http.StatusInternalServerError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// serviceError writes err as a JSON error response. Unexpected errors are
// logged and reported without detail.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	body := ErrorBody{Error: err.Error()}

	var validation *service.ValidationError
	var simulated *service.SimulatedError
	switch {
	case errors.As(err, &validation):
		body.Error = validation.Message
		body.Fields = validation.Fields
	case status == http.StatusInternalServerError && !errors.As(err, &simulated):
		log.Printf("[server] %s %s failed: %v", r.Method, r.URL.Path, err)
		body.Error = "internal server error"
	}
	s.jsonResponse(w, status, body)
}
