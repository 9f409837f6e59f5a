package server

import (
	"net/http"

	"github.com/jonathan/talentflow/internal/types"
)

// handleGetAssessment handles GET /api/assessments/{jobId}. A job without an
// assessment yields a JSON null.
func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.GetAssessment(r.Context(), r.PathValue("jobId"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, a)
}

// handleSaveAssessment handles PUT /api/assessments/{jobId}
func (s *Server) handleSaveAssessment(w http.ResponseWriter, r *http.Request) {
	var req types.SaveAssessmentRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := s.svc.SaveAssessment(r.Context(), r.PathValue("jobId"), &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, a)
}

// handleSubmitAssessment handles POST /api/assessments/{jobId}/submit
func (s *Server) handleSubmitAssessment(w http.ResponseWriter, r *http.Request) {
	var req types.SubmitResponseRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.svc.SubmitResponse(r.Context(), r.PathValue("jobId"), &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, resp)
}

// handleListResponses handles GET /api/assessments/{jobId}/responses
func (s *Server) handleListResponses(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListResponses(r.Context(), r.PathValue("jobId"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, list)
}
