package server

import (
	"net/http"

	"github.com/jonathan/talentflow/internal/types"
)

// handleListCandidates handles GET /api/candidates
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	page, err := parseQueryInt(r, "page", 1)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	pageSize, err := parseQueryInt(r, "pageSize", types.DefaultCandidatePageSize)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	result, err := s.svc.ListCandidates(r.Context(), types.CandidateQuery{
		Search:   q.Get("search"),
		Stage:    types.Stage(q.Get("stage")),
		JobID:    q.Get("jobId"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleCreateCandidate handles POST /api/candidates
func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req types.CreateCandidateRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := s.svc.CreateCandidate(r.Context(), &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, c)
}

// handleGetCandidate handles GET /api/candidates/{id}
func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.GetCandidate(r.Context(), r.PathValue("id"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, c)
}

// handleUpdateCandidate handles PATCH /api/candidates/{id}
func (s *Server) handleUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	var patch types.CandidatePatch
	if err := decodeBody(r, &patch); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := s.svc.UpdateCandidate(r.Context(), r.PathValue("id"), &patch)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, c)
}

// handleCandidateTimeline handles GET /api/candidates/{id}/timeline
func (s *Server) handleCandidateTimeline(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Timeline(r.Context(), r.PathValue("id"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, entries)
}

// handleListNotes handles GET /api/candidates/{id}/notes
func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.svc.ListNotes(r.Context(), r.PathValue("id"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, notes)
}

// handleAddNote handles POST /api/candidates/{id}/notes
func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var req types.CreateNoteRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := s.svc.AddNote(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, note)
}
