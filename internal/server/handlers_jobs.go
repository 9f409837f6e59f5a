package server

import (
	"net/http"

	"github.com/jonathan/talentflow/internal/types"
)

// handleListJobs handles GET /api/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	page, err := parseQueryInt(r, "page", 1)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	pageSize, err := parseQueryInt(r, "pageSize", types.DefaultJobPageSize)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	result, err := s.svc.ListJobs(r.Context(), types.JobQuery{
		Search:   q.Get("search"),
		Status:   types.JobStatus(q.Get("status")),
		Sort:     types.JobSort(q.Get("sort")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleCreateJob handles POST /api/jobs
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req types.CreateJobRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.svc.CreateJob(r.Context(), &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, job)
}

// handleGetJob handles GET /api/jobs/{id}
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.svc.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleUpdateJob handles PATCH /api/jobs/{id}
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	var patch types.JobPatch
	if err := decodeBody(r, &patch); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.svc.UpdateJob(r.Context(), r.PathValue("id"), &patch)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleReorderJob handles PATCH /api/jobs/{id}/reorder
func (s *Server) handleReorderJob(w http.ResponseWriter, r *http.Request) {
	var req types.ReorderRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.svc.ReorderJob(r.Context(), r.PathValue("id"), req.FromOrder, req.ToOrder)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}
