package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jonathan/talentflow/internal/assessment"
	"github.com/jonathan/talentflow/internal/db"
	"github.com/jonathan/talentflow/internal/events"
	"github.com/jonathan/talentflow/internal/schemas"
	"github.com/jonathan/talentflow/internal/types"
	embedded "github.com/jonathan/talentflow/schemas"
)

// GetAssessment returns the job's assessment, or nil when the job has none.
func (s *Service) GetAssessment(ctx context.Context, jobID string) (*types.Assessment, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	return s.assessmentFor(ctx, jobID)
}

func (s *Service) assessmentFor(ctx context.Context, jobID string) (*types.Assessment, error) {
	a, err := s.assessments.First(ctx, "jobId", jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return a, nil
}

// SaveAssessment creates or replaces the assessment of a job. The definition is
// checked against the assessment JSON Schema and for structural mistakes before
// it is written.
func (s *Service) SaveAssessment(ctx context.Context, jobID string, req *types.SaveAssessmentRequest) (*types.Assessment, error) {
	if err := s.beginWrite(ctx, "save assessment"); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, invalid("invalid assessment", err)
	}

	existing, err := s.assessmentFor(ctx, jobID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	a := &types.Assessment{
		ID:        s.newID(),
		JobID:     jobID,
		Title:     req.Title,
		Sections:  req.Sections,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if a.Sections == nil {
		a.Sections = []types.Section{}
	}
	if existing != nil {
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	}

	if err := schemas.ValidateDocument(embedded.Assessment, a); err != nil {
		return nil, invalid("invalid assessment", err)
	}
	if err := assessment.CheckStructure(a); err != nil {
		return nil, invalid("invalid assessment", err)
	}

	if err := s.assessments.Put(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to save assessment: %w", err)
	}
	s.changed(ctx, db.Assessments, events.AssessmentSaved, a.ID)
	return a, nil
}

// SubmitResponse validates a candidate's answers against the job's assessment and
// stores them. Only visible questions are validated.
func (s *Service) SubmitResponse(ctx context.Context, jobID string, req *types.SubmitResponseRequest) (*types.AssessmentResponse, error) {
	if err := s.beginWrite(ctx, "submit assessment"); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, invalid("invalid submission", err)
	}
	if err := schemas.ValidateDocument(embedded.Response, req); err != nil {
		return nil, invalid("invalid submission", err)
	}

	a, err := s.assessmentFor(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &NotFoundError{Kind: "assessment for job", ID: jobID}
	}
	if req.AssessmentID != a.ID {
		return nil, &ValidationError{
			Message: "invalid submission",
			Fields:  map[string]string{"assessmentId": "Does not match the job's assessment"},
		}
	}
	if _, err := s.loadCandidate(ctx, req.CandidateID); err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, &ValidationError{
				Message: "invalid submission",
				Fields:  map[string]string{"candidateId": "Candidate does not exist"},
			}
		}
		return nil, err
	}
	if err := assessment.Validate(a, req.Responses); err != nil {
		return nil, invalid("invalid submission", err)
	}

	answers := req.Responses
	if answers == nil {
		answers = types.Answers{}
	}
	resp := &types.AssessmentResponse{
		ID:           s.newID(),
		AssessmentID: a.ID,
		CandidateID:  req.CandidateID,
		Responses:    answers,
		SubmittedAt:  s.now(),
	}
	if err := s.responses.Put(ctx, resp); err != nil {
		return nil, fmt.Errorf("failed to store response: %w", err)
	}
	s.changed(ctx, db.AssessmentResponses, events.AssessmentSubmitted, resp.ID)
	return resp, nil
}

// ListResponses returns the submissions to a job's assessment, oldest first.
func (s *Service) ListResponses(ctx context.Context, jobID string) ([]types.AssessmentResponse, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	a, err := s.assessmentFor(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return []types.AssessmentResponse{}, nil
	}
	out, err := s.responses.Where(ctx, "assessmentId", a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out, nil
}
