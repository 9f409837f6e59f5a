package types

import (
	"fmt"
	"time"
)

// Stage is a candidate's position in the hiring pipeline. Any stage may move to
// any other stage; transitions are recorded, not constrained.
type Stage string

// Pipeline stages
const (
	StageApplied  Stage = "applied"
	StageScreen   Stage = "screen"
	StageTech     Stage = "tech"
	StageOffer    Stage = "offer"
	StageHired    Stage = "hired"
	StageRejected Stage = "rejected"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageApplied, StageScreen, StageTech, StageOffer, StageHired, StageRejected}

// Valid reports whether s is one of the six pipeline stages.
func (s Stage) Valid() bool {
	for _, st := range Stages {
		if s == st {
			return true
		}
	}
	return false
}

// Index returns the position of s in Stages, or -1.
func (s Stage) Index() int {
	for i, st := range Stages {
		if s == st {
			return i
		}
	}
	return -1
}

var stageLabels = map[Stage]string{
	StageApplied:  "Applied",
	StageScreen:   "Screening",
	StageTech:     "Technical",
	StageOffer:    "Offer",
	StageHired:    "Hired",
	StageRejected: "Rejected",
}

// Label is the display name of a stage.
func (s Stage) Label() string {
	if l, ok := stageLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseStage converts a string into a Stage.
func ParseStage(v string) (Stage, error) {
	s := Stage(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown stage: %q", v)
	}
	return s, nil
}

// Candidate is an applicant attached to a job.
type Candidate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Stage     Stage     `json:"stage"`
	JobID     string    `json:"jobId"`
	Phone     string    `json:"phone,omitempty"`
	Resume    string    `json:"resume,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateCandidateRequest is the payload for adding a candidate. Stage defaults to applied.
type CreateCandidateRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=200"`
	Email  string `json:"email" validate:"required,email"`
	Stage  Stage  `json:"stage,omitempty" validate:"omitempty,oneof=applied screen tech offer hired rejected"`
	JobID  string `json:"jobId,omitempty"`
	Phone  string `json:"phone,omitempty" validate:"max=50"`
	Resume string `json:"resume,omitempty"`
}

// Validate validates the CreateCandidateRequest using the validator.
func (r *CreateCandidateRequest) Validate() error {
	return validate.Struct(r)
}

// CandidatePatch is a partial candidate update; the usual case is a stage move.
type CandidatePatch struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	Stage  *Stage  `json:"stage,omitempty" validate:"omitempty,oneof=applied screen tech offer hired rejected"`
	JobID  *string `json:"jobId,omitempty"`
	Phone  *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Resume *string `json:"resume,omitempty"`
}

// Validate validates the CandidatePatch using the validator.
func (p *CandidatePatch) Validate() error {
	return validate.Struct(p)
}

// Apply merges the patch into c.
func (p *CandidatePatch) Apply(c *Candidate) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Stage != nil {
		c.Stage = *p.Stage
	}
	if p.JobID != nil {
		c.JobID = *p.JobID
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Resume != nil {
		c.Resume = *p.Resume
	}
}

// TimelineEntry records one stage transition. FromStage is nil for the entry
// written when the candidate is created. Entries are never mutated.
type TimelineEntry struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidateId"`
	FromStage   *Stage    `json:"fromStage"`
	ToStage     Stage     `json:"toStage"`
	Timestamp   time.Time `json:"timestamp"`
	Note        string    `json:"note,omitempty"`
}
