// Package types provides the records and request payloads shared by the talentflow service, client and CLI.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON names so errors match the wire format.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// JobStatus is the lifecycle state of a job posting.
type JobStatus string

// Job statuses
const (
	JobStatusActive   JobStatus = "active"
	JobStatusArchived JobStatus = "archived"
)

// Job is a posting on the hiring board. Order defines the display sequence across
// active and archived jobs; gaps are tolerated.
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Status      JobStatus `json:"status"`
	Tags        []string  `json:"tags"`
	Order       int       `json:"order"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateJobRequest is the payload for creating a job. Missing slug, status and
// order are filled in by the service.
type CreateJobRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Slug        string    `json:"slug,omitempty" validate:"omitempty,max=200"`
	Status      JobStatus `json:"status,omitempty" validate:"omitempty,oneof=active archived"`
	Tags        []string  `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
	Order       *int      `json:"order,omitempty"`
	Description string    `json:"description,omitempty" validate:"max=5000"`
}

// Validate validates the CreateJobRequest using the validator.
func (r *CreateJobRequest) Validate() error {
	return validate.Struct(r)
}

// JobPatch is a partial update. Nil fields are left untouched; a non-nil empty
// Tags slice clears the tags.
type JobPatch struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Slug        *string    `json:"slug,omitempty" validate:"omitempty,min=1,max=200"`
	Status      *JobStatus `json:"status,omitempty" validate:"omitempty,oneof=active archived"`
	Tags        []string   `json:"tags" validate:"omitempty,dive,min=1,max=50"`
	Order       *int       `json:"order,omitempty"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
}

// Validate validates the JobPatch using the validator.
func (p *JobPatch) Validate() error {
	return validate.Struct(p)
}

// Apply merges the patch into job. It reports whether anything was set.
func (p *JobPatch) Apply(job *Job) bool {
	changed := false
	if p.Title != nil {
		job.Title = *p.Title
		changed = true
	}
	if p.Slug != nil {
		job.Slug = *p.Slug
		changed = true
	}
	if p.Status != nil {
		job.Status = *p.Status
		changed = true
	}
	if p.Tags != nil {
		job.Tags = append([]string{}, p.Tags...)
		changed = true
	}
	if p.Order != nil {
		job.Order = *p.Order
		changed = true
	}
	if p.Description != nil {
		job.Description = *p.Description
		changed = true
	}
	return changed
}

// ReorderRequest moves a job from one order value to another.
type ReorderRequest struct {
	FromOrder int `json:"fromOrder"`
	ToOrder   int `json:"toOrder"`
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	slugUnsafe    = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slugify lowercases a title, turns whitespace runs into dashes and drops any
// character outside [a-z0-9-].
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = whitespaceRun.ReplaceAllString(s, "-")
	return slugUnsafe.ReplaceAllString(s, "")
}
