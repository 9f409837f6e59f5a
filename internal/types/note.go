package types

import (
	"regexp"
	"time"
)

// CandidateNote is a free-text annotation on a candidate. Notes are append-only.
type CandidateNote struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidateId"`
	Content     string    `json:"content"`
	Mentions    []string  `json:"mentions"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy"`
}

// CreateNoteRequest is the payload for adding a note.
type CreateNoteRequest struct {
	Content   string `json:"content" validate:"required,min=1,max=10000"`
	CreatedBy string `json:"createdBy,omitempty" validate:"max=200"`
}

// Validate validates the CreateNoteRequest using the validator.
func (r *CreateNoteRequest) Validate() error {
	return validate.Struct(r)
}

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// ExtractMentions returns the @name tokens in content, without the @, in order of appearance.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	mentions := make([]string, 0, len(matches))
	for _, m := range matches {
		mentions = append(mentions, m[1])
	}
	return mentions
}
