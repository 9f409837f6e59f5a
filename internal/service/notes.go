package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/talentflow/internal/db"
	"github.com/jonathan/talentflow/internal/events"
	"github.com/jonathan/talentflow/internal/types"
)

// DefaultNoteAuthor is recorded when a note is added without an author.
const DefaultNoteAuthor = "Current User"

// ListNotes returns a candidate's notes, newest first.
func (s *Service) ListNotes(ctx context.Context, candidateID string) ([]types.CandidateNote, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	notes, err := s.notes.Where(ctx, "candidateId", candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes, nil
}

// AddNote appends a note to a candidate, extracting @mentions from its content.
func (s *Service) AddNote(ctx context.Context, candidateID string, req *types.CreateNoteRequest) (*types.CandidateNote, error) {
	if err := s.beginWrite(ctx, "add note"); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, invalid("invalid note", err)
	}
	if _, err := s.loadCandidate(ctx, candidateID); err != nil {
		return nil, err
	}

	author := strings.TrimSpace(req.CreatedBy)
	if author == "" {
		author = DefaultNoteAuthor
	}
	note := &types.CandidateNote{
		ID:          s.newID(),
		CandidateID: candidateID,
		Content:     req.Content,
		Mentions:    types.ExtractMentions(req.Content),
		CreatedAt:   s.now(),
		CreatedBy:   author,
	}
	if err := s.notes.Put(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}
	s.changed(ctx, db.CandidateNotes, events.NoteAdded, note.ID)
	return note, nil
}
