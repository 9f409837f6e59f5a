package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/talentflow/internal/board"
	"github.com/jonathan/talentflow/internal/types"
	"github.com/spf13/cobra"
)

var (
	candSearch   string
	candStage    string
	candJobID    string
	candPage     int
	candPageSize int

	noteAuthor string
)

var candidatesCmd = &cobra.Command{
	Use:     "candidates",
	Aliases: []string{"cand"},
	Short:   "Browse candidates and move them through the pipeline",
}

var candidatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of candidates",
	Args:  cobra.NoArgs,
	RunE:  runCandidatesList,
}

var candidatesPipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Show how many candidates are in each stage",
	Args:  cobra.NoArgs,
	RunE:  runCandidatesPipeline,
}

var candidatesMoveCmd = &cobra.Command{
	Use:   "move <candidate-id> <stage>",
	Short: "Move a candidate to another stage",
	Long:  "Moves a candidate to one of: " + stageList() + ".",
	Args:  cobra.ExactArgs(2),
	RunE:  runCandidatesMove,
}

var candidatesTimelineCmd = &cobra.Command{
	Use:   "timeline <candidate-id>",
	Short: "Show a candidate's stage history",
	Args:  cobra.ExactArgs(1),
	RunE:  runCandidatesTimeline,
}

var candidatesNotesCmd = &cobra.Command{
	Use:   "notes <candidate-id>",
	Short: "List the notes on a candidate",
	Args:  cobra.ExactArgs(1),
	RunE:  runCandidatesNotes,
}

var candidatesNoteCmd = &cobra.Command{
	Use:   "note <candidate-id> <text...>",
	Short: "Add a note to a candidate; @name mentions are recorded",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCandidatesNote,
}

func stageList() string {
	names := make([]string, len(types.Stages))
	for i, s := range types.Stages {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func addCandidateQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&candSearch, "search", "s", "", "Case-insensitive name or email search")
	cmd.Flags().StringVar(&candStage, "stage", "", "Filter by stage: "+stageList())
	cmd.Flags().StringVar(&candJobID, "job", "", "Filter by job id")
}

func init() {
	addCandidateQueryFlags(candidatesListCmd)
	candidatesListCmd.Flags().IntVarP(&candPage, "page", "p", 1, "Page number")
	candidatesListCmd.Flags().IntVar(&candPageSize, "page-size", types.DefaultCandidatePageSize, "Candidates per page")
	addCandidateQueryFlags(candidatesPipelineCmd)

	candidatesNoteCmd.Flags().StringVar(&noteAuthor, "author", "", "Note author (default Current User)")

	candidatesCmd.AddCommand(candidatesListCmd, candidatesPipelineCmd, candidatesMoveCmd,
		candidatesTimelineCmd, candidatesNotesCmd, candidatesNoteCmd)
	rootCmd.AddCommand(candidatesCmd)
}

func candidateQuery() (types.CandidateQuery, error) {
	q := types.CandidateQuery{
		Search:   candSearch,
		JobID:    candJobID,
		Page:     candPage,
		PageSize: candPageSize,
	}
	if candStage != "" {
		st, err := types.ParseStage(candStage)
		if err != nil {
			return q, err
		}
		q.Stage = st
	}
	return q, nil
}

func runCandidatesList(cmd *cobra.Command, _ []string) error {
	q, err := candidateQuery()
	if err != nil {
		return err
	}
	c, p, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	page, err := c.ListCandidates(context.Background(), q)
	if err != nil {
		return fmt.Errorf("failed to list candidates: %w", err)
	}
	p.PrintCandidates(page)
	return nil
}

func runCandidatesPipeline(cmd *cobra.Command, _ []string) error {
	q, err := candidateQuery()
	if err != nil {
		return err
	}
	c, p, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	k := board.NewKanban(c, q)
	if err := k.Load(context.Background()); err != nil {
		return fmt.Errorf("failed to load candidates: %w", err)
	}
	p.PrintKanban(k.Counts())
	return nil
}

func runCandidatesMove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	stage, err := types.ParseStage(args[1])
	if err != nil {
		return err
	}
	c, p, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	// The board only needs the candidate being moved.
	current, err := c.GetCandidate(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get candidate: %w", err)
	}
	k := board.NewKanban(c, types.CandidateQuery{JobID: current.JobID, Search: current.Email})
	if err := k.Load(ctx); err != nil {
		return fmt.Errorf("failed to load candidates: %w", err)
	}

	notice, err := k.MoveCandidate(ctx, current.ID, stage)
	p.PrintNotice(notice)
	if err != nil {
		return err
	}
	if notice == nil {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is already in %s.\n", current.Name, stage.Label())
	}
	return nil
}

func runCandidatesTimeline(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c, p, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	cand, err := c.GetCandidate(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get candidate: %w", err)
	}
	entries, err := c.Timeline(ctx, cand.ID)
	if err != nil {
		return fmt.Errorf("failed to get timeline: %w", err)
	}
	p.PrintTimeline(cand, entries)
	return nil
}

func runCandidatesNotes(cmd *cobra.Command, args []string) error {
	c, p, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	notes, err := c.ListNotes(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}
	p.PrintNotes(notes)
	return nil
}

func runCandidatesNote(cmd *cobra.Command, args []string) error {
	c, p, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	note, err := c.AddNote(context.Background(), args[0], &types.CreateNoteRequest{
		Content:   strings.Join(args[1:], " "),
		CreatedBy: noteAuthor,
	})
	if err != nil {
		printAPIFields(p, err)
		return fmt.Errorf("failed to add note: %w", err)
	}
	p.PrintNotes([]types.CandidateNote{*note})
	return nil
}
