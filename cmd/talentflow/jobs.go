package main

import (
	"context"
	"fmt"

	"github.com/jonathan/talentflow/internal/board"
	"github.com/jonathan/talentflow/internal/types"
	"github.com/spf13/cobra"
)

var (
	jobsSearch   string
	jobsStatus   string
	jobsSort     string
	jobsPage     int
	jobsPageSize int

	jobTitle       string
	jobTags        []string
	jobDescription string
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List, create and reorder job postings",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of jobs",
	Args:  cobra.NoArgs,
	RunE:  runJobsList,
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

var jobsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a job at the end of the board",
	Args:  cobra.NoArgs,
	RunE:  runJobsCreate,
}

var jobsArchiveCmd = &cobra.Command{
	Use:   "archive <job-id>",
	Short: "Archive a job",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setJobStatus(cmd, args[0], types.JobStatusArchived) },
}

var jobsUnarchiveCmd = &cobra.Command{
	Use:   "unarchive <job-id>",
	Short: "Make an archived job active again",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setJobStatus(cmd, args[0], types.JobStatusActive) },
}

var jobsMoveCmd = &cobra.Command{
	Use:   "move <job-id> <onto-job-id>",
	Short: "Move a job to the position of another job on the same page",
	Long: `Drops the first job onto the second, as dragging a card on the board does. The
jobs between them shift by one. Both jobs must be on the page selected by the
list flags.`,
	Args: cobra.ExactArgs(2),
	RunE: runJobsMove,
}

func addJobQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&jobsSearch, "search", "s", "", "Case-insensitive title search")
	cmd.Flags().StringVar(&jobsStatus, "status", "", "Filter by status: active or archived")
	cmd.Flags().StringVar(&jobsSort, "sort", "", "Sort by order or title (default order)")
	cmd.Flags().IntVarP(&jobsPage, "page", "p", 1, "Page number")
	cmd.Flags().IntVar(&jobsPageSize, "page-size", types.DefaultJobPageSize, "Jobs per page")
}

func init() {
	addJobQueryFlags(jobsListCmd)
	addJobQueryFlags(jobsMoveCmd)

	jobsCreateCmd.Flags().StringVarP(&jobTitle, "title", "t", "", "Job title (required)")
	jobsCreateCmd.Flags().StringSliceVar(&jobTags, "tag", nil, "Tag, may be repeated")
	jobsCreateCmd.Flags().StringVarP(&jobDescription, "description", "d", "", "Job description")
	if err := jobsCreateCmd.MarkFlagRequired("title"); err != nil {
		panic(fmt.Sprintf("failed to mark title flag as required: %v", err))
	}

	jobsCmd.AddCommand(jobsListCmd, jobsShowCmd, jobsCreateCmd, jobsArchiveCmd, jobsUnarchiveCmd, jobsMoveCmd)
	rootCmd.AddCommand(jobsCmd)
}

func jobQuery() types.JobQuery {
	return types.JobQuery{
		Search:   jobsSearch,
		Status:   types.JobStatus(jobsStatus),
		Sort:     types.JobSort(jobsSort),
		Page:     jobsPage,
		PageSize: jobsPageSize,
	}
}

func runJobsList(cmd *cobra.Command, _ []string) error {
	c, p, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	page, err := c.ListJobs(context.Background(), jobQuery())
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}
	p.PrintJobs(page)
	return nil
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	c, p, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	job, err := c.GetJob(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}
	p.PrintJob(job)
	return nil
}

func runJobsCreate(cmd *cobra.Command, _ []string) error {
	c, p, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	job, err := c.CreateJob(context.Background(), &types.CreateJobRequest{
		Title:       jobTitle,
		Tags:        jobTags,
		Description: jobDescription,
	})
	if err != nil {
		printAPIFields(p, err)
		return fmt.Errorf("failed to create job: %w", err)
	}
	p.PrintJob(job)
	return nil
}

func setJobStatus(cmd *cobra.Command, id string, status types.JobStatus) error {
	c, p, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	job, err := c.UpdateJob(context.Background(), id, &types.JobPatch{Status: &status})
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	p.PrintJob(job)
	return nil
}

func runJobsMove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c, p, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	b := board.NewJobBoard(c, jobQuery())
	if err := b.Load(ctx); err != nil {
		return fmt.Errorf("failed to load jobs: %w", err)
	}

	notice, err := b.Move(ctx, args[0], args[1])
	p.PrintNotice(notice)
	if err != nil {
		return err
	}
	if notice == nil {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Nothing to move.")
		return nil
	}
	page := b.Page()
	p.PrintJobs(&page)
	return nil
}
