package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/talentflow/internal/assessment"
	"github.com/jonathan/talentflow/internal/client"
	"github.com/jonathan/talentflow/internal/observability"
	"github.com/jonathan/talentflow/internal/schemas"
	"github.com/jonathan/talentflow/internal/types"
	embedded "github.com/jonathan/talentflow/schemas"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	answersFile     string
	submitCandidate string
	definitionFile  string
)

var assessmentCmd = &cobra.Command{
	Use:     "assessment",
	Aliases: []string{"assessments"},
	Short:   "Preview, check and submit job assessments",
}

var assessmentShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show the questions of a job's assessment",
	Long: `Shows the questions of a job's assessment. With --answers, only questions visible
for those answers are listed and required questions still unanswered are flagged.`,
	Args: cobra.ExactArgs(1),
	RunE: runAssessmentShow,
}

var assessmentSaveCmd = &cobra.Command{
	Use:   "save <job-id>",
	Short: "Create or replace a job's assessment from a JSON file",
	Long: `Creates or replaces a job's assessment. The file holds the title and sections;
it is checked against the assessment schema before anything is sent.`,
	Args: cobra.ExactArgs(1),
	RunE: runAssessmentSave,
}

var assessmentCheckCmd = &cobra.Command{
	Use:   "check <job-id>",
	Short: "Validate an answers file without submitting it",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssessmentCheck,
}

var assessmentSubmitCmd = &cobra.Command{
	Use:   "submit <job-id>",
	Short: "Submit an answers file for a candidate",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssessmentSubmit,
}

var assessmentResponsesCmd = &cobra.Command{
	Use:   "responses <job-id>",
	Short: "List the submissions to a job's assessment",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssessmentResponses,
}

func init() {
	assessmentShowCmd.Flags().StringVarP(&answersFile, "answers", "a", "", "JSON or YAML file mapping question ids to answers")
	assessmentCheckCmd.Flags().StringVarP(&answersFile, "answers", "a", "", "JSON or YAML file mapping question ids to answers (required)")
	assessmentSubmitCmd.Flags().StringVarP(&answersFile, "answers", "a", "", "JSON or YAML file mapping question ids to answers (required)")
	assessmentSubmitCmd.Flags().StringVar(&submitCandidate, "candidate", "", "Candidate id (required)")
	assessmentSaveCmd.Flags().StringVarP(&definitionFile, "file", "f", "", "JSON file with the assessment title and sections (required)")

	for _, c := range []*cobra.Command{assessmentCheckCmd, assessmentSubmitCmd} {
		if err := c.MarkFlagRequired("answers"); err != nil {
			panic(fmt.Sprintf("failed to mark answers flag as required: %v", err))
		}
	}
	if err := assessmentSubmitCmd.MarkFlagRequired("candidate"); err != nil {
		panic(fmt.Sprintf("failed to mark candidate flag as required: %v", err))
	}
	if err := assessmentSaveCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}

	assessmentCmd.AddCommand(assessmentShowCmd, assessmentSaveCmd, assessmentCheckCmd, assessmentSubmitCmd, assessmentResponsesCmd)
	rootCmd.AddCommand(assessmentCmd)
}

// loadAnswers reads an answers file. Files ending in .yaml or .yml are parsed
// as YAML, anything else as JSON.
func loadAnswers(path string) (types.Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers file: %w", err)
	}

	answers := types.Answers{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &answers)
	default:
		err = json.Unmarshal(data, &answers)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse answers file %s: %w", path, err)
	}
	return answers, nil
}

func fetchAssessment(ctx context.Context, c *client.Client, jobID string) (*types.Assessment, error) {
	a, err := c.GetAssessment(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("job %s has no assessment", jobID)
	}
	return a, nil
}

// printAPIFields prints per-field messages carried by a validation failure, if any.
func printAPIFields(p *observability.Printer, err error) {
	var ve *assessment.ValidationError
	if errors.As(err, &ve) {
		p.PrintFieldErrors("✗ INVALID ANSWERS", ve.Fields())
		return
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		p.PrintFieldErrors("✗ "+strings.ToUpper(apiErr.Message), apiErr.Fields)
	}
}

func runAssessmentShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	answers := types.Answers{}
	if answersFile != "" {
		var err error
		if answers, err = loadAnswers(answersFile); err != nil {
			return err
		}
	}

	c, p, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	a, err := fetchAssessment(ctx, c, args[0])
	if err != nil {
		return err
	}
	p.PrintAssessment(a, answers)
	return nil
}

func runAssessmentSave(cmd *cobra.Command, args []string) error {
	c, p, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	if err := schemas.ValidateFile(embedded.Assessment, definitionFile); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			p.PrintFieldErrors("✗ INVALID ASSESSMENT", ve.Fields())
			return errors.New("assessment definition is not valid")
		}
		return err
	}
	data, err := os.ReadFile(definitionFile)
	if err != nil {
		return fmt.Errorf("failed to read assessment file: %w", err)
	}
	var req types.SaveAssessmentRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("failed to parse assessment file %s: %w", definitionFile, err)
	}

	a, err := c.SaveAssessment(context.Background(), args[0], &req)
	if err != nil {
		printAPIFields(p, err)
		return fmt.Errorf("failed to save assessment: %w", err)
	}
	p.PrintAssessment(a, types.Answers{})
	return nil
}

func runAssessmentCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	answers, err := loadAnswers(answersFile)
	if err != nil {
		return err
	}

	c, p, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	a, err := fetchAssessment(ctx, c, args[0])
	if err != nil {
		return err
	}

	if err := assessment.Validate(a, answers); err != nil {
		printAPIFields(p, err)
		return errors.New("answers are not valid")
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Answers are valid for %q\n", a.Title)
	return nil
}

func runAssessmentSubmit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	answers, err := loadAnswers(answersFile)
	if err != nil {
		return err
	}

	c, p, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	a, err := fetchAssessment(ctx, c, args[0])
	if err != nil {
		return err
	}

	resp, err := c.SubmitAssessment(ctx, a, submitCandidate, answers)
	if err != nil {
		printAPIFields(p, err)
		return fmt.Errorf("failed to submit assessment: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Submitted response %s for candidate %s\n", resp.ID, resp.CandidateID)
	return nil
}

func runAssessmentResponses(cmd *cobra.Command, args []string) error {
	c, p, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	responses, err := c.ListResponses(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list responses: %w", err)
	}
	p.PrintResponses(responses)
	return nil
}
