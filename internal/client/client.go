// Package client is a typed HTTP client for the talentflow REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/talentflow/internal/assessment"
	"github.com/jonathan/talentflow/internal/types"
)

// DefaultTimeout is the default HTTP request timeout. It covers the server's
// simulated latency with room to spare.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent is the user agent string for API requests.
const DefaultUserAgent = "talentflow-client/1.0"

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Options configures the client.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client talks to one talentflow server.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), userAgent: ua, http: hc}, nil
}

// do sends a request and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
			apiErr.Fields = eb.Fields
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func pageQuery(page, pageSize int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	return q
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

// ListJobs returns one page of jobs.
func (c *Client) ListJobs(ctx context.Context, q types.JobQuery) (*types.Page[types.Job], error) {
	values := pageQuery(q.Page, q.PageSize)
	setIf(values, "search", q.Search)
	setIf(values, "status", string(q.Status))
	setIf(values, "sort", string(q.Sort))

	var page types.Page[types.Job]
	if err := c.do(ctx, http.MethodGet, "/api/jobs", values, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetJob fetches one job.
func (c *Client) GetJob(ctx context.Context, id string) (*types.Job, error) {
	var job types.Job
	if err := c.do(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(id), nil, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJob adds a job.
func (c *Client) CreateJob(ctx context.Context, req *types.CreateJobRequest) (*types.Job, error) {
	var job types.Job
	if err := c.do(ctx, http.MethodPost, "/api/jobs", nil, req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateJob applies a partial update to a job.
func (c *Client) UpdateJob(ctx context.Context, id string, patch *types.JobPatch) (*types.Job, error) {
	var job types.Job
	if err := c.do(ctx, http.MethodPatch, "/api/jobs/"+url.PathEscape(id), nil, patch, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ReorderJob moves a job from one order value to another.
func (c *Client) ReorderJob(ctx context.Context, id string, from, to int) (*types.Job, error) {
	var job types.Job
	body := types.ReorderRequest{FromOrder: from, ToOrder: to}
	if err := c.do(ctx, http.MethodPatch, "/api/jobs/"+url.PathEscape(id)+"/reorder", nil, body, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListCandidates returns one page of candidates.
func (c *Client) ListCandidates(ctx context.Context, q types.CandidateQuery) (*types.Page[types.Candidate], error) {
	values := pageQuery(q.Page, q.PageSize)
	setIf(values, "search", q.Search)
	setIf(values, "stage", string(q.Stage))
	setIf(values, "jobId", q.JobID)

	var page types.Page[types.Candidate]
	if err := c.do(ctx, http.MethodGet, "/api/candidates", values, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetCandidate fetches one candidate.
func (c *Client) GetCandidate(ctx context.Context, id string) (*types.Candidate, error) {
	var cand types.Candidate
	if err := c.do(ctx, http.MethodGet, "/api/candidates/"+url.PathEscape(id), nil, nil, &cand); err != nil {
		return nil, err
	}
	return &cand, nil
}

// CreateCandidate adds a candidate.
func (c *Client) CreateCandidate(ctx context.Context, req *types.CreateCandidateRequest) (*types.Candidate, error) {
	var cand types.Candidate
	if err := c.do(ctx, http.MethodPost, "/api/candidates", nil, req, &cand); err != nil {
		return nil, err
	}
	return &cand, nil
}

// UpdateCandidate applies a partial update to a candidate.
func (c *Client) UpdateCandidate(ctx context.Context, id string, patch *types.CandidatePatch) (*types.Candidate, error) {
	var cand types.Candidate
	if err := c.do(ctx, http.MethodPatch, "/api/candidates/"+url.PathEscape(id), nil, patch, &cand); err != nil {
		return nil, err
	}
	return &cand, nil
}

// MoveCandidate changes a candidate's stage.
func (c *Client) MoveCandidate(ctx context.Context, id string, stage types.Stage) (*types.Candidate, error) {
	return c.UpdateCandidate(ctx, id, &types.CandidatePatch{Stage: &stage})
}

// Timeline returns a candidate's stage history, oldest first.
func (c *Client) Timeline(ctx context.Context, candidateID string) ([]types.TimelineEntry, error) {
	var out []types.TimelineEntry
	if err := c.do(ctx, http.MethodGet, "/api/candidates/"+url.PathEscape(candidateID)+"/timeline", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListNotes returns a candidate's notes, newest first.
func (c *Client) ListNotes(ctx context.Context, candidateID string) ([]types.CandidateNote, error) {
	var out []types.CandidateNote
	if err := c.do(ctx, http.MethodGet, "/api/candidates/"+url.PathEscape(candidateID)+"/notes", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddNote adds a note to a candidate.
func (c *Client) AddNote(ctx context.Context, candidateID string, req *types.CreateNoteRequest) (*types.CandidateNote, error) {
	var note types.CandidateNote
	if err := c.do(ctx, http.MethodPost, "/api/candidates/"+url.PathEscape(candidateID)+"/notes", nil, req, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// GetAssessment returns a job's assessment, or nil when it has none.
func (c *Client) GetAssessment(ctx context.Context, jobID string) (*types.Assessment, error) {
	var a *types.Assessment
	if err := c.do(ctx, http.MethodGet, "/api/assessments/"+url.PathEscape(jobID), nil, nil, &a); err != nil {
		return nil, err
	}
	return a, nil
}

// SaveAssessment creates or replaces a job's assessment.
func (c *Client) SaveAssessment(ctx context.Context, jobID string, req *types.SaveAssessmentRequest) (*types.Assessment, error) {
	var a types.Assessment
	if err := c.do(ctx, http.MethodPut, "/api/assessments/"+url.PathEscape(jobID), nil, req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// SubmitAssessment validates answers against a and submits them. When local
// validation fails the *assessment.ValidationError is returned and nothing is sent.
func (c *Client) SubmitAssessment(ctx context.Context, a *types.Assessment, candidateID string, answers types.Answers) (*types.AssessmentResponse, error) {
	if err := assessment.Validate(a, answers); err != nil {
		return nil, err
	}
	req := &types.SubmitResponseRequest{AssessmentID: a.ID, CandidateID: candidateID, Responses: answers}

	var resp types.AssessmentResponse
	if err := c.do(ctx, http.MethodPost, "/api/assessments/"+url.PathEscape(a.JobID)+"/submit", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListResponses returns the submissions to a job's assessment.
func (c *Client) ListResponses(ctx context.Context, jobID string) ([]types.AssessmentResponse, error) {
	var out []types.AssessmentResponse
	if err := c.do(ctx, http.MethodGet, "/api/assessments/"+url.PathEscape(jobID)+"/responses", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
