// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/talentflow/internal/assessment"
	"github.com/jonathan/talentflow/internal/board"
	"github.com/jonathan/talentflow/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 25
)

// Printer handles formatted output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func moreLine(sb *strings.Builder, total, shown int, noun string) {
	if total > shown {
		fmt.Fprintf(sb, "\n... and %d more %s", total-shown, noun)
	}
}

// PrintJobs outputs one page of jobs in board order.
func (p *Printer) PrintJobs(page *types.Page[types.Job]) {
	if page == nil {
		return
	}

	var sb strings.Builder
	pg := page.Pagination
	fmt.Fprintf(&sb, "Page %d of %d  (%d jobs)\n", pg.Page, max(pg.TotalPages, 1), pg.Total)
	if len(page.Data) == 0 {
		sb.WriteString("\nNo jobs found.")
	}
	for _, j := range page.Data {
		marker := " "
		if j.Status == types.JobStatusArchived {
			marker = "▪"
		}
		fmt.Fprintf(&sb, "\n%s %3d  %-30s %s", marker, j.Order, truncate(j.Title, 30), strings.Join(j.Tags, ", "))
	}
	if len(page.Data) > 0 {
		sb.WriteString("\n\n▪ archived")
	}

	p.printBox("JOBS", sb.String())
}

// PrintJob outputs the details of one job.
func (p *Printer) PrintJob(job *types.Job) {
	if job == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "ID:      %s\n", job.ID)
	fmt.Fprintf(&sb, "Slug:    %s\n", job.Slug)
	fmt.Fprintf(&sb, "Status:  %s\n", job.Status)
	fmt.Fprintf(&sb, "Order:   %d\n", job.Order)
	if len(job.Tags) > 0 {
		fmt.Fprintf(&sb, "Tags:    %s\n", strings.Join(job.Tags, ", "))
	}
	if job.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", job.Description)
	}

	p.printBox(strings.ToUpper(job.Title), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidates outputs one page of candidates.
func (p *Printer) PrintCandidates(page *types.Page[types.Candidate]) {
	if page == nil {
		return
	}

	var sb strings.Builder
	pg := page.Pagination
	fmt.Fprintf(&sb, "Page %d of %d  (%d candidates)\n", pg.Page, max(pg.TotalPages, 1), pg.Total)
	if len(page.Data) == 0 {
		sb.WriteString("\nNo candidates found.")
	}
	count := min(len(page.Data), maxItemsToShow)
	for _, c := range page.Data[:count] {
		fmt.Fprintf(&sb, "\n%-24s %-32s %s", truncate(c.Name, 24), truncate(c.Email, 32), c.Stage.Label())
	}
	moreLine(&sb, len(page.Data), count, "on this page")

	p.printBox("CANDIDATES", sb.String())
}

// PrintKanban outputs the number of candidates in each stage.
func (p *Printer) PrintKanban(counts map[types.Stage]int) {
	var sb strings.Builder
	total := 0
	for _, st := range types.Stages {
		total += counts[st]
	}
	for _, st := range types.Stages {
		bar := ""
		if total > 0 {
			bar = strings.Repeat("█", counts[st]*40/total)
		}
		fmt.Fprintf(&sb, "%-10s %5d  %s\n", st.Label(), counts[st], bar)
	}
	fmt.Fprintf(&sb, "\nTotal: %d", total)

	p.printBox("PIPELINE", sb.String())
}

// PrintTimeline outputs a candidate's stage history.
func (p *Printer) PrintTimeline(c *types.Candidate, entries []types.TimelineEntry) {
	if c == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <%s>\nCurrent stage: %s\n", c.Name, c.Email, c.Stage.Label())
	for _, e := range entries {
		from := "—"
		if e.FromStage != nil {
			from = e.FromStage.Label()
		}
		fmt.Fprintf(&sb, "\n%s  %s → %s", e.Timestamp.Format("2006-01-02 15:04"), from, e.ToStage.Label())
	}

	p.printBox("TIMELINE", sb.String())
}

// PrintNotice outputs the result of a board change.
func (p *Printer) PrintNotice(n *board.Notice) {
	if n == nil {
		return
	}
	icon := "✓"
	if n.Kind == board.NoticeError {
		icon = "✗"
	}
	p.printBox(icon+" "+n.Title, n.Description)
}

// PrintAssessment outputs the questions of an assessment that are visible for
// the given answers, marking required questions still unanswered.
func (p *Printer) PrintAssessment(a *types.Assessment, answers types.Answers) {
	if a == nil {
		return
	}

	missing := map[string]bool{}
	for _, id := range assessment.Unanswered(a, answers) {
		missing[id] = true
	}

	var sb strings.Builder
	for i, s := range a.Sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s\n", s.Title)
		for _, q := range s.Questions {
			if !assessment.Visible(q, answers) {
				continue
			}
			mark := " "
			switch {
			case missing[q.ID]:
				mark = "!"
			case q.Required:
				mark = "*"
			}
			fmt.Fprintf(&sb, " %s %-4s %s\n", mark, q.ID, q.Label)
			if len(q.Options) > 0 {
				fmt.Fprintf(&sb, "        [%s]\n", strings.Join(q.Options, " | "))
			}
		}
	}
	sb.WriteString("\n* required   ! required and unanswered")

	p.printBox(strings.ToUpper(a.Title), sb.String())
}

// PrintFieldErrors outputs validation messages keyed by field or question id.
func (p *Printer) PrintFieldErrors(title string, fields map[string]string) {
	if len(fields) == 0 {
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%-12s %s", k, fields[k])
	}
	p.printBox(title, sb.String())
}

// PrintSummary outputs a one-line result in a box.
func (p *Printer) PrintSummary(title string, summary fmt.Stringer) {
	p.printBox(title, summary.String())
}

// PrintNotes outputs notes in the order given (the API lists newest first).
func (p *Printer) PrintNotes(notes []types.CandidateNote) {
	var sb strings.Builder
	if len(notes) == 0 {
		sb.WriteString("No notes yet.")
	}
	count := min(len(notes), maxItemsToShow)
	for i, n := range notes[:count] {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%s  %s\n%s", n.CreatedAt.Format("2006-01-02 15:04"), n.CreatedBy, n.Content)
		if len(n.Mentions) > 0 {
			fmt.Fprintf(&sb, "\n  mentions: @%s", strings.Join(n.Mentions, ", @"))
		}
	}
	moreLine(&sb, len(notes), count, "notes")

	p.printBox(fmt.Sprintf("NOTES (%d)", len(notes)), sb.String())
}

// PrintResponses outputs the submissions to an assessment.
func (p *Printer) PrintResponses(responses []types.AssessmentResponse) {
	var sb strings.Builder
	if len(responses) == 0 {
		sb.WriteString("No responses yet.")
	}
	count := min(len(responses), maxItemsToShow)
	for i, r := range responses[:count] {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s  %-16s %d answers", r.SubmittedAt.Format("2006-01-02 15:04"), r.CandidateID, len(r.Responses))
	}
	moreLine(&sb, len(responses), count, "responses")

	p.printBox("RESPONSES", sb.String())
}
