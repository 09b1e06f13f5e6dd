package models

import (
	"time"

	"github.com/google/uuid"

	"screenflow/internal/screening"
)

// Candidate identifies the applicant behind an email.
type Candidate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ApplicationEmail is one unit of work pulled from the inbox.
type ApplicationEmail struct {
	MessageID  string    `json:"message_id"`
	Candidate  Candidate `json:"candidate"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
	// ResumePath and ResumeText are filled when the email carried a resume
	// attachment. The resume is archived and summarized but never screened.
	ResumePath string `json:"resume_path,omitempty"`
	ResumeText string `json:"-"`
}

// ScreeningRecord is the immutable outcome of screening one application. It
// is what gets appended to the tracker sheet and returned by the report API.
type ScreeningRecord struct {
	ID         string           `json:"id"`
	Candidate  Candidate        `json:"candidate"`
	Subject    string           `json:"subject"`
	Result     screening.Result `json:"result"`
	ResumePath string           `json:"resume_path,omitempty"`
	Note       string           `json:"note,omitempty"`
	ScreenedAt time.Time        `json:"screened_at"`
}

// NewScreeningRecord stamps a fresh record for a screened application.
func NewScreeningRecord(app ApplicationEmail, result screening.Result) ScreeningRecord {
	return ScreeningRecord{
		ID:         uuid.NewString(),
		Candidate:  app.Candidate,
		Subject:    app.Subject,
		Result:     result,
		ResumePath: app.ResumePath,
		ScreenedAt: time.Now().UTC(),
	}
}

// CycleStats summarizes a single processing cycle.
type CycleStats struct {
	Fetched     int `json:"fetched"`
	Processed   int `json:"processed"`
	Matched     int `json:"matched"`
	Rejected    int `json:"rejected"`
	RepliesSent int `json:"replies_sent"`
	Errors      int `json:"errors"`
}

// WorkflowStats accumulates counts across the lifetime of the workflow.
type WorkflowStats struct {
	TotalProcessed     int       `json:"total_processed"`
	MatchedCandidates  int       `json:"matched_candidates"`
	RejectedCandidates int       `json:"rejected_candidates"`
	EmailsSent         int       `json:"emails_sent"`
	Errors             int       `json:"errors"`
	LastCycleAt        time.Time `json:"last_cycle_at"`
}

// Add folds a cycle's counts into the running totals.
func (s *WorkflowStats) Add(c CycleStats) {
	s.TotalProcessed += c.Processed
	s.MatchedCandidates += c.Matched
	s.RejectedCandidates += c.Rejected
	s.EmailsSent += c.RepliesSent
	s.Errors += c.Errors
	s.LastCycleAt = time.Now().UTC()
}
