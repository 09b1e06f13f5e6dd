package models

import (
	"encoding/json"
	"testing"

	"screenflow/internal/screening"
)

func TestNewScreeningRecord(t *testing.T) {
	app := ApplicationEmail{
		MessageID: "msg-1",
		Candidate: Candidate{Name: "John Doe", Email: "john.doe@example.com"},
		Subject:   "Application for Python Developer Position",
	}
	result := screening.Result{
		Matched: []string{"Mid-level", "Python"},
		Count:   2,
		IsMatch: true,
	}

	rec := NewScreeningRecord(app, result)

	if rec.ID == "" {
		t.Errorf("expected record to be assigned an ID")
	}
	if rec.Candidate != app.Candidate {
		t.Errorf("Candidate = %+v, want %+v", rec.Candidate, app.Candidate)
	}
	if rec.Subject != app.Subject {
		t.Errorf("Subject = %q, want %q", rec.Subject, app.Subject)
	}
	if !rec.Result.IsMatch {
		t.Errorf("expected result to carry the match verdict")
	}
	if rec.ScreenedAt.IsZero() {
		t.Errorf("expected ScreenedAt to be stamped")
	}
}

func TestScreeningRecordSerialization(t *testing.T) {
	rec := ScreeningRecord{
		ID:        "rec-1",
		Candidate: Candidate{Name: "Jane", Email: "jane@example.com"},
		Subject:   "Application",
		Result: screening.Result{
			Matched:         []string{"Python"},
			MatchedVariants: map[string][]string{"Python": {"django"}},
			Count:           1,
		},
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("failed to marshal ScreeningRecord: %v", err)
	}

	var decoded ScreeningRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal ScreeningRecord: %v", err)
	}

	if decoded.Candidate.Email != rec.Candidate.Email {
		t.Errorf("Email = %q, want %q", decoded.Candidate.Email, rec.Candidate.Email)
	}
	if len(decoded.Result.Matched) != 1 || decoded.Result.Matched[0] != "Python" {
		t.Errorf("Matched = %v, want [Python]", decoded.Result.Matched)
	}
}

func TestWorkflowStatsAdd(t *testing.T) {
	var stats WorkflowStats

	stats.Add(CycleStats{Processed: 3, Matched: 1, Rejected: 2, RepliesSent: 3})
	stats.Add(CycleStats{Processed: 2, Matched: 2, RepliesSent: 1, Errors: 1})

	if stats.TotalProcessed != 5 {
		t.Errorf("TotalProcessed = %d, want 5", stats.TotalProcessed)
	}
	if stats.MatchedCandidates != 3 {
		t.Errorf("MatchedCandidates = %d, want 3", stats.MatchedCandidates)
	}
	if stats.RejectedCandidates != 2 {
		t.Errorf("RejectedCandidates = %d, want 2", stats.RejectedCandidates)
	}
	if stats.EmailsSent != 4 {
		t.Errorf("EmailsSent = %d, want 4", stats.EmailsSent)
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
	if stats.LastCycleAt.IsZero() {
		t.Errorf("expected LastCycleAt to be updated")
	}
}
