package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"screenflow/internal/models"
	"screenflow/internal/screening"
)

type fakeWorkflow struct {
	stats        models.WorkflowStats
	records      []models.ScreeningRecord
	hasTracker   bool
	matchedRows  int
	rejectedRows int
}

func (f *fakeWorkflow) Stats() models.WorkflowStats       { return f.stats }
func (f *fakeWorkflow) Records() []models.ScreeningRecord { return f.records }
func (f *fakeWorkflow) Keywords() []string                { return []string{"Mid-level", "Python", "GenAI"} }
func (f *fakeWorkflow) Threshold() int                    { return 2 }

func (f *fakeWorkflow) TrackerCounts(ctx context.Context) (int, int, bool) {
	return f.matchedRows, f.rejectedRows, f.hasTracker
}

func newTestServer(f *fakeWorkflow) *httptest.Server {
	return httptest.NewServer(NewServer(f, zap.NewNop()).Router())
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&fakeWorkflow{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestHandleStatus(t *testing.T) {
	f := &fakeWorkflow{
		stats: models.WorkflowStats{TotalProcessed: 5, MatchedCandidates: 2, RejectedCandidates: 3},
	}
	srv := newTestServer(f)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status failed: %v", err)
	}
	defer resp.Body.Close()

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode status response: %v", err)
	}

	if body.Stats.TotalProcessed != 5 {
		t.Errorf("TotalProcessed = %d, want 5", body.Stats.TotalProcessed)
	}
	if len(body.Keywords) != 3 {
		t.Errorf("Keywords = %v, want 3 entries", body.Keywords)
	}
	if body.Threshold != 2 {
		t.Errorf("Threshold = %d, want 2", body.Threshold)
	}
	if body.SheetRows != nil {
		t.Errorf("sheet_rows = %+v, want omitted without a tracker", body.SheetRows)
	}
}

type statusResponse struct {
	Stats     models.WorkflowStats `json:"stats"`
	Keywords  []string             `json:"keywords"`
	Threshold int                  `json:"threshold"`
	SheetRows *struct {
		Matched  int `json:"matched"`
		Rejected int `json:"rejected"`
	} `json:"sheet_rows"`
}

func TestHandleStatus_SheetRows(t *testing.T) {
	f := &fakeWorkflow{hasTracker: true, matchedRows: 4, rejectedRows: 9}
	srv := newTestServer(f)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status failed: %v", err)
	}
	defer resp.Body.Close()

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode status response: %v", err)
	}

	if body.SheetRows == nil {
		t.Fatal("sheet_rows missing from status payload")
	}
	if body.SheetRows.Matched != 4 || body.SheetRows.Rejected != 9 {
		t.Errorf("sheet_rows = %+v, want matched=4 rejected=9", body.SheetRows)
	}
}

func TestHandleReport(t *testing.T) {
	f := &fakeWorkflow{
		records: []models.ScreeningRecord{
			{
				ID:        "rec-1",
				Candidate: models.Candidate{Name: "John Doe", Email: "john.doe@example.com"},
				Result:    screening.Result{Matched: []string{"Python", "GenAI"}, Count: 2, IsMatch: true},
			},
		},
	}
	srv := newTestServer(f)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/report")
	if err != nil {
		t.Fatalf("GET /report failed: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Records []models.ScreeningRecord `json:"records"`
		Count   int                      `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode report response: %v", err)
	}

	if body.Count != 1 || len(body.Records) != 1 {
		t.Fatalf("report = %+v, want one record", body)
	}
	if body.Records[0].Candidate.Email != "john.doe@example.com" {
		t.Errorf("record email = %q", body.Records[0].Candidate.Email)
	}
}

func TestHandleReport_Empty(t *testing.T) {
	srv := newTestServer(&fakeWorkflow{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/report")
	if err != nil {
		t.Fatalf("GET /report failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 with no records", resp.StatusCode)
	}
}

func TestHandleMetrics(t *testing.T) {
	srv := newTestServer(&fakeWorkflow{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
