package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"screenflow/internal/config"
	"screenflow/internal/history"
	"screenflow/internal/models"
	"screenflow/internal/reply"
	"screenflow/internal/screening"
)

type fakeInbox struct {
	apps       []models.ApplicationEmail
	fetchErr   error
	markedRead []string
}

func (f *fakeInbox) FetchApplications(ctx context.Context, subjectFilter string, max int) ([]models.ApplicationEmail, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.apps) > max {
		return f.apps[:max], nil
	}
	return f.apps, nil
}

func (f *fakeInbox) MarkProcessed(ctx context.Context, messageID string) error {
	f.markedRead = append(f.markedRead, messageID)
	return nil
}

type fakeTracker struct {
	appended  []models.ScreeningRecord
	appendErr error
}

func (f *fakeTracker) Append(ctx context.Context, rec models.ScreeningRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, rec)
	return nil
}

type countingTracker struct {
	fakeTracker
	matchedRows  int
	rejectedRows int
	countErr     error
}

func (f *countingTracker) RowCounts(ctx context.Context) (int, int, error) {
	if f.countErr != nil {
		return 0, 0, f.countErr
	}
	return f.matchedRows, f.rejectedRows, nil
}

type fakeSender struct {
	sent []string
}

func (f *fakeSender) Enabled() bool { return true }

func (f *fakeSender) Send(to string, msg *reply.RenderedMessage) error {
	f.sent = append(f.sent, to)
	return nil
}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	return &config.Settings{
		SubjectFilter:         "application",
		MaxEmailsPerRun:       10,
		MinimumKeywordMatches: 2,
		CheckInterval:         time.Minute,
		Position:              "Python Developer",
		Company:               "Acme",
	}
}

func testEngine(t *testing.T) *screening.Engine {
	t.Helper()
	engine, err := screening.NewEngine(config.DefaultKeywords(), 2)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	return engine
}

func matchingApp(id string) models.ApplicationEmail {
	return models.ApplicationEmail{
		MessageID: id,
		Candidate: models.Candidate{Name: "John Doe", Email: "john.doe@example.com"},
		Subject:   "Application for Python Developer Position",
		Body:      "I am a mid-level developer with Python and GenAI experience.",
	}
}

func rejectedApp(id string) models.ApplicationEmail {
	return models.ApplicationEmail{
		MessageID: id,
		Candidate: models.Candidate{Name: "Jane Roe", Email: "jane.roe@example.com"},
		Subject:   "Application for a role",
		Body:      "Senior Java developer.",
	}
}

func TestRunSingleCycle_RoutesVerdicts(t *testing.T) {
	inbox := &fakeInbox{apps: []models.ApplicationEmail{matchingApp("m1"), rejectedApp("m2")}}
	tracker := &fakeTracker{}
	sender := &fakeSender{}

	orc := New(testSettings(t), testEngine(t), Deps{
		Inbox:   inbox,
		Tracker: tracker,
		Sender:  sender,
	})

	cycle, err := orc.RunSingleCycle(context.Background())
	if err != nil {
		t.Fatalf("RunSingleCycle() failed: %v", err)
	}

	if cycle.Processed != 2 || cycle.Matched != 1 || cycle.Rejected != 1 {
		t.Errorf("cycle = %+v, want 2 processed, 1 matched, 1 rejected", cycle)
	}
	if cycle.RepliesSent != 2 {
		t.Errorf("RepliesSent = %d, want 2 (both verdicts get a reply)", cycle.RepliesSent)
	}

	if len(tracker.appended) != 2 {
		t.Fatalf("tracker got %d records, want 2", len(tracker.appended))
	}
	if !tracker.appended[0].Result.IsMatch {
		t.Errorf("first record should be the match")
	}
	if tracker.appended[1].Result.IsMatch {
		t.Errorf("second record should be the rejection")
	}

	if len(sender.sent) != 2 {
		t.Errorf("sender delivered %d replies, want 2", len(sender.sent))
	}
	if len(inbox.markedRead) != 2 {
		t.Errorf("marked %d messages read, want 2", len(inbox.markedRead))
	}

	stats := orc.Stats()
	if stats.TotalProcessed != 2 || stats.MatchedCandidates != 1 || stats.RejectedCandidates != 1 {
		t.Errorf("stats = %+v, want totals reflecting the cycle", stats)
	}
}

func TestRunSingleCycle_HistoryPreventsReprocessing(t *testing.T) {
	hist, err := history.NewManager(filepath.Join(t.TempDir(), "processed.json"))
	if err != nil {
		t.Fatalf("NewManager() failed: %v", err)
	}

	inbox := &fakeInbox{apps: []models.ApplicationEmail{matchingApp("m1")}}
	tracker := &fakeTracker{}

	orc := New(testSettings(t), testEngine(t), Deps{
		Inbox:   inbox,
		Tracker: tracker,
		History: hist,
	})

	ctx := context.Background()
	if _, err := orc.RunSingleCycle(ctx); err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}

	// The message shows up again, e.g. because the unread label was not
	// removed in time.
	second, err := orc.RunSingleCycle(ctx)
	if err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}

	if second.Processed != 0 {
		t.Errorf("second cycle processed %d, want 0", second.Processed)
	}
	if len(tracker.appended) != 1 {
		t.Errorf("tracker got %d records, want 1 (no duplicate row)", len(tracker.appended))
	}
}

func TestRunSingleCycle_TrackerErrorCountsAndContinues(t *testing.T) {
	inbox := &fakeInbox{apps: []models.ApplicationEmail{matchingApp("m1"), rejectedApp("m2")}}
	tracker := &fakeTracker{appendErr: fmt.Errorf("sheet unavailable")}
	sender := &fakeSender{}

	orc := New(testSettings(t), testEngine(t), Deps{
		Inbox:   inbox,
		Tracker: tracker,
		Sender:  sender,
	})

	cycle, err := orc.RunSingleCycle(context.Background())
	if err != nil {
		t.Fatalf("RunSingleCycle() failed: %v", err)
	}

	if cycle.Errors != 2 {
		t.Errorf("Errors = %d, want 2", cycle.Errors)
	}
	if cycle.Processed != 0 {
		t.Errorf("Processed = %d, want 0 when recording fails", cycle.Processed)
	}
	if len(sender.sent) != 0 {
		t.Errorf("no replies should go out when the record was not stored, sent %d", len(sender.sent))
	}
}

func TestRunSingleCycle_FetchErrorAborts(t *testing.T) {
	inbox := &fakeInbox{fetchErr: fmt.Errorf("gmail unavailable")}

	orc := New(testSettings(t), testEngine(t), Deps{Inbox: inbox})

	if _, err := orc.RunSingleCycle(context.Background()); err == nil {
		t.Errorf("expected fetch failure to abort the cycle")
	}
}

func TestRunSingleCycle_RespectsMaxEmails(t *testing.T) {
	inbox := &fakeInbox{}
	for i := 0; i < 5; i++ {
		inbox.apps = append(inbox.apps, matchingApp(fmt.Sprintf("m%d", i)))
	}

	cfg := testSettings(t)
	cfg.MaxEmailsPerRun = 3

	orc := New(cfg, testEngine(t), Deps{Inbox: inbox})

	cycle, err := orc.RunSingleCycle(context.Background())
	if err != nil {
		t.Fatalf("RunSingleCycle() failed: %v", err)
	}
	if cycle.Fetched != 3 {
		t.Errorf("Fetched = %d, want 3", cycle.Fetched)
	}
}

func TestProcessTestEmail(t *testing.T) {
	orc := New(testSettings(t), testEngine(t), Deps{Inbox: &fakeInbox{}})

	rec, msg, err := orc.ProcessTestEmail(matchingApp("test"))
	if err != nil {
		t.Fatalf("ProcessTestEmail() failed: %v", err)
	}

	if !rec.Result.IsMatch {
		t.Errorf("sample application should match, got %+v", rec.Result)
	}
	if msg == nil || msg.Subject == "" {
		t.Fatalf("expected a rendered reply")
	}

	// No side effects: nothing recorded, nothing counted.
	if len(orc.Records()) != 0 {
		t.Errorf("test email must not be recorded")
	}
	if orc.Stats().TotalProcessed != 0 {
		t.Errorf("test email must not affect stats")
	}
}

func TestRecordsReturnsCopy(t *testing.T) {
	inbox := &fakeInbox{apps: []models.ApplicationEmail{matchingApp("m1")}}
	orc := New(testSettings(t), testEngine(t), Deps{Inbox: inbox})

	if _, err := orc.RunSingleCycle(context.Background()); err != nil {
		t.Fatalf("RunSingleCycle() failed: %v", err)
	}

	records := orc.Records()
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	records[0].Candidate.Name = "mutated"

	if orc.Records()[0].Candidate.Name == "mutated" {
		t.Errorf("Records() must return a copy")
	}
}

func TestTrackerCounts(t *testing.T) {
	tracker := &countingTracker{matchedRows: 4, rejectedRows: 9}
	orc := New(testSettings(t), testEngine(t), Deps{Inbox: &fakeInbox{}, Tracker: tracker})

	matched, rejected, ok := orc.TrackerCounts(context.Background())
	if !ok {
		t.Fatal("TrackerCounts() not available with a counting tracker")
	}
	if matched != 4 || rejected != 9 {
		t.Errorf("TrackerCounts() = (%d, %d), want (4, 9)", matched, rejected)
	}

	tracker.countErr = fmt.Errorf("sheet unavailable")
	if _, _, ok := orc.TrackerCounts(context.Background()); ok {
		t.Errorf("TrackerCounts() should report unavailable when the read fails")
	}
}

func TestTrackerCounts_NoTracker(t *testing.T) {
	plain := New(testSettings(t), testEngine(t), Deps{Inbox: &fakeInbox{}, Tracker: &fakeTracker{}})
	if _, _, ok := plain.TrackerCounts(context.Background()); ok {
		t.Errorf("TrackerCounts() should be unavailable for trackers without row counts")
	}

	none := New(testSettings(t), testEngine(t), Deps{Inbox: &fakeInbox{}})
	if _, _, ok := none.TrackerCounts(context.Background()); ok {
		t.Errorf("TrackerCounts() should be unavailable without a tracker")
	}
}

func TestExportSnapshot(t *testing.T) {
	inbox := &fakeInbox{apps: []models.ApplicationEmail{matchingApp("m1"), rejectedApp("m2")}}
	orc := New(testSettings(t), testEngine(t), Deps{Inbox: inbox})

	if _, err := orc.RunSingleCycle(context.Background()); err != nil {
		t.Fatalf("RunSingleCycle() failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "snapshot.xlsx")
	if err := orc.ExportSnapshot(path); err != nil {
		t.Fatalf("ExportSnapshot() failed: %v", err)
	}
}
