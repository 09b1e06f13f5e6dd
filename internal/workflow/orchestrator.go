// Package workflow wires the screening pipeline together: fetch application
// emails, screen them, record the outcome, and reply to the candidate.
package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"screenflow/internal/config"
	"screenflow/internal/export"
	"screenflow/internal/history"
	"screenflow/internal/metrics"
	"screenflow/internal/models"
	"screenflow/internal/reply"
	"screenflow/internal/screening"
)

// Inbox is the workflow's input source.
type Inbox interface {
	FetchApplications(ctx context.Context, subjectFilter string, max int) ([]models.ApplicationEmail, error)
	MarkProcessed(ctx context.Context, messageID string) error
}

// Tracker is the record store for screening outcomes.
type Tracker interface {
	Append(ctx context.Context, rec models.ScreeningRecord) error
}

// Sender delivers candidate replies.
type Sender interface {
	Enabled() bool
	Send(to string, msg *reply.RenderedMessage) error
}

// Annotator writes the optional recruiter note for matched candidates.
type Annotator interface {
	Summarize(ctx context.Context, rec models.ScreeningRecord, resumeText string) (string, error)
}

// RowCounter is implemented by trackers that can report how many candidate
// rows each of their tabs holds.
type RowCounter interface {
	RowCounts(ctx context.Context) (matched, rejected int, err error)
}

// Deps are the orchestrator's collaborators. Tracker, Sender and Annotator
// may be nil; the corresponding step is skipped.
type Deps struct {
	Inbox     Inbox
	Tracker   Tracker
	Sender    Sender
	Annotator Annotator
	History   *history.Manager
	Logger    *zap.Logger
}

// Orchestrator runs screening cycles and accumulates their results.
type Orchestrator struct {
	cfg      *config.Settings
	engine   *screening.Engine
	renderer *reply.Renderer
	deps     Deps
	logger   *zap.Logger

	mu      sync.RWMutex
	stats   models.WorkflowStats
	records []models.ScreeningRecord
}

// New creates an orchestrator around a validated engine and its collaborators.
func New(cfg *config.Settings, engine *screening.Engine, deps Deps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		cfg:      cfg,
		engine:   engine,
		renderer: reply.NewRenderer(),
		deps:     deps,
		logger:   logger,
	}
}

// RunContinuous runs cycles every CheckInterval until the context ends. The
// first cycle starts immediately.
func (o *Orchestrator) RunContinuous(ctx context.Context) error {
	ticker := time.NewTicker(o.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		if _, err := o.RunSingleCycle(ctx); err != nil {
			o.logger.Error("cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunSingleCycle fetches and processes one batch of application emails.
// Per-candidate failures are counted and logged; only a fetch failure aborts
// the cycle.
func (o *Orchestrator) RunSingleCycle(ctx context.Context) (models.CycleStats, error) {
	start := time.Now()
	var cycle models.CycleStats

	apps, err := o.deps.Inbox.FetchApplications(ctx, o.cfg.SubjectFilter, o.cfg.MaxEmailsPerRun)
	if err != nil {
		return cycle, fmt.Errorf("fetch applications: %w", err)
	}
	cycle.Fetched = len(apps)

	for _, app := range apps {
		select {
		case <-ctx.Done():
			return cycle, ctx.Err()
		default:
		}

		if o.deps.History != nil && o.deps.History.Seen(app.MessageID) {
			o.logger.Debug("skipping already-processed message", zap.String("id", app.MessageID))
			o.markRead(ctx, app.MessageID)
			continue
		}

		rec, replied, err := o.processApplication(ctx, app)
		if err != nil {
			cycle.Errors++
			metrics.RecordError()
			o.logger.Error("failed to process application",
				zap.String("id", app.MessageID),
				zap.String("from", app.Candidate.Email),
				zap.Error(err))
			continue
		}

		cycle.Processed++
		if rec.Result.IsMatch {
			cycle.Matched++
		} else {
			cycle.Rejected++
		}
		if replied {
			cycle.RepliesSent++
		}
	}

	o.mu.Lock()
	o.stats.Add(cycle)
	o.mu.Unlock()

	metrics.ObserveCycle(time.Since(start).Seconds())
	o.logger.Info("cycle complete",
		zap.Int("fetched", cycle.Fetched),
		zap.Int("processed", cycle.Processed),
		zap.Int("matched", cycle.Matched),
		zap.Int("rejected", cycle.Rejected),
		zap.Int("errors", cycle.Errors))

	return cycle, nil
}

// processApplication screens one email and runs the downstream steps.
func (o *Orchestrator) processApplication(ctx context.Context, app models.ApplicationEmail) (models.ScreeningRecord, bool, error) {
	result := o.engine.Screen(screening.Input{Subject: app.Subject, Body: app.Body})
	rec := models.NewScreeningRecord(app, result)
	metrics.RecordVerdict(result.IsMatch)

	o.logger.Info("screened application",
		zap.String("from", app.Candidate.Email),
		zap.Strings("matched", result.Matched),
		zap.Bool("is_match", result.IsMatch))

	if result.IsMatch && o.deps.Annotator != nil {
		note, err := o.deps.Annotator.Summarize(ctx, rec, app.ResumeText)
		if err != nil {
			// Annotation never blocks the pipeline.
			o.logger.Warn("recruiter note generation failed",
				zap.String("from", app.Candidate.Email), zap.Error(err))
		} else {
			rec.Note = note
		}
	}

	if o.deps.Tracker != nil {
		if err := o.deps.Tracker.Append(ctx, rec); err != nil {
			return rec, false, fmt.Errorf("record candidate: %w", err)
		}
	}

	replied := false
	if o.deps.Sender != nil && o.deps.Sender.Enabled() {
		msg, err := o.renderer.Render(reply.Data{
			Candidate: app.Candidate,
			Position:  o.cfg.Position,
			Company:   o.cfg.Company,
			Matched:   result.Matched,
			IsMatch:   result.IsMatch,
		})
		if err != nil {
			return rec, false, err
		}
		if err := o.deps.Sender.Send(app.Candidate.Email, msg); err != nil {
			return rec, false, err
		}
		replied = true
		metrics.RecordReply()
	}

	if o.deps.History != nil {
		if err := o.deps.History.MarkProcessed(app.MessageID); err != nil {
			o.logger.Warn("failed to persist history", zap.Error(err))
		}
	}
	o.markRead(ctx, app.MessageID)

	o.mu.Lock()
	o.records = append(o.records, rec)
	o.mu.Unlock()

	return rec, replied, nil
}

func (o *Orchestrator) markRead(ctx context.Context, messageID string) {
	if err := o.deps.Inbox.MarkProcessed(ctx, messageID); err != nil {
		o.logger.Warn("failed to mark message read", zap.String("id", messageID), zap.Error(err))
	}
}

// ProcessTestEmail screens a sample application and renders its reply with
// no side effects. Used by the `test` command.
func (o *Orchestrator) ProcessTestEmail(app models.ApplicationEmail) (models.ScreeningRecord, *reply.RenderedMessage, error) {
	result := o.engine.Screen(screening.Input{Subject: app.Subject, Body: app.Body})
	rec := models.NewScreeningRecord(app, result)

	msg, err := o.renderer.Render(reply.Data{
		Candidate: app.Candidate,
		Position:  o.cfg.Position,
		Company:   o.cfg.Company,
		Matched:   result.Matched,
		IsMatch:   result.IsMatch,
	})
	if err != nil {
		return rec, nil, err
	}

	return rec, msg, nil
}

// TestConnections probes each configured collaborator before the workflow
// starts polling.
func (o *Orchestrator) TestConnections(ctx context.Context) map[string]error {
	results := make(map[string]error)

	type ctxChecker interface {
		CheckConnection(ctx context.Context) error
	}
	type checker interface {
		CheckConnection() error
	}

	if c, ok := o.deps.Inbox.(ctxChecker); ok {
		results["gmail"] = c.CheckConnection(ctx)
	}
	if c, ok := o.deps.Tracker.(ctxChecker); ok {
		results["sheets"] = c.CheckConnection(ctx)
	}
	if c, ok := o.deps.Sender.(checker); ok {
		results["smtp"] = c.CheckConnection()
	}

	return results
}

// Stats returns a snapshot of the lifetime counters.
func (o *Orchestrator) Stats() models.WorkflowStats {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.stats
}

// Records returns a copy of the screening records from this process.
func (o *Orchestrator) Records() []models.ScreeningRecord {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]models.ScreeningRecord, len(o.records))
	copy(out, o.records)
	return out
}

// ExportSnapshot writes the current records and stats to an Excel workbook.
func (o *Orchestrator) ExportSnapshot(path string) error {
	o.mu.RLock()
	records := make([]models.ScreeningRecord, len(o.records))
	copy(records, o.records)
	stats := o.stats
	o.mu.RUnlock()

	return export.WriteWorkbook(records, stats, path)
}

// TrackerCounts reads the per-tab row counts from the tracker sheet for the
// status report. ok is false when no tracker is configured, the tracker
// cannot report counts, or the read fails.
func (o *Orchestrator) TrackerCounts(ctx context.Context) (matched, rejected int, ok bool) {
	rc, isCounter := o.deps.Tracker.(RowCounter)
	if !isCounter {
		return 0, 0, false
	}

	matched, rejected, err := rc.RowCounts(ctx)
	if err != nil {
		o.logger.Warn("failed to read tracker row counts", zap.Error(err))
		return 0, 0, false
	}
	return matched, rejected, true
}

// Keywords exposes the engine's canonical keywords for the status report.
func (o *Orchestrator) Keywords() []string { return o.engine.Keywords() }

// Threshold exposes the engine's match threshold for the status report.
func (o *Orchestrator) Threshold() int { return o.engine.Threshold() }
