package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"screenflow/internal/ai"
	"screenflow/internal/api"
	"screenflow/internal/config"
	"screenflow/internal/history"
	"screenflow/internal/inbox"
	"screenflow/internal/models"
	"screenflow/internal/reply"
	"screenflow/internal/screening"
	"screenflow/internal/sheets"
	"screenflow/internal/workflow"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the screening workflow continuously",
	Long: `Run polls the inbox every CHECK_INTERVAL, screens new applications and
records the outcomes until interrupted. A status server is exposed on
LISTEN_ADDR while the workflow runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, orch, cleanup, err := buildWorkflow(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := checkConnections(ctx, orch); err != nil {
			return err
		}

		server := &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: api.NewServer(orch, logger).Router(),
		}
		go func() {
			logger.Info("status server listening", zap.String("addr", cfg.ListenAddr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("status server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()

		logger.Info("starting workflow",
			zap.Duration("interval", cfg.CheckInterval),
			zap.Strings("keywords", orch.Keywords()),
			zap.Int("threshold", orch.Threshold()))

		err = orch.RunContinuous(ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}

		if cfg.ReportPath != "" {
			if exportErr := orch.ExportSnapshot(cfg.ReportPath); exportErr != nil {
				logger.Error("report export failed", zap.Error(exportErr))
			} else {
				logger.Info("report written", zap.String("path", cfg.ReportPath))
			}
		}

		printStats(cmd, orch.Stats())
		return err
	},
}

var singleCmd = &cobra.Command{
	Use:   "single",
	Short: "Process one batch of applications and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, orch, cleanup, err := buildWorkflow(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := checkConnections(ctx, orch); err != nil {
			return err
		}

		cycle, err := orch.RunSingleCycle(ctx)
		if err != nil {
			return fmt.Errorf("cycle failed: %w", err)
		}

		cmd.Printf("Fetched:      %d\n", cycle.Fetched)
		cmd.Printf("Processed:    %d\n", cycle.Processed)
		cmd.Printf("Matched:      %d\n", cycle.Matched)
		cmd.Printf("Rejected:     %d\n", cycle.Rejected)
		cmd.Printf("Replies sent: %d\n", cycle.RepliesSent)
		cmd.Printf("Errors:       %d\n", cycle.Errors)

		if cfg.ReportPath != "" {
			if err := orch.ExportSnapshot(cfg.ReportPath); err != nil {
				return fmt.Errorf("export report: %w", err)
			}
			cmd.Printf("Report written to %s\n", cfg.ReportPath)
		}
		return nil
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Screen a built-in sample application without side effects",
	Long: `Test runs a sample application email through the screening engine and
prints the verdict and the reply that would be sent. Nothing is fetched,
recorded or delivered.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		specs, err := cfg.LoadKeywords()
		if err != nil {
			return err
		}
		engine, err := screening.NewEngine(specs, cfg.MinimumKeywordMatches)
		if err != nil {
			return fmt.Errorf("build screening engine: %w", err)
		}

		orch := workflow.New(cfg, engine, workflow.Deps{Logger: logger})

		app := models.ApplicationEmail{
			MessageID: "test-message",
			Candidate: models.Candidate{Name: "John Doe", Email: "john.doe@example.com"},
			Subject:   "Application for Mid-level Python Developer",
			Body: "Dear Hiring Team,\n\n" +
				"I am a mid-level software engineer with five years of Python\n" +
				"experience, including two years building GenAI features with LLM\n" +
				"APIs. I would love to join your team.\n\n" +
				"Best regards,\nJohn Doe",
			ReceivedAt: time.Now().UTC(),
		}

		rec, msg, err := orch.ProcessTestEmail(app)
		if err != nil {
			return err
		}

		cmd.Printf("Candidate: %s <%s>\n", rec.Candidate.Name, rec.Candidate.Email)
		cmd.Printf("Subject:   %s\n", rec.Subject)
		cmd.Printf("Verdict:   %s (%d/%d keywords, need %d)\n",
			verdictLabel(rec.Result.IsMatch), rec.Result.Count, len(orch.Keywords()), orch.Threshold())
		cmd.Printf("Matched:   %s\n", strings.Join(rec.Result.Matched, ", "))
		cmd.Printf("\nReply subject: %s\n\n%s\n", msg.Subject, msg.Text)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running workflow",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		addr := cfg.ListenAddr
		if strings.HasPrefix(addr, ":") {
			addr = "localhost" + addr
		}
		url := fmt.Sprintf("http://%s/status", addr)

		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Get(url)
		if err != nil {
			cmd.Printf("No workflow running at %s\n\n", url)
			printConfig(cmd, cfg)
			return nil
		}
		defer resp.Body.Close()

		var status struct {
			Stats     models.WorkflowStats `json:"stats"`
			Keywords  []string             `json:"keywords"`
			Threshold int                  `json:"threshold"`
			SheetRows *struct {
				Matched  int `json:"matched"`
				Rejected int `json:"rejected"`
			} `json:"sheet_rows"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			return fmt.Errorf("decode status response: %w", err)
		}

		cmd.Printf("Workflow running at %s\n", addr)
		cmd.Printf("Keywords:  %s (need %d)\n", strings.Join(status.Keywords, ", "), status.Threshold)
		printStats(cmd, status.Stats)
		if status.SheetRows != nil {
			cmd.Printf("\nTracker sheet rows: %d matched, %d rejected\n",
				status.SheetRows.Matched, status.SheetRows.Rejected)
		}
		return nil
	},
}

// buildWorkflow constructs the orchestrator with live Gmail, Sheets, SMTP and
// AI collaborators according to configuration. The returned cleanup closes
// whatever was opened.
func buildWorkflow(ctx context.Context) (*config.Settings, *workflow.Orchestrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	specs, err := cfg.LoadKeywords()
	if err != nil {
		return nil, nil, nil, err
	}
	engine, err := screening.NewEngine(specs, cfg.MinimumKeywordMatches)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build screening engine: %w", err)
	}

	deps := workflow.Deps{Logger: logger}
	cleanup := func() {}

	deps.Inbox, err = inbox.NewClient(ctx, cfg.GmailCredentialsPath, cfg.GmailTokenPath, cfg.UploadsDir, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to inbox: %w", err)
	}

	if cfg.TrackerSheetID != "" {
		tracker, err := sheets.NewTracker(ctx, cfg.GmailCredentialsPath, cfg.GmailTokenPath,
			cfg.TrackerSheetID, cfg.MatchedTab, cfg.RejectedTab, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to tracker sheet: %w", err)
		}
		if err := tracker.EnsureTabs(ctx); err != nil {
			return nil, nil, nil, fmt.Errorf("prepare tracker tabs: %w", err)
		}
		deps.Tracker = tracker
	} else {
		logger.Warn("no tracker sheet configured, outcomes will not be recorded")
	}

	if cfg.SMTPEnabled() {
		deps.Sender = reply.NewSender(reply.SMTPConfig{
			Server:    cfg.SMTPServer,
			Port:      cfg.SMTPPort,
			User:      cfg.SMTPUser,
			Pass:      cfg.SMTPPass,
			FromEmail: cfg.FromEmail,
			Enabled:   true,
		}, logger)
	} else {
		logger.Warn("SMTP not configured, candidate replies disabled")
	}

	if cfg.AIEnabled() {
		summarizer, err := ai.NewSummarizer(ctx, cfg.GoogleCloudProject, cfg.GoogleCloudLocation)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to vertex ai: %w", err)
		}
		deps.Annotator = summarizer
		cleanup = func() { _ = summarizer.Close() }
	}

	deps.History, err = history.NewManager(cfg.HistoryPath)
	if err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("open processing history: %w", err)
	}
	logger.Info("processing history loaded",
		zap.String("path", deps.History.Path()),
		zap.Int("entries", deps.History.Count()))

	return cfg, workflow.New(cfg, engine, deps), cleanup, nil
}

// checkConnections probes every external collaborator and fails fast when one
// is unreachable.
func checkConnections(ctx context.Context, orch *workflow.Orchestrator) error {
	results := orch.TestConnections(ctx)

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	var failed []string
	for _, name := range names {
		if err := results[name]; err != nil {
			logger.Error("connection check failed", zap.String("service", name), zap.Error(err))
			failed = append(failed, name)
		} else {
			logger.Info("connection check passed", zap.String("service", name))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("connection checks failed: %s", strings.Join(failed, ", "))
	}
	return nil
}

func printStats(cmd *cobra.Command, stats models.WorkflowStats) {
	cmd.Printf("\nTotal processed: %d\n", stats.TotalProcessed)
	cmd.Printf("Matched:         %d\n", stats.MatchedCandidates)
	cmd.Printf("Rejected:        %d\n", stats.RejectedCandidates)
	cmd.Printf("Replies sent:    %d\n", stats.EmailsSent)
	cmd.Printf("Errors:          %d\n", stats.Errors)
	if !stats.LastCycleAt.IsZero() {
		cmd.Printf("Last cycle:      %s\n", stats.LastCycleAt.Format(time.RFC3339))
	}
}

func printConfig(cmd *cobra.Command, cfg *config.Settings) {
	cmd.Printf("Subject filter:  %q\n", cfg.SubjectFilter)
	cmd.Printf("Check interval:  %s\n", cfg.CheckInterval)
	cmd.Printf("Max per run:     %d\n", cfg.MaxEmailsPerRun)
	cmd.Printf("Match threshold: %d\n", cfg.MinimumKeywordMatches)
	cmd.Printf("Tracker sheet:   %s\n", orDisabled(cfg.TrackerSheetID))
	cmd.Printf("SMTP:            %s\n", enabledLabel(cfg.SMTPEnabled()))
	cmd.Printf("AI notes:        %s\n", enabledLabel(cfg.AIEnabled()))
}

func verdictLabel(matched bool) string {
	if matched {
		return "MATCHED"
	}
	return "REJECTED"
}

func enabledLabel(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

func orDisabled(v string) string {
	if v == "" {
		return "disabled"
	}
	return v
}
