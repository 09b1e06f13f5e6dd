// Package config loads workflow settings from the environment and the
// keyword table from YAML. Everything is validated once at startup; nothing
// downstream re-checks configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"screenflow/internal/screening"
)

// Settings holds all workflow configuration.
type Settings struct {
	// Inbox
	GmailCredentialsPath string `env:"GMAIL_CREDENTIALS_PATH" envDefault:"credentials.json"`
	GmailTokenPath       string `env:"GMAIL_TOKEN_PATH" envDefault:"token.json"`
	SubjectFilter        string `env:"APPLICATION_SUBJECT_FILTER" envDefault:"application"`
	MaxEmailsPerRun      int    `env:"MAX_EMAILS_PER_RUN" envDefault:"10"`
	UploadsDir           string `env:"UPLOADS_DIR" envDefault:"uploads"`

	// Screening
	KeywordsPath          string `env:"KEYWORDS_PATH"`
	MinimumKeywordMatches int    `env:"MINIMUM_KEYWORD_MATCHES" envDefault:"2"`

	// Tracker spreadsheet
	TrackerSheetID string `env:"CANDIDATE_TRACKER_SHEET_ID"`
	MatchedTab     string `env:"MATCHED_TAB" envDefault:"Matched"`
	RejectedTab    string `env:"REJECTED_TAB" envDefault:"Rejected"`

	// Outbound replies
	SMTPServer string `env:"SMTP_SERVER"`
	SMTPPort   int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser   string `env:"SMTP_USER"`
	SMTPPass   string `env:"SMTP_PASS"`
	FromEmail  string `env:"FROM_EMAIL"`
	Position   string `env:"POSITION_TITLE" envDefault:"Python Developer"`
	Company    string `env:"COMPANY_NAME" envDefault:"Hiring Team"`

	// Optional AI recruiter notes
	GoogleCloudProject  string `env:"GOOGLE_CLOUD_PROJECT"`
	GoogleCloudLocation string `env:"GOOGLE_CLOUD_LOCATION" envDefault:"us-central1"`

	// Workflow
	CheckInterval time.Duration `env:"CHECK_INTERVAL" envDefault:"2m"`
	HistoryPath   string        `env:"HISTORY_PATH"`
	ReportPath    string        `env:"REPORT_PATH"`
	ListenAddr    string        `env:"LISTEN_ADDR" envDefault:":8080"`
}

// Load parses settings from the environment and applies derived defaults.
func Load() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if s.HistoryPath == "" {
		s.HistoryPath = filepath.Join(os.TempDir(), "screenflow", "processed.json")
	}

	return &s, nil
}

// Validate checks settings consistency. Called once at startup.
func (s *Settings) Validate() error {
	if s.CheckInterval <= 0 {
		return fmt.Errorf("check interval must be positive, got %s", s.CheckInterval)
	}
	if s.MaxEmailsPerRun < 1 {
		return fmt.Errorf("max emails per run must be at least 1, got %d", s.MaxEmailsPerRun)
	}
	if s.MinimumKeywordMatches < 1 {
		return fmt.Errorf("minimum keyword matches must be at least 1, got %d", s.MinimumKeywordMatches)
	}
	if s.SMTPEnabled() {
		if s.SMTPPort < 1 || s.SMTPPort > 65535 {
			return fmt.Errorf("invalid SMTP port %d", s.SMTPPort)
		}
	} else if s.SMTPServer != "" || s.SMTPUser != "" || s.SMTPPass != "" || s.FromEmail != "" {
		return fmt.Errorf("partial SMTP configuration: server, user, password and from address must all be set")
	}
	return nil
}

// SMTPEnabled reports whether outbound replies are fully configured.
func (s *Settings) SMTPEnabled() bool {
	return s.SMTPServer != "" && s.SMTPUser != "" && s.SMTPPass != "" && s.FromEmail != ""
}

// AIEnabled reports whether the optional recruiter-note summarizer can run.
func (s *Settings) AIEnabled() bool {
	return s.GoogleCloudProject != ""
}

// keywordFile is the YAML shape of the keyword table.
type keywordFile struct {
	Keywords []screening.KeywordSpec `yaml:"keywords"`
}

// LoadKeywords reads the keyword table from path, or returns the default
// table when no path is configured.
func (s *Settings) LoadKeywords() ([]screening.KeywordSpec, error) {
	if s.KeywordsPath == "" {
		return DefaultKeywords(), nil
	}

	data, err := os.ReadFile(s.KeywordsPath)
	if err != nil {
		return nil, fmt.Errorf("read keyword table: %w", err)
	}

	var kf keywordFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse keyword table %s: %w", s.KeywordsPath, err)
	}
	if len(kf.Keywords) == 0 {
		return nil, fmt.Errorf("keyword table %s defines no keywords", s.KeywordsPath)
	}

	return kf.Keywords, nil
}

// DefaultKeywords is the built-in screening table for the Python developer
// opening: the role level, the language, and GenAI exposure.
func DefaultKeywords() []screening.KeywordSpec {
	return []screening.KeywordSpec{
		{Canonical: "Mid-level", Variants: []string{"mid level", "midlevel", "intermediate"}},
		{Canonical: "Python", Variants: []string{"python3", "django", "flask"}},
		{Canonical: "GenAI", Variants: []string{"generative ai", "gen ai", "llm", "llms"}},
	}
}
