package inbox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsBinaryData(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{
			name:    "empty string",
			content: "",
			want:    false,
		},
		{
			name:    "plain resume text",
			content: "John Doe\nMid-level Python developer\n4 years of experience.",
			want:    false,
		},
		{
			name:    "pdf magic number",
			content: "%PDF-1.7 binary payload",
			want:    true,
		},
		{
			name:    "zip magic number",
			content: "PK\x03\x04 docx payload",
			want:    true,
		},
		{
			name:    "mostly non-printable bytes",
			content: strings.Repeat("\x00\x01\x02", 100),
			want:    true,
		},
		{
			name:    "text with normal whitespace",
			content: "line one\r\n\tline two\nline three",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBinaryData(tt.content); got != tt.want {
				t.Errorf("IsBinaryData() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestExtractResumeText_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	content := "Jane Doe\nPython, Django, generative AI side projects."
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write resume: %v", err)
	}

	text, err := ExtractResumeText(path)
	if err != nil {
		t.Fatalf("ExtractResumeText() failed: %v", err)
	}
	if text != content {
		t.Errorf("text = %q, want %q", text, content)
	}
}

func TestExtractResumeText_BinaryDisguisedAsText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	if err := os.WriteFile(path, []byte("%PDF-1.4 not really text"), 0o644); err != nil {
		t.Fatalf("failed to write resume: %v", err)
	}

	if _, err := ExtractResumeText(path); err == nil {
		t.Errorf("expected error for binary content in .txt file")
	}
}

func TestExtractResumeText_UnsupportedType(t *testing.T) {
	if _, err := ExtractResumeText("resume.odt"); err == nil {
		t.Errorf("expected error for unsupported file type")
	}
}

func TestParseSender(t *testing.T) {
	tests := []struct {
		name      string
		from      string
		wantName  string
		wantEmail string
	}{
		{
			name:      "name and address",
			from:      "John Doe <john.doe@example.com>",
			wantName:  "John Doe",
			wantEmail: "john.doe@example.com",
		},
		{
			name:      "quoted name",
			from:      `"Doe, Jane" <jane@example.com>`,
			wantName:  "Doe, Jane",
			wantEmail: "jane@example.com",
		},
		{
			name:      "bare address",
			from:      "applicant@example.com",
			wantName:  "applicant",
			wantEmail: "applicant@example.com",
		},
		{
			name:      "angle brackets without display name",
			from:      "<noreply@example.com>",
			wantName:  "noreply",
			wantEmail: "noreply@example.com",
		},
		{
			name:      "empty header",
			from:      "",
			wantName:  "Unknown",
			wantEmail: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSender(tt.from)
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if got.Email != tt.wantEmail {
				t.Errorf("Email = %q, want %q", got.Email, tt.wantEmail)
			}
		})
	}
}
