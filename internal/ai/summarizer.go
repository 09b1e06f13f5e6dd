// Package ai produces an optional recruiter note for matched candidates.
// The note is annotation only: the screening verdict is always the keyword
// engine's, and any failure here is logged and ignored upstream.
package ai

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"screenflow/internal/models"
)

// Summarizer wraps the Vertex AI Gemini API.
type Summarizer struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewSummarizer creates a Vertex AI client for the given project.
func NewSummarizer(ctx context.Context, projectID, location string) (*Summarizer, error) {
	if projectID == "" {
		return nil, fmt.Errorf("google cloud project is not configured")
	}

	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("create Vertex AI client: %w", err)
	}

	model := client.GenerativeModel("gemini-1.5-flash")
	model.SetTemperature(0.2)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(512)

	return &Summarizer{client: client, model: model}, nil
}

// Summarize writes a short recruiter note for a matched candidate from the
// application email and any extracted resume text.
func (s *Summarizer) Summarize(ctx context.Context, rec models.ScreeningRecord, resumeText string) (string, error) {
	prompt := buildPrompt(rec, resumeText)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate recruiter note: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response candidates returned")
	}

	var result strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			result.WriteString(string(text))
		}
	}

	return strings.TrimSpace(result.String()), nil
}

// Close closes the underlying client.
func (s *Summarizer) Close() error {
	return s.client.Close()
}

func buildPrompt(rec models.ScreeningRecord, resumeText string) string {
	var sb strings.Builder

	sb.WriteString("You are assisting a recruiter. Write a 2-3 sentence note about this job applicant ")
	sb.WriteString("for the tracking sheet. Mention relevant experience only; do not score or rank.\n\n")

	sb.WriteString(fmt.Sprintf("Applicant: %s\n", rec.Candidate.Name))
	sb.WriteString(fmt.Sprintf("Email subject: %s\n", rec.Subject))
	sb.WriteString(fmt.Sprintf("Screening keywords found: %s\n\n", strings.Join(rec.Result.Matched, ", ")))

	if resumeText != "" {
		sb.WriteString("Resume text:\n")
		sb.WriteString(resumeText)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Return only the note, no additional text.\n")
	return sb.String()
}
