/*
Package reply renders and sends the templated candidate replies: an
interview invitation when the screening verdict is a match, a polite
rejection otherwise.
*/
package reply

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"screenflow/internal/models"
)

// Data feeds the reply templates.
type Data struct {
	Candidate models.Candidate
	Position  string
	Company   string
	Matched   []string
	IsMatch   bool
}

// RenderedMessage is a ready-to-send email with HTML body and plain text
// fallback.
type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

// Renderer renders candidate replies from the built-in templates.
type Renderer struct {
	interview *template.Template
	rejection *template.Template
}

// NewRenderer parses the built-in templates.
func NewRenderer() *Renderer {
	return &Renderer{
		interview: template.Must(template.New("interview").Parse(interviewHTMLTemplate)),
		rejection: template.Must(template.New("rejection").Parse(rejectionHTMLTemplate)),
	}
}

// Render produces the reply matching the screening verdict.
func (r *Renderer) Render(data Data) (*RenderedMessage, error) {
	tmpl := r.rejection
	subject := fmt.Sprintf("Your application for %s", data.Position)
	if data.IsMatch {
		tmpl = r.interview
		subject = fmt.Sprintf("Interview Invitation – %s", data.Position)
	}

	var htmlBuf bytes.Buffer
	if err := tmpl.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("render reply template: %w", err)
	}

	return &RenderedMessage{
		Subject: subject,
		Text:    renderPlainText(data),
		HTML:    htmlBuf.String(),
	}, nil
}

// renderPlainText produces a readable fallback for clients without HTML.
func renderPlainText(data Data) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Dear %s,\n\n", data.Candidate.Name))

	if data.IsMatch {
		sb.WriteString(fmt.Sprintf("Thank you for applying for the %s position.\n", data.Position))
		sb.WriteString("We reviewed your application and your background covers the areas we are hiring for")
		if len(data.Matched) > 0 {
			sb.WriteString(fmt.Sprintf(": %s", strings.Join(data.Matched, ", ")))
		}
		sb.WriteString(".\n\n")
		sb.WriteString("We would like to invite you to an interview. A member of our team will follow up shortly to arrange a time.\n")
	} else {
		sb.WriteString(fmt.Sprintf("Thank you for your interest in the %s position.\n", data.Position))
		sb.WriteString("After reviewing your application, we have decided not to move forward at this time. ")
		sb.WriteString("We will keep your details on file for future openings.\n")
	}

	sb.WriteString(fmt.Sprintf("\nKind regards,\n%s\n", data.Company))
	return sb.String()
}
