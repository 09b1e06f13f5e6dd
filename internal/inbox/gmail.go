// Package inbox pulls job-application emails out of Gmail: sender, subject,
// body text and the resume attachment. It is the workflow's input source;
// nothing here decides anything about a candidate.
package inbox

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"screenflow/internal/googleauth"
	"screenflow/internal/models"
)

const gmailUser = "me"

// Client reads application emails from a Gmail mailbox.
type Client struct {
	service    *gmail.Service
	uploadsDir string
	logger     *zap.Logger
}

// NewClient builds a Gmail client with modify scope (messages are marked
// read once processed).
func NewClient(ctx context.Context, credentialsPath, tokenPath, uploadsDir string, logger *zap.Logger) (*Client, error) {
	httpClient, err := googleauth.NewClient(ctx, credentialsPath, tokenPath, gmail.GmailModifyScope)
	if err != nil {
		return nil, fmt.Errorf("authorize Gmail: %w", err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create Gmail service: %w", err)
	}

	return &Client{
		service:    svc,
		uploadsDir: uploadsDir,
		logger:     logger,
	}, nil
}

// CheckConnection verifies the mailbox is reachable.
func (c *Client) CheckConnection(ctx context.Context) error {
	if _, err := c.service.Users.GetProfile(gmailUser).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail profile lookup: %w", err)
	}
	return nil
}

// FetchApplications returns up to max unread emails whose subject mentions
// the filter term. Messages that cannot be fully parsed are skipped with a
// warning rather than failing the cycle.
func (c *Client) FetchApplications(ctx context.Context, subjectFilter string, max int) ([]models.ApplicationEmail, error) {
	query := fmt.Sprintf("is:unread subject:%s", subjectFilter)

	list, err := c.service.Users.Messages.List(gmailUser).Q(query).MaxResults(int64(max)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	apps := make([]models.ApplicationEmail, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := c.service.Users.Messages.Get(gmailUser, ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			c.logger.Warn("failed to fetch message", zap.String("id", ref.Id), zap.Error(err))
			continue
		}

		app := models.ApplicationEmail{
			MessageID:  msg.Id,
			Candidate:  parseSender(header(msg, "From")),
			Subject:    header(msg, "Subject"),
			Body:       plainTextBody(msg.Payload),
			ReceivedAt: time.UnixMilli(msg.InternalDate).UTC(),
		}
		if app.Body == "" {
			app.Body = msg.Snippet
		}

		if path, text, err := c.saveResume(ctx, msg, app.Candidate.Name); err != nil {
			c.logger.Warn("failed to save resume attachment",
				zap.String("id", msg.Id), zap.Error(err))
		} else if path != "" {
			app.ResumePath = path
			app.ResumeText = text
		}

		apps = append(apps, app)
	}

	return apps, nil
}

// MarkProcessed removes the unread label so the message is not fetched again.
func (c *Client) MarkProcessed(ctx context.Context, messageID string) error {
	req := &gmail.ModifyMessageRequest{RemoveLabelIds: []string{"UNREAD"}}
	if _, err := c.service.Users.Messages.Modify(gmailUser, messageID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("mark message %s read: %w", messageID, err)
	}
	return nil
}

// saveResume downloads the first resume-looking attachment into the uploads
// directory and extracts its text best-effort.
func (c *Client) saveResume(ctx context.Context, msg *gmail.Message, candidateName string) (string, string, error) {
	part := findAttachment(msg.Payload)
	if part == nil {
		return "", "", nil
	}

	att, err := c.service.Users.Messages.Attachments.Get(gmailUser, msg.Id, part.Body.AttachmentId).Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("fetch attachment: %w", err)
	}

	data, err := base64.URLEncoding.DecodeString(att.Data)
	if err != nil {
		return "", "", fmt.Errorf("decode attachment: %w", err)
	}

	if err := os.MkdirAll(c.uploadsDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create uploads directory: %w", err)
	}

	ext := filepath.Ext(part.Filename)
	name := strings.ReplaceAll(candidateName, " ", "")
	if name == "" {
		name = msg.Id
	}
	path := filepath.Join(c.uploadsDir, fmt.Sprintf("%s_Resume%s", name, ext))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", fmt.Errorf("write resume file: %w", err)
	}

	text, err := ExtractResumeText(path)
	if err != nil {
		c.logger.Debug("resume text extraction failed", zap.String("path", path), zap.Error(err))
		text = ""
	}

	return path, text, nil
}

// findAttachment locates the first part with a supported resume extension.
func findAttachment(part *gmail.MessagePart) *gmail.MessagePart {
	if part == nil {
		return nil
	}
	if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
		switch strings.ToLower(filepath.Ext(part.Filename)) {
		case ".pdf", ".doc", ".docx", ".txt":
			return part
		}
	}
	for _, p := range part.Parts {
		if found := findAttachment(p); found != nil {
			return found
		}
	}
	return nil
}

// plainTextBody walks the MIME tree for the first text/plain part.
func plainTextBody(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}
	if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
		return string(data)
	}
	for _, p := range part.Parts {
		if body := plainTextBody(p); body != "" {
			return body
		}
	}
	return ""
}

// header returns the named header value, or "".
func header(msg *gmail.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// parseSender splits a "Name <email@example.com>" From header into a
// candidate. With no display name the email's local part stands in.
func parseSender(from string) models.Candidate {
	from = strings.TrimSpace(from)

	if idx := strings.Index(from, "<"); idx >= 0 {
		name := strings.Trim(strings.TrimSpace(from[:idx]), `"`)
		email := strings.TrimSpace(strings.TrimSuffix(from[idx+1:], ">"))
		if name == "" {
			name = localPart(email)
		}
		return models.Candidate{Name: name, Email: email}
	}

	return models.Candidate{Name: localPart(from), Email: from}
}

func localPart(email string) string {
	if idx := strings.Index(email, "@"); idx > 0 {
		return email[:idx]
	}
	if email == "" {
		return "Unknown"
	}
	return email
}
