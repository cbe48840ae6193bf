package email

import (
	"fmt"
	"html"
	"strings"

	"portfolio/internal/config"
	"portfolio/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0f766e; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        .message { white-space: pre-wrap; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>Sent by the contact form on <a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content,
		html.EscapeString(t.cfg.BaseURL), html.EscapeString(t.cfg.BaseURL))
}

// ContactReceived generates the owner notification for a new contact message.
func (t *Templates) ContactReceived(msg *models.ContactMessage) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] %s from %s", t.cfg.SiteTitle, msg.Subject, msg.Name)
	received := models.FormatTimestamp(msg.Timestamp)

	content := fmt.Sprintf(`
        <p>You have a new message from your portfolio contact form.</p>

        <div class="info-box">
            <p><span class="label">From:</span> %s &lt;<a href="mailto:%s">%s</a>&gt;</p>
            <p><span class="label">Subject:</span> %s</p>
            <p><span class="label">Received:</span> %s</p>
            <p><span class="label">Message ID:</span> %s</p>
        </div>

        <div class="info-box message">%s</div>`,
		html.EscapeString(msg.Name),
		html.EscapeString(msg.Email), html.EscapeString(msg.Email),
		html.EscapeString(msg.Subject),
		received,
		html.EscapeString(msg.ID),
		html.EscapeString(msg.Message),
	)

	htmlBody = t.baseHTML("New contact message", content)

	var text strings.Builder
	text.WriteString("You have a new message from your portfolio contact form.\n\n")
	fmt.Fprintf(&text, "From: %s <%s>\n", msg.Name, msg.Email)
	fmt.Fprintf(&text, "Subject: %s\n", msg.Subject)
	fmt.Fprintf(&text, "Received: %s\n", received)
	fmt.Fprintf(&text, "Message ID: %s\n\n", msg.ID)
	text.WriteString(msg.Message)
	text.WriteString("\n\n---\n")
	text.WriteString(t.cfg.BaseURL)
	textBody = text.String()

	return subject, htmlBody, textBody
}
