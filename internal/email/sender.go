// internal/email/sender.go
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/mail"
	"strings"
	"time"

	"standup-service/internal/config"
	"standup-service/internal/email/templates"
	"standup-service/pkg/models"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/gomail.v2"
)

// ErrNotConfigured is returned when no SMTP server is configured.
var ErrNotConfigured = errors.New("email: SMTP is not configured")

const maxAttempts = 3

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Standup bodies keep one item per line, so soft breaks render as <br>.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

type Sender struct {
	cfg    *config.Config
	dialer dialer
	// first retry delay, doubled per attempt
	backoff time.Duration
}

func NewSender(cfg *config.Config) *Sender {
	return &Sender{
		cfg:     cfg,
		dialer:  gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		backoff: time.Second,
	}
}

func (s *Sender) Enabled() bool { return s != nil && s.cfg.SMTPEnabled() }

func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}
	log.Printf("📧 [SEND] To: %s | Subject: %s", to, subject)

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.SMTPFrom, s.cfg.SMTPFromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	// Exponential backoff: 1s, 2s between the 3 attempts
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = s.dialer.DialAndSend(m); err == nil {
			log.Printf("✅ [SUCCESS] Email sent to %s (Subject: %s)", to, subject)
			return nil
		}
		if attempt == maxAttempts-1 {
			break
		}
		delay := s.backoff << attempt
		log.Printf("❌ [ATTEMPT %d] Failed to send email to %s: %v → retrying in %v", attempt+1, to, err, delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("email send cancelled: %w", ctx.Err())
		}
	}

	log.Printf("💥 [FAILED] All retries exhausted for %s", to)
	return fmt.Errorf("failed to send email to %s after %d attempts: %w", to, maxAttempts, err)
}

// SendStandup mails one standup, rendered from its markdown, to a single recipient.
func (s *Sender) SendStandup(ctx context.Context, to string, standup models.Standup) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(to))
	if err != nil {
		return fmt.Errorf("%w: invalid recipient %q", models.ErrValidation, to)
	}
	if !s.Enabled() {
		return ErrNotConfigured
	}

	dateLabel := standup.Date.Format("Monday, January 2, 2006")
	body, err := RenderStandup(standup, dateLabel)
	if err != nil {
		log.Printf("❌ [ERROR] standup %s: render failed: %v", standup.ID, err)
		return fmt.Errorf("render standup: %w", err)
	}
	return s.Send(ctx, addr.Address, templates.StandupSubject(dateLabel), body)
}

// RenderStandup produces the HTML email body for standup.
func RenderStandup(standup models.Standup, dateLabel string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(standup.GeneratedOutput), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return templates.RenderStandupEmail(templates.StandupData{
		// goldmark escapes raw HTML in the source unless html.WithUnsafe is set
		Body:      template.HTML(buf.String()),
		DateLabel: dateLabel,
		Notes:     standup.ConsistencyNotes,
	})
}
