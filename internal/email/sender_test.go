package email

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"standup-service/internal/config"
	"standup-service/pkg/models"

	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	failures int
	calls    int
	sent     []*gomail.Message
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.calls++
	if d.calls <= d.failures {
		return errors.New("421 service not available")
	}
	d.sent = append(d.sent, m...)
	return nil
}

func testSender(d *fakeDialer) *Sender {
	cfg := &config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPFrom: "standup@example.com", SMTPFromName: "Standup"}
	return &Sender{cfg: cfg, dialer: d, backoff: time.Millisecond}
}

var sample = models.Standup{
	ID:               "s1",
	Date:             time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC),
	GeneratedOutput:  "1/7/2026 Wednesday\n**Blockers:**\n- None\n**What I am working on today:**\n- <script>alert(1)</script> PROJ-2",
	ConsistencyNotes: []string{"PROJ-1 & PROJ-2 overlap"},
}

func TestRenderStandup(t *testing.T) {
	body, err := RenderStandup(sample, "Wednesday, July 1, 2026")
	if err != nil {
		t.Fatalf("RenderStandup() error: %v", err)
	}
	for _, want := range []string{
		"<strong>Blockers:</strong>",
		"<li>None",
		"Wednesday, July 1, 2026",
		"PROJ-1 &amp; PROJ-2 overlap",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(body, "<script>") {
		t.Error("raw HTML in the standup must not reach the email")
	}
}

func TestSendStandup(t *testing.T) {
	d := &fakeDialer{}
	if err := testSender(d).SendStandup(context.Background(), "Lead <lead@example.com>", sample); err != nil {
		t.Fatalf("SendStandup() error: %v", err)
	}
	if len(d.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(d.sent))
	}
	m := d.sent[0]
	if got := m.GetHeader("To"); len(got) != 1 || got[0] != "lead@example.com" {
		t.Errorf("To = %v, want lead@example.com", got)
	}
	if got := m.GetHeader("Subject"); len(got) != 1 || got[0] != "Daily standup for Wednesday, July 1, 2026" {
		t.Errorf("Subject = %v", got)
	}
}

func TestSendStandup_Validation(t *testing.T) {
	d := &fakeDialer{}
	err := testSender(d).SendStandup(context.Background(), "not-an-address", sample)
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("SendStandup() error = %v, want ErrValidation", err)
	}
	if d.calls != 0 {
		t.Error("nothing should be sent to an invalid address")
	}
}

func TestSend_NotConfigured(t *testing.T) {
	s := NewSender(&config.Config{})
	if err := s.SendStandup(context.Background(), "lead@example.com", sample); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("SendStandup() error = %v, want ErrNotConfigured", err)
	}
}

func TestSend_Retries(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		wantCalls int
		wantErr   bool
	}{
		{name: "first try", failures: 0, wantCalls: 1},
		{name: "recovers", failures: 2, wantCalls: 3},
		{name: "gives up", failures: 5, wantCalls: 3, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDialer{failures: tt.failures}
			err := testSender(d).Send(context.Background(), "lead@example.com", "s", "b")
			if (err != nil) != tt.wantErr {
				t.Errorf("Send() error = %v, wantErr %v", err, tt.wantErr)
			}
			if d.calls != tt.wantCalls {
				t.Errorf("DialAndSend called %d times, want %d", d.calls, tt.wantCalls)
			}
		})
	}
}

func TestSend_Cancelled(t *testing.T) {
	s := testSender(&fakeDialer{failures: 5})
	s.backoff = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Send(ctx, "lead@example.com", "s", "b")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Send() error = %v, want context.Canceled", err)
	}
}
