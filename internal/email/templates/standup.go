package templates

import (
	_ "embed"
	"html/template"
	"strings"
	"time"
)

//go:embed standup.html
var standupHTML string

var standupTmpl = template.Must(template.New("standup").Parse(standupHTML))

// StandupData holds the fields of a shared standup email.
type StandupData struct {
	Body        template.HTML // Required, already rendered markdown
	DateLabel   string        // Required
	Notes       []string
	Subject     string // Auto-set if empty
	HeaderTitle string // Auto-set if empty
	Year        int    // Auto-set if 0
}

func StandupSubject(dateLabel string) string {
	return "Daily standup for " + dateLabel
}

func RenderStandupEmail(data StandupData) (string, error) {
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	if data.Subject == "" {
		data.Subject = StandupSubject(data.DateLabel)
	}
	if data.HeaderTitle == "" {
		data.HeaderTitle = "Daily Standup"
	}

	var buf strings.Builder
	err := standupTmpl.Execute(&buf, data)
	return buf.String(), err
}
