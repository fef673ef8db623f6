package gateway

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"standup-service/pkg/models"
)

const rolloverPlaceholder = "(Fetched from history)"

var todaySection = regexp.MustCompile(`\*\*What I am working on today:\*\*\n([\s\S]*?)(?:\n\n|\n$|$)`)

// RolloverInput builds the next day's draft from a previous standup: its
// "working on today" tasks become the new "Yesterday" section.
func RolloverInput(prev models.Standup) string {
	tasks := ""
	if m := todaySection.FindStringSubmatch(prev.GeneratedOutput); m != nil {
		tasks = strings.TrimSpace(m[1])
	}
	if tasks == "" {
		tasks = rolloverPlaceholder
	}
	return fmt.Sprintf("Yesterday: \n%s\n\nToday: ", tasks)
}

// Rollover drafts today's input from the newest standup.
func (g *Gateway) Rollover(ctx context.Context) (string, error) {
	latest, err := g.Standups.Latest(ctx)
	if err != nil {
		return "", err
	}
	if latest == nil {
		return "", ErrNoHistory
	}
	return RolloverInput(*latest), nil
}
