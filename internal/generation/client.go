// Package generation turns raw standup notes into a formatted report by
// calling the Gemini API.
package generation

import (
	"context"
	"errors"

	"standup-service/pkg/models"
)

// ErrGenerationFailed wraps every generation failure. Its message is meant
// to be shown to the user as is.
var ErrGenerationFailed = errors.New("generation failed")

// Request is the input of one standup generation.
type Request struct {
	RawInput string `json:"rawInput"`
	// PreviousContext is the last saved standup text, used for the
	// consistency checks.
	PreviousContext string          `json:"previousContext,omitempty"`
	SelectedTickets []models.Ticket `json:"selectedTickets,omitempty"`
}

type Result struct {
	StandupText      string   `json:"standupText"`
	ConsistencyNotes []string `json:"consistencyNotes"`
}

// Client formats standups. Implementations are safe for concurrent use.
type Client interface {
	Generate(ctx context.Context, req Request) (*Result, error)
	// Refine rewrites currentText following instruction.
	Refine(ctx context.Context, currentText, instruction string) (*Result, error)
}
