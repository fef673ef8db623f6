package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Standup is one saved standup report, in the shape the UI and the local
// store exchange (camelCase JSON).
type Standup struct {
	ID               string    `json:"id"`
	Date             time.Time `json:"date"`
	RawInput         string    `json:"rawInput"`
	GeneratedOutput  string    `json:"generatedOutput"`
	ConsistencyNotes []string  `json:"consistencyNotes"`
}

func (s Standup) RecordID() string { return s.ID }

// Validate reports the first missing required field.
func (s Standup) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: standup id is required", ErrValidation)
	}
	if strings.TrimSpace(s.GeneratedOutput) == "" {
		return fmt.Errorf("%w: generated output is required", ErrValidation)
	}
	return nil
}

// Normalized returns a copy with UTC date and a non-nil notes slice.
func (s Standup) Normalized() Standup {
	s.Date = s.Date.UTC()
	if s.ConsistencyNotes == nil {
		s.ConsistencyNotes = []string{}
	}
	return s
}

// StandupRow is the remote "standups" table row.
type StandupRow struct {
	ID               string         `gorm:"primaryKey;column:id"`
	Date             time.Time      `gorm:"column:date;not null;index:idx_standups_date,sort:desc"`
	RawInput         string         `gorm:"column:raw_input;type:text;not null"`
	GeneratedOutput  string         `gorm:"column:generated_output;type:text;not null"`
	ConsistencyNotes datatypes.JSON `gorm:"column:consistency_notes"`
	CreatedAt        time.Time      `gorm:"column:created_at"`
}

func (StandupRow) TableName() string {
	return "standups"
}

// StandupToRow maps a record onto its table row.
func StandupToRow(s Standup) StandupRow {
	return StandupRow{
		ID:               s.ID,
		Date:             s.Date.UTC(),
		RawInput:         s.RawInput,
		GeneratedOutput:  s.GeneratedOutput,
		ConsistencyNotes: jsonList(s.ConsistencyNotes),
	}
}

// StandupFromRow maps a table row back onto a record. A null or malformed
// notes column becomes an empty list.
func StandupFromRow(r StandupRow) Standup {
	notes := []string{}
	if len(r.ConsistencyNotes) > 0 {
		if err := json.Unmarshal(r.ConsistencyNotes, &notes); err != nil || notes == nil {
			notes = []string{}
		}
	}
	return Standup{
		ID:               r.ID,
		Date:             r.Date.UTC(),
		RawInput:         r.RawInput,
		GeneratedOutput:  r.GeneratedOutput,
		ConsistencyNotes: notes,
	}
}

// jsonList converts []string -> datatypes.JSON, never null
func jsonList(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return datatypes.JSON(b)
}
