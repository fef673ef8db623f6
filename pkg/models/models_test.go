package models

import (
	"errors"
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestBackendConfig_IsConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  *BackendConfig
		want bool
	}{
		{name: "nil", cfg: nil, want: false},
		{name: "empty", cfg: &BackendConfig{}, want: false},
		{name: "missing url", cfg: &BackendConfig{Key: "abcdefghijklmnopqrstuvwxyz"}, want: false},
		{name: "missing key", cfg: &BackendConfig{URL: "https://abc.supabase.co"}, want: false},
		{name: "key of exactly 20", cfg: &BackendConfig{URL: "https://abc.supabase.co", Key: "abcdefghijklmnopqrst"}, want: false},
		{name: "key of 21", cfg: &BackendConfig{URL: "https://abc.supabase.co", Key: "abcdefghijklmnopqrstu"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBackendConfig_MaskedKey(t *testing.T) {
	cfg := &BackendConfig{Key: "eyJhbGciOiJIUzI1NiJ9.payload"}
	if got := cfg.MaskedKey(); got != "eyJhbG******" {
		t.Errorf("MaskedKey() = %q", got)
	}
	if got := (&BackendConfig{}).MaskedKey(); got != "<empty>" {
		t.Errorf("MaskedKey() on empty = %q", got)
	}
}

func TestStandupRowMapping(t *testing.T) {
	date := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	in := Standup{
		ID:               "a",
		Date:             date,
		RawInput:         "x",
		GeneratedOutput:  "y",
		ConsistencyNotes: []string{"zombie task: PROJ-1"},
	}
	row := StandupToRow(in)
	if string(row.ConsistencyNotes) != `["zombie task: PROJ-1"]` {
		t.Errorf("notes column = %s", row.ConsistencyNotes)
	}
	out := StandupFromRow(row)
	if out.ID != in.ID || !out.Date.Equal(in.Date) || out.RawInput != in.RawInput || out.GeneratedOutput != in.GeneratedOutput {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
	if len(out.ConsistencyNotes) != 1 || out.ConsistencyNotes[0] != "zombie task: PROJ-1" {
		t.Errorf("notes = %v", out.ConsistencyNotes)
	}
}

func TestStandupRowMapping_NilNotes(t *testing.T) {
	row := StandupToRow(Standup{ID: "a"})
	if string(row.ConsistencyNotes) != "[]" {
		t.Errorf("nil notes column = %s, want []", row.ConsistencyNotes)
	}
	out := StandupFromRow(StandupRow{ID: "a", ConsistencyNotes: datatypes.JSON("null")})
	if out.ConsistencyNotes == nil || len(out.ConsistencyNotes) != 0 {
		t.Errorf("null notes = %#v, want empty slice", out.ConsistencyNotes)
	}
}

func TestTicketRowMapping(t *testing.T) {
	now := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	withLink := Ticket{ID: "t1", TicketKey: "PROJ-1", Title: "Fix", Status: TicketStatusInProgress, Link: "https://jira/PROJ-1", UpdatedAt: now}
	row := TicketToRow(withLink)
	if row.Link == nil || *row.Link != withLink.Link {
		t.Fatalf("link = %v", row.Link)
	}
	if got := TicketFromRow(row); got != withLink {
		t.Errorf("round trip = %+v, want %+v", got, withLink)
	}

	noLink := TicketToRow(Ticket{ID: "t2", TicketKey: "PROJ-2", Title: "Docs", Status: TicketStatusToDo})
	if noLink.Link != nil {
		t.Errorf("empty link should map to NULL, got %q", *noLink.Link)
	}
}

func TestTicketValidate(t *testing.T) {
	valid := Ticket{ID: "t1", TicketKey: "PROJ-1", Title: "Fix", Status: TicketStatusDone}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	tests := []struct {
		name   string
		mutate func(*Ticket)
	}{
		{"no id", func(t *Ticket) { t.ID = "" }},
		{"no key", func(t *Ticket) { t.TicketKey = " " }},
		{"no title", func(t *Ticket) { t.Title = "" }},
		{"bad status", func(t *Ticket) { t.Status = "Blocked" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := valid
			tt.mutate(&tk)
			if err := tk.Validate(); !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() = %v, want ErrValidation", err)
			}
		})
	}
}

func TestStandupValidate(t *testing.T) {
	if err := (Standup{ID: "a", GeneratedOutput: "y"}).Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if err := (Standup{ID: "a"}).Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("missing output: Validate() = %v, want ErrValidation", err)
	}
	if err := (Standup{GeneratedOutput: "y"}).Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("missing id: Validate() = %v, want ErrValidation", err)
	}
}
