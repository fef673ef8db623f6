package models

import (
	"fmt"
	"strings"
	"time"
)

type TicketStatus string

const (
	TicketStatusToDo       TicketStatus = "To Do"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusInReview   TicketStatus = "In Review"
	TicketStatusDone       TicketStatus = "Done"
	TicketStatusCancel     TicketStatus = "Cancel"
)

// TicketStatuses lists the lifecycle states in board order.
var TicketStatuses = []TicketStatus{
	TicketStatusToDo,
	TicketStatusInProgress,
	TicketStatusInReview,
	TicketStatusDone,
	TicketStatusCancel,
}

func (s TicketStatus) Valid() bool {
	for _, v := range TicketStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Ticket is a tracked work item (e.g. a Jira issue) the user can attach to a
// standup generation.
type Ticket struct {
	ID        string       `json:"id"`
	TicketKey string       `json:"ticketKey"`
	Title     string       `json:"title"`
	Status    TicketStatus `json:"status"`
	Link      string       `json:"link,omitempty"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (t Ticket) RecordID() string { return t.ID }

func (t Ticket) Validate() error {
	switch {
	case strings.TrimSpace(t.ID) == "":
		return fmt.Errorf("%w: ticket id is required", ErrValidation)
	case strings.TrimSpace(t.TicketKey) == "":
		return fmt.Errorf("%w: ticket key is required", ErrValidation)
	case strings.TrimSpace(t.Title) == "":
		return fmt.Errorf("%w: ticket title is required", ErrValidation)
	case !t.Status.Valid():
		return fmt.Errorf("%w: unknown ticket status %q", ErrValidation, t.Status)
	}
	return nil
}

// TicketRow is the remote "jira_tickets" table row. UpdatedAt is written
// explicitly so that sync keeps the local edit time.
type TicketRow struct {
	ID        string    `gorm:"primaryKey;column:id"`
	TicketKey string    `gorm:"column:ticket_key;type:text;not null;uniqueIndex:idx_tickets_key"`
	Title     string    `gorm:"column:title;type:text;not null"`
	Status    string    `gorm:"column:status;type:text;not null"`
	Link      *string   `gorm:"column:link;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (TicketRow) TableName() string {
	return "jira_tickets"
}

func TicketToRow(t Ticket) TicketRow {
	var link *string
	if t.Link != "" {
		l := t.Link
		link = &l
	}
	return TicketRow{
		ID:        t.ID,
		TicketKey: t.TicketKey,
		Title:     t.Title,
		Status:    string(t.Status),
		Link:      link,
		UpdatedAt: t.UpdatedAt.UTC(),
	}
}

func TicketFromRow(r TicketRow) Ticket {
	t := Ticket{
		ID:        r.ID,
		TicketKey: r.TicketKey,
		Title:     r.Title,
		Status:    TicketStatus(r.Status),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.Link != nil {
		t.Link = *r.Link
	}
	return t
}
