package domain

import "time"

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	EventApplicationSubmitted = "application.submitted"
	EventApplicationDecided   = "application.decided"
)

// ApplicationEvent is written to the outbox alongside every application change.
type ApplicationEvent struct {
	Type          string            `json:"type"`
	ApplicationID string            `json:"application_id"`
	ProgramID     string            `json:"program_id"`
	ParentID      string            `json:"parent_id"`
	ProviderID    string            `json:"provider_id"`
	Status        ApplicationStatus `json:"status"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

// OutboxEvent is one unpublished row of outbox_events.
type OutboxEvent struct {
	ID        string
	EventType string
	Payload   []byte
}
