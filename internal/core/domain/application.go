package domain

import (
	"fmt"
	"time"
)

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "Pending"
	StatusAccepted ApplicationStatus = "Accepted"
	StatusRejected ApplicationStatus = "Rejected"
)

func ParseStatus(s string) (ApplicationStatus, error) {
	switch ApplicationStatus(s) {
	case StatusPending, StatusAccepted, StatusRejected:
		return ApplicationStatus(s), nil
	default:
		return "", fmt.Errorf("unknown application status %q", s)
	}
}

// IsDecision reports whether s is an outcome a provider may set.
func (s ApplicationStatus) IsDecision() bool {
	return s == StatusAccepted || s == StatusRejected
}

type Application struct {
	ID          string            `json:"id"`
	ParentID    string            `json:"parent_id"`
	ProgramID   string            `json:"program_id"`
	ChildName   string            `json:"child_name"`
	ChildAge    int               `json:"child_age"`
	Interests   string            `json:"interests"`
	Status      ApplicationStatus `json:"status"`
	SubmittedAt time.Time         `json:"submitted_at"`
	DocumentURL string            `json:"document_url,omitempty"`
}

// ProgramSummary is the slice of a Program shown next to an application.
type ProgramSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Location     string `json:"location,omitempty"`
	DeliveryMode string `json:"delivery_mode,omitempty"`
	Cost         string `json:"cost,omitempty"`
	ProviderID   string `json:"provider_id,omitempty"`
}

type ApplicationWithProgram struct {
	Application
	Program ProgramSummary `json:"program"`
}

type ApplicationInput struct {
	ProgramID string `json:"program_id" validate:"required"`
	ChildName string `json:"child_name" validate:"required"`
	ChildAge  int    `json:"child_age" validate:"required,gt=0,lte=2147483647"` // INTEGER column
	Interests string `json:"interests" validate:"required"`
}

// ParentApplications is the parent dashboard read: applications plus unread notifications.
type ParentApplications struct {
	Applications []ApplicationWithProgram `json:"applications"`
	UnreadCount  int                      `json:"unread_notifications"`
}
