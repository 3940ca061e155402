package domain

import (
	"strings"
	"time"
)

const (
	DeliveryInPerson = "In-Person"
	DeliveryOnline   = "Online"
	DeliveryHybrid   = "Hybrid"
)

// ProgramTypes lists the catalog's known program types. The column is free text.
var ProgramTypes = []string{"Academic", "Arts", "Sports", "STEM", "Music", "Language", "Other"}

type Program struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	ProgramType         string     `json:"program_type"`
	Location            string     `json:"location"`
	DeliveryMode        string     `json:"delivery_mode"`
	Duration            string     `json:"duration"`
	AgeGroup            string     `json:"age_group"`
	Cost                string     `json:"cost"`
	StartDate           *time.Time `json:"start_date,omitempty"`
	ApplicationDeadline *time.Time `json:"deadline,omitempty"`
	ContactEmail        string     `json:"contact_email"`
	Website             string     `json:"website,omitempty"`
	MaxParticipants     *int       `json:"max_participants,omitempty"`
	IsActive            bool       `json:"is_active"`
	Featured            bool       `json:"featured"`
	ProviderID          string     `json:"provider_id"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ProgramFields is the caller-editable part of a Program. Featured is curated
// by operators in the database and is not among them.
type ProgramFields struct {
	Title               string     `json:"title" validate:"required"`
	Description         string     `json:"description" validate:"required"`
	ProgramType         string     `json:"program_type" validate:"required"`
	Location            string     `json:"location" validate:"required"`
	DeliveryMode        string     `json:"delivery_mode" validate:"required,oneof=In-Person Online Hybrid"`
	Duration            string     `json:"duration"`
	AgeGroup            string     `json:"age_group" validate:"required"`
	Cost                string     `json:"cost" validate:"required"`
	StartDate           *time.Time `json:"start_date"`
	ApplicationDeadline *time.Time `json:"deadline"`
	ContactEmail        string     `json:"contact_email" validate:"required,email"`
	Website             string     `json:"website" validate:"omitempty,url"`
	MaxParticipants     *int       `json:"max_participants" validate:"omitempty,gt=0"`
	IsActive            *bool      `json:"is_active"`
}

// Apply copies the editable fields onto p. ProviderID, Featured and timestamps are untouched.
func (f ProgramFields) Apply(p *Program) {
	p.Title = f.Title
	p.Description = f.Description
	p.ProgramType = f.ProgramType
	p.Location = f.Location
	p.DeliveryMode = f.DeliveryMode
	p.Duration = f.Duration
	p.AgeGroup = f.AgeGroup
	p.Cost = f.Cost
	p.StartDate = f.StartDate
	p.ApplicationDeadline = f.ApplicationDeadline
	p.ContactEmail = f.ContactEmail
	p.Website = f.Website
	p.MaxParticipants = f.MaxParticipants
	p.IsActive = true
	if f.IsActive != nil {
		p.IsActive = *f.IsActive
	}
}

// ProgramFilter narrows a catalog listing. Empty fields impose no constraint.
type ProgramFilter struct {
	Keyword      string
	Location     string
	ProgramType  string
	DeliveryMode string
	AgeGroup     string
	Cost         string
	FeaturedOnly bool
}

// Matches reports whether p satisfies every supplied predicate.
// Keyword is a case-insensitive substring of the title; the rest are exact matches.
func (f ProgramFilter) Matches(p Program) bool {
	if f.Keyword != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Keyword)) {
		return false
	}
	if f.Location != "" && p.Location != f.Location {
		return false
	}
	if f.ProgramType != "" && p.ProgramType != f.ProgramType {
		return false
	}
	if f.DeliveryMode != "" && p.DeliveryMode != f.DeliveryMode {
		return false
	}
	if f.AgeGroup != "" && p.AgeGroup != f.AgeGroup {
		return false
	}
	if f.Cost != "" && p.Cost != f.Cost {
		return false
	}
	if f.FeaturedOnly && !p.Featured {
		return false
	}
	return true
}
