package domain

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleParent   Role = "parent"
	RoleProvider Role = "provider"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleParent:
		return RoleParent, nil
	case RoleProvider:
		return RoleProvider, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Identity is what the identity provider vouches for: the token subject and email.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Actor is the caller of a service operation. Role comes from the caller's profile row.
type Actor struct {
	ID    string
	Email string
	Role  Role
}

type SocialLinks struct {
	Facebook  string `json:"facebook_url,omitempty" validate:"omitempty,url"`
	Instagram string `json:"instagram_url,omitempty" validate:"omitempty,url"`
	Twitter   string `json:"twitter_url,omitempty" validate:"omitempty,url"`
	LinkedIn  string `json:"linkedin_url,omitempty" validate:"omitempty,url"`
}

type Profile struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	Role             Role        `json:"role"`
	OrganizationName string      `json:"organization_name,omitempty"`
	Bio              string      `json:"bio,omitempty"`
	Location         string      `json:"location,omitempty"`
	Website          string      `json:"website,omitempty"`
	Phone            string      `json:"phone,omitempty"`
	Specialties      []string    `json:"specialties"`
	Social           SocialLinks `json:"social"`
	ProfileImageURL  string      `json:"profile_image_url,omitempty"`
	Verified         bool        `json:"verified"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// ProfileFields is the full caller-supplied field set for a profile upsert.
type ProfileFields struct {
	Name             string      `json:"name" validate:"required"`
	OrganizationName string      `json:"organization_name"`
	Bio              string      `json:"bio"`
	Location         string      `json:"location"`
	Website          string      `json:"website" validate:"omitempty,url"`
	Phone            string      `json:"phone"`
	Specialties      []string    `json:"specialties" validate:"dive,required"`
	Social           SocialLinks `json:"social"`
}

// DisplayNameFromEmail returns the local part of an email address.
func DisplayNameFromEmail(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return email
	}
	return local
}
