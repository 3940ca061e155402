package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "parent", want: RoleParent},
		{in: " Provider ", want: RoleProvider},
		{in: "admin", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Accepted")
	require.NoError(t, err)
	assert.True(t, s.IsDecision())

	s, err = ParseStatus("Pending")
	require.NoError(t, err)
	assert.False(t, s.IsDecision())

	_, err = ParseStatus("accepted")
	assert.Error(t, err)
}

func TestProgramFilter_Matches(t *testing.T) {
	p := Program{
		Title:        "Junior Chess Club",
		Location:     "Addis Ababa",
		ProgramType:  "Academic",
		DeliveryMode: DeliveryOnline,
		AgeGroup:     "8-12",
		Cost:         "Free",
	}

	assert.True(t, ProgramFilter{}.Matches(p))
	assert.True(t, ProgramFilter{Keyword: "CHESS", Location: "Addis Ababa"}.Matches(p))
	assert.False(t, ProgramFilter{DeliveryMode: DeliveryHybrid}.Matches(p))
	assert.False(t, ProgramFilter{FeaturedOnly: true}.Matches(p))
	assert.False(t, ProgramFilter{Keyword: "club", Cost: "$10"}.Matches(p))
}

func TestProgramFields_Apply_DefaultsActive(t *testing.T) {
	p := Program{ID: "p1", ProviderID: "v1"}
	ProgramFields{Title: "Robotics"}.Apply(&p)

	assert.True(t, p.IsActive)
	assert.Equal(t, "v1", p.ProviderID)

	inactive := false
	ProgramFields{Title: "Robotics", IsActive: &inactive}.Apply(&p)
	assert.False(t, p.IsActive)
}

func TestDisplayNameFromEmail(t *testing.T) {
	assert.Equal(t, "hana", DisplayNameFromEmail("hana@example.com"))
	assert.Equal(t, "no-at-sign", DisplayNameFromEmail("no-at-sign"))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("child_age", "must be positive")
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "child_age")
	assert.False(t, IsValidation(ErrNotFound))
}
