package repository

import (
	"context"

	"github.com/lib/pq"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
)

const profileColumns = `id, name, email, role,
	COALESCE(organization_name, ''), COALESCE(bio, ''), COALESCE(location, ''),
	COALESCE(website, ''), COALESCE(phone, ''), specialties,
	COALESCE(facebook_url, ''), COALESCE(instagram_url, ''), COALESCE(twitter_url, ''), COALESCE(linkedin_url, ''),
	COALESCE(profile_image_url, ''), verified, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*domain.Profile, error) {
	var p domain.Profile
	var specialties pq.StringArray
	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.Role,
		&p.OrganizationName, &p.Bio, &p.Location,
		&p.Website, &p.Phone, &specialties,
		&p.Social.Facebook, &p.Social.Instagram, &p.Social.Twitter, &p.Social.LinkedIn,
		&p.ProfileImageURL, &p.Verified, &p.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	p.Specialties = []string(specialties)
	if p.Specialties == nil {
		p.Specialties = []string{}
	}
	return &p, nil
}

func (r *SQLRepository) FindProfileByID(ctx context.Context, id string) (*domain.Profile, error) {
	return scanProfile(r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

// CreateProfile inserts p when no profile exists for its id. A concurrent first
// login for the same identity loses the race and reads the winner's row.
func (r *SQLRepository) CreateProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, name, email, role, specialties, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (id) DO NOTHING`,
		p.ID, p.Name, p.Email, p.Role, pq.Array(p.Specialties),
	)
	if err != nil {
		return nil, err
	}
	return r.FindProfileByID(ctx, p.ID)
}

func (r *SQLRepository) UpsertProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO profiles (id, name, email, role, organization_name, bio, location, website, phone,
			specialties, facebook_url, instagram_url, twitter_url, linkedin_url, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			organization_name = EXCLUDED.organization_name,
			bio = EXCLUDED.bio,
			location = EXCLUDED.location,
			website = EXCLUDED.website,
			phone = EXCLUDED.phone,
			specialties = EXCLUDED.specialties,
			facebook_url = EXCLUDED.facebook_url,
			instagram_url = EXCLUDED.instagram_url,
			twitter_url = EXCLUDED.twitter_url,
			linkedin_url = EXCLUDED.linkedin_url,
			updated_at = NOW()
		 RETURNING `+profileColumns,
		p.ID, p.Name, p.Email, p.Role,
		nullString(p.OrganizationName), nullString(p.Bio), nullString(p.Location),
		nullString(p.Website), nullString(p.Phone), pq.Array(p.Specialties),
		nullString(p.Social.Facebook), nullString(p.Social.Instagram),
		nullString(p.Social.Twitter), nullString(p.Social.LinkedIn),
	)
	return scanProfile(row)
}

func (r *SQLRepository) UpdateProfileImage(ctx context.Context, id, imageURL string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET profile_image_url = $2, updated_at = NOW() WHERE id = $1`,
		id, imageURL,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}
