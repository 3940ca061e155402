package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
)

const programColumns = `id, title, description, program_type, location, delivery_mode,
	COALESCE(duration, ''), age_group, cost, start_date, deadline, contact_email,
	COALESCE(website, ''), max_participants, is_active, featured, provider_id, created_at, updated_at`

func scanProgram(row interface{ Scan(...any) error }) (*domain.Program, error) {
	var p domain.Program
	var startDate, deadline sql.NullTime
	var maxParticipants sql.NullInt64
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.ProgramType, &p.Location, &p.DeliveryMode,
		&p.Duration, &p.AgeGroup, &p.Cost, &startDate, &deadline, &p.ContactEmail,
		&p.Website, &maxParticipants, &p.IsActive, &p.Featured, &p.ProviderID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	if startDate.Valid {
		p.StartDate = &startDate.Time
	}
	if deadline.Valid {
		p.ApplicationDeadline = &deadline.Time
	}
	if maxParticipants.Valid {
		n := int(maxParticipants.Int64)
		p.MaxParticipants = &n
	}
	return &p, nil
}

func (r *SQLRepository) queryPrograms(ctx context.Context, query string, args ...any) ([]domain.Program, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	programs := []domain.Program{}
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		programs = append(programs, *p)
	}
	return programs, rows.Err()
}

func (r *SQLRepository) ListPrograms(ctx context.Context) ([]domain.Program, error) {
	return r.queryPrograms(ctx, `SELECT `+programColumns+` FROM programs ORDER BY created_at DESC`)
}

func (r *SQLRepository) FindProgramByID(ctx context.Context, id string) (*domain.Program, error) {
	return scanProgram(r.db.QueryRowContext(ctx, `SELECT `+programColumns+` FROM programs WHERE id = $1`, id))
}

func (r *SQLRepository) ListProgramsByProvider(ctx context.Context, providerID string) ([]domain.Program, error) {
	return r.queryPrograms(ctx,
		`SELECT `+programColumns+` FROM programs WHERE provider_id = $1 ORDER BY created_at DESC`, providerID)
}

func (r *SQLRepository) ListProgramIDsByProvider(ctx context.Context, providerID string) ([]string, error) {
	var ids pq.StringArray
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(array_agg(id::text), '{}') FROM programs WHERE provider_id = $1`, providerID,
	).Scan(&ids)
	if err != nil {
		return nil, err
	}
	return []string(ids), nil
}

func (r *SQLRepository) CreateProgram(ctx context.Context, p domain.Program) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO programs (id, title, description, program_type, location, delivery_mode, duration,
			age_group, cost, start_date, deadline, contact_email, website, max_participants,
			is_active, featured, provider_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		p.ID, p.Title, p.Description, p.ProgramType, p.Location, p.DeliveryMode, nullString(p.Duration),
		p.AgeGroup, p.Cost, nullTime(p.StartDate), nullTime(p.ApplicationDeadline), p.ContactEmail,
		nullString(p.Website), nullInt(p.MaxParticipants),
		p.IsActive, p.Featured, p.ProviderID, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// UpdateProgram rewrites the editable columns of a program owned by p.ProviderID.
func (r *SQLRepository) UpdateProgram(ctx context.Context, p domain.Program) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE programs SET title = $3, description = $4, program_type = $5, location = $6,
			delivery_mode = $7, duration = $8, age_group = $9, cost = $10, start_date = $11,
			deadline = $12, contact_email = $13, website = $14, max_participants = $15,
			is_active = $16, featured = $17, updated_at = $18
		 WHERE id = $1 AND provider_id = $2`,
		p.ID, p.ProviderID, p.Title, p.Description, p.ProgramType, p.Location,
		p.DeliveryMode, nullString(p.Duration), p.AgeGroup, p.Cost, nullTime(p.StartDate),
		nullTime(p.ApplicationDeadline), p.ContactEmail, nullString(p.Website), nullInt(p.MaxParticipants),
		p.IsActive, p.Featured, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *SQLRepository) DeleteProgram(ctx context.Context, id, providerID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM programs WHERE id = $1 AND provider_id = $2`, id, providerID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
