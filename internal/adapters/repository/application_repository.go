package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
)

const applicationWithProgramQuery = `
	SELECT a.id, a.parent_id, a.program_id, a.child_name, a.child_age, a.interests, a.status,
		a.submitted_at, COALESCE(a.document_url, ''),
		p.id, p.title, p.location, p.delivery_mode, p.cost, p.provider_id
	FROM applications a
	JOIN programs p ON p.id = a.program_id`

func (r *SQLRepository) CreateApplication(ctx context.Context, app domain.Application, n domain.Notification, evt domain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO applications (id, parent_id, program_id, child_name, child_age, interests, status, submitted_at, document_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		app.ID, app.ParentID, app.ProgramID, app.ChildName, app.ChildAge,
		app.Interests, app.Status, app.SubmittedAt, nullString(app.DocumentURL),
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}

	if err := insertSideEffects(ctx, tx, n, evt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLRepository) FindApplicationByID(ctx context.Context, id string) (*domain.Application, error) {
	var a domain.Application
	err := r.db.QueryRowContext(ctx,
		`SELECT id, parent_id, program_id, child_name, child_age, interests, status, submitted_at,
			COALESCE(document_url, '')
		 FROM applications WHERE id = $1`, id,
	).Scan(&a.ID, &a.ParentID, &a.ProgramID, &a.ChildName, &a.ChildAge,
		&a.Interests, &a.Status, &a.SubmittedAt, &a.DocumentURL)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *SQLRepository) ListApplicationsByParent(ctx context.Context, parentID string) ([]domain.ApplicationWithProgram, error) {
	return r.queryApplications(ctx,
		applicationWithProgramQuery+` WHERE a.parent_id = $1 ORDER BY a.submitted_at DESC`, parentID)
}

func (r *SQLRepository) ListApplicationsByProgramIDs(ctx context.Context, programIDs []string) ([]domain.ApplicationWithProgram, error) {
	return r.queryApplications(ctx,
		applicationWithProgramQuery+` WHERE a.program_id = ANY($1::uuid[]) ORDER BY a.submitted_at DESC`,
		pq.Array(programIDs))
}

func (r *SQLRepository) queryApplications(ctx context.Context, query string, args ...any) ([]domain.ApplicationWithProgram, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []domain.ApplicationWithProgram{}
	for rows.Next() {
		var a domain.ApplicationWithProgram
		if err := rows.Scan(
			&a.ID, &a.ParentID, &a.ProgramID, &a.ChildName, &a.ChildAge, &a.Interests, &a.Status,
			&a.SubmittedAt, &a.DocumentURL,
			&a.Program.ID, &a.Program.Title, &a.Program.Location, &a.Program.DeliveryMode,
			&a.Program.Cost, &a.Program.ProviderID,
		); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// UpdateApplicationStatus overwrites the status unconditionally. Concurrent
// decisions on the same application resolve last-write-wins.
func (r *SQLRepository) UpdateApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus, n domain.Notification, evt domain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE applications SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}

	if err := insertSideEffects(ctx, tx, n, evt); err != nil {
		return err
	}
	return tx.Commit()
}
