package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// SQLRepository is the PostgreSQL store behind every repository port.
type SQLRepository struct {
	db *sql.DB
}

var (
	_ ports.ProfileRepository      = (*SQLRepository)(nil)
	_ ports.ProgramRepository      = (*SQLRepository)(nil)
	_ ports.ApplicationRepository  = (*SQLRepository)(nil)
	_ ports.NotificationRepository = (*SQLRepository)(nil)
)

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Migrate applies the embedded schema migrations up to the latest version.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// insertSideEffects writes the notification and outbox row that accompany an application change.
func insertSideEffects(ctx context.Context, tx *sql.Tx, n domain.Notification, evt domain.OutboxEvent) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, title, message, is_read, created_at)
		 VALUES ($1, $2, $3, $4, FALSE, $5)`,
		n.ID, n.UserID, n.Title, n.Message, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox_events (id, event_type, payload) VALUES ($1, $2, $3)`,
		evt.ID, evt.EventType, evt.Payload,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}
