package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/config"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

const (
	// PostgreSQL NOTIFY/LISTEN configuration
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute
	outboxChannelName            = "outbox_channel"

	// Event processing timeouts
	eventProcessTimeout     = 30 * time.Second
	batchProcessTimeout     = 60 * time.Second
	periodicProcessInterval = 90 * time.Second

	healthCheckStaleThreshold = 5 * time.Minute

	maxEventsPerBatch = 100
)

// Relay listens for PostgreSQL NOTIFY signals on the outbox_channel
// and publishes application events to the broker.
type Relay struct {
	db            *sql.DB
	publisher     ports.ApplicationEventPublisher
	dbURL         string
	dbCB          *gobreaker.CircuitBreaker
	logger        *zap.Logger
	lastProcessed atomic.Int64
	healthy       atomic.Bool
}

func NewRelay(db *sql.DB, dbURL string, publisher ports.ApplicationEventPublisher, logger *zap.Logger) *Relay {
	r := &Relay{
		db:        db,
		dbURL:     dbURL,
		publisher: publisher,
		dbCB:      config.NewCircuitBreaker(config.BreakerRelayPostgres, logger),
		logger:    logger,
	}
	r.markProcessed()
	return r
}

// IsHealthy is the liveness signal: the process is running and the listener is connected.
// An open circuit is degraded but recoverable and does not count against it.
func (r *Relay) IsHealthy() bool {
	return r.healthy.Load()
}

// IsReady reports whether the relay can currently make progress.
func (r *Relay) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}
	if time.Since(time.Unix(0, r.lastProcessed.Load())) > healthCheckStaleThreshold {
		return false
	}
	return r.healthy.Load()
}

func (r *Relay) markProcessed() {
	r.lastProcessed.Store(time.Now().UnixNano())
	r.healthy.Store(true)
}

// Start listens for outbox notifications until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Warn("outbox listener error", zap.Error(err))
		}
	}

	listener := pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer listener.Close()

	if err := listener.Listen(outboxChannelName); err != nil {
		return err
	}
	r.logger.Info("outbox relay listening", zap.String("channel", outboxChannelName))

	// Catch up on anything written while the relay was down.
	if err := r.processUnprocessedEvents(ctx); err != nil {
		r.logger.Error("processing startup backlog", zap.Error(err))
	}

	ticker := time.NewTicker(periodicProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay shutting down")
			return ctx.Err()

		case notification := <-listener.Notify:
			if notification == nil {
				r.logger.Warn("outbox listener reconnecting")
				r.healthy.Store(false)
				continue
			}

			if err := r.processEventByID(ctx, notification.Extra); err != nil {
				r.logger.Error("processing event", zap.String("event_id", notification.Extra), zap.Error(err))
			} else {
				r.markProcessed()
			}

		case <-ticker.C:
			go listener.Ping()

			if err := r.processUnprocessedEvents(ctx); err != nil {
				r.logger.Error("periodic outbox sweep", zap.Error(err))
			} else {
				r.markProcessed()
			}
		}
	}
}

func (r *Relay) processEventByID(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	// Broker failures are carried out separately so only database errors count
	// against the database breaker.
	var publishErr error
	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var evt domain.OutboxEvent
		err = tx.QueryRowContext(ctx, `
			SELECT id, event_type, payload
			FROM outbox_events
			WHERE id = $1 AND processed_at IS NULL
			FOR UPDATE SKIP LOCKED`, eventID).Scan(&evt.ID, &evt.EventType, &evt.Payload)
		if errors.Is(err, sql.ErrNoRows) {
			// Already handled by a sweep or another relay.
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if publishErr = r.publish(ctx, evt); publishErr != nil {
			return nil, nil
		}
		if err := markEventProcessed(ctx, tx, evt.ID); err != nil {
			return nil, err
		}
		return nil, tx.Commit()
	})
	if err != nil {
		return err
	}
	return publishErr
}

func (r *Relay) processUnprocessedEvents(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		rows, err := tx.QueryContext(ctx, `
			SELECT id, event_type, payload
			FROM outbox_events
			WHERE processed_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED`, maxEventsPerBatch)
		if err != nil {
			return nil, err
		}

		var events []domain.OutboxEvent
		for rows.Next() {
			var evt domain.OutboxEvent
			if err := rows.Scan(&evt.ID, &evt.EventType, &evt.Payload); err != nil {
				rows.Close()
				return nil, err
			}
			events = append(events, evt)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		for _, evt := range events {
			if err := r.publish(ctx, evt); err != nil {
				// Left unprocessed for the next sweep.
				continue
			}
			if err := markEventProcessed(ctx, tx, evt.ID); err != nil {
				return nil, err
			}
			r.logger.Debug("outbox event relayed", zap.String("event_id", evt.ID))
		}

		return nil, tx.Commit()
	})
	return err
}

// publish sends evt unless its payload is unusable, in which case it is
// dropped so it does not block the queue forever.
func (r *Relay) publish(ctx context.Context, evt domain.OutboxEvent) error {
	switch evt.EventType {
	case domain.EventApplicationSubmitted, domain.EventApplicationDecided:
	default:
		r.logger.Warn("dropping outbox event of unknown type",
			zap.String("event_id", evt.ID), zap.String("event_type", evt.EventType))
		return nil
	}

	var payload domain.ApplicationEvent
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		r.logger.Warn("dropping outbox event with invalid payload", zap.String("event_id", evt.ID), zap.Error(err))
		return nil
	}

	if err := r.publisher.PublishApplicationEvent(ctx, evt); err != nil {
		r.logger.Error("publishing outbox event", zap.String("event_id", evt.ID), zap.Error(err))
		return err
	}
	return nil
}

func markEventProcessed(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id)
	return err
}
