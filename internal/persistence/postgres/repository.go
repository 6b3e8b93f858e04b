// Package postgres provides pgx-backed persistence for activity records,
// sync checkpoints, and outbox events.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/wellness/internal/domain"
	"example.com/wellness/internal/events"
	"example.com/wellness/internal/observability"
)

// Repository implements domain.ActivityStore on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const insertActivity = `INSERT INTO activities (user_id, activity_date, activity_type, value, unit)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`

// Insert persists one record and its outbox event in a single transaction,
// assigning id and created_at.
func (r *Repository) Insert(ctx context.Context, rec domain.ActivityRecord) (domain.ActivityRecord, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.ActivityRecord{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	rec, err = insertRecord(ctx, tx, rec, events.SourceManual)
	if err != nil {
		return domain.ActivityRecord{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return domain.ActivityRecord{}, err
	}
	observability.RecordActivityPersisted(rec.CreatedAt)
	return rec, nil
}

func insertRecord(ctx context.Context, tx pgx.Tx, rec domain.ActivityRecord, source string) (domain.ActivityRecord, error) {
	row := tx.QueryRow(ctx, insertActivity,
		rec.UserID,
		rec.Date,
		string(rec.Type),
		rec.Value,
		rec.Unit,
	)
	if err := row.Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return domain.ActivityRecord{}, err
	}

	err := insertOutbox(ctx, tx, "activity.logged", rec.UserID, strconv.FormatInt(rec.ID, 10), events.ActivityLogged{
		ActivityID:   rec.ID,
		UserID:       rec.UserID,
		Date:         rec.Date.Format(domain.DateOnly),
		ActivityType: string(rec.Type),
		Value:        rec.Value,
		Unit:         rec.Unit,
		Source:       source,
		CreatedAt:    rec.CreatedAt,
	})
	if err != nil {
		return domain.ActivityRecord{}, err
	}
	return rec, nil
}

// Query returns the user's records ordered by date descending, ties broken
// by id ascending so repeated fetches are deterministic.
func (r *Repository) Query(ctx context.Context, userID string, filter domain.QueryFilter) ([]domain.ActivityRecord, error) {
	query := `SELECT id, user_id, activity_date, activity_type, value, unit, created_at
        FROM activities WHERE user_id=$1`
	args := []interface{}{userID}

	if filter.Start != nil {
		args = append(args, *filter.Start)
		query += fmt.Sprintf(` AND activity_date >= $%d`, len(args))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		query += fmt.Sprintf(` AND activity_date <= $%d`, len(args))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		query += fmt.Sprintf(` AND activity_type = $%d`, len(args))
	}

	query += ` ORDER BY activity_date DESC, id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.ActivityRecord, 0)
	for rows.Next() {
		var rec domain.ActivityRecord
		var typ string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Date, &typ, &rec.Value, &rec.Unit, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Type = domain.ActivityType(typ)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// CommitSyncBatch inserts every record plus one checkpoint for userID in one
// transaction. Any failure rolls the whole batch back, checkpoint included.
func (r *Repository) CommitSyncBatch(ctx context.Context, userID string, recs []domain.ActivityRecord) ([]domain.ActivityRecord, domain.SyncCheckpoint, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, domain.SyncCheckpoint{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	stored := make([]domain.ActivityRecord, 0, len(recs))
	for _, rec := range recs {
		var inserted domain.ActivityRecord
		inserted, err = insertRecord(ctx, tx, rec, events.SourceDevice)
		if err != nil {
			return nil, domain.SyncCheckpoint{}, err
		}
		stored = append(stored, inserted)
	}

	checkpoint := domain.SyncCheckpoint{UserID: userID}
	row := tx.QueryRow(ctx,
		`INSERT INTO device_syncs (user_id, sync_date, last_sync_at)
         VALUES ($1, CURRENT_DATE, NOW())
         RETURNING id, sync_date, last_sync_at`,
		userID,
	)
	if err = row.Scan(&checkpoint.ID, &checkpoint.SyncDate, &checkpoint.LastSyncAt); err != nil {
		return nil, domain.SyncCheckpoint{}, err
	}

	err = insertOutbox(ctx, tx, "device.synced", userID, strconv.FormatInt(checkpoint.ID, 10), events.DeviceSynced{
		CheckpointID: checkpoint.ID,
		UserID:       userID,
		SyncDate:     checkpoint.SyncDate.Format(domain.DateOnly),
		RecordCount:  len(stored),
		SyncedAt:     checkpoint.LastSyncAt,
	})
	if err != nil {
		return nil, domain.SyncCheckpoint{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, domain.SyncCheckpoint{}, err
	}
	observability.RecordSyncCompleted(checkpoint.LastSyncAt)
	observability.RecordSyncBatchSize(len(stored))
	return stored, checkpoint, nil
}

// LatestSyncCheckpoint returns the checkpoint with the greatest last_sync_at
// for the user, or nil when the user has never synced.
func (r *Repository) LatestSyncCheckpoint(ctx context.Context, userID string) (*domain.SyncCheckpoint, error) {
	const query = `SELECT id, user_id, sync_date, last_sync_at
        FROM device_syncs WHERE user_id=$1
        ORDER BY last_sync_at DESC, id DESC LIMIT 1`

	row := r.pool.QueryRow(ctx, query, userID)
	var checkpoint domain.SyncCheckpoint
	if err := row.Scan(&checkpoint.ID, &checkpoint.UserID, &checkpoint.SyncDate, &checkpoint.LastSyncAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &checkpoint, nil
}

func insertOutbox(ctx context.Context, tx pgx.Tx, eventType, partitionKey, aggregateID string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload)
        VALUES ($1,$2,$3,$4,$5,$6)`

	_, err = tx.Exec(ctx, stmt,
		meta.AggregateType,
		aggregateID,
		eventType,
		meta.Topic,
		partitionKey,
		body,
	)
	return err
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	AggregateType string
	Topic         string
}

var eventCatalog = map[string]EventMetadata{
	"activity.logged": {
		AggregateType: "activity",
		Topic:         "wellness.activity.events",
	},
	"device.synced": {
		AggregateType: "device_sync",
		Topic:         "wellness.sync.events",
	},
}
