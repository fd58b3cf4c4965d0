package attendance

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Repository persists the gateway-side scan journal in Postgres. The upstream
// attendance server stays the system of record; the journal only backs the
// recent-attendance view and notification tracking.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertEvent writes a normalized scan event to the journal.
func (r *Repository) InsertEvent(ctx context.Context, evt Event) (Event, error) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if evt.Status == "" {
		evt.Status = StatusEntered
	}
	if evt.MessageStatus == "" {
		evt.MessageStatus = MessagePending
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO scan_events (id, index_number, name, status, occurred_at, message_status,
			parent_telephone, student_email, address, device_info, location)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at
	`, evt.ID, evt.IndexNumber, evt.Name, evt.Status, evt.Timestamp, evt.MessageStatus,
		evt.ParentTelephone, evt.StudentEmail, evt.Address, evt.DeviceInfo, evt.Location)
	if err := row.Scan(&evt.CreatedAt); err != nil {
		return Event{}, err
	}
	return evt, nil
}

// GetEvent returns a single journal entry by id.
func (r *Repository) GetEvent(ctx context.Context, id string) (Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, index_number, name, status, occurred_at, message_status,
			parent_telephone, student_email, address, device_info, location, created_at
		FROM scan_events WHERE id = $1
	`, id)
	return scanEvent(row)
}

// UpdateMessageStatus records the notification outcome for an event.
func (r *Repository) UpdateMessageStatus(ctx context.Context, id string, status MessageStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE scan_events SET message_status = $2 WHERE id = $1
	`, id, status)
	return err
}

// ListSince returns journal entries at or after the cutoff, newest first.
func (r *Repository) ListSince(ctx context.Context, cutoff time.Time, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, index_number, name, status, occurred_at, message_status,
			parent_telephone, student_email, address, device_info, location, created_at
		FROM scan_events
		WHERE occurred_at >= $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Event
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, evt)
	}
	return res, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (Event, error) {
	var evt Event
	if err := row.Scan(&evt.ID, &evt.IndexNumber, &evt.Name, &evt.Status, &evt.Timestamp,
		&evt.MessageStatus, &evt.ParentTelephone, &evt.StudentEmail, &evt.Address,
		&evt.DeviceInfo, &evt.Location, &evt.CreatedAt); err != nil {
		return Event{}, err
	}
	return evt, nil
}
