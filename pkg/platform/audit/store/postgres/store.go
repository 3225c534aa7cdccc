package postgres

import (
	"context"
	"database/sql"
	"fmt"

	id "vouch/pkg/domain"
	audit "vouch/pkg/platform/audit"
)

// Store persists the audit stream to PostgreSQL. The seq column carries the
// logical timestamp of the recorded mutation, so reads ordered by seq
// reproduce the global total order.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the audit_events table. Kept here rather than in a
// migration tool because the sink owns exactly one table.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_events (
			seq        BIGINT NOT NULL,
			principal  TEXT   NOT NULL,
			action     TEXT   NOT NULL,
			subject    TEXT   NOT NULL DEFAULT '',
			decision   TEXT   NOT NULL DEFAULT '',
			request_id TEXT   NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS audit_events_principal_idx
			ON audit_events (principal, seq);
	`)
	if err != nil {
		return fmt.Errorf("migrate audit_events: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (seq, principal, action, subject, decision, request_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		int64(event.Seq),
		event.Principal.String(),
		event.Action,
		event.Subject,
		event.Decision,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByPrincipal(ctx context.Context, principal id.Principal) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, principal, action, subject, decision, request_id
		FROM audit_events
		WHERE principal = $1
		ORDER BY seq`,
		principal.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Store) ListAll(ctx context.Context) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, principal, action, subject, decision, request_id
		FROM audit_events
		ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			seq       int64
			principal string
			event     audit.Event
		)
		if err := rows.Scan(&seq, &principal, &event.Action, &event.Subject, &event.Decision, &event.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Seq = id.LogicalTime(seq)
		event.Principal = id.Principal(principal)
		events = append(events, event)
	}
	return events, rows.Err()
}
