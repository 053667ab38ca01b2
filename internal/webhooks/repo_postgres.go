package webhooks

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"rc-analytics/pkg/utils"
)

// Postgres tables. Each row keeps the whole document as JSONB; seq preserves arrival order.
const (
	PostgresMissedCallsTable = "missed_calls"
	PostgresSMSTable         = "sms_messages"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS ` + PostgresMissedCallsTable + ` (
		seq        BIGSERIAL PRIMARY KEY,
		id         TEXT NOT NULL,
		doc        JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ` + PostgresSMSTable + ` (
		seq        BIGSERIAL PRIMARY KEY,
		id         TEXT NOT NULL,
		doc        JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// PostgresRepo stores webhook documents as JSONB through database/sql (pgx stdlib driver).
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

// EnsureSchema creates the document tables if they do not exist.
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("ensure webhook schema: %w", err)
			}
		}
		return nil
	})
}

func (r *PostgresRepo) InsertMissedCall(ctx context.Context, m MissedCall) error {
	return r.insert(ctx, PostgresMissedCallsTable, m.ID, m, m.CreatedAt)
}

func (r *PostgresRepo) ListMissedCalls(ctx context.Context) ([]MissedCall, error) {
	out := []MissedCall{}
	err := r.list(ctx, PostgresMissedCallsTable, func(doc []byte) error {
		var m MissedCall
		if err := json.Unmarshal(doc, &m); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

func (r *PostgresRepo) InsertSMS(ctx context.Context, m SMSMessage) error {
	return r.insert(ctx, PostgresSMSTable, m.ID, m, m.CreatedAt)
}

func (r *PostgresRepo) ListSMS(ctx context.Context) ([]SMSMessage, error) {
	out := []SMSMessage{}
	err := r.list(ctx, PostgresSMSTable, func(doc []byte) error {
		var m SMSMessage
		if err := json.Unmarshal(doc, &m); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

func (r *PostgresRepo) insert(ctx context.Context, table, id string, doc any, createdAt time.Time) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO `+table+` (id, doc, created_at) VALUES ($1, $2, $3)`,
		id, string(b), createdAt,
	)
	return err
}

func (r *PostgresRepo) list(ctx context.Context, table string, scan func(doc []byte) error) error {
	rows, err := r.db.QueryContext(ctx, `SELECT doc FROM `+table+` ORDER BY seq`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return err
		}
		if err := scan(doc); err != nil {
			return err
		}
	}
	return rows.Err()
}
