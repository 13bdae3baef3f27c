package repository

import (
	"context"
	"encoding/json"

	"pvp_escrow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository handles audit log database operations
type AuditRepository struct {
	db *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateWithTx inserts an audit entry inside the operation's transaction, so
// the trail and the state change land together or not at all.
func (r *AuditRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, log *domain.AuditLog) error {
	detailJSON, err := json.Marshal(log.Detail)
	if err != nil {
		detailJSON = []byte("{}")
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO audit_log (match_id, actor, action, detail)
		VALUES ($1, $2, $3, $4)
	`, log.MatchID, log.Actor, log.Action, detailJSON)
	return err
}

// Create inserts an audit entry outside a transaction, for operations that
// touch no match row.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	detailJSON, err := json.Marshal(log.Detail)
	if err != nil {
		detailJSON = []byte("{}")
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO audit_log (match_id, actor, action, detail)
		VALUES ($1, $2, $3, $4)
	`, log.MatchID, log.Actor, log.Action, detailJSON)
	return err
}

// GetByMatch returns the audit trail of one match, oldest first.
func (r *AuditRepository) GetByMatch(ctx context.Context, matchID string, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, match_id, actor, action, detail, created_at
		FROM audit_log
		WHERE match_id = $1
		ORDER BY id
		LIMIT $2
	`, matchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAuditLogs(rows)
}

// GetRecent returns the most recent audit entries.
func (r *AuditRepository) GetRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, match_id, actor, action, detail, created_at
		FROM audit_log
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAuditLogs(rows)
}

func scanAuditLogs(rows pgx.Rows) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	for rows.Next() {
		var log domain.AuditLog
		var detailJSON []byte
		if err := rows.Scan(&log.ID, &log.MatchID, &log.Actor, &log.Action, &detailJSON, &log.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(detailJSON, &log.Detail); err != nil {
			log.Detail = make(map[string]any)
		}
		logs = append(logs, &log)
	}
	return logs, rows.Err()
}
