package store

import (
	"context"
	"time"

	"github.com/clawsec/toolgate/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DecisionStore persists audited gate outcomes to Postgres. Callers treat
// it as best-effort: insert failures are logged upstream, never surfaced to
// the call path.
type DecisionStore struct {
	db *pgxpool.Pool
}

func NewDecisionStore(db *pgxpool.Pool) *DecisionStore {
	return &DecisionStore{db: db}
}

func (s *DecisionStore) Record(ctx context.Context, d *domain.Decision) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO decisions (id, agent_id, source_id, tool_name, allowed, reason, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		d.ID, d.AgentID, d.SourceID, d.ToolName, d.Allowed, d.Reason, d.Duration.Milliseconds(),
	).Scan(&d.CreatedAt)
}

// ListRecent returns the newest decisions, most recent first.
func (s *DecisionStore) ListRecent(ctx context.Context, limit int) ([]domain.Decision, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, agent_id, source_id, tool_name, allowed, reason, duration_ms, created_at
		 FROM decisions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Decision
	for rows.Next() {
		var d domain.Decision
		var ms int64
		if err := rows.Scan(&d.ID, &d.AgentID, &d.SourceID, &d.ToolName, &d.Allowed, &d.Reason, &ms, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, d)
	}
	return out, rows.Err()
}
