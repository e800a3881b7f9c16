package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

type summaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) ports.SummaryRepository {
	return &summaryRepository{
		db: db,
	}
}

// SaveReport upserts by session, so a replayed run overwrites its earlier report.
func (r *summaryRepository) SaveReport(ctx context.Context, report *domain.SessionReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode session report: %w", err)
	}

	query := `
		INSERT INTO session_summaries (session_id, player_id, mode, total_votes, completed, reward, payload, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id) DO UPDATE
		SET total_votes = EXCLUDED.total_votes,
		    completed = EXCLUDED.completed,
		    reward = EXCLUDED.reward,
		    payload = EXCLUDED.payload,
		    ended_at = EXCLUDED.ended_at;
	`
	_, err = r.db.ExecContext(ctx, query,
		report.SessionID,
		report.PlayerID,
		report.Mode,
		report.Summary.TotalVotes,
		report.Summary.Completed,
		report.Summary.Reward,
		payload,
		report.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session report: %w", err)
	}
	return nil
}

func (r *summaryRepository) GetReport(ctx context.Context, sessionID uuid.UUID) (*domain.SessionReport, error) {
	query := `SELECT payload FROM session_summaries WHERE session_id = $1`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session report: %w", err)
	}

	report := &domain.SessionReport{}
	if err := json.Unmarshal(payload, report); err != nil {
		return nil, fmt.Errorf("failed to decode session report: %w", err)
	}
	return report, nil
}
