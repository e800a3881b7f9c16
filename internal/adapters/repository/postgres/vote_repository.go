package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

// VoteLedger stores every live vote in meme_votes and charges the swipe fee
// against the player's balance in the same transaction.
type VoteLedger struct {
	db  *sql.DB
	fee int64
}

func NewVoteLedger(db *sql.DB, fee int64) *VoteLedger {
	return &VoteLedger{
		db:  db,
		fee: fee,
	}
}

func (l *VoteLedger) ForPlayer(playerID, sessionID uuid.UUID) ports.VoteRecorder {
	return &ledgerRecorder{ledger: l, playerID: playerID, sessionID: sessionID}
}

type ledgerRecorder struct {
	ledger    *VoteLedger
	playerID  uuid.UUID
	sessionID uuid.UUID
}

func (r *ledgerRecorder) RecordVote(ctx context.Context, memeID int, choice domain.Choice) (string, error) {
	vote := &domain.Vote{
		ID:        uuid.New(),
		SessionID: r.sessionID,
		PlayerID:  r.playerID,
		MemeID:    memeID,
		Choice:    choice,
		Fee:       r.ledger.fee,
	}
	if err := r.ledger.SaveVote(ctx, vote); err != nil {
		return "", err
	}
	return vote.ID.String(), nil
}

// SaveVote debits the fee and inserts the vote, or does neither.
func (l *VoteLedger) SaveVote(ctx context.Context, vote *domain.Vote) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin vote transaction: %w", err)
	}
	defer tx.Rollback()

	if vote.Fee > 0 {
		var credits int64
		var playerID uuid.UUID
		var updatedAt sql.NullTime
		err := tx.QueryRowContext(ctx, debitQuery, vote.PlayerID, vote.Fee).Scan(&playerID, &credits, &updatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrInsufficientBalance
			}
			return fmt.Errorf("failed to charge vote fee: %w", err)
		}
	}

	query := `
		INSERT INTO meme_votes (id, session_id, player_id, meme_id, choice, fee)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err = tx.QueryRowContext(ctx, query, vote.ID, vote.SessionID, vote.PlayerID, vote.MemeID, vote.Choice, vote.Fee).Scan(&vote.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit vote: %w", err)
	}
	return nil
}

func (l *VoteLedger) ListMemeIDs(ctx context.Context) ([]int, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT DISTINCT meme_id FROM meme_votes ORDER BY meme_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list voted memes: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan meme id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meme ids: %w", err)
	}
	return ids, nil
}
