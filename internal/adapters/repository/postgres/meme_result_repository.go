package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vncsmyrnk/memebattle/internal/core/domain"
	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

type memeResultRepository struct {
	db *sql.DB
}

func NewMemeResultRepository(db *sql.DB) ports.MemeResultRepository {
	return &memeResultRepository{
		db: db,
	}
}

func (r *memeResultRepository) SummarizeVotes(ctx context.Context, memeID int) error {
	query := `
		INSERT INTO meme_results (meme_id, likes, dislikes, last_updated_at)
		SELECT meme_id,
		       COUNT(*) FILTER (WHERE choice = 'like'),
		       COUNT(*) FILTER (WHERE choice = 'dislike'),
		       NOW()
		FROM meme_votes
		WHERE meme_id = $1
		GROUP BY meme_id
		ON CONFLICT (meme_id) DO UPDATE
		SET likes = EXCLUDED.likes,
		    dislikes = EXCLUDED.dislikes,
		    last_updated_at = NOW();
	`

	_, err := r.db.ExecContext(ctx, query, memeID)
	if err != nil {
		return fmt.Errorf("failed to summarize votes for meme %d: %w", memeID, err)
	}

	return nil
}

func (r *memeResultRepository) ListResults(ctx context.Context) ([]domain.MemeResult, error) {
	query := `
		SELECT meme_id, likes, dislikes, last_updated_at
		FROM meme_results
		ORDER BY meme_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meme results: %w", err)
	}
	defer rows.Close()

	var results []domain.MemeResult
	for rows.Next() {
		var res domain.MemeResult
		if err := rows.Scan(&res.MemeID, &res.Likes, &res.Dislikes, &res.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meme result: %w", err)
		}
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meme results: %w", err)
	}

	return results, nil
}
