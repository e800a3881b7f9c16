package ports

import (
	"context"

	"github.com/vncsmyrnk/memebattle/internal/core/domain"
)

// DeckProvider supplies the ordered memes of a session. Length and order must
// stay the same for the lifetime of a session.
type DeckProvider interface {
	Deck(ctx context.Context) ([]domain.Meme, error)
}
