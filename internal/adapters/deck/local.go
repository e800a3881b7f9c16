package deck

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vncsmyrnk/memebattle/internal/core/domain"
	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

// DefaultFiles are the meme screenshots shipped with the game, in deck order.
var DefaultFiles = []string{
	"Screenshot 2025-08-02 at 15.43.04.png",
	"Screenshot 2025-08-02 at 15.44.54.png",
	"Screenshot 2025-08-02 at 15.47.39.png",
	"Screenshot 2025-08-02 at 15.50.41.png",
	"Screenshot 2025-08-02 at 15.52.21.png",
	"Screenshot 2025-08-02 at 15.53.30.png",
}

const urlPrefix = "/memes/"

type localDeck struct {
	files []string
	dir   string
}

// NewLocalDeck serves files as memes numbered by their position. When dir is
// set, files that are not present in it are left out of the deck.
func NewLocalDeck(files []string, dir string) ports.DeckProvider {
	return &localDeck{
		files: append([]string(nil), files...),
		dir:   dir,
	}
}

func (d *localDeck) Deck(ctx context.Context) ([]domain.Meme, error) {
	memes := make([]domain.Meme, 0, len(d.files))
	for i, filename := range d.files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if d.dir != "" {
			exists, err := fileExists(filepath.Join(d.dir, filename))
			if err != nil {
				return nil, fmt.Errorf("failed to check meme file %s: %w", filename, err)
			}
			if !exists {
				continue
			}
		}

		memes = append(memes, memeAt(i, filename))
	}

	if len(memes) == 0 {
		return nil, domain.ErrDeckUnavailable
	}
	return memes, nil
}

func memeAt(i int, filename string) domain.Meme {
	n := i + 1
	return domain.Meme{
		ID:          n,
		ImageURL:    urlPrefix + filename,
		Title:       fmt.Sprintf("Meme #%d", n),
		Description: fmt.Sprintf("Meme number %d - cast your vote!", n),
	}
}

func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}
