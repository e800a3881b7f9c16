package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vncsmyrnk/memebattle/internal/core/domain"
	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

type leaderboardService struct {
	deck       ports.DeckProvider
	voteRepo   ports.VoteRepository
	resultRepo ports.MemeResultRepository
}

func NewLeaderboardService(deck ports.DeckProvider, voteRepo ports.VoteRepository, resultRepo ports.MemeResultRepository) ports.LeaderboardService {
	return &leaderboardService{
		deck:       deck,
		voteRepo:   voteRepo,
		resultRepo: resultRepo,
	}
}

func (s *leaderboardService) SummarizeAllVotes(ctx context.Context) error {
	memeIDs, err := s.voteRepo.ListMemeIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch voted memes: %w", err)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(memeIDs))

	for _, memeID := range memeIDs {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := s.resultRepo.SummarizeVotes(ctx, id); err != nil {
				errChan <- fmt.Errorf("failed to summarize meme %d: %w", id, err)
			}
		}(memeID)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	return nil
}

// Leaderboard ranks memes by like rate, then by vote count, then by ID.
// Memes missing from the current deck keep a placeholder title.
func (s *leaderboardService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	results, err := s.resultRepo.ListResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list meme results: %w", err)
	}

	memes := make(map[int]domain.Meme)
	if deck, err := s.deck.Deck(ctx); err == nil {
		for _, meme := range deck {
			memes[meme.ID] = meme
		}
	}

	entries := make([]domain.LeaderboardEntry, 0, len(results))
	for _, r := range results {
		meme, ok := memes[r.MemeID]
		if !ok {
			meme = domain.Meme{ID: r.MemeID, Title: fmt.Sprintf("Meme #%d", r.MemeID)}
		}
		entries = append(entries, domain.LeaderboardEntry{
			Meme:       meme,
			Likes:      r.Likes,
			Dislikes:   r.Dislikes,
			TotalVotes: r.Total(),
			LikeRate:   r.LikeRate(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].LikeRate != entries[j].LikeRate {
			return entries[i].LikeRate > entries[j].LikeRate
		}
		if entries[i].TotalVotes != entries[j].TotalVotes {
			return entries[i].TotalVotes > entries[j].TotalVotes
		}
		return entries[i].Meme.ID < entries[j].Meme.ID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries, nil
}
