package services

import (
	"math"
	"sort"
	"time"

	"github.com/vncsmyrnk/memebattle/internal/core/domain"
)

// Summarize builds the end-of-session report. It only reads its inputs, so two
// calls with the same arguments produce equal summaries.
func Summarize(deck []domain.Meme, votes []domain.VoteRecord, currentIndex int, remaining time.Duration, policy RewardPolicy) domain.SessionSummary {
	summary := domain.SessionSummary{
		Completed:                 currentIndex >= len(deck),
		FinishedWithTimeRemaining: remaining > 0,
		Stats:                     []domain.MemeStats{},
		Rankings:                  []domain.MemeStats{},
	}

	byID := make(map[int]domain.Meme, len(deck))
	for _, meme := range deck {
		byID[meme.ID] = meme
	}

	position := make(map[int]int)
	for _, vote := range votes {
		idx, seen := position[vote.MemeID]
		if !seen {
			meme, ok := byID[vote.MemeID]
			if !ok {
				meme = domain.Meme{ID: vote.MemeID}
			}
			idx = len(summary.Stats)
			position[vote.MemeID] = idx
			summary.Stats = append(summary.Stats, domain.MemeStats{Meme: meme})
		}

		stat := &summary.Stats[idx]
		switch vote.Choice {
		case domain.ChoiceLike:
			stat.Likes++
			summary.Likes++
		case domain.ChoiceDislike:
			stat.Dislikes++
			summary.Dislikes++
		}
		stat.Total++
	}
	summary.TotalVotes = summary.Likes + summary.Dislikes

	var mostLiked, mostDisliked, mostDivisive *domain.MemeStats
	for i := range summary.Stats {
		stat := &summary.Stats[i]
		if stat.Total == 0 {
			continue
		}
		stat.LikeRate = float64(stat.Likes) / float64(stat.Total)

		if mostLiked == nil || stat.LikeRate > mostLiked.LikeRate {
			mostLiked = stat
		}
		if mostDisliked == nil || stat.LikeRate < mostDisliked.LikeRate {
			mostDisliked = stat
		}
		if mostDivisive == nil || divisiveness(stat.LikeRate) < divisiveness(mostDivisive.LikeRate) {
			mostDivisive = stat
		}
	}
	summary.MostLiked = memeRef(mostLiked)
	summary.MostDisliked = memeRef(mostDisliked)
	summary.MostDivisive = memeRef(mostDivisive)

	summary.Rankings = append(summary.Rankings, summary.Stats...)
	sort.SliceStable(summary.Rankings, func(i, j int) bool {
		return summary.Rankings[i].LikeRate > summary.Rankings[j].LikeRate
	})

	summary.Reward = policy.Reward(summary.Completed, summary.FinishedWithTimeRemaining, summary.TotalVotes)
	return summary
}

func divisiveness(likeRate float64) float64 {
	return math.Abs(0.5 - likeRate)
}

func memeRef(stat *domain.MemeStats) *domain.Meme {
	if stat == nil {
		return nil
	}
	meme := stat.Meme
	return &meme
}
