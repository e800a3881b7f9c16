package domain

import "time"

type MemeResult struct {
	MemeID        int       `json:"meme_id"`
	Likes         int64     `json:"likes"`
	Dislikes      int64     `json:"dislikes"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

func (r MemeResult) Total() int64 {
	return r.Likes + r.Dislikes
}

func (r MemeResult) LikeRate() float64 {
	if r.Total() == 0 {
		return 0
	}
	return float64(r.Likes) / float64(r.Total())
}

type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	Meme       Meme    `json:"meme"`
	Likes      int64   `json:"likes"`
	Dislikes   int64   `json:"dislikes"`
	TotalVotes int64   `json:"total_votes"`
	LikeRate   float64 `json:"like_rate"`
}
