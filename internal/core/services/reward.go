package services

import (
	"errors"
	"fmt"
	"sort"
)

// VoteTier adds Bonus once a session reaches MinVotes votes.
type VoteTier struct {
	MinVotes int
	Bonus    float64
}

// RewardPolicy prices a finished session. Completing the deck takes precedence
// over finishing with time left; the two are never paid together.
type RewardPolicy struct {
	CompletionReward float64
	InTimeReward     float64
	// StepVotes and StepBonus pay StepBonus for every StepVotes votes cast.
	StepVotes int
	StepBonus float64
	Tiers     []VoteTier
}

// LiveRewardPolicy pays points in the on-chain game.
func LiveRewardPolicy() RewardPolicy {
	return RewardPolicy{
		CompletionReward: 100,
		InTimeReward:     50,
		StepVotes:        10,
		StepBonus:        5,
	}
}

// DemoRewardPolicy pays in native token units in the wallet-free demo.
func DemoRewardPolicy() RewardPolicy {
	return RewardPolicy{
		CompletionReward: 0.005,
		InTimeReward:     0.002,
		Tiers: []VoteTier{
			{MinVotes: 5, Bonus: 0.001},
			{MinVotes: 10, Bonus: 0.002},
		},
	}
}

func (p RewardPolicy) Validate() error {
	if p.CompletionReward < 0 || p.InTimeReward < 0 || p.StepBonus < 0 {
		return errors.New("reward amounts must not be negative")
	}
	if p.StepVotes < 0 {
		return errors.New("reward step must not be negative")
	}
	for _, tier := range p.Tiers {
		if tier.Bonus < 0 || tier.MinVotes < 0 {
			return fmt.Errorf("invalid reward tier %+v", tier)
		}
	}
	return nil
}

// Reward is pure and non-decreasing in totalVotes as long as the policy validates.
func (p RewardPolicy) Reward(completed, finishedWithTimeRemaining bool, totalVotes int) float64 {
	reward := 0.0
	if completed {
		reward += p.CompletionReward
	} else if finishedWithTimeRemaining {
		reward += p.InTimeReward
	}

	if p.StepVotes > 0 && totalVotes > 0 {
		reward += float64(totalVotes/p.StepVotes) * p.StepBonus
	}

	tiers := append([]VoteTier(nil), p.Tiers...)
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].MinVotes < tiers[j].MinVotes })
	for _, tier := range tiers {
		if totalVotes >= tier.MinVotes {
			reward += tier.Bonus
		}
	}

	return reward
}
