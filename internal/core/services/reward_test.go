package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewardPolicy_Reward(t *testing.T) {
	live := LiveRewardPolicy()
	demo := DemoRewardPolicy()

	tests := []struct {
		name      string
		policy    RewardPolicy
		completed bool
		inTime    bool
		votes     int
		want      float64
	}{
		{name: "live timeout no votes", policy: live, want: 0},
		{name: "live completed", policy: live, completed: true, inTime: true, votes: 6, want: 100},
		{name: "live in time only", policy: live, inTime: true, votes: 3, want: 50},
		{name: "live step bonus", policy: live, votes: 25, want: 10},
		{name: "live completed with steps", policy: live, completed: true, votes: 10, want: 105},
		{name: "demo completed", policy: demo, completed: true, votes: 3, want: 0.005},
		{name: "demo first tier", policy: demo, votes: 5, want: 0.001},
		{name: "demo both tiers", policy: demo, completed: true, votes: 10, want: 0.008},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.Reward(tt.completed, tt.inTime, tt.votes)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRewardPolicy_NonDecreasingInVotes(t *testing.T) {
	for _, policy := range []RewardPolicy{LiveRewardPolicy(), DemoRewardPolicy()} {
		for _, completed := range []bool{false, true} {
			for _, inTime := range []bool{false, true} {
				prev := policy.Reward(completed, inTime, 0)
				for votes := 1; votes <= 50; votes++ {
					got := policy.Reward(completed, inTime, votes)
					assert.GreaterOrEqual(t, got, prev, "votes=%d", votes)
					prev = got
				}
			}
		}
	}
}

func TestRewardPolicy_Validate(t *testing.T) {
	assert.NoError(t, LiveRewardPolicy().Validate())
	assert.NoError(t, DemoRewardPolicy().Validate())
	assert.Error(t, RewardPolicy{CompletionReward: -1}.Validate())
	assert.Error(t, RewardPolicy{StepVotes: -1}.Validate())
	assert.Error(t, RewardPolicy{Tiers: []VoteTier{{MinVotes: 3, Bonus: -0.1}}}.Validate())
}
