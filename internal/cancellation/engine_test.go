package cancellation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func policy(id uint, name string, hoursBefore int, penaltyType string, penaltyValue float64) CancellationPolicy {
	return CancellationPolicy{
		ID:           id,
		VenueID:      "venue-1",
		Name:         name,
		HoursBefore:  hoursBefore,
		PenaltyType:  penaltyType,
		PenaltyValue: penaltyValue,
		Active:       true,
	}
}

func TestEvaluateSelectsMostSpecificWindow(t *testing.T) {
	policies := []CancellationPolicy{
		policy(1, "48h full deposit", 48, PenaltyFullDeposit, 0),
		policy(2, "24h half deposit", 24, PenaltyPartialDeposit, 50),
	}
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	// 30 hours out only the 48h window has been entered.
	now := start.Add(-30 * time.Hour)
	outcome := Evaluate(policies, start, now, 100)
	assert.Equal(t, 0.0, outcome.Refundable)
	assert.Equal(t, 100.0, outcome.Forfeited)
	assert.Equal(t, uint(1), *outcome.PolicyID)

	// 10 hours out both windows match; the 24h rule is closer to the event.
	now = start.Add(-10 * time.Hour)
	outcome = Evaluate(policies, start, now, 100)
	assert.Equal(t, 50.0, outcome.Refundable)
	assert.Equal(t, 50.0, outcome.Forfeited)
	assert.Equal(t, uint(2), *outcome.PolicyID)
	assert.Equal(t, "24h half deposit", outcome.PolicyName)
}

func TestEvaluateNoMatchRefundsInFull(t *testing.T) {
	policies := []CancellationPolicy{
		policy(1, "48h full deposit", 48, PenaltyFullDeposit, 0),
	}
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)
	now := start.Add(-100 * time.Hour)

	outcome := Evaluate(policies, start, now, 80)
	assert.Equal(t, 80.0, outcome.Refundable)
	assert.Equal(t, 0.0, outcome.Forfeited)
	assert.Nil(t, outcome.PolicyID)
}

func TestEvaluateSkipsInactivePolicies(t *testing.T) {
	inactive := policy(1, "48h full deposit", 48, PenaltyFullDeposit, 0)
	inactive.Active = false
	policies := []CancellationPolicy{inactive}

	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)
	outcome := Evaluate(policies, start, start.Add(-2*time.Hour), 100)
	assert.Equal(t, 100.0, outcome.Refundable)
	assert.Nil(t, outcome.PolicyID)
}

func TestEvaluateTieBreaksOnLowestID(t *testing.T) {
	policies := []CancellationPolicy{
		policy(7, "late rule b", 24, PenaltyPartialDeposit, 75),
		policy(3, "late rule a", 24, PenaltyPartialDeposit, 25),
	}
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	outcome := Evaluate(policies, start, start.Add(-5*time.Hour), 100)
	assert.Equal(t, uint(3), *outcome.PolicyID)
	assert.Equal(t, 25.0, outcome.Forfeited)
}

func TestEvaluateDepositConservation(t *testing.T) {
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)
	now := start.Add(-2 * time.Hour)
	deposit := 120.0

	cases := []struct {
		name   string
		policy CancellationPolicy
	}{
		{"full deposit", policy(1, "p", 24, PenaltyFullDeposit, 0)},
		{"partial deposit", policy(1, "p", 24, PenaltyPartialDeposit, 30)},
		{"percentage", policy(1, "p", 24, PenaltyPercentage, 66)},
		{"fixed amount", policy(1, "p", 24, PenaltyFixedAmount, 45)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome := Evaluate([]CancellationPolicy{tc.policy}, start, now, deposit)
			assert.InDelta(t, deposit, outcome.Refundable+outcome.Forfeited, 1e-9)
			assert.GreaterOrEqual(t, outcome.Refundable, 0.0)
			assert.GreaterOrEqual(t, outcome.Forfeited, 0.0)
		})
	}
}

func TestEvaluateFixedAmountClampsToDeposit(t *testing.T) {
	policies := []CancellationPolicy{
		policy(1, "steep fee", 24, PenaltyFixedAmount, 500),
	}
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	outcome := Evaluate(policies, start, start.Add(-1*time.Hour), 60)
	assert.Equal(t, 0.0, outcome.Refundable)
	assert.Equal(t, 60.0, outcome.Forfeited)
}

func TestEvaluateZeroDeposit(t *testing.T) {
	policies := []CancellationPolicy{
		policy(1, "48h full deposit", 48, PenaltyFullDeposit, 0),
	}
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	outcome := Evaluate(policies, start, start.Add(-1*time.Hour), 0)
	assert.Equal(t, 0.0, outcome.Refundable)
	assert.Equal(t, 0.0, outcome.Forfeited)
}
