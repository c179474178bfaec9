package cancellation

import (
	"time"
)

// Evaluate computes the refund split for a reservation cancelled at "now".
//
// A policy matches when its hours_before threshold is at or past the time
// remaining until the reservation (the cancellation happened inside the
// policy's window). When several match, the one with the smallest
// hours_before wins: the rule closest to the event is treated as the most
// specific. Ties fall to the lowest policy id so stacked ambiguous policies
// stay deterministic. No match means no penalty and a full refund.
func Evaluate(policies []CancellationPolicy, reservationStart, now time.Time, deposit float64) Outcome {
	if deposit <= 0 {
		return Outcome{Refundable: 0, Forfeited: 0}
	}

	hoursUntil := reservationStart.Sub(now).Hours()

	var selected *CancellationPolicy
	for i := range policies {
		policy := &policies[i]
		if !policy.Active {
			continue
		}
		if float64(policy.HoursBefore) < hoursUntil {
			continue
		}
		if selected == nil ||
			policy.HoursBefore < selected.HoursBefore ||
			(policy.HoursBefore == selected.HoursBefore && policy.ID < selected.ID) {
			selected = policy
		}
	}

	if selected == nil {
		return Outcome{Refundable: deposit, Forfeited: 0}
	}

	forfeited := applyPenalty(selected, deposit)
	return Outcome{
		Refundable: deposit - forfeited,
		Forfeited:  forfeited,
		PolicyID:   &selected.ID,
		PolicyName: selected.Name,
	}
}

func applyPenalty(policy *CancellationPolicy, deposit float64) float64 {
	switch policy.PenaltyType {
	case PenaltyFullDeposit:
		return deposit
	case PenaltyPartialDeposit, PenaltyPercentage:
		fraction := policy.PenaltyValue / 100
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}
		return deposit * fraction
	case PenaltyFixedAmount:
		if policy.PenaltyValue > deposit {
			return deposit
		}
		if policy.PenaltyValue < 0 {
			return 0
		}
		return policy.PenaltyValue
	}
	return 0
}
