// Package credit maps a FICO credit score to an illustrative auto-loan APR.
// The estimate is a demo heuristic, not a quote.
package credit

import (
	"github.com/iwvelando/vehicle-finance/pkg/constants"
	"github.com/shopspring/decimal"
)

// Tier is an inclusive score band and its APR percent.
type Tier struct {
	Low, High  int
	APRPercent decimal.Decimal
}

// Tiers are ordered best score first and cover the whole clamped range.
var Tiers = []Tier{
	{781, 850, decimal.RequireFromString("5.9")},
	{661, 780, decimal.RequireFromString("7.9")},
	{601, 660, decimal.RequireFromString("11.5")},
	{501, 600, decimal.RequireFromString("16.9")},
	{300, 500, decimal.RequireFromString("22.9")},
}

// ClampScore limits a score to [300, 850].
func ClampScore(score int) int {
	if score < constants.MinCreditScore {
		return constants.MinCreditScore
	}
	if score > constants.MaxCreditScore {
		return constants.MaxCreditScore
	}
	return score
}

// APREstimateFromScore returns the APR percent for a score (7.9 for 7.9%).
// Scores outside 300-850 are clamped first.
func APREstimateFromScore(score int) decimal.Decimal {
	s := ClampScore(score)
	for _, tier := range Tiers {
		if s >= tier.Low && s <= tier.High {
			return tier.APRPercent
		}
	}
	// unreachable: the tiers cover the clamped range
	return Tiers[len(Tiers)-1].APRPercent
}
