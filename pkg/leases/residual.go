package leases

import (
	"github.com/iwvelando/vehicle-finance/pkg/constants"
	"github.com/iwvelando/vehicle-finance/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// residualTable holds the tabulated residual fractions of the original price.
var residualTable = map[int]decimal.Decimal{
	24: decimal.RequireFromString("0.68"),
	30: decimal.RequireFromString("0.64"),
	36: decimal.RequireFromString("0.58"),
	39: decimal.RequireFromString("0.56"),
	42: decimal.RequireFromString("0.54"),
	48: decimal.RequireFromString("0.50"),
}

// Interpolation anchors and the flat rates outside them. The flat rates are
// deliberately not continuations of the interpolated segment.
const (
	shortTermLimit = 24
	longTermLimit  = 60
)

var (
	shortTermRate = decimal.RequireFromString("0.70")
	longTermRate  = decimal.RequireFromString("0.42")
	anchorLowRate = decimal.RequireFromString("0.68")
	anchorTopRate = decimal.RequireFromString("0.45")
)

// ResidualRate returns the residual value as a fraction of the original
// vehicle price for a lease term. Tabulated terms are exact; terms under 24
// months are 0.70 and over 60 are 0.42; anything else is interpolated
// linearly between (24, 0.68) and (60, 0.45) and rounded to 4 places.
func ResidualRate(mc mathutil.Context, termMonths int) decimal.Decimal {
	if rate, ok := residualTable[termMonths]; ok {
		return rate
	}
	if termMonths < shortTermLimit {
		return shortTermRate
	}
	if termMonths > longTermLimit {
		return longTermRate
	}

	elapsed := decimal.NewFromInt(int64(termMonths - shortTermLimit))
	span := decimal.NewFromInt(longTermLimit - shortTermLimit)
	drop := mc.Div(anchorLowRate.Sub(anchorTopRate).Mul(elapsed), span)
	return mathutil.Quantize(anchorLowRate.Sub(drop), constants.ResidualRatePlaces)
}
