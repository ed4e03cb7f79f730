// Package chart reshapes period-level schedules into Chart.js-ready stacked
// bar datasets and cumulative time series.
package chart

import (
	"strconv"

	"github.com/iwvelando/vehicle-finance/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// BarType is the Chart.js dataset type used for every series.
const BarType = "bar"

// Meta holds informational notes about how a bundle was computed.
type Meta struct {
	Mode  string   `json:"mode,omitempty"`
	Notes []string `json:"notes"`
}

// ChartJS is the labels/datasets payload consumed by Chart.js.
type ChartJS struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one stacked bar series.
type Dataset struct {
	Label string            `json:"label"`
	Type  string            `json:"type"`
	Stack string            `json:"stack"`
	Data  []mathutil.Amount `json:"data"`
}

// PeriodLabels returns "1".."n".
func PeriodLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = strconv.Itoa(i + 1)
	}
	return labels
}

// StackedBar builds a bar dataset on the named stack, quantizing every value.
func StackedBar(label, stack string, values []decimal.Decimal) Dataset {
	return Dataset{
		Label: label,
		Type:  BarType,
		Stack: stack,
		Data:  mathutil.Amounts(values),
	}
}

// Cumulative returns the running totals of values, quantized at each step.
// For non-negative inputs the series is non-decreasing and its last entry
// equals the quantized sum.
func Cumulative(values []decimal.Decimal) []mathutil.Amount {
	series := make([]mathutil.Amount, len(values))
	running := decimal.Zero
	for i, v := range values {
		running = running.Add(v)
		series[i] = mathutil.NewAmount(running)
	}
	return series
}

// Repeat returns a series holding value n times.
func Repeat(value decimal.Decimal, n int) []decimal.Decimal {
	series := make([]decimal.Decimal, n)
	for i := range series {
		series[i] = value
	}
	return series
}
