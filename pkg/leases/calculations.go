// Package leases builds flat-payment vehicle lease breakdowns. No sales tax
// is applied anywhere in a lease bundle.
package leases

import (
	"fmt"

	"github.com/iwvelando/vehicle-finance/pkg/calcerr"
	"github.com/iwvelando/vehicle-finance/pkg/chart"
	"github.com/iwvelando/vehicle-finance/pkg/constants"
	"github.com/iwvelando/vehicle-finance/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Chart stack and series labels.
const (
	Stack             = "lease"
	LabelDepreciation = "Depreciation"
	LabelFinance      = "Finance (Rent)"
)

// Notes are attached to every lease bundle.
var Notes = []string{
	"Tax intentionally excluded for parity with a tax-free loan setup.",
}

var (
	// DefaultMoneyFactor is applied when a request leaves the money factor unset.
	DefaultMoneyFactor = mathutil.MustDecimal(constants.DefaultMoneyFactor)

	// DefaultAcquisitionFee is applied when a request leaves the fee unset.
	DefaultAcquisitionFee = mathutil.MustDecimal(constants.DefaultAcquisitionFee)

	moneyFactorToAPR = decimal.NewFromInt(constants.MoneyFactorToAPR)
)

// Request holds the lease inputs.
type Request struct {
	VehicleAmount  decimal.Decimal
	TermMonths     int
	MoneyFactor    decimal.Decimal
	AcquisitionFee decimal.Decimal
}

// NewRequest normalizes loosely typed inputs. A nil money factor or
// acquisition fee takes the package default.
func NewRequest(vehicleAmount interface{}, termMonths int, moneyFactor, acquisitionFee interface{}) (Request, error) {
	req := Request{
		TermMonths:     termMonths,
		MoneyFactor:    DefaultMoneyFactor,
		AcquisitionFee: DefaultAcquisitionFee,
	}

	var err error
	if req.VehicleAmount, err = mathutil.ToDecimal(vehicleAmount); err != nil {
		return Request{}, fmt.Errorf("vehicle_amount: %w", err)
	}
	if moneyFactor != nil {
		if req.MoneyFactor, err = mathutil.ToDecimal(moneyFactor); err != nil {
			return Request{}, fmt.Errorf("money_factor: %w", err)
		}
	}
	if acquisitionFee != nil {
		if req.AcquisitionFee, err = mathutil.ToDecimal(acquisitionFee); err != nil {
			return Request{}, fmt.Errorf("acquisition_fee: %w", err)
		}
	}
	return req, nil
}

// Payment holds the values for a given period. Every period of a lease is
// identical.
type Payment struct {
	Period           int             `json:"period"`
	Depreciation     mathutil.Amount `json:"depreciation"`
	Finance          mathutil.Amount `json:"finance"`
	PaymentTotal     mathutil.Amount `json:"payment_total"`
	ResidualValueEnd mathutil.Amount `json:"residual_value_end"`
}

// Timeseries holds the cumulative and per-month series.
type Timeseries struct {
	CumulativeFinance    []mathutil.Amount `json:"cumulative_finance"`
	CumulativeTotalPaid  []mathutil.Amount `json:"cumulative_total_paid"`
	PaymentTotalPerMonth []mathutil.Amount `json:"payment_total_per_month"`
}

// Totals summarizes a lease.
type Totals struct {
	VehicleAmount          mathutil.Amount `json:"vehicle_amount"`
	TermMonths             int             `json:"term_months"`
	ResidualRate           mathutil.Rate   `json:"residual_rate"`
	ResidualValue          mathutil.Amount `json:"residual_value"`
	MoneyFactor            mathutil.Rate   `json:"money_factor"`
	APRPercentEst          mathutil.Amount `json:"apr_percent_est"`
	AcquisitionFeeFinanced mathutil.Amount `json:"acquisition_fee_financed"`
	MonthlyDepreciation    mathutil.Amount `json:"monthly_depreciation"`
	MonthlyFinance         mathutil.Amount `json:"monthly_finance"`
	MonthlyPaymentTotal    mathutil.Amount `json:"monthly_payment_total"`
	TotalDepreciation      mathutil.Amount `json:"total_depreciation"`
	TotalFinance           mathutil.Amount `json:"total_finance"`
	TotalPaid              mathutil.Amount `json:"total_paid"`
}

// Result is the lease bundle. It is built fresh per call and owned by the caller.
type Result struct {
	Meta       chart.Meta    `json:"meta"`
	ChartJS    chart.ChartJS `json:"chartjs"`
	Timeseries Timeseries    `json:"timeseries"`
	Totals     Totals        `json:"totals"`
	Schedule   []Payment     `json:"schedule"`
}

// Calculator builds lease bundles.
type Calculator struct {
	logger *zap.Logger
	mc     mathutil.Context
}

// NewCalculator creates a new calculator instance.
func NewCalculator(logger *zap.Logger, mc mathutil.Context) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger, mc: mc}
}

// BuildSchedule computes a lease bundle without logging.
func BuildSchedule(mc mathutil.Context, req Request) (*Result, error) {
	return NewCalculator(nil, mc).BuildSchedule(req)
}

// BuildSchedule computes the flat lease payment and its breakdown.
//
// The acquisition fee is rolled into the capitalized cost, while the residual
// is taken against the original vehicle price, as manufacturer residual
// tables quote off MSRP.
func (c *Calculator) BuildSchedule(req Request) (*Result, error) {
	n := req.TermMonths
	if n <= 0 {
		return nil, calcerr.InvalidTerm(n)
	}

	capCost := mathutil.QuantizeCents(req.VehicleAmount)
	acquisitionFee := mathutil.QuantizeCents(req.AcquisitionFee)
	adjustedCapCost := capCost.Add(acquisitionFee)

	residualRate := ResidualRate(c.mc, n)
	residualValue := mathutil.QuantizeCents(req.VehicleAmount.Mul(residualRate))

	terms := decimal.NewFromInt(int64(n))
	depreciation := mathutil.QuantizeCents(c.mc.Div(adjustedCapCost.Sub(residualValue), terms))
	finance := mathutil.QuantizeCents(c.mc.Mul(adjustedCapCost.Add(residualValue), req.MoneyFactor))
	paymentTotal := depreciation.Add(finance)

	c.logger.Debug(fmt.Sprintf("lease residual %s at rate %s over %d months",
		residualValue.StringFixed(2), residualRate.String(), n),
		zap.String("op", "leases.BuildSchedule"),
	)

	financeSeries := chart.Repeat(finance, n)
	paymentSeries := chart.Repeat(paymentTotal, n)

	schedule := make([]Payment, n)
	for i := range schedule {
		schedule[i] = Payment{
			Period:           i + 1,
			Depreciation:     mathutil.NewAmount(depreciation),
			Finance:          mathutil.NewAmount(finance),
			PaymentTotal:     mathutil.NewAmount(paymentTotal),
			ResidualValueEnd: mathutil.NewAmount(residualValue),
		}
	}

	return &Result{
		Meta: chart.Meta{Notes: append([]string(nil), Notes...)},
		ChartJS: chart.ChartJS{
			Labels: chart.PeriodLabels(n),
			Datasets: []chart.Dataset{
				chart.StackedBar(LabelDepreciation, Stack, chart.Repeat(depreciation, n)),
				chart.StackedBar(LabelFinance, Stack, financeSeries),
			},
		},
		Timeseries: Timeseries{
			CumulativeFinance:    chart.Cumulative(financeSeries),
			CumulativeTotalPaid:  chart.Cumulative(paymentSeries),
			PaymentTotalPerMonth: mathutil.Amounts(paymentSeries),
		},
		Totals: Totals{
			VehicleAmount:          mathutil.NewAmount(capCost),
			TermMonths:             n,
			ResidualRate:           mathutil.NewRate(residualRate),
			ResidualValue:          mathutil.NewAmount(residualValue),
			MoneyFactor:            mathutil.NewRate(req.MoneyFactor),
			APRPercentEst:          mathutil.NewAmount(EstimateAPR(req.MoneyFactor)),
			AcquisitionFeeFinanced: mathutil.NewAmount(acquisitionFee),
			MonthlyDepreciation:    mathutil.NewAmount(depreciation),
			MonthlyFinance:         mathutil.NewAmount(finance),
			MonthlyPaymentTotal:    mathutil.NewAmount(paymentTotal),
			TotalDepreciation:      mathutil.NewAmount(depreciation.Mul(terms)),
			TotalFinance:           mathutil.NewAmount(finance.Mul(terms)),
			TotalPaid:              mathutil.NewAmount(paymentTotal.Mul(terms)),
		},
		Schedule: schedule,
	}, nil
}

// EstimateAPR approximates the APR percent of a money factor (mf x 2400),
// quantized to cents.
func EstimateAPR(moneyFactor decimal.Decimal) decimal.Decimal {
	return mathutil.QuantizeCents(moneyFactor.Mul(moneyFactorToAPR))
}
