// Package loans builds vehicle loan amortization schedules with a flat
// per-payment sales tax.
package loans

import (
	"fmt"

	"github.com/iwvelando/vehicle-finance/pkg/calcerr"
	"github.com/iwvelando/vehicle-finance/pkg/chart"
	"github.com/iwvelando/vehicle-finance/pkg/constants"
	"github.com/iwvelando/vehicle-finance/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Mode identifies how tax is presented in a loan bundle.
const Mode = "monthly_tax_visualization"

// Chart stack and series labels.
const (
	Stack          = "payment"
	LabelPrincipal = "Principal"
	LabelInterest  = "Interest"
	LabelTax       = "Tax"
)

// Notes are attached to every loan bundle.
var Notes = []string{
	"Dallas default tax 8.25% applied to each monthly payment for visualization.",
	"This is for demo/visualization; lenders/dealers may apply taxes differently.",
}

// DefaultTaxRate is applied when a request leaves the tax rate unset.
var DefaultTaxRate = mathutil.MustDecimal(constants.DefaultTaxRate)

var monthsPerYear = decimal.NewFromInt(constants.MonthsPerYear)

// Request holds the loan inputs. Signs are validated by the caller; only the
// term is checked here.
type Request struct {
	VehicleAmount   decimal.Decimal
	DownPaymentCash decimal.Decimal
	TermMonths      int
	APRPercent      decimal.Decimal
	TaxRate         decimal.Decimal
}

// NewRequest normalizes loosely typed inputs (numbers or numeric strings).
// A nil down payment means none and a nil tax rate means DefaultTaxRate.
func NewRequest(vehicleAmount, downPaymentCash interface{}, termMonths int, aprPercent, taxRate interface{}) (Request, error) {
	req := Request{TermMonths: termMonths, DownPaymentCash: decimal.Zero, TaxRate: DefaultTaxRate}

	var err error
	if req.VehicleAmount, err = mathutil.ToDecimal(vehicleAmount); err != nil {
		return Request{}, fmt.Errorf("vehicle_amount: %w", err)
	}
	if req.APRPercent, err = mathutil.ToDecimal(aprPercent); err != nil {
		return Request{}, fmt.Errorf("apr_percent: %w", err)
	}
	if downPaymentCash != nil {
		if req.DownPaymentCash, err = mathutil.ToDecimal(downPaymentCash); err != nil {
			return Request{}, fmt.Errorf("down_payment_cash: %w", err)
		}
	}
	if taxRate != nil {
		if req.TaxRate, err = mathutil.ToDecimal(taxRate); err != nil {
			return Request{}, fmt.Errorf("tax_rate: %w", err)
		}
	}
	return req, nil
}

// AmountFinanced is the vehicle amount less the down payment, floored at zero.
func (r Request) AmountFinanced() decimal.Decimal {
	financed := mathutil.QuantizeCents(r.VehicleAmount).Sub(mathutil.QuantizeCents(r.DownPaymentCash))
	return mathutil.Max(decimal.Zero, financed)
}

// Payment holds the values for a given period.
type Payment struct {
	Period       int             `json:"period"`
	PaymentBase  mathutil.Amount `json:"payment_base"`
	Interest     mathutil.Amount `json:"interest"`
	Principal    mathutil.Amount `json:"principal"`
	Tax          mathutil.Amount `json:"tax"`
	PaymentTotal mathutil.Amount `json:"payment_total"`
	BalanceEnd   mathutil.Amount `json:"balance_end"`
}

// Timeseries holds the cumulative and per-month series.
type Timeseries struct {
	CumulativeInterest   []mathutil.Amount `json:"cumulative_interest"`
	CumulativeTotalPaid  []mathutil.Amount `json:"cumulative_total_paid"`
	PaymentTotalPerMonth []mathutil.Amount `json:"payment_total_per_month"`
}

// Totals summarizes a loan.
type Totals struct {
	VehicleAmount         mathutil.Amount `json:"vehicle_amount"`
	DownPaymentCash       mathutil.Amount `json:"down_payment_cash"`
	AmountFinanced        mathutil.Amount `json:"amount_financed"`
	APRPercent            mathutil.Amount `json:"apr_percent"`
	TermMonths            int             `json:"term_months"`
	TaxRate               mathutil.Rate   `json:"tax_rate"`
	MonthlyPaymentBase    mathutil.Amount `json:"monthly_payment_base"`
	MonthlyTax            mathutil.Amount `json:"monthly_tax"`
	MonthlyPaymentTotal   mathutil.Amount `json:"monthly_payment_total"`
	TotalInterest         mathutil.Amount `json:"total_interest"`
	TotalTaxPaid          mathutil.Amount `json:"total_tax_paid"`
	TotalPaidIncludingTax mathutil.Amount `json:"total_paid_including_tax"`
	CustomerDueAtSigning  mathutil.Amount `json:"customer_due_at_signing"`
	PrincipalRepaid       mathutil.Amount `json:"principal_repaid"`
}

// Result is the loan bundle. It is built fresh per call and owned by the caller.
type Result struct {
	Meta       chart.Meta    `json:"meta"`
	ChartJS    chart.ChartJS `json:"chartjs"`
	Timeseries Timeseries    `json:"timeseries"`
	Totals     Totals        `json:"totals"`
	Schedule   []Payment     `json:"schedule"`
}

// MonthlyRate converts an APR percent into the periodic rate (apr/100/12).
func MonthlyRate(mc mathutil.Context, aprPercent decimal.Decimal) decimal.Decimal {
	return mc.Div(mc.FromPercent(aprPercent), monthsPerYear)
}

// CalculateMonthlyPayment calculates the base (pre-tax) payment using the
// standard amortization formula, quantized to cents.
func CalculateMonthlyPayment(mc mathutil.Context, financed, monthlyRate decimal.Decimal, termMonths int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termMonths))
	if monthlyRate.IsZero() {
		return mathutil.QuantizeCents(mc.Div(financed, n))
	}

	discountFactor := decimal.NewFromInt(1).Sub(mc.PowInt(decimal.NewFromInt(1).Add(monthlyRate), -termMonths))
	return mathutil.QuantizeCents(mc.Div(mc.Mul(monthlyRate, financed), discountFactor))
}

// CalculateInterestPayment calculates the interest portion of a payment,
// quantized to cents.
func CalculateInterestPayment(mc mathutil.Context, balance, monthlyRate decimal.Decimal) decimal.Decimal {
	if monthlyRate.IsZero() {
		return decimal.Zero
	}
	return mathutil.QuantizeCents(mc.Mul(balance, monthlyRate))
}

// AmortizationScheduleGenerator generates loan amortization schedules.
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
	mc     mathutil.Context
}

// NewAmortizationScheduleGenerator creates a new generator instance.
func NewAmortizationScheduleGenerator(logger *zap.Logger, mc mathutil.Context) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger, mc: mc}
}

// BuildSchedule computes a loan bundle without logging.
func BuildSchedule(mc mathutil.Context, req Request) (*Result, error) {
	return NewAmortizationScheduleGenerator(nil, mc).GenerateSchedule(req)
}

// GenerateSchedule creates a complete amortization schedule for a loan.
//
// Every period charges the same tax on the base payment. The final period
// (or any period whose principal would exceed the balance) pays off exactly
// the remaining balance, so the schedule always ends at zero.
func (g *AmortizationScheduleGenerator) GenerateSchedule(req Request) (*Result, error) {
	n := req.TermMonths
	if n <= 0 {
		return nil, calcerr.InvalidTerm(n)
	}

	vehicleAmount := mathutil.QuantizeCents(req.VehicleAmount)
	downPayment := mathutil.QuantizeCents(req.DownPaymentCash)
	financed := req.AmountFinanced()

	monthlyRate := MonthlyRate(g.mc, req.APRPercent)
	paymentBase := CalculateMonthlyPayment(g.mc, financed, monthlyRate, n)
	monthlyTax := mathutil.QuantizeCents(paymentBase.Mul(req.TaxRate))

	principalSeries := make([]decimal.Decimal, 0, n)
	interestSeries := make([]decimal.Decimal, 0, n)
	paymentTotals := make([]decimal.Decimal, 0, n)
	schedule := make([]Payment, 0, n)

	balance := financed
	for period := 1; period <= n; period++ {
		interest := CalculateInterestPayment(g.mc, balance, monthlyRate)
		principal := paymentBase.Sub(interest)
		paymentThis := paymentBase

		if principal.GreaterThan(balance) || period == n {
			principal = balance
			paymentThis = mathutil.QuantizeCents(interest.Add(principal))
			if !paymentThis.Equal(paymentBase) {
				g.logger.Debug(fmt.Sprintf("period %d: adjusting base payment %s to %s to retire balance",
					period, paymentBase.StringFixed(2), paymentThis.StringFixed(2)),
					zap.String("op", "loans.GenerateSchedule"),
				)
			}
		}

		balance = mathutil.QuantizeCents(balance.Sub(principal))
		paymentTotal := mathutil.QuantizeCents(paymentThis.Add(monthlyTax))

		principalSeries = append(principalSeries, principal)
		interestSeries = append(interestSeries, interest)
		paymentTotals = append(paymentTotals, paymentTotal)

		schedule = append(schedule, Payment{
			Period:       period,
			PaymentBase:  mathutil.NewAmount(paymentThis),
			Interest:     mathutil.NewAmount(interest),
			Principal:    mathutil.NewAmount(principal),
			Tax:          mathutil.NewAmount(monthlyTax),
			PaymentTotal: mathutil.NewAmount(paymentTotal),
			BalanceEnd:   mathutil.NewAmount(balance),
		})
	}

	totalInterest := mathutil.Sum(interestSeries)
	totalPaid := mathutil.Sum(paymentTotals)

	g.logger.Debug("loan schedule generated",
		zap.String("op", "loans.GenerateSchedule"),
		zap.Int("term_months", n),
		zap.String("amount_financed", financed.StringFixed(2)),
		zap.String("payment_base", paymentBase.StringFixed(2)),
	)

	return &Result{
		Meta: chart.Meta{
			Mode:  Mode,
			Notes: append([]string(nil), Notes...),
		},
		ChartJS: chart.ChartJS{
			Labels: chart.PeriodLabels(n),
			Datasets: []chart.Dataset{
				chart.StackedBar(LabelPrincipal, Stack, principalSeries),
				chart.StackedBar(LabelInterest, Stack, interestSeries),
				chart.StackedBar(LabelTax, Stack, chart.Repeat(monthlyTax, n)),
			},
		},
		Timeseries: Timeseries{
			CumulativeInterest:   chart.Cumulative(interestSeries),
			CumulativeTotalPaid:  chart.Cumulative(paymentTotals),
			PaymentTotalPerMonth: mathutil.Amounts(paymentTotals),
		},
		Totals: Totals{
			VehicleAmount:         mathutil.NewAmount(vehicleAmount),
			DownPaymentCash:       mathutil.NewAmount(downPayment),
			AmountFinanced:        mathutil.NewAmount(financed),
			APRPercent:            mathutil.NewAmount(req.APRPercent),
			TermMonths:            n,
			TaxRate:               mathutil.NewRate(req.TaxRate),
			MonthlyPaymentBase:    mathutil.NewAmount(paymentBase),
			MonthlyTax:            mathutil.NewAmount(monthlyTax),
			MonthlyPaymentTotal:   mathutil.NewAmount(paymentBase.Add(monthlyTax)),
			TotalInterest:         mathutil.NewAmount(totalInterest),
			TotalTaxPaid:          mathutil.NewAmount(monthlyTax.Mul(decimal.NewFromInt(int64(n)))),
			TotalPaidIncludingTax: mathutil.NewAmount(totalPaid),
			CustomerDueAtSigning:  mathutil.NewAmount(downPayment),
			PrincipalRepaid:       mathutil.NewAmount(financed),
		},
		Schedule: schedule,
	}, nil
}
