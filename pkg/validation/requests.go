package validation

import (
	"errors"
	"fmt"

	"github.com/iwvelando/vehicle-finance/pkg/constants"
	"github.com/iwvelando/vehicle-finance/pkg/leases"
	"github.com/iwvelando/vehicle-finance/pkg/loans"
	"github.com/iwvelando/vehicle-finance/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// ValidateTerm checks a term length in months.
func ValidateTerm(termMonths int) error {
	if termMonths <= 0 {
		return fmt.Errorf("term_months must be > 0, got %d", termMonths)
	}
	if termMonths > constants.MaxTermMonths {
		return fmt.Errorf("term_months must be <= %d, got %d", constants.MaxTermMonths, termMonths)
	}
	return nil
}

var (
	maxAmount      = mathutil.MustDecimal(constants.MaxAmount)
	maxAPRPercent  = mathutil.MustDecimal(constants.MaxAPRPercent)
	maxTaxRate     = mathutil.MustDecimal(constants.MaxTaxRate)
	maxMoneyFactor = mathutil.MustDecimal(constants.MaxMoneyFactor)
)

// bounded checks that value lies in [0, limit]. The exponent is checked
// first so no comparison ever rescales an extreme literal.
func bounded(field string, value, limit decimal.Decimal) error {
	if err := mathutil.CheckExponent(value); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if value.IsNegative() {
		return fmt.Errorf("%s must be >= 0, got %s", field, value.String())
	}
	if value.GreaterThan(limit) {
		return fmt.Errorf("%s must be <= %s", field, limit.String())
	}
	return nil
}

// ValidateLoanRequest checks every loan input and reports all violations together.
func ValidateLoanRequest(req loans.Request) error {
	return errors.Join(
		bounded("vehicle_amount", req.VehicleAmount, maxAmount),
		bounded("down_payment_cash", req.DownPaymentCash, maxAmount),
		ValidateTerm(req.TermMonths),
		bounded("apr_percent", req.APRPercent, maxAPRPercent),
		bounded("tax_rate", req.TaxRate, maxTaxRate),
	)
}

// ValidateLeaseRequest checks every lease input and reports all violations together.
func ValidateLeaseRequest(req leases.Request) error {
	vehicleErr := bounded("vehicle_amount", req.VehicleAmount, maxAmount)
	if vehicleErr == nil && !req.VehicleAmount.IsPositive() {
		vehicleErr = fmt.Errorf("vehicle_amount must be > 0, got %s", req.VehicleAmount.String())
	}
	return errors.Join(
		vehicleErr,
		ValidateTerm(req.TermMonths),
		bounded("money_factor", req.MoneyFactor, maxMoneyFactor),
		bounded("acquisition_fee", req.AcquisitionFee, maxAmount),
	)
}

// LoanWarnings flags inputs that are valid but probably not intended.
func LoanWarnings(req loans.Request) []string {
	var warnings []string

	if req.DownPaymentCash.GreaterThan(req.VehicleAmount) {
		warnings = append(warnings, fmt.Sprintf("down payment %s exceeds vehicle amount %s - nothing is financed",
			mathutil.QuantizeCents(req.DownPaymentCash).StringFixed(2),
			mathutil.QuantizeCents(req.VehicleAmount).StringFixed(2)))
	}
	if req.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		warnings = append(warnings, fmt.Sprintf("tax rate %s is a fraction, not a percent - did you mean %s?",
			req.TaxRate.String(), req.TaxRate.Shift(-2).String()))
	}

	return warnings
}

// LeaseWarnings flags inputs that are valid but probably not intended.
func LeaseWarnings(req leases.Request) []string {
	var warnings []string

	if req.MoneyFactor.GreaterThan(decimal.RequireFromString("0.01")) {
		warnings = append(warnings, fmt.Sprintf("money factor %s implies an APR of %s%% - was an APR entered instead?",
			req.MoneyFactor.String(), leases.EstimateAPR(req.MoneyFactor).StringFixed(2)))
	}

	return warnings
}
