package server

import (
	"errors"

	"github.com/iwvelando/vehicle-finance/internal/config"
	"github.com/iwvelando/vehicle-finance/pkg/leases"
	"github.com/iwvelando/vehicle-finance/pkg/loans"
	"github.com/iwvelando/vehicle-finance/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Amounts accept JSON numbers or numeric strings and are decoded straight
// into decimals.
type loanRequestBody struct {
	VehicleAmount   decimal.NullDecimal `json:"vehicle_amount"`
	DownPaymentCash decimal.NullDecimal `json:"down_payment_cash"`
	TermMonths      *int                `json:"term_months"`
	APRPercent      decimal.NullDecimal `json:"apr_percent"`
	TaxRate         decimal.NullDecimal `json:"tax_rate"`
}

type leaseRequestBody struct {
	VehicleAmount  decimal.NullDecimal `json:"vehicle_amount"`
	TermMonths     *int                `json:"term_months"`
	MoneyFactor    decimal.NullDecimal `json:"money_factor"`
	AcquisitionFee decimal.NullDecimal `json:"acquisition_fee"`
}

type interestRequestBody struct {
	CreditScore *int `json:"credit_score"`
}

type interestResponse struct {
	Score mathutil.Rate `json:"score"`
}

func required(field string, present bool) error {
	if present {
		return nil
	}
	return errors.New(field + " is required")
}

func orDefault(value decimal.NullDecimal, fallback decimal.Decimal) decimal.Decimal {
	if value.Valid {
		return value.Decimal
	}
	return fallback
}

func (b loanRequestBody) toRequest(defaults config.Defaults) (loans.Request, error) {
	if err := errors.Join(
		required("vehicle_amount", b.VehicleAmount.Valid),
		required("term_months", b.TermMonths != nil),
		required("apr_percent", b.APRPercent.Valid),
	); err != nil {
		return loans.Request{}, err
	}

	return loans.Request{
		VehicleAmount:   b.VehicleAmount.Decimal,
		DownPaymentCash: orDefault(b.DownPaymentCash, decimal.Zero),
		TermMonths:      *b.TermMonths,
		APRPercent:      b.APRPercent.Decimal,
		TaxRate:         orDefault(b.TaxRate, defaults.TaxRate),
	}, nil
}

func (b leaseRequestBody) toRequest(defaults config.Defaults) (leases.Request, error) {
	if err := errors.Join(
		required("vehicle_amount", b.VehicleAmount.Valid),
		required("term_months", b.TermMonths != nil),
	); err != nil {
		return leases.Request{}, err
	}

	return leases.Request{
		VehicleAmount:  b.VehicleAmount.Decimal,
		TermMonths:     *b.TermMonths,
		MoneyFactor:    orDefault(b.MoneyFactor, defaults.MoneyFactor),
		AcquisitionFee: orDefault(b.AcquisitionFee, defaults.AcquisitionFee),
	}, nil
}
