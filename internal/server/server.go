// Package server exposes the loan, lease, credit and chat calculators over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/iwvelando/vehicle-finance/internal/config"
	"github.com/iwvelando/vehicle-finance/internal/ratelimit"
	"github.com/iwvelando/vehicle-finance/pkg/calcerr"
	"github.com/iwvelando/vehicle-finance/pkg/chat"
	"github.com/iwvelando/vehicle-finance/pkg/constants"
	"github.com/iwvelando/vehicle-finance/pkg/credit"
	"github.com/iwvelando/vehicle-finance/pkg/leases"
	"github.com/iwvelando/vehicle-finance/pkg/loans"
	"github.com/iwvelando/vehicle-finance/pkg/mathutil"
	"github.com/iwvelando/vehicle-finance/pkg/validation"
	"go.uber.org/zap"
)

// Options configures the handler. Zero values fall back to the package defaults.
type Options struct {
	Context     mathutil.Context
	Defaults    *config.Defaults
	MaxBodySize int64
	Version     string
	Limiter     ratelimit.Limiter
}

type handler struct {
	logger      *zap.Logger
	mc          mathutil.Context
	defaults    config.Defaults
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxBodySize := opts.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	mc := opts.Context
	if mc.Precision == 0 {
		mc = mathutil.DefaultContext()
	}

	defaults := config.Defaults{
		TaxRate:        loans.DefaultTaxRate,
		MoneyFactor:    leases.DefaultMoneyFactor,
		AcquisitionFee: leases.DefaultAcquisitionFee,
	}
	if opts.Defaults != nil {
		defaults = *opts.Defaults
	}

	h := &handler{
		logger:      logger,
		mc:          mc,
		defaults:    defaults,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
	}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware, corsMiddleware, loggingMiddleware(logger))

	api := r.NewRoute().Subrouter()
	if opts.Limiter != nil {
		api.Use(rateLimitMiddleware(logger, opts.Limiter))
	}
	api.Use(bodyLimitMiddleware(maxBodySize))

	api.HandleFunc("/loan/calculator", h.handleLoan).Methods(http.MethodPost, http.MethodOptions)
	// Path used by the original web client.
	api.HandleFunc("/loan/Calculator", h.handleLoan).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/lease/calculator", h.handleLease).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/getInterest", h.handleInterest).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/chat", h.handleChat).Methods(http.MethodPost, http.MethodOptions)

	r.HandleFunc("/api/version", h.handleVersion).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)

	return r
}

func (h *handler) handleLoan(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleLoan"
	start := time.Now()

	var body loanRequestBody
	if !h.decode(w, r, &body, op) {
		return
	}
	req, err := body.toRequest(h.defaults)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	if err := validation.ValidateLoanRequest(req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.logWarnings(validation.LoanWarnings(req), op)

	result, err := loans.NewAmortizationScheduleGenerator(h.logger, h.mc).GenerateSchedule(req)
	if err != nil {
		h.respondErrorWithOp(w, statusForError(err), err.Error(), op)
		return
	}

	h.logger.Info("loan schedule computed",
		zap.String("op", op),
		zap.Int("term_months", req.TermMonths),
		zap.Duration("duration", time.Since(start)),
	)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleLease(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleLease"
	start := time.Now()

	var body leaseRequestBody
	if !h.decode(w, r, &body, op) {
		return
	}
	req, err := body.toRequest(h.defaults)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	if err := validation.ValidateLeaseRequest(req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.logWarnings(validation.LeaseWarnings(req), op)

	result, err := leases.NewCalculator(h.logger, h.mc).BuildSchedule(req)
	if err != nil {
		h.respondErrorWithOp(w, statusForError(err), err.Error(), op)
		return
	}

	h.logger.Info("lease schedule computed",
		zap.String("op", op),
		zap.Int("term_months", req.TermMonths),
		zap.Duration("duration", time.Since(start)),
	)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleInterest(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleInterest"

	var body interestRequestBody
	if !h.decode(w, r, &body, op) {
		return
	}
	if body.CreditScore == nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "credit_score is required", op)
		return
	}

	apr := credit.APREstimateFromScore(*body.CreditScore)
	h.writeJSON(w, http.StatusOK, interestResponse{Score: mathutil.NewRate(apr)})
}

func (h *handler) handleChat(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleChat"

	var turns []chat.Turn
	if !h.decode(w, r, &turns, op) {
		return
	}
	h.writeJSON(w, http.StatusOK, chat.Echo(turns))
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON body into v, answering the request itself on failure.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, v interface{}, op string) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) logWarnings(warnings []string, op string) {
	for _, warning := range warnings {
		h.logger.Warn("request warning: "+warning,
			zap.String("op", op),
		)
	}
}

func statusForError(err error) int {
	if errors.Is(err, calcerr.ErrInvalidTerm) || errors.Is(err, calcerr.ErrInvalidNumericInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("calculator request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
