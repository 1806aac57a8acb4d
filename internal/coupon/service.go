package coupon

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/gabrielasoto/aurelia-backend/pkg/errors"
	"github.com/gabrielasoto/aurelia-backend/pkg/metrics"
)

// AppliedDiscount is the single currently-active coupon for a session.
type AppliedDiscount struct {
	Code       string
	Percentage decimal.Decimal
}

// Validator is the upstream coupon-validation surface.
type Validator interface {
	Validate(ctx context.Context, code string) (decimal.Decimal, error)
}

// Service tracks at most one applied discount per session. Discounts
// live in memory only; they do not survive a gateway restart.
type Service struct {
	validator Validator
	metrics   *metrics.StorefrontMetrics

	mu        sync.Mutex
	discounts map[string]AppliedDiscount
	inFlight  map[string]struct{}
}

// NewService wires the coupon service to a validator.
func NewService(validator Validator, m *metrics.StorefrontMetrics) (*Service, error) {
	if validator == nil {
		return nil, fmt.Errorf("coupon validator is required")
	}
	return &Service{
		validator: validator,
		metrics:   m,
		discounts: map[string]AppliedDiscount{},
		inFlight:  map[string]struct{}{},
	}, nil
}

// Apply validates the code and, on success, replaces the session's
// discount with the new one. A failed validation leaves any existing
// discount untouched; the user simply resubmits. A second Apply for the
// same session while one is pending is rejected outright.
func (s *Service) Apply(ctx context.Context, sessionID, code string) (AppliedDiscount, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return AppliedDiscount{}, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	if !s.begin(sessionID) {
		return AppliedDiscount{}, pkgerrors.New(pkgerrors.CodeConflict, "a coupon validation is already in progress")
	}
	defer s.end(sessionID)

	percentage, err := s.validator.Validate(ctx, code)
	if err != nil {
		s.metrics.IncCoupon("rejected")
		return AppliedDiscount{}, err
	}

	applied := AppliedDiscount{Code: code, Percentage: percentage}
	s.mu.Lock()
	s.discounts[sessionID] = applied
	s.mu.Unlock()

	s.metrics.IncCoupon("applied")
	return applied, nil
}

// Discount reports the session's active discount, if any.
func (s *Service) Discount(sessionID string) (AppliedDiscount, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.discounts[sessionID]
	return d, ok
}

// Clear removes the session's discount.
func (s *Service) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.discounts, sessionID)
}

func (s *Service) begin(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return false
	}
	s.inFlight[sessionID] = struct{}{}
	return true
}

func (s *Service) end(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)
}
