package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/gabrielasoto/aurelia-backend/internal/cart"
	"github.com/gabrielasoto/aurelia-backend/internal/coupon"
	"github.com/gabrielasoto/aurelia-backend/internal/pricing"
	pkgerrors "github.com/gabrielasoto/aurelia-backend/pkg/errors"
	"github.com/gabrielasoto/aurelia-backend/pkg/metrics"
)

// SubmitInput carries the shipping form fields for one submission.
type SubmitInput struct {
	UserName        string
	DeliveryAddress string
	Phone           string
}

// Result reports where the submission ended up. Status returns to Idle
// when local validation fails before any network call; Failed always
// carries a user-visible message through the accompanying error.
type Result struct {
	Status Status
	Order  *OrderRef
}

type cartSource interface {
	ForSession(sessionID string) *cart.Store
}

type discountReader interface {
	Discount(sessionID string) (coupon.AppliedDiscount, bool)
}

type orderSubmitter interface {
	Submit(ctx context.Context, order OrderSubmission) (*OrderRef, error)
}

type idempotencyStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// Service turns cart contents plus shipping details into an order
// submission, clearing the cart only when the order service accepts it.
type Service struct {
	carts          cartSource
	discounts      discountReader
	orders         orderSubmitter
	idempotency    idempotencyStore
	idempotencyTTL time.Duration
	metrics        *metrics.StorefrontMetrics
	now            func() time.Time
}

// ServiceParams bundles the checkout dependencies.
type ServiceParams struct {
	Carts          cartSource
	Discounts      discountReader
	Orders         orderSubmitter
	Idempotency    idempotencyStore
	IdempotencyTTL time.Duration
	Metrics        *metrics.StorefrontMetrics
	Now            func() time.Time
}

// NewService builds the checkout orchestrator.
func NewService(params ServiceParams) (*Service, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart source is required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order submitter is required")
	}
	if params.IdempotencyTTL <= 0 {
		params.IdempotencyTTL = 2 * time.Minute
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Service{
		carts:          params.Carts,
		discounts:      params.Discounts,
		orders:         params.Orders,
		idempotency:    params.Idempotency,
		idempotencyTTL: params.IdempotencyTTL,
		metrics:        params.Metrics,
		now:            params.Now,
	}, nil
}

// Submit runs the full submission lifecycle for the session's cart.
func (s *Service) Submit(ctx context.Context, sessionID string, input SubmitInput) (*Result, error) {
	started := s.now()
	store := s.carts.ForSession(sessionID)

	// Validating: everything here fails before any network call.
	if err := s.validate(store, input); err != nil {
		s.metrics.ObserveCheckout("rejected", s.now().Sub(started))
		return &Result{Status: StatusIdle}, err
	}

	order := s.compose(sessionID, store, input)

	release, err := s.reserve(ctx, sessionID, order)
	if err != nil {
		s.metrics.ObserveCheckout("duplicate", s.now().Sub(started))
		return &Result{Status: StatusIdle}, err
	}

	// Submitting.
	ref, err := s.orders.Submit(ctx, order)
	if err != nil {
		// leave the cart intact and free the reservation so the user
		// can resubmit manually
		release(ctx)
		s.metrics.ObserveCheckout("failed", s.now().Sub(started))
		return &Result{Status: StatusFailed}, err
	}

	store.Clear()
	s.metrics.ObserveCheckout("succeeded", s.now().Sub(started))
	return &Result{Status: StatusSucceeded, Order: ref}, nil
}

func (s *Service) validate(store *cart.Store, input SubmitInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(input.UserName) == "" {
		fields["userName"] = "is required"
	}
	if strings.TrimSpace(input.DeliveryAddress) == "" {
		fields["deliveryAddress"] = "is required"
	}
	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping details are incomplete").WithDetails(fields)
	}
	if store.Len() == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	return nil
}

func (s *Service) compose(sessionID string, store *cart.Store, input SubmitInput) OrderSubmission {
	lines := store.Lines()

	total := store.TotalAmount()
	couponCode := ""
	if s.discounts != nil {
		if d, ok := s.discounts.Discount(sessionID); ok {
			total = pricing.DiscountedPrice(total, d.Percentage)
			couponCode = d.Code
		}
	}

	return OrderSubmission{
		UserName:        strings.TrimSpace(input.UserName),
		Product:         summarize(lines),
		Quantity:        store.TotalUnits(),
		DeliveryAddress: strings.TrimSpace(input.DeliveryAddress),
		Phone:           strings.TrimSpace(input.Phone),
		Date:            s.now().UTC().Format(time.RFC3339),
		TotalAmount:     total,
		CouponCode:      couponCode,
	}
}

// summarize builds the human-readable product summary: the sole line's
// name, or the first name plus a count of the remaining lines.
func summarize(lines []cart.Line) string {
	switch len(lines) {
	case 0:
		return ""
	case 1:
		return lines[0].Name
	default:
		return fmt.Sprintf("%s and %d other item(s)", lines[0].Name, len(lines)-1)
	}
}

// reserve claims a fingerprint of the submission so an accidental
// double-submit cannot create two orders. The claim only lives for the
// configured window; once it lapses an identical reorder goes through
// again. The returned release func frees the claim after a failed
// submit so the user can retry immediately.
func (s *Service) reserve(ctx context.Context, sessionID string, order OrderSubmission) (func(context.Context), error) {
	noop := func(context.Context) {}
	if s.idempotency == nil {
		return noop, nil
	}

	key := s.idempotency.IdempotencyKey("checkout", fingerprint(sessionID, order))
	ok, err := s.idempotency.SetNX(ctx, key, order.Date, s.idempotencyTTL)
	if err != nil {
		return noop, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve checkout attempt")
	}
	if !ok {
		return noop, pkgerrors.New(pkgerrors.CodeConflict, "this order was already submitted")
	}
	return func(ctx context.Context) {
		s.idempotency.Del(ctx, key) //nolint:errcheck
	}, nil
}

func fingerprint(sessionID string, order OrderSubmission) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%d|%s",
		sessionID,
		order.UserName,
		order.DeliveryAddress,
		order.Product,
		order.Quantity,
		order.TotalAmount.String(),
	)
	return hex.EncodeToString(h.Sum(nil))
}
