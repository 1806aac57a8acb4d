package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielasoto/aurelia-backend/internal/cart"
	"github.com/gabrielasoto/aurelia-backend/internal/coupon"
	pkgerrors "github.com/gabrielasoto/aurelia-backend/pkg/errors"
)

type stubOrders struct {
	calls int
	last  OrderSubmission
	ref   *OrderRef
	err   error
}

func (s *stubOrders) Submit(ctx context.Context, order OrderSubmission) (*OrderRef, error) {
	s.calls++
	s.last = order
	if s.err != nil {
		return nil, s.err
	}
	if s.ref != nil {
		return s.ref, nil
	}
	return &OrderRef{ID: "order-1"}, nil
}

type stubDiscounts struct {
	discount *coupon.AppliedDiscount
}

func (s *stubDiscounts) Discount(sessionID string) (coupon.AppliedDiscount, bool) {
	if s.discount == nil {
		return coupon.AppliedDiscount{}, false
	}
	return *s.discount, true
}

// memIdempotency honors TTLs against the fixture clock so window
// expiry can be exercised without sleeping.
type memIdempotency struct {
	now     func() time.Time
	expires map[string]time.Time
}

func newMemIdempotency(now func() time.Time) *memIdempotency {
	return &memIdempotency{now: now, expires: map[string]time.Time{}}
}

func (m *memIdempotency) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if deadline, ok := m.expires[key]; ok && m.now().Before(deadline) {
		return false, nil
	}
	m.expires[key] = m.now().Add(ttl)
	return true, nil
}

func (m *memIdempotency) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.expires, k)
	}
	return nil
}

func (m *memIdempotency) IdempotencyKey(scope, id string) string {
	return "test:" + scope + ":" + id
}

type fixture struct {
	svc    *Service
	carts  *cart.Registry
	orders *stubOrders
	clock  *time.Time
}

func newFixture(t *testing.T, opts ...func(*ServiceParams)) *fixture {
	t.Helper()
	carts := cart.NewRegistry()
	orders := &stubOrders{}
	clock := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	params := ServiceParams{
		Carts:       carts,
		Discounts:   &stubDiscounts{},
		Orders:      orders,
		Idempotency: newMemIdempotency(now),
		Now:         now,
	}
	for _, opt := range opts {
		opt(&params)
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	return &fixture{svc: svc, carts: carts, orders: orders, clock: &clock}
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func fillCart(f *fixture, sessionID string) *cart.Store {
	store := f.carts.ForSession(sessionID)
	store.AddItem(cart.Product{ID: "p1", Name: "Ring", UnitPrice: decimal.NewFromInt(100)})
	store.UpdateQuantity("p1", 2)
	store.AddItem(cart.Product{ID: "p2", Name: "Necklace", UnitPrice: decimal.NewFromInt(50)})
	return store
}

func shipping() SubmitInput {
	return SubmitInput{UserName: "Ada", DeliveryAddress: "1 Jeweler's Row", Phone: "555-0101"}
}

func TestSubmitSuccessClearsCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	store := fillCart(f, "sess")

	result, err := f.svc.Submit(context.Background(), "sess", shipping())
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, result.Status)
	require.NotNil(t, result.Order)
	assert.Equal(t, "order-1", result.Order.ID)
	assert.Equal(t, 0, store.Len(), "cart should be cleared on success")
}

func TestSubmitFailureKeepsCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.orders.err = pkgerrors.New(pkgerrors.CodeDependency, "order service down")
	store := fillCart(f, "sess")

	result, err := f.svc.Submit(context.Background(), "sess", shipping())
	require.Error(t, err)
	assert.Equal(t, StatusFailed, result.Status)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.NotEmpty(t, typed.Message(), "failure must carry a user-visible message")
	assert.Equal(t, 2, store.Len(), "cart must stay untouched on failure")
}

func TestSubmitFailureAllowsManualResubmission(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.orders.err = pkgerrors.New(pkgerrors.CodeDependency, "transient")
	fillCart(f, "sess")

	_, err := f.svc.Submit(context.Background(), "sess", shipping())
	require.Error(t, err)

	f.orders.err = nil
	result, err := f.svc.Submit(context.Background(), "sess", shipping())
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, result.Status)
	assert.Equal(t, 2, f.orders.calls)
}

func TestSubmitMissingUserNameSkipsNetwork(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	fillCart(f, "sess")

	input := shipping()
	input.UserName = ""
	result, err := f.svc.Submit(context.Background(), "sess", input)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok, "expected field details, got %+v", typed.Details())
	assert.Equal(t, "is required", details["userName"])

	assert.Equal(t, StatusIdle, result.Status)
	assert.Equal(t, 0, f.orders.calls, "no network call on local validation failure")
}

func TestSubmitEmptyCartRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), "sess", shipping())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, 0, f.orders.calls)
}

func TestSubmitComposesPayload(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	fillCart(f, "sess")

	_, err := f.svc.Submit(context.Background(), "sess", shipping())
	require.NoError(t, err)

	got := f.orders.last
	assert.Equal(t, "Ring and 1 other item(s)", got.Product)
	// quantity counts units across lines, not distinct products
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, "Ada", got.UserName)
	assert.Equal(t, "1 Jeweler's Row", got.DeliveryAddress)
	assert.Equal(t, "2026-03-14T12:00:00Z", got.Date)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(250)), "total = %s", got.TotalAmount)
}

func TestSubmitSingleLineSummaryIsName(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	store := f.carts.ForSession("sess")
	store.AddItem(cart.Product{ID: "p1", Name: "Ring", UnitPrice: decimal.NewFromInt(30)})

	_, err := f.svc.Submit(context.Background(), "sess", shipping())
	require.NoError(t, err)
	assert.Equal(t, "Ring", f.orders.last.Product)
}

func TestSubmitAppliesSessionDiscount(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(p *ServiceParams) {
		p.Discounts = &stubDiscounts{discount: &coupon.AppliedDiscount{
			Code:       "SPRING20",
			Percentage: decimal.NewFromInt(20),
		}}
	})
	fillCart(f, "sess")

	_, err := f.svc.Submit(context.Background(), "sess", shipping())
	require.NoError(t, err)
	assert.True(t, f.orders.last.TotalAmount.Equal(decimal.NewFromInt(200)), "total = %s", f.orders.last.TotalAmount)
	assert.Equal(t, "SPRING20", f.orders.last.CouponCode)
}

func TestSubmitDuplicateInsideWindowRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	fillCart(f, "sess")

	_, err := f.svc.Submit(context.Background(), "sess", shipping())
	require.NoError(t, err)

	// identical payload again before the window lapses
	fillCart(f, "sess")
	f.advance(30 * time.Second)
	_, err = f.svc.Submit(context.Background(), "sess", shipping())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Equal(t, 1, f.orders.calls, "duplicate must not reach the order service")
}

func TestSubmitIdenticalReorderAfterWindowSucceeds(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	fillCart(f, "sess")

	result, err := f.svc.Submit(context.Background(), "sess", shipping())
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, result.Status)

	// the customer deliberately reorders the exact same items to the
	// same address once the guard window has lapsed
	f.advance(3 * time.Minute)
	fillCart(f, "sess")

	result, err = f.svc.Submit(context.Background(), "sess", shipping())
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, result.Status)
	assert.Equal(t, 2, f.orders.calls, "legitimate reorder must reach the order service")
}

func TestStatusTerminality(t *testing.T) {
	t.Parallel()

	for _, s := range []Status{StatusIdle, StatusValidating, StatusSubmitting} {
		assert.False(t, s.IsTerminal(), "%s must not be terminal", s)
	}
	for _, s := range []Status{StatusSucceeded, StatusFailed} {
		assert.True(t, s.IsTerminal(), "%s must be terminal", s)
	}
}
