package coupon

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/gabrielasoto/aurelia-backend/pkg/errors"
)

type stubValidator struct {
	mu      sync.Mutex
	results map[string]decimal.Decimal
	err     error
	block   chan struct{}
	calls   int
}

func (s *stubValidator) Validate(ctx context.Context, code string) (decimal.Decimal, error) {
	s.mu.Lock()
	s.calls++
	block := s.block
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	if s.err != nil {
		return decimal.Zero, s.err
	}
	if pct, ok := s.results[code]; ok {
		return pct, nil
	}
	return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is not valid")
}

func newTestService(t *testing.T, validator Validator) *Service {
	t.Helper()
	svc, err := NewService(validator, nil)
	require.NoError(t, err)
	return svc
}

func TestApplyStoresDiscount(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubValidator{results: map[string]decimal.Decimal{
		"SPRING20": decimal.NewFromInt(20),
	}})

	applied, err := svc.Apply(context.Background(), "sess", "SPRING20")
	require.NoError(t, err)
	assert.Equal(t, "SPRING20", applied.Code)
	assert.True(t, applied.Percentage.Equal(decimal.NewFromInt(20)), "unexpected discount: %+v", applied)

	got, ok := svc.Discount("sess")
	require.True(t, ok, "expected stored discount")
	assert.Equal(t, "SPRING20", got.Code)
}

func TestApplyReplacesPriorDiscount(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubValidator{results: map[string]decimal.Decimal{
		"A10": decimal.NewFromInt(10),
		"B25": decimal.NewFromInt(25),
	}})

	_, err := svc.Apply(context.Background(), "sess", "A10")
	require.NoError(t, err)
	_, err = svc.Apply(context.Background(), "sess", "B25")
	require.NoError(t, err)

	got, ok := svc.Discount("sess")
	require.True(t, ok, "expected a discount")
	assert.Equal(t, "B25", got.Code, "expected B25 to fully replace A10")
	assert.True(t, got.Percentage.Equal(decimal.NewFromInt(25)), "unexpected percentage: %s", got.Percentage)
}

func TestApplyFailureLeavesDiscountUntouched(t *testing.T) {
	t.Parallel()

	validator := &stubValidator{results: map[string]decimal.Decimal{
		"GOOD": decimal.NewFromInt(15),
	}}
	svc := newTestService(t, validator)

	_, err := svc.Apply(context.Background(), "sess", "GOOD")
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), "sess", "BAD")
	require.Error(t, err, "expected error for invalid code")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	got, ok := svc.Discount("sess")
	require.True(t, ok, "expected GOOD preserved after failure")
	assert.Equal(t, "GOOD", got.Code)
}

func TestApplyEmptyCodeRejectedLocally(t *testing.T) {
	t.Parallel()

	validator := &stubValidator{}
	svc := newTestService(t, validator)

	_, err := svc.Apply(context.Background(), "sess", "   ")
	require.Error(t, err, "expected error for empty code")
	assert.Equal(t, 0, validator.calls, "expected no upstream call")
}

func TestApplyRejectsConcurrentValidation(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	validator := &stubValidator{
		results: map[string]decimal.Decimal{"SLOW": decimal.NewFromInt(5)},
		block:   block,
	}
	svc := newTestService(t, validator)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Apply(context.Background(), "sess", "SLOW")
		done <- err
	}()

	// wait for the first validation to be in flight
	for {
		validator.mu.Lock()
		calls := validator.calls
		validator.mu.Unlock()
		if calls == 1 {
			break
		}
	}

	_, err := svc.Apply(context.Background(), "sess", "SLOW")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected conflict for overlapping validation, got %v", err)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	close(block)
	require.NoError(t, <-done, "first apply failed")
}

func TestClearRemovesDiscount(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubValidator{results: map[string]decimal.Decimal{
		"X": decimal.NewFromInt(10),
	}})

	_, err := svc.Apply(context.Background(), "sess", "X")
	require.NoError(t, err)

	svc.Clear("sess")
	_, ok := svc.Discount("sess")
	assert.False(t, ok, "expected no discount after clear")
}

func TestDiscountsAreSessionScoped(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubValidator{results: map[string]decimal.Decimal{
		"X": decimal.NewFromInt(10),
	}})

	_, err := svc.Apply(context.Background(), "sess-a", "X")
	require.NoError(t, err)

	_, ok := svc.Discount("sess-b")
	assert.False(t, ok, "discount leaked across sessions")
}
