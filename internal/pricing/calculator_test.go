package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDiscountedPriceBounds(t *testing.T) {
	t.Parallel()

	base := decimal.NewFromInt(100)

	got := DiscountedPrice(base, decimal.Zero)
	assert.True(t, got.Equal(base), "expected base price for 0%%, got %s", got)

	got = DiscountedPrice(base, decimal.NewFromInt(100))
	assert.True(t, got.Equal(decimal.Zero), "expected zero for 100%%, got %s", got)

	got = DiscountedPrice(base, decimal.NewFromInt(20))
	assert.True(t, got.Equal(decimal.NewFromInt(80)), "expected 80 for 20%%, got %s", got)
}

func TestDiscountedPriceClampsOutOfRange(t *testing.T) {
	t.Parallel()

	base := decimal.NewFromInt(50)

	got := DiscountedPrice(base, decimal.NewFromInt(-10))
	assert.True(t, got.Equal(base), "expected base for negative percentage, got %s", got)

	got = DiscountedPrice(base, decimal.NewFromInt(150))
	assert.True(t, got.Equal(decimal.Zero), "expected zero for percentage above 100, got %s", got)
}

func TestDiscountedPriceNeverNegative(t *testing.T) {
	t.Parallel()

	base := decimal.NewFromFloat(19.99)
	for p := 0; p <= 100; p += 5 {
		got := DiscountedPrice(base, decimal.NewFromInt(int64(p)))
		assert.False(t, got.IsNegative(), "negative price %s at %d%%", got, p)
		assert.False(t, got.GreaterThan(base), "price %s above base at %d%%", got, p)
	}
}

func TestDiscountedPriceIdempotent(t *testing.T) {
	t.Parallel()

	base := decimal.NewFromFloat(79.5)
	pct := decimal.NewFromInt(15)
	first := DiscountedPrice(base, pct)
	second := DiscountedPrice(base, pct)
	assert.True(t, first.Equal(second), "expected stable result, got %s then %s", first, second)
}

func TestCustomizationPrice(t *testing.T) {
	t.Parallel()

	base := decimal.NewFromInt(100)

	got := CustomizationPrice(base, "gold", "diamond")
	assert.True(t, got.Equal(decimal.NewFromInt(680)), "expected 680 for gold+diamond, got %s", got)

	got = CustomizationPrice(base, "Platinum", "pearl")
	assert.True(t, got.Equal(decimal.NewFromInt(330)), "expected 330 for platinum+pearl, got %s", got)
}

func TestCustomizationPriceNeutralDefaults(t *testing.T) {
	t.Parallel()

	base := decimal.NewFromInt(100)

	got := CustomizationPrice(base, "titanium", "opal")
	assert.True(t, got.Equal(base), "expected neutral quote for unknown keys, got %s", got)

	got = CustomizationPrice(base, "", "sapphire")
	assert.True(t, got.Equal(decimal.NewFromInt(350)), "expected 350 for missing material, got %s", got)
}
