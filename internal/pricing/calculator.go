package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DiscountedPrice applies a percentage discount to a base price. The
// percentage is clamped to [0, 100] so the result always lands in
// [0, base]: 0 returns the base unchanged, 100 returns zero.
func DiscountedPrice(base, percentage decimal.Decimal) decimal.Decimal {
	if percentage.LessThanOrEqual(decimal.Zero) {
		return base
	}
	if percentage.GreaterThanOrEqual(hundred) {
		return decimal.Zero
	}
	factor := hundred.Sub(percentage).Div(hundred)
	return base.Mul(factor)
}
