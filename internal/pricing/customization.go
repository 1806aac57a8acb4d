package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Material multipliers scale the base price of a customized piece.
// Unknown materials fall back to a neutral 1.0 multiplier.
var materialMultipliers = map[string]decimal.Decimal{
	"silver":    decimal.NewFromFloat(1.0),
	"gold":      decimal.NewFromFloat(1.8),
	"rose-gold": decimal.NewFromFloat(1.9),
	"platinum":  decimal.NewFromFloat(2.5),
}

// Gem surcharges are flat additions on top of the material-adjusted
// price. Unknown gems add nothing.
var gemSurcharges = map[string]decimal.Decimal{
	"diamond":  decimal.NewFromInt(500),
	"sapphire": decimal.NewFromInt(250),
	"ruby":     decimal.NewFromInt(220),
	"emerald":  decimal.NewFromInt(200),
	"pearl":    decimal.NewFromInt(80),
}

// CustomizationPrice derives a quote for a customized piece:
// base price times the material multiplier, plus the gem surcharge.
func CustomizationPrice(base decimal.Decimal, material, gem string) decimal.Decimal {
	multiplier, ok := materialMultipliers[normalizeKey(material)]
	if !ok {
		multiplier = decimal.NewFromInt(1)
	}
	surcharge, ok := gemSurcharges[normalizeKey(gem)]
	if !ok {
		surcharge = decimal.Zero
	}
	return base.Mul(multiplier).Add(surcharge)
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
