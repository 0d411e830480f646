package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// noDecimalCurrencies are currencies without a minor unit. Amounts in these
// currencies are whole numbers on the receipt and render without decimals.
var noDecimalCurrencies = map[string]bool{
	"JPY": true,
	"VND": true,
	"IDR": true,
	"KRW": true,
	"CLP": true,
	"ISK": true,
}

// currencySymbols maps common currency codes to their display symbol.
// Unknown codes fall back to the code itself.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"KRW": "₩",
	"VND": "₫",
	"IDR": "Rp",
	"INR": "₹",
}

// HasMinorUnit reports whether the currency uses decimal minor units.
func HasMinorUnit(currency string) bool {
	return !noDecimalCurrencies[strings.ToUpper(strings.TrimSpace(currency))]
}

// Symbol returns the display symbol for a currency code.
func Symbol(currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	if code == "" {
		return "$"
	}
	return code
}

// FormatAmount renders an amount for a currency. No-decimal currencies
// render as integers, everything else with exactly two decimals.
func FormatAmount(value float64, currency string) string {
	if !HasMinorUnit(currency) {
		return strconv.FormatInt(int64(math.Round(value)), 10)
	}
	return fmt.Sprintf("%.2f", value)
}

// ParseAmount parses a numeric string into an amount, stripping thousands
// separators and an optional currency symbol prefix.
func ParseAmount(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	for _, sym := range currencySymbols {
		cleaned = strings.TrimPrefix(cleaned, sym)
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("empty amount")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return value, nil
}

// Round rounds an amount to two decimal places, the finest minor-unit
// precision any supported currency uses. No-decimal currency values are
// integral already so this is a no-op for them.
func Round(value float64) float64 {
	return math.Round(value*100) / 100
}
