// Package money provides a value object for monetary amounts.
//
// Invariants:
//   - Amount is always stored in the smallest currency unit (kobo for NGN).
//   - Currency code must be a valid ISO 4217 code (3 uppercase letters).
//   - All arithmetic operations require matching currencies.
package money

import (
	"fmt"
	"math"
)

var (
	// ErrInvalidAmount is returned when an amount cannot be represented exactly.
	ErrInvalidAmount = fmt.Errorf("invalid amount")

	// ErrAmountExceedsMaxSafeInt is returned when an amount overflows int64.
	ErrAmountExceedsMaxSafeInt = fmt.Errorf("amount exceeds maximum safe integer value")

	// ErrInvalidCurrency is returned when a currency code is malformed.
	ErrInvalidCurrency = fmt.Errorf("invalid currency code")

	// ErrCurrencyMismatch is returned when operating on money in different currencies.
	ErrCurrencyMismatch = fmt.Errorf("currency mismatch")
)

// Amount represents a monetary amount as an integer in the
// smallest currency unit (e.g., kobo for NGN).
type Amount = int64

// Code represents an ISO 4217 currency code (e.g., "NGN", "USD").
type Code string

// Common currency codes.
const (
	NGN Code = "NGN"
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
)

// DefaultCode is the platform's home currency.
var DefaultCode = NGN

// IsValid checks if the currency code is three uppercase letters.
func (c Code) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	return c[0] >= 'A' && c[0] <= 'Z' &&
		c[1] >= 'A' && c[1] <= 'Z' &&
		c[2] >= 'A' && c[2] <= 'Z'
}

// String returns the string representation of the currency code.
func (c Code) String() string {
	return string(c)
}

// decimals returns the number of decimal places for the code. All currencies
// handled by the platform carry two decimal places.
func (c Code) decimals() int {
	return 2
}

// Money represents a monetary value in a specific currency.
type Money struct {
	amount   Amount
	currency Code
}

// New creates a Money from a major-unit float (e.g., naira) and a currency code.
// The amount is converted to the smallest unit and must not overflow.
func New(amount float64, currency Code) (Money, error) {
	if !currency.IsValid() {
		return Money{}, ErrInvalidCurrency
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, ErrInvalidAmount
	}
	scaled := amount * math.Pow10(currency.decimals())
	if scaled > math.MaxInt64 || scaled < math.MinInt64 {
		return Money{}, ErrAmountExceedsMaxSafeInt
	}
	return Money{amount: int64(math.Round(scaled)), currency: currency}, nil
}

// NewFromSmallestUnit creates a Money directly from a smallest-unit amount.
func NewFromSmallestUnit(amount Amount, currency Code) (Money, error) {
	if !currency.IsValid() {
		return Money{}, ErrInvalidCurrency
	}
	return Money{amount: amount, currency: currency}, nil
}

// Must creates a Money from a major-unit float and panics on error.
// Intended for constants and test fixtures.
func Must(amount float64, currency Code) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero-valued Money in the given currency.
func Zero(currency Code) Money {
	return Money{amount: 0, currency: currency}
}

// Amount returns the amount in the smallest currency unit.
func (m Money) Amount() Amount {
	return m.amount
}

// AmountFloat returns the amount in major units.
func (m Money) AmountFloat() float64 {
	return float64(m.amount) / math.Pow10(m.currency.decimals())
}

// Currency returns the currency code.
func (m Money) Currency() Code {
	return m.currency
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.amount > 0
}

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool {
	return m.amount < 0
}

// IsSameCurrency reports whether both values share a currency.
func (m Money) IsSameCurrency(other Money) bool {
	return m.currency == other.currency
}

// Add returns the sum of both values. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if !m.IsSameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	sum := m.amount + other.amount
	if (other.amount > 0 && sum < m.amount) || (other.amount < 0 && sum > m.amount) {
		return Money{}, ErrAmountExceedsMaxSafeInt
	}
	return Money{amount: sum, currency: m.currency}, nil
}

// Sub returns the difference of both values. Currencies must match.
func (m Money) Sub(other Money) (Money, error) {
	if !m.IsSameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// GreaterThan reports whether m is strictly greater than other.
func (m Money) GreaterThan(other Money) (bool, error) {
	if !m.IsSameCurrency(other) {
		return false, ErrCurrencyMismatch
	}
	return m.amount > other.amount, nil
}

// Equals reports whether both values have the same amount and currency.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount == other.amount
}

// String formats the amount with its currency code, e.g. "1500.00 NGN".
func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.AmountFloat(), m.currency)
}
