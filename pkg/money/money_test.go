package money_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obiora/bankcore/pkg/money"
)

func TestNew(t *testing.T) {
	m, err := money.New(1_500.50, money.NGN)
	require.NoError(t, err)
	assert.Equal(t, int64(150_050), m.Amount())
	assert.Equal(t, money.NGN, m.Currency())
	assert.InDelta(t, 1_500.50, m.AmountFloat(), 0.001)
}

func TestNew_RoundsToNearestKobo(t *testing.T) {
	m, err := money.New(0.015, money.NGN)
	require.NoError(t, err)
	assert.Equal(t, int64(2), m.Amount())

	m, err = money.New(0.014, money.NGN)
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.Amount())
}

func TestNew_Invalid(t *testing.T) {
	_, err := money.New(100, "naira")
	assert.ErrorIs(t, err, money.ErrInvalidCurrency)

	_, err = money.New(100, "ngn")
	assert.ErrorIs(t, err, money.ErrInvalidCurrency)

	_, err = money.New(math.NaN(), money.NGN)
	assert.ErrorIs(t, err, money.ErrInvalidAmount)

	_, err = money.New(math.Inf(1), money.NGN)
	assert.ErrorIs(t, err, money.ErrInvalidAmount)

	_, err = money.New(math.MaxFloat64, money.NGN)
	assert.ErrorIs(t, err, money.ErrAmountExceedsMaxSafeInt)
}

func TestArithmetic(t *testing.T) {
	a := money.Must(100, money.NGN)
	b := money.Must(40.50, money.NGN)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, money.Must(140.50, money.NGN), sum)

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, money.Must(59.50, money.NGN), diff)

	greater, err := a.GreaterThan(b)
	require.NoError(t, err)
	assert.True(t, greater)
}

func TestArithmetic_CurrencyMismatch(t *testing.T) {
	a := money.Must(100, money.NGN)
	b := money.Must(100, money.USD)

	_, err := a.Add(b)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)

	_, err = a.Sub(b)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)

	_, err = a.GreaterThan(b)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)

	assert.False(t, a.Equals(b))
	assert.False(t, a.IsSameCurrency(b))
}

func TestAdd_Overflow(t *testing.T) {
	huge, err := money.NewFromSmallestUnit(math.MaxInt64, money.NGN)
	require.NoError(t, err)

	_, err = huge.Add(money.Must(1, money.NGN))
	assert.ErrorIs(t, err, money.ErrAmountExceedsMaxSafeInt)
}

func TestSigns(t *testing.T) {
	pos := money.Must(1, money.NGN)
	neg, err := money.NewFromSmallestUnit(-100, money.NGN)
	require.NoError(t, err)

	assert.True(t, pos.IsPositive())
	assert.False(t, pos.IsNegative())
	assert.True(t, neg.IsNegative())
	assert.False(t, money.Zero(money.NGN).IsPositive())
	assert.False(t, money.Zero(money.NGN).IsNegative())
}

func TestString(t *testing.T) {
	assert.Equal(t, "1500.00 NGN", money.Must(1_500, money.NGN).String())
	assert.Equal(t, "0.50 USD", money.Must(0.50, money.USD).String())
}
