package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"sharepool/money"
)

func gbp(v string) money.Amount {
	return money.RequireFromString(v, money.GBP)
}

func TestArithmeticSameCurrency(t *testing.T) {
	rq := require.New(t)

	sum, err := gbp("10.50").Add(gbp("4.25"))
	rq.NoError(err)
	rq.True(sum.Equal(gbp("14.75")))

	diff, err := gbp("10.50").Sub(gbp("4.25"))
	rq.NoError(err)
	rq.True(diff.Equal(gbp("6.25")))

	rq.True(gbp("10").Mul(decimal.RequireFromString("2.5")).Equal(gbp("25")))
	rq.True(gbp("10").Div(decimal.RequireFromString("4")).Equal(gbp("2.5")))
}

func TestArithmeticRejectsMixedCurrencies(t *testing.T) {
	rq := require.New(t)
	eur := money.RequireFromString("5", money.EUR)

	_, err := gbp("10").Add(eur)
	rq.Error(err)
	_, err = gbp("10").Sub(eur)
	rq.Error(err)
}

func TestDivByZeroIsZero(t *testing.T) {
	got := gbp("10").Div(decimal.Zero)
	require.True(t, got.IsZero())
	require.Equal(t, money.GBP, got.Currency)
}

func TestNewFromString(t *testing.T) {
	rq := require.New(t)

	a, err := money.NewFromString("12.345", money.USD)
	rq.NoError(err)
	rq.Equal(money.USD, a.Currency)
	rq.True(a.Value.Equal(decimal.RequireFromString("12.345")))

	_, err = money.NewFromString("not-a-number", money.USD)
	rq.Error(err)
}

func TestPredicates(t *testing.T) {
	rq := require.New(t)
	rq.True(money.Zero(money.GBP).IsZero())
	rq.True(gbp("-1").IsNegative())
	rq.False(gbp("1").IsNegative())
	rq.False(gbp("1").Equal(money.RequireFromString("1", money.EUR)))
}
