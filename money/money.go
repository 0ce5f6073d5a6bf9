package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	GBP Currency = "GBP"
	EUR Currency = "EUR"
	USD Currency = "USD"
)

// Amount is an exact-decimal monetary value tagged with its currency.
// Arithmetic between mismatched currencies is a programming error and is
// reported rather than silently coerced.
type Amount struct {
	Value    decimal.Decimal
	Currency Currency
}

func New(value decimal.Decimal, currency Currency) Amount {
	return Amount{Value: value, Currency: currency}
}

func Zero(currency Currency) Amount {
	return Amount{Value: decimal.Zero, Currency: currency}
}

// NewFromString parses an exact decimal string, eg. "104.05".
func NewFromString(value string, currency Currency) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return Amount{Value: d, Currency: currency}, nil
}

func RequireFromString(value string, currency Currency) Amount {
	return Amount{Value: decimal.RequireFromString(value), Currency: currency}
}

func (a Amount) Add(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("cannot add %s to %s", b.Currency, a.Currency)
	}
	return Amount{Value: a.Value.Add(b.Value), Currency: a.Currency}, nil
}

func (a Amount) Sub(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("cannot subtract %s from %s", b.Currency, a.Currency)
	}
	return Amount{Value: a.Value.Sub(b.Value), Currency: a.Currency}, nil
}

func (a Amount) Mul(q decimal.Decimal) Amount {
	return Amount{Value: a.Value.Mul(q), Currency: a.Currency}
}

// Div divides by an exact decimal quantity. Division by zero yields a zero
// amount; callers that care check the divisor first.
func (a Amount) Div(q decimal.Decimal) Amount {
	if q.IsZero() {
		return Zero(a.Currency)
	}
	return Amount{Value: a.Value.Div(q), Currency: a.Currency}
}

func (a Amount) IsZero() bool {
	return a.Value.IsZero()
}

func (a Amount) IsNegative() bool {
	return a.Value.IsNegative()
}

func (a Amount) Equal(b Amount) bool {
	return a.Currency == b.Currency && a.Value.Equal(b.Value)
}

func (a Amount) String() string {
	return fmt.Sprintf("%s %s", a.Value.String(), a.Currency)
}

// MinDecimal returns the smaller of two exact decimals.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThanOrEqual(b) {
		return a
	}
	return b
}
