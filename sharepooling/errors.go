package sharepooling

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"sharepool/date"
	"sharepool/money"
)

// ErrUnallocatable is an internal invariant violation: an allocation was
// attempted against an acquisition that has no assigned identity yet.
var ErrUnallocatable = errors.New("cannot allocate against an uncommitted acquisition")

// CurrencyMismatchError rejects a command whose monetary amount is in a
// different currency than the asset's already-established currency.
type CurrencyMismatchError struct {
	Asset string
	Want  money.Currency
	Got   money.Currency
}

func (e CurrencyMismatchError) Error() string {
	return fmt.Sprintf("asset %s operates in %s, got %s", e.Asset, e.Want, e.Got)
}

// ChronologyError rejects a command dated before the asset's last recorded
// transaction. Internal replays are exempt.
type ChronologyError struct {
	Asset string
	Last  date.Date
	Got   date.Date
}

func (e ChronologyError) Error() string {
	return fmt.Sprintf("asset %s already has a transaction on %s, got %s",
		e.Asset, e.Last, e.Got)
}

// InsufficientQuantityError rejects a disposal larger than the processed
// quantity held up to and including its date.
type InsufficientQuantityError struct {
	Asset     string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e InsufficientQuantityError) Error() string {
	return fmt.Sprintf("asset %s: disposal of %s exceeds available quantity %s",
		e.Asset, e.Requested, e.Available)
}

// ExcessiveAllocationError is an internal invariant violation caught at
// disposal construction: same-day plus 30-day allocations exceed the
// disposal's quantity.
type ExcessiveAllocationError struct {
	ID        string
	Quantity  decimal.Decimal
	Allocated decimal.Decimal
}

func (e ExcessiveAllocationError) Error() string {
	return fmt.Sprintf("disposal %s: allocated %s of a quantity of %s",
		e.ID, e.Allocated, e.Quantity)
}
