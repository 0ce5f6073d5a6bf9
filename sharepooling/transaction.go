package sharepooling

import (
	"github.com/shopspring/decimal"

	"sharepool/date"
	"sharepool/money"
)

// Transaction is either an Acquisition or a Disposal of one asset.
type Transaction interface {
	ID() string
	Date() date.Date
	Quantity() decimal.Decimal
	CostBasis() money.Amount
	Processed() bool
}

// Acquisition is an immutable snapshot of a single purchase. The running
// same-day and 30-day counters that earlier designs kept on the entity live
// in the Claims side-table instead, so replay never has to chase aliased
// pointers.
type Acquisition struct {
	id        string
	date      date.Date
	quantity  decimal.Decimal
	costBasis money.Amount
}

func NewAcquisition(id string, dt date.Date, quantity decimal.Decimal, costBasis money.Amount) *Acquisition {
	return &Acquisition{id: id, date: dt, quantity: quantity, costBasis: costBasis}
}

func (a *Acquisition) ID() string                { return a.id }
func (a *Acquisition) Date() date.Date           { return a.date }
func (a *Acquisition) Quantity() decimal.Decimal { return a.quantity }
func (a *Acquisition) CostBasis() money.Amount   { return a.costBasis }

// Processed reports whether the acquisition has a committed identity.
func (a *Acquisition) Processed() bool { return a.id != "" }

// CostBasisPerUnit is the exact per-unit cost, zero for a zero quantity.
func (a *Acquisition) CostBasisPerUnit() decimal.Decimal {
	if a.quantity.IsZero() {
		return decimal.Zero
	}
	return a.costBasis.Value.Div(a.quantity)
}

// Disposal is a sale (or swap-out) whose cost basis was derived by the
// matching engine. Its two allocations record exactly which acquisitions
// funded the matched portion; the pooled portion is implicit.
//
// An unprocessed disposal is a placeholder with a zeroed cost basis and
// empty allocations, present in a history while other disposals are being
// recomputed so it cannot be matched against itself.
type Disposal struct {
	id        string
	date      date.Date
	quantity  decimal.Decimal
	proceeds  money.Amount
	costBasis money.Amount
	sameDay   *Allocation
	thirtyDay *Allocation
	processed bool
}

func NewDisposal(
	id string, dt date.Date, quantity decimal.Decimal, proceeds, costBasis money.Amount,
	sameDay, thirtyDay *Allocation,
) (*Disposal, error) {
	allocated := sameDay.Total().Add(thirtyDay.Total())
	if allocated.GreaterThan(quantity) {
		return nil, ExcessiveAllocationError{ID: id, Quantity: quantity, Allocated: allocated}
	}
	return &Disposal{
		id: id, date: dt, quantity: quantity, proceeds: proceeds, costBasis: costBasis,
		sameDay: sameDay, thirtyDay: thirtyDay, processed: true,
	}, nil
}

func NewUnprocessedDisposal(id string, dt date.Date, quantity decimal.Decimal, proceeds money.Amount) *Disposal {
	return &Disposal{
		id: id, date: dt, quantity: quantity, proceeds: proceeds,
		costBasis: money.Zero(proceeds.Currency),
		sameDay:   NewAllocation(), thirtyDay: NewAllocation(),
	}
}

func (d *Disposal) ID() string                { return d.id }
func (d *Disposal) Date() date.Date           { return d.date }
func (d *Disposal) Quantity() decimal.Decimal { return d.quantity }
func (d *Disposal) CostBasis() money.Amount   { return d.costBasis }
func (d *Disposal) Proceeds() money.Amount    { return d.proceeds }
func (d *Disposal) Processed() bool           { return d.processed }

func (d *Disposal) SameDayAllocation() *Allocation   { return d.sameDay }
func (d *Disposal) ThirtyDayAllocation() *Allocation { return d.thirtyDay }

// CopyAsUnprocessed keeps the disposal's identity and economics but drops
// its derived state, so later matching passes treat it as absent.
func (d *Disposal) CopyAsUnprocessed() *Disposal {
	return NewUnprocessedDisposal(d.id, d.date, d.quantity, d.proceeds)
}

// AvailableSameDayQuantity is the quantity not yet claimed by same-day
// matching.
func (d *Disposal) AvailableSameDayQuantity() decimal.Decimal {
	return d.quantity.Sub(d.sameDay.Total())
}

func (d *Disposal) HasAvailableSameDayQuantity() bool {
	return d.AvailableSameDayQuantity().IsPositive()
}

// AvailableThirtyDayQuantity is the quantity not yet claimed by either
// matching tier.
func (d *Disposal) AvailableThirtyDayQuantity() decimal.Decimal {
	return d.quantity.Sub(d.sameDay.Total()).Sub(d.thirtyDay.Total())
}

func (d *Disposal) HasAvailableThirtyDayQuantity() bool {
	return d.AvailableThirtyDayQuantity().IsPositive()
}
