package sharepooling

import (
	"github.com/shopspring/decimal"

	"sharepool/date"
	"sharepool/money"
	"sharepool/util"
)

// DisposalsToRevertOnAcquisition finds the already-processed disposals whose
// cost basis a new acquisition on the given date invalidates.
//
// Same-day and 30-day reversion are deliberately asymmetric: a same-day
// cost basis is an average over the whole day, so one new acquirer forces
// every disposal of that day to be redone; a 30-day cost basis is a
// point match that can be partially unwound, so the scan stops once the
// acquisition's quantity budget is spent.
func DisposalsToRevertOnAcquisition(h *History, dt date.Date, quantity decimal.Decimal) []*Disposal {
	if !quantity.IsPositive() {
		return nil
	}
	remaining := quantity
	var reverts []*Disposal
	seen := util.NewSet[string]()

	sameDay := h.MadeOn(dt).Disposals().Processed().WithAvailableSameDayQuantity()
	for _, d := range sameDay.List() {
		reverts = append(reverts, d)
		seen.Add(d.ID())
	}
	if !sameDay.IsEmpty() {
		remaining = remaining.Sub(money.MinDecimal(remaining, sameDay.AvailableSameDayQuantity()))
	}

	if remaining.IsPositive() {
		window := h.MadeBetween(dt.AddDays(-30), dt).Disposals().
			Processed().WithAvailableThirtyDayQuantity()
		for _, d := range window.List() {
			if !seen.Has(d.ID()) {
				reverts = append(reverts, d)
				seen.Add(d.ID())
			}
			remaining = remaining.Sub(money.MinDecimal(remaining, d.AvailableThirtyDayQuantity()))
			if !remaining.IsPositive() {
				break
			}
		}
	}
	return reverts
}

// DisposalsToRevertOnDisposal finds the processed disposals whose 30-day
// allocations reference acquisitions made on the new disposal's date. Those
// acquisitions now owe the new disposal a same-day match, which outranks
// the 30-day claims already standing against them. The most recent claims
// are unwound first, and the scan stops entirely once the new disposal's
// quantity budget is spent.
func DisposalsToRevertOnDisposal(h *History, dt date.Date, quantity decimal.Decimal) []*Disposal {
	if !quantity.IsPositive() {
		return nil
	}
	remaining := quantity
	var reverts []*Disposal
	seen := util.NewSet[string]()

	acquisitions := h.MadeOn(dt).Acquisitions().WithThirtyDayClaims()
	for _, acquisition := range acquisitions.List() {
		claimants := h.Disposals().Processed().
			WithThirtyDayAllocationAgainst(acquisition.ID()).MostRecentFirst()
		for _, d := range claimants.List() {
			if !seen.Has(d.ID()) {
				reverts = append(reverts, d)
				seen.Add(d.ID())
			}
			allocated := d.ThirtyDayAllocation().Quantity(acquisition.ID())
			remaining = remaining.Sub(money.MinDecimal(remaining, allocated))
			if !remaining.IsPositive() {
				return reverts
			}
		}
	}
	return reverts
}
