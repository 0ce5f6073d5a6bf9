package sharepooling

import (
	"github.com/shopspring/decimal"

	"sharepool/date"
	"sharepool/money"
)

// Match derives the cost basis of a disposal of the given quantity on the
// given date against the supplied history, applying the three matching
// tiers in strict order: same-day, 30-day, then the section 104 pool.
//
// Match never touches committed state: it works against a cloned claims
// overlay and returns the two allocations it built. The caller folds those
// allocations back into the real claims table by applying the resulting
// event.
func Match(
	h *History, dt date.Date, quantity decimal.Decimal, currency money.Currency,
) (money.Amount, *Allocation, *Allocation, error) {

	remaining := quantity
	costBasis := decimal.Zero
	sameDay := NewAllocation()
	thirtyDay := NewAllocation()

	claims := h.Claims().Clone()
	view := h.withClaims(claims)

	// Same-day tier. The cost is the average over every acquisition made on
	// the day, not just those with availability.
	dayAcquisitions := view.MadeOn(dt).Acquisitions()
	available := dayAcquisitions.WithAvailableSameDayQuantity()
	if !available.IsEmpty() {
		averagePerUnit := dayAcquisitions.AverageCostBasisPerUnit()
		take := money.MinDecimal(remaining, available.AvailableSameDayQuantity())
		costBasis = costBasis.Add(averagePerUnit.Mul(take))
		toApply := take
		for _, acquisition := range available.List() {
			if !toApply.IsPositive() {
				break
			}
			q := money.MinDecimal(claims.AvailableSameDay(acquisition), toApply)
			if !q.IsPositive() {
				continue
			}
			if err := sameDay.Allocate(q, acquisition); err != nil {
				return money.Amount{}, nil, nil, err
			}
			claims.AddSameDay(acquisition, q)
			toApply = toApply.Sub(q)
		}
		remaining = remaining.Sub(take)
	}

	// 30-day tier: acquisitions made within the 30 days after the disposal,
	// oldest first, excluding the disposal's own day.
	if remaining.IsPositive() {
		window := view.MadeBetween(dt.AddDays(1), dt.AddDays(30)).Acquisitions()
		for _, acquisition := range window.List() {
			if !remaining.IsPositive() {
				break
			}
			want := money.MinDecimal(claims.AvailableThirtyDay(acquisition), remaining)
			if !want.IsPositive() {
				continue
			}
			// Same-day disposals pending recomputation on this acquisition's
			// date outrank a 30-day match; leave their claim untouched. They
			// allocate against the acquisition themselves once replayed.
			pending := view.MadeOn(acquisition.Date()).Disposals().
				Unprocessed().WithAvailableSameDayQuantity()
			if !pending.IsEmpty() {
				want = want.Sub(money.MinDecimal(pending.AvailableSameDayQuantity(), want))
			}
			if !want.IsPositive() {
				continue
			}
			costBasis = costBasis.Add(acquisition.CostBasisPerUnit().Mul(want))
			if err := thirtyDay.Allocate(want, acquisition); err != nil {
				return money.Amount{}, nil, nil, err
			}
			claims.AddThirtyDay(acquisition.ID(), want)
			remaining = remaining.Sub(want)
		}
	}

	// Section 104 pool tier. No allocation entries: the pooled portion is
	// implicit (quantity minus the two allocation totals). Disposing before
	// any acquisition contributes nothing rather than failing; the
	// insufficient-quantity check upstream makes that unreachable in
	// practice.
	if remaining.IsPositive() {
		pool := view.MadeBeforeOrOn(dt).Acquisitions()
		poolQuantity := pool.Section104PoolQuantity()
		if poolQuantity.IsPositive() {
			averagePerUnit := pool.Section104PoolCostBasisValue().Div(poolQuantity)
			costBasis = costBasis.Add(averagePerUnit.Mul(remaining))
		}
	}

	return money.New(costBasis, currency), sameDay, thirtyDay, nil
}
