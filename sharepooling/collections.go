package sharepooling

import (
	"github.com/shopspring/decimal"
)

// Acquisitions is a filtered, claims-aware view over the acquisitions of a
// history, exposing the aggregate queries the matching engine works in.
type Acquisitions struct {
	list   []*Acquisition
	claims *Claims
}

func (as Acquisitions) List() []*Acquisition { return as.list }

func (as Acquisitions) Len() int { return len(as.list) }

func (as Acquisitions) IsEmpty() bool { return len(as.list) == 0 }

func (as Acquisitions) filter(keep func(*Acquisition) bool) Acquisitions {
	filtered := make([]*Acquisition, 0, len(as.list))
	for _, a := range as.list {
		if keep(a) {
			filtered = append(filtered, a)
		}
	}
	return Acquisitions{list: filtered, claims: as.claims}
}

func (as Acquisitions) WithAvailableSameDayQuantity() Acquisitions {
	return as.filter(func(a *Acquisition) bool {
		return as.claims.AvailableSameDay(a).IsPositive()
	})
}

func (as Acquisitions) WithAvailableThirtyDayQuantity() Acquisitions {
	return as.filter(func(a *Acquisition) bool {
		return as.claims.AvailableThirtyDay(a).IsPositive()
	})
}

// WithThirtyDayClaims keeps acquisitions that previously absorbed some
// disposal's 30-day claim.
func (as Acquisitions) WithThirtyDayClaims() Acquisitions {
	return as.filter(func(a *Acquisition) bool {
		return as.claims.ThirtyDay(a.ID()).IsPositive()
	})
}

func (as Acquisitions) Quantity() decimal.Decimal {
	total := decimal.Zero
	for _, a := range as.list {
		total = total.Add(a.Quantity())
	}
	return total
}

func (as Acquisitions) AvailableSameDayQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, a := range as.list {
		total = total.Add(as.claims.AvailableSameDay(a))
	}
	return total
}

func (as Acquisitions) costBasisValue() decimal.Decimal {
	total := decimal.Zero
	for _, a := range as.list {
		total = total.Add(a.CostBasis().Value)
	}
	return total
}

// AverageCostBasisPerUnit is the exact average cost over every acquisition
// in the view, zero when the view holds no quantity.
func (as Acquisitions) AverageCostBasisPerUnit() decimal.Decimal {
	quantity := as.Quantity()
	if quantity.IsZero() {
		return decimal.Zero
	}
	return as.costBasisValue().Div(quantity)
}

// Section104PoolQuantity is the total quantity left for pooled averaging.
func (as Acquisitions) Section104PoolQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, a := range as.list {
		total = total.Add(as.claims.PoolQuantity(a))
	}
	return total
}

// Section104PoolCostBasisValue is the total cost attributable to the pooled
// remainders.
func (as Acquisitions) Section104PoolCostBasisValue() decimal.Decimal {
	total := decimal.Zero
	for _, a := range as.list {
		total = total.Add(as.claims.PoolCostBasisValue(a))
	}
	return total
}

// Disposals is a filtered view over the disposals of a history.
type Disposals struct {
	list []*Disposal
}

func (ds Disposals) List() []*Disposal { return ds.list }

func (ds Disposals) Len() int { return len(ds.list) }

func (ds Disposals) IsEmpty() bool { return len(ds.list) == 0 }

func (ds Disposals) filter(keep func(*Disposal) bool) Disposals {
	filtered := make([]*Disposal, 0, len(ds.list))
	for _, d := range ds.list {
		if keep(d) {
			filtered = append(filtered, d)
		}
	}
	return Disposals{list: filtered}
}

func (ds Disposals) Processed() Disposals {
	return ds.filter(func(d *Disposal) bool { return d.Processed() })
}

func (ds Disposals) Unprocessed() Disposals {
	return ds.filter(func(d *Disposal) bool { return !d.Processed() })
}

func (ds Disposals) WithAvailableSameDayQuantity() Disposals {
	return ds.filter((*Disposal).HasAvailableSameDayQuantity)
}

func (ds Disposals) WithAvailableThirtyDayQuantity() Disposals {
	return ds.filter((*Disposal).HasAvailableThirtyDayQuantity)
}

// WithThirtyDayAllocationAgainst keeps disposals whose 30-day allocation
// references the given acquisition.
func (ds Disposals) WithThirtyDayAllocationAgainst(acquisitionID string) Disposals {
	return ds.filter(func(d *Disposal) bool {
		return d.ThirtyDayAllocation().Has(acquisitionID)
	})
}

// MostRecentFirst reverses the history's natural order.
func (ds Disposals) MostRecentFirst() Disposals {
	reversed := make([]*Disposal, len(ds.list))
	for i, d := range ds.list {
		reversed[len(ds.list)-1-i] = d
	}
	return Disposals{list: reversed}
}

func (ds Disposals) AvailableSameDayQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds.list {
		total = total.Add(d.AvailableSameDayQuantity())
	}
	return total
}

func (ds Disposals) Quantity() decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds.list {
		total = total.Add(d.Quantity())
	}
	return total
}
