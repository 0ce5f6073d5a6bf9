package sharepooling

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Allocation is a disposal's provenance record: how much of the disposed
// quantity was claimed from which acquisition, keyed by the acquisition's
// stable identity. The identity survives replay, so a reverted disposal can
// always be unwound against the exact acquisitions it drew from.
type Allocation struct {
	quantities map[string]decimal.Decimal
	total      decimal.Decimal
}

func NewAllocation() *Allocation {
	return &Allocation{quantities: make(map[string]decimal.Decimal)}
}

// Allocate claims quantity from the given acquisition, adding to any
// existing claim. The acquisition must already be committed to a history.
func (a *Allocation) Allocate(quantity decimal.Decimal, acquisition *Acquisition) error {
	if !acquisition.Processed() {
		return ErrUnallocatable
	}
	a.put(acquisition.ID(), a.quantities[acquisition.ID()].Add(quantity))
	return nil
}

// put bypasses the committed-acquisition check; used when rebuilding an
// allocation from a persisted payload.
func (a *Allocation) put(id string, quantity decimal.Decimal) {
	prev := a.quantities[id]
	a.quantities[id] = quantity
	a.total = a.total.Sub(prev).Add(quantity)
}

// Quantity returns the quantity claimed from the given acquisition.
func (a *Allocation) Quantity(id string) decimal.Decimal {
	return a.quantities[id]
}

func (a *Allocation) Has(id string) bool {
	_, ok := a.quantities[id]
	return ok
}

// Total is the cached sum of all claims.
func (a *Allocation) Total() decimal.Decimal {
	return a.total
}

func (a *Allocation) IsEmpty() bool {
	return len(a.quantities) == 0
}

// IDs returns the referenced acquisition identities in a stable order.
func (a *Allocation) IDs() []string {
	ids := make([]string, 0, len(a.quantities))
	for id := range a.quantities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (a *Allocation) Clone() *Allocation {
	clone := NewAllocation()
	for id, q := range a.quantities {
		clone.put(id, q)
	}
	return clone
}

func (a *Allocation) Equal(b *Allocation) bool {
	if len(a.quantities) != len(b.quantities) {
		return false
	}
	for id, q := range a.quantities {
		if bq, ok := b.quantities[id]; !ok || !bq.Equal(q) {
			return false
		}
	}
	return true
}
