package sharepooling

import (
	"github.com/shopspring/decimal"

	"sharepool/money"
)

type claim struct {
	sameDay   decimal.Decimal
	thirtyDay decimal.Decimal
}

// Claims tracks, per acquisition identity, how much of the acquisition's
// quantity has been claimed by same-day and 30-day disposal matching. It is
// the mutable counterpart to the immutable Acquisition snapshots and is only
// written through event application (or a cloned overlay inside the
// matching engine).
type Claims struct {
	byID map[string]*claim
}

func NewClaims() *Claims {
	return &Claims{byID: make(map[string]*claim)}
}

func (c *Claims) get(id string) *claim {
	cl, ok := c.byID[id]
	if !ok {
		cl = &claim{}
		c.byID[id] = cl
	}
	return cl
}

func (c *Claims) SameDay(id string) decimal.Decimal {
	if cl, ok := c.byID[id]; ok {
		return cl.sameDay
	}
	return decimal.Zero
}

func (c *Claims) ThirtyDay(id string) decimal.Decimal {
	if cl, ok := c.byID[id]; ok {
		return cl.thirtyDay
	}
	return decimal.Zero
}

// AddSameDay claims same-day quantity against an acquisition. Same-day
// matching has priority over a previously assigned 30-day claim: if the
// combined claims would exceed the acquisition's quantity, the overhanging
// 30-day quantity is released.
func (c *Claims) AddSameDay(a *Acquisition, quantity decimal.Decimal) {
	cl := c.get(a.ID())
	cl.sameDay = cl.sameDay.Add(quantity)
	overflow := cl.sameDay.Add(cl.thirtyDay).Sub(a.Quantity())
	if overflow.IsPositive() {
		cl.thirtyDay = cl.thirtyDay.Sub(money.MinDecimal(cl.thirtyDay, overflow))
	}
}

func (c *Claims) AddThirtyDay(id string, quantity decimal.Decimal) {
	cl := c.get(id)
	cl.thirtyDay = cl.thirtyDay.Add(quantity)
}

// SubSameDay releases a same-day claim when its disposal is reverted.
// Clamped at zero: a claim can never go negative.
func (c *Claims) SubSameDay(id string, quantity decimal.Decimal) {
	cl := c.get(id)
	cl.sameDay = cl.sameDay.Sub(money.MinDecimal(cl.sameDay, quantity))
}

func (c *Claims) SubThirtyDay(id string, quantity decimal.Decimal) {
	cl := c.get(id)
	cl.thirtyDay = cl.thirtyDay.Sub(money.MinDecimal(cl.thirtyDay, quantity))
}

// AvailableSameDay is the acquisition quantity still claimable by same-day
// matching.
func (c *Claims) AvailableSameDay(a *Acquisition) decimal.Decimal {
	return a.Quantity().Sub(c.SameDay(a.ID()))
}

// AvailableThirtyDay is the acquisition quantity still claimable by 30-day
// matching, which is exactly its section 104 pool remainder.
func (c *Claims) AvailableThirtyDay(a *Acquisition) decimal.Decimal {
	return c.PoolQuantity(a)
}

// PoolQuantity is the part of the acquisition left for pooled averaging.
func (c *Claims) PoolQuantity(a *Acquisition) decimal.Decimal {
	return a.Quantity().Sub(c.SameDay(a.ID())).Sub(c.ThirtyDay(a.ID()))
}

// PoolCostBasisValue is the acquisition cost attributable to its pooled
// remainder: costBasis x poolQuantity / quantity.
func (c *Claims) PoolCostBasisValue(a *Acquisition) decimal.Decimal {
	if a.Quantity().IsZero() {
		return decimal.Zero
	}
	return a.CostBasis().Value.Mul(c.PoolQuantity(a)).Div(a.Quantity())
}

func (c *Claims) Clone() *Claims {
	clone := NewClaims()
	for id, cl := range c.byID {
		clone.byID[id] = &claim{sameDay: cl.sameDay, thirtyDay: cl.thirtyDay}
	}
	return clone
}
