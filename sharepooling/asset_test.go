package sharepooling_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharepool/date"
	"sharepool/money"
	"sharepool/sharepooling"
)

func mkDate(day int) date.Date {
	return date.New(2015, time.October, day)
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func gbp(v string) money.Amount {
	return money.RequireFromString(v, money.GBP)
}

func newTestAsset() *sharepooling.Asset {
	return sharepooling.NewAsset("BTC", zerolog.Nop())
}

func acquire(t *testing.T, a *sharepooling.Asset, day int, quantity, cost string) {
	t.Helper()
	require.NoError(t, a.Acquire(sharepooling.AcquireAsset{
		Date: mkDate(day), Quantity: dec(quantity), CostBasis: gbp(cost),
	}))
}

func dispose(t *testing.T, a *sharepooling.Asset, day int, quantity, proceeds string) {
	t.Helper()
	require.NoError(t, a.DisposeOf(sharepooling.DisposeOfAsset{
		Date: mkDate(day), Quantity: dec(quantity), Proceeds: gbp(proceeds),
	}))
}

func assertDecEq(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func onlyDisposal(t *testing.T, a *sharepooling.Asset) *sharepooling.Disposal {
	t.Helper()
	disposals := a.History().Disposals().List()
	require.Len(t, disposals, 1)
	return disposals[0]
}

func TestSimplePoolDisposal(t *testing.T) {
	rq := require.New(t)
	a := newTestAsset()

	acquire(t, a, 21, "100", "100")
	dispose(t, a, 25, "50", "150")

	d := onlyDisposal(t, a)
	rq.True(d.Processed())
	assertDecEq(t, "50", d.CostBasis().Value)
	assert.True(t, d.SameDayAllocation().IsEmpty())
	assert.True(t, d.ThirtyDayAllocation().IsEmpty())

	events := a.ReleaseEvents()
	rq.Len(events, 2)
	rq.IsType(sharepooling.AssetAcquired{}, events[0])
	rq.IsType(sharepooling.AssetDisposedOf{}, events[1])
}

func TestSameDayDisposal(t *testing.T) {
	rq := require.New(t)
	a := newTestAsset()

	acquire(t, a, 21, "100", "100")
	acquire(t, a, 26, "100", "150")
	dispose(t, a, 26, "150", "300")

	// 100 same-day at the day average of 1.50, 50 pooled at 1.00.
	d := onlyDisposal(t, a)
	assertDecEq(t, "200", d.CostBasis().Value)

	sameDayAcqs := a.History().MadeOn(mkDate(26)).Acquisitions().List()
	rq.Len(sameDayAcqs, 1)
	assertDecEq(t, "100", d.SameDayAllocation().Quantity(sameDayAcqs[0].ID()))
	assert.True(t, d.ThirtyDayAllocation().IsEmpty())
	assertDecEq(t, "100", a.History().Claims().SameDay(sameDayAcqs[0].ID()))

	// No reversion took place: one event per command.
	rq.Len(a.ReleaseEvents(), 3)
}

func TestThirtyDayRetroactiveCorrection(t *testing.T) {
	rq := require.New(t)
	a := newTestAsset()

	acquire(t, a, 21, "100", "100")
	dispose(t, a, 26, "50", "75")

	staleID := onlyDisposal(t, a).ID()
	assertDecEq(t, "50", onlyDisposal(t, a).CostBasis().Value)
	a.ReleaseEvents()

	// An acquisition within 30 days of the disposal invalidates its pooled
	// cost basis: 25 units re-match against the new acquisition at 0.80.
	acquire(t, a, 29, "25", "20")

	d := onlyDisposal(t, a)
	rq.True(d.Processed())
	rq.Equal(staleID, d.ID())
	assertDecEq(t, "45", d.CostBasis().Value)

	newAcqs := a.History().MadeOn(mkDate(29)).Acquisitions().List()
	rq.Len(newAcqs, 1)
	assertDecEq(t, "25", d.ThirtyDayAllocation().Quantity(newAcqs[0].ID()))
	assert.True(t, d.SameDayAllocation().IsEmpty())
	assertDecEq(t, "25", a.History().Claims().ThirtyDay(newAcqs[0].ID()))

	events := a.ReleaseEvents()
	rq.Len(events, 3)
	rq.IsType(sharepooling.DisposalReverted{}, events[0])
	rq.IsType(sharepooling.AssetAcquired{}, events[1])
	rq.IsType(sharepooling.AssetDisposedOf{}, events[2])

	// The history was corrected in place, not appended to.
	rq.Equal(3, a.History().Len())
	assertDecEq(t, "75", a.History().Quantity())
}

func TestSameDayDisposalStealsThirtyDayMatch(t *testing.T) {
	rq := require.New(t)
	a := newTestAsset()

	acquire(t, a, 21, "100", "100")
	dispose(t, a, 26, "50", "75")
	acquire(t, a, 29, "25", "20")

	// The 10-29 acquisition now carries the 10-26 disposal's 30-day claim.
	// A same-day disposal on 10-29 outranks it, forcing the earlier
	// disposal back onto the pool.
	dispose(t, a, 29, "25", "30")

	acq29 := a.History().MadeOn(mkDate(29)).Acquisitions().List()[0]
	claims := a.History().Claims()
	assertDecEq(t, "25", claims.SameDay(acq29.ID()))
	assertDecEq(t, "0", claims.ThirtyDay(acq29.ID()))

	disposals := a.History().Disposals().List()
	rq.Len(disposals, 2)
	var d26, d29 *sharepooling.Disposal
	for _, d := range disposals {
		if d.Date().Equal(mkDate(26)) {
			d26 = d
		} else {
			d29 = d
		}
	}
	rq.NotNil(d26)
	rq.NotNil(d29)

	assertDecEq(t, "50", d26.CostBasis().Value)
	assert.True(t, d26.ThirtyDayAllocation().IsEmpty())

	assertDecEq(t, "20", d29.CostBasis().Value)
	assertDecEq(t, "25", d29.SameDayAllocation().Quantity(acq29.ID()))

	assertDecEq(t, "50", a.History().Quantity())
}

func TestReplaysRunInOriginalOrderWhenCapacityIsScarce(t *testing.T) {
	rq := require.New(t)
	a := newTestAsset()

	acquire(t, a, 1, "1000", "2000")
	dispose(t, a, 5, "30", "100")
	dispose(t, a, 10, "40", "120")
	acquire(t, a, 20, "10", "1")
	acquire(t, a, 25, "100", "50")

	// Reverts both earlier disposals, most recent first. Their replays must
	// still run oldest first: the day-20 acquisition has capacity for only
	// 10, and it belongs to the day-5 disposal like it did before.
	dispose(t, a, 25, "80", "90")

	var d5, d10 *sharepooling.Disposal
	for _, d := range a.History().Disposals().List() {
		switch {
		case d.Date().Equal(mkDate(5)):
			d5 = d
		case d.Date().Equal(mkDate(10)):
			d10 = d
		}
	}
	rq.NotNil(d5)
	rq.NotNil(d10)

	// Day-5: 10 thirty-day at 0.10 plus 20 pooled at 2.00.
	assertDecEq(t, "41", d5.CostBasis().Value)
	acq20 := a.History().MadeOn(mkDate(20)).Acquisitions().List()[0]
	assertDecEq(t, "10", d5.ThirtyDayAllocation().Quantity(acq20.ID()))

	// Day-10: fully pooled at 2.00. The day-25 acquisition's capacity went
	// to the same-day disposal instead.
	assertDecEq(t, "80", d10.CostBasis().Value)
	assert.True(t, d10.ThirtyDayAllocation().IsEmpty())

	acq25 := a.History().MadeOn(mkDate(25)).Acquisitions().List()[0]
	assertDecEq(t, "80", a.History().Claims().SameDay(acq25.ID()))
	assertDecEq(t, "0", a.History().Claims().ThirtyDay(acq25.ID()))
}

func TestInsufficientQuantity(t *testing.T) {
	rq := require.New(t)
	a := newTestAsset()

	acquire(t, a, 21, "100", "100")
	a.ReleaseEvents()

	err := a.DisposeOf(sharepooling.DisposeOfAsset{
		Date: mkDate(25), Quantity: dec("101"), Proceeds: gbp("100"),
	})
	var insufficientErr sharepooling.InsufficientQuantityError
	rq.ErrorAs(err, &insufficientErr)
	assertDecEq(t, "101", insufficientErr.Requested)
	assertDecEq(t, "100", insufficientErr.Available)

	// Rejected before any event.
	rq.Empty(a.ReleaseEvents())
	rq.Equal(1, a.History().Len())
}

func TestCurrencyMismatch(t *testing.T) {
	rq := require.New(t)
	a := newTestAsset()

	acquire(t, a, 21, "100", "100")
	a.ReleaseEvents()

	err := a.DisposeOf(sharepooling.DisposeOfAsset{
		Date:     mkDate(25),
		Quantity: dec("50"),
		Proceeds: money.RequireFromString("100", money.EUR),
	})
	var mismatchErr sharepooling.CurrencyMismatchError
	rq.ErrorAs(err, &mismatchErr)
	rq.Equal(money.GBP, mismatchErr.Want)
	rq.Equal(money.EUR, mismatchErr.Got)
	rq.Empty(a.ReleaseEvents())
}

func TestChronologyViolation(t *testing.T) {
	rq := require.New(t)
	a := newTestAsset()

	acquire(t, a, 25, "100", "100")

	err := a.Acquire(sharepooling.AcquireAsset{
		Date: mkDate(21), Quantity: dec("10"), CostBasis: gbp("10"),
	})
	var chronErr sharepooling.ChronologyError
	rq.ErrorAs(err, &chronErr)
	rq.True(chronErr.Last.Equal(mkDate(25)))
	rq.True(chronErr.Got.Equal(mkDate(21)))
}

func TestReplayRebuildsIdenticalState(t *testing.T) {
	rq := require.New(t)
	a := newTestAsset()

	acquire(t, a, 21, "100", "100")
	dispose(t, a, 26, "50", "75")
	acquire(t, a, 29, "25", "20")
	dispose(t, a, 29, "25", "30")

	events := a.ReleaseEvents()
	rebuilt := sharepooling.ReplayAsset("BTC", events, zerolog.Nop())

	rq.Equal(a.Currency(), rebuilt.Currency())
	rq.Equal(a.History().Len(), rebuilt.History().Len())

	for _, tx := range a.History().Transactions() {
		got, ok := rebuilt.History().Get(tx.ID())
		rq.True(ok, "transaction %s missing after replay", tx.ID())
		rq.True(tx.Date().Equal(got.Date()))
		assertDecEq(t, tx.Quantity().String(), got.Quantity())
		assertDecEq(t, tx.CostBasis().Value.String(), got.CostBasis().Value)
		rq.Equal(tx.Processed(), got.Processed())

		if d, ok := tx.(*sharepooling.Disposal); ok {
			gotD, ok := rebuilt.History().GetDisposal(d.ID())
			rq.True(ok)
			assert.True(t, d.SameDayAllocation().Equal(gotD.SameDayAllocation()))
			assert.True(t, d.ThirtyDayAllocation().Equal(gotD.ThirtyDayAllocation()))
		}
	}

	for _, acq := range a.History().Acquisitions().List() {
		assertDecEq(t,
			a.History().Claims().SameDay(acq.ID()).String(),
			rebuilt.History().Claims().SameDay(acq.ID()))
		assertDecEq(t,
			a.History().Claims().ThirtyDay(acq.ID()).String(),
			rebuilt.History().Claims().ThirtyDay(acq.ID()))
	}
}

func TestAllocationBoundHoldsThroughCascades(t *testing.T) {
	a := newTestAsset()

	acquire(t, a, 1, "100", "100")
	dispose(t, a, 2, "30", "40")
	acquire(t, a, 5, "10", "8")
	dispose(t, a, 5, "5", "6")
	acquire(t, a, 20, "40", "50")
	dispose(t, a, 28, "60", "90")
	acquire(t, a, 30, "15", "12")

	for _, d := range a.History().Disposals().Processed().List() {
		allocated := d.SameDayAllocation().Total().Add(d.ThirtyDayAllocation().Total())
		assert.True(t, allocated.LessThanOrEqual(d.Quantity()),
			"disposal %s over-allocated: %s of %s", d.ID(), allocated, d.Quantity())
	}

	// Conservation: signed net equals acquisitions minus disposals.
	assertDecEq(t, "70", a.History().Quantity())
}

func TestDisposalBeforeFirstAcquisitionFails(t *testing.T) {
	rq := require.New(t)
	a := newTestAsset()

	err := a.DisposeOf(sharepooling.DisposeOfAsset{
		Date: mkDate(21), Quantity: dec("1"), Proceeds: gbp("10"),
	})
	var insufficientErr sharepooling.InsufficientQuantityError
	rq.ErrorAs(err, &insufficientErr)
	assertDecEq(t, "0", insufficientErr.Available)
}
