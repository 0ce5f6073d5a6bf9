package sharepooling_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sharepool/sharepooling"
)

func TestHistoryReplacesByIdentity(t *testing.T) {
	rq := require.New(t)
	h := sharepooling.NewHistory()

	h.Add(mkAcquisition("a1", 21, "100", "100"))
	h.Add(sharepooling.NewUnprocessedDisposal("d1", mkDate(25), dec("50"), gbp("75")))
	rq.Equal(2, h.Len())

	// Re-adding under the same identity overwrites in place.
	replacement, err := sharepooling.NewDisposal(
		"d1", mkDate(25), dec("50"), gbp("75"), gbp("50"),
		sharepooling.NewAllocation(), sharepooling.NewAllocation())
	rq.NoError(err)
	h.Add(replacement)
	rq.Equal(2, h.Len())

	d, ok := h.GetDisposal("d1")
	rq.True(ok)
	rq.True(d.Processed())
	assertDecEq(t, "50", d.CostBasis().Value)
}

func TestHistoryDateRangeQueries(t *testing.T) {
	rq := require.New(t)
	h := sharepooling.NewHistory()
	h.Add(mkAcquisition("a1", 10, "10", "10"))
	h.Add(mkAcquisition("a2", 15, "20", "20"))
	h.Add(mkAcquisition("a3", 20, "30", "30"))

	rq.Equal(1, h.MadeOn(mkDate(15)).Len())
	rq.Equal(1, h.MadeBefore(mkDate(15)).Len())
	rq.Equal(2, h.MadeBeforeOrOn(mkDate(15)).Len())
	rq.Equal(1, h.MadeAfter(mkDate(15)).Len())
	rq.Equal(2, h.MadeAfterOrOn(mkDate(15)).Len())

	// Bounds are inclusive and unordered.
	rq.Equal(2, h.MadeBetween(mkDate(10), mkDate(15)).Len())
	rq.Equal(2, h.MadeBetween(mkDate(15), mkDate(10)).Len())
	rq.Equal(1, h.MadeBetween(mkDate(15), mkDate(15)).Len())
}

func TestHistorySignedQuantity(t *testing.T) {
	h := sharepooling.NewHistory()
	h.Add(mkAcquisition("a1", 10, "100", "100"))

	d, err := sharepooling.NewDisposal(
		"d1", mkDate(12), dec("40"), gbp("60"), gbp("40"),
		sharepooling.NewAllocation(), sharepooling.NewAllocation())
	require.NoError(t, err)
	h.Add(d)

	assertDecEq(t, "60", h.Quantity())

	// Unprocessed transactions do not count towards the processed view.
	h.Add(sharepooling.NewUnprocessedDisposal("d2", mkDate(13), dec("10"), gbp("15")))
	require.Equal(t, 2, h.Processed().Len())
	assertDecEq(t, "50", h.Quantity())
}
