package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharepool/date"
	"sharepool/money"
	"sharepool/report"
	"sharepool/sharepooling"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func tradedAsset(t *testing.T) *sharepooling.Asset {
	t.Helper()
	a := sharepooling.NewAsset("BTC", zerolog.Nop())
	require.NoError(t, a.Acquire(sharepooling.AcquireAsset{
		Date:      date.New(2015, time.October, 21),
		Quantity:  dec("100"),
		CostBasis: money.RequireFromString("100", money.GBP),
	}))
	require.NoError(t, a.DisposeOf(sharepooling.DisposeOfAsset{
		Date:     date.New(2015, time.October, 26),
		Quantity: dec("50"),
		Proceeds: money.RequireFromString("75", money.GBP),
	}))
	require.NoError(t, a.DisposeOf(sharepooling.DisposeOfAsset{
		Date:     date.New(2016, time.January, 10),
		Quantity: dec("20"),
		Proceeds: money.RequireFromString("15", money.GBP),
	}))
	return a
}

func TestCalcAssetCumulativeGains(t *testing.T) {
	rq := require.New(t)
	a := tradedAsset(t)

	gains := report.CalcAssetCumulativeGains(a.History(), a.Currency())
	rq.Equal(money.GBP, gains.Currency)

	// 2015: proceeds 75 - cost 50 = +25. 2016: proceeds 15 - cost 20 = -5.
	assert.True(t, gains.Total.Equal(dec("20")), "total was %s", gains.Total)
	assert.True(t, gains.YearTotals[2015].Equal(dec("25")))
	assert.True(t, gains.YearTotals[2016].Equal(dec("-5")))
	rq.Equal([]int{2015, 2016}, gains.YearTotalsKeysSorted())
}

func TestCalcCumulativeGainsCombines(t *testing.T) {
	combined := report.CalcCumulativeGains(map[string]*report.CumulativeGains{
		"BTC": {Total: dec("20"), YearTotals: map[int]decimal.Decimal{2015: dec("25"), 2016: dec("-5")}, Currency: money.GBP},
		"ETH": {Total: dec("10"), YearTotals: map[int]decimal.Decimal{2016: dec("10")}, Currency: money.GBP},
	})
	assert.True(t, combined.Total.Equal(dec("30")))
	assert.True(t, combined.YearTotals[2015].Equal(dec("25")))
	assert.True(t, combined.YearTotals[2016].Equal(dec("5")))
}

func TestRenderDisposalTableModel(t *testing.T) {
	rq := require.New(t)
	a := tradedAsset(t)
	gains := report.CalcAssetCumulativeGains(a.History(), a.Currency())

	table := report.RenderDisposalTableModel(a.History(), gains, false)
	rq.Len(table.Rows, 2)
	rq.Equal("2015-10-26", table.Rows[0][0])
	rq.Equal("£50.00", table.Rows[0][3])
	rq.Equal("+£25.00", table.Rows[0][4])
	rq.Equal("-£5.00", table.Rows[1][4])
	rq.Empty(table.Notes)

	var buf bytes.Buffer
	report.PrintRenderTable("Disposals of BTC", table, &buf)
	out := buf.String()
	assert.Contains(t, out, "Disposals of BTC")
	assert.Contains(t, out, "COST BASIS")
	assert.Contains(t, out, "2015-10-26")
}

func TestRenderPoolStatus(t *testing.T) {
	rq := require.New(t)
	a := tradedAsset(t)

	table := report.RenderPoolStatus(
		[]string{"BTC"},
		map[string]*sharepooling.History{"BTC": a.History()},
		map[string]money.Currency{"BTC": a.Currency()},
		false)
	rq.Len(table.Rows, 1)
	// 100 acquired, 70 disposed from the pool: 30 remain at £1/unit.
	rq.Equal("BTC", table.Rows[0][0])
	rq.Equal("30", table.Rows[0][1])
	rq.Equal("£30.00", table.Rows[0][2])
	rq.Equal("£1.00", table.Rows[0][3])
}

func TestRenderAggregateGains(t *testing.T) {
	gains := &report.CumulativeGains{
		Total:      dec("20"),
		YearTotals: map[int]decimal.Decimal{2015: dec("25"), 2016: dec("-5")},
		Currency:   money.GBP,
	}
	table := report.RenderAggregateGains(gains, false)
	require.Equal(t, [][]string{
		{"2015", "£25.00"},
		{"2016", "-£5.00"},
		{"Since inception", "£20.00"},
	}, table.Rows)
}
