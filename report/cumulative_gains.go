package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"sharepool/money"
	"sharepool/sharepooling"
	"sharepool/util"
)

// CumulativeGains aggregates realized gains and losses across processed
// disposals, totalled since inception and per tax year of disposal.
type CumulativeGains struct {
	Total      decimal.Decimal
	YearTotals map[int]decimal.Decimal
	Currency   money.Currency
}

func (g *CumulativeGains) YearTotalsKeysSorted() []int {
	years := util.MapKeys(g.YearTotals)
	sort.Ints(years)
	return years
}

func CalcAssetCumulativeGains(h *sharepooling.History, currency money.Currency) *CumulativeGains {
	total := decimal.Zero
	yearTotals := map[int]decimal.Decimal{}

	for _, d := range h.Disposals().Processed().List() {
		gain := d.Proceeds().Value.Sub(d.CostBasis().Value)
		total = total.Add(gain)
		yearTotals[d.Date().Year()] = yearTotals[d.Date().Year()].Add(gain)
	}

	return &CumulativeGains{total, yearTotals, currency}
}

func CalcCumulativeGains(assetGains map[string]*CumulativeGains) *CumulativeGains {
	total := decimal.Zero
	yearTotals := map[int]decimal.Decimal{}
	currency := money.GBP

	for _, gains := range assetGains {
		total = total.Add(gains.Total)
		for year, yearGains := range gains.YearTotals {
			yearTotals[year] = yearTotals[year].Add(yearGains)
		}
		if gains.Currency != "" {
			currency = gains.Currency
		}
	}

	return &CumulativeGains{total, yearTotals, currency}
}
