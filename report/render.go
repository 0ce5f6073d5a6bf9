package report

import (
	"fmt"
	"io"
	"strings"

	tw "github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"sharepool/money"
	"sharepool/sharepooling"
)

type _PrintHelper struct {
	PrintAllDecimals bool
	Currency         money.Currency
}

var currencySymbols = map[money.Currency]string{
	money.GBP: "£",
	money.EUR: "€",
	money.USD: "$",
}

func (h _PrintHelper) symbol() string {
	if sym, ok := currencySymbols[h.Currency]; ok {
		return sym
	}
	return string(h.Currency) + " "
}

func (h _PrintHelper) CurrStr(val decimal.Decimal) string {
	if h.PrintAllDecimals {
		return val.String()
	}
	return val.StringFixed(2)
}

func (h _PrintHelper) MoneyStr(val decimal.Decimal) string {
	return h.symbol() + h.CurrStr(val)
}

func (h _PrintHelper) PlusMinusMoney(val decimal.Decimal, showPlus bool) string {
	if val.IsNegative() {
		return fmt.Sprintf("-%s%s", h.symbol(), h.CurrStr(val.Neg()))
	}
	plus := ""
	if showPlus {
		plus = "+"
	}
	return fmt.Sprintf("%s%s%s", plus, h.symbol(), h.CurrStr(val))
}

func strOrDash(useStr bool, str string) string {
	if useStr {
		return str
	}
	return "-"
}

type RenderTable struct {
	Header []string
	Rows   [][]string
	Footer []string
	Notes  []string
	Errors []error
}

// RenderDisposalTableModel builds the per-asset disposal report. Each row is
// one disposal with its matched cost basis broken down across the three
// matching rules.
func RenderDisposalTableModel(
	h *sharepooling.History, gains *CumulativeGains, renderFullValues bool) *RenderTable {
	table := &RenderTable{}
	table.Header = []string{"Date", "Quantity", "Proceeds", "Cost Basis",
		"Gain/Loss", "Same-Day", "30-Day", "S.104 Pool",
	}

	ph := _PrintHelper{PrintAllDecimals: renderFullValues, Currency: gains.Currency}

	sawUnprocessed := false
	for _, d := range h.Disposals().List() {
		if !d.Processed() {
			sawUnprocessed = true
			table.Rows = append(table.Rows, []string{
				d.Date().String(), d.Quantity().String(), ph.MoneyStr(d.Proceeds().Value),
				"- *", "-", "-", "-", "-",
			})
			continue
		}

		sameDay := d.SameDayAllocation().Total()
		thirtyDay := d.ThirtyDayAllocation().Total()
		pool := d.Quantity().Sub(sameDay).Sub(thirtyDay)
		gain := d.Proceeds().Value.Sub(d.CostBasis().Value)

		table.Rows = append(table.Rows, []string{
			d.Date().String(),
			d.Quantity().String(),
			ph.MoneyStr(d.Proceeds().Value),
			ph.MoneyStr(d.CostBasis().Value),
			ph.PlusMinusMoney(gain, true),
			strOrDash(sameDay.IsPositive(), sameDay.String()),
			strOrDash(thirtyDay.IsPositive(), thirtyDay.String()),
			strOrDash(pool.IsPositive(), pool.String()),
		})
	}

	years := gains.YearTotalsKeysSorted()
	yearStrs := []string{}
	yearValsStrs := []string{}
	for _, year := range years {
		yearStrs = append(yearStrs, fmt.Sprintf("%d", year))
		yearValsStrs = append(yearValsStrs, ph.PlusMinusMoney(gains.YearTotals[year], false))
	}
	totalFooterLabel := "Total"
	totalFooterValsStr := ph.PlusMinusMoney(gains.Total, false)
	if len(years) > 0 {
		totalFooterLabel += "\n" + strings.Join(yearStrs, "\n")
		totalFooterValsStr += "\n" + strings.Join(yearValsStrs, "\n")
	}

	table.Footer = []string{"", "", "", totalFooterLabel, totalFooterValsStr, "", "", ""}

	if sawUnprocessed {
		table.Notes = append(table.Notes,
			" * Disposal awaiting re-matching; its cost basis is not yet established.")
	}

	return table
}

// RenderPoolStatus summarizes the closing Section 104 pool per asset.
func RenderPoolStatus(
	assets []string, histories map[string]*sharepooling.History,
	currencies map[string]money.Currency, renderFullValues bool) *RenderTable {
	table := &RenderTable{}
	table.Header = []string{"Security", "Pool Quantity", "Pool Cost", "Cost/Unit"}

	for _, asset := range assets {
		h := histories[asset]
		acqs := h.Acquisitions()
		poolQty := acqs.Section104PoolQuantity()
		poolCost := acqs.Section104PoolCostBasisValue()

		// Pooled disposals leave no allocation entries; net them out here so
		// the closing pool reflects what is actually still held.
		for _, d := range h.Disposals().Processed().List() {
			pooled := d.Quantity().
				Sub(d.SameDayAllocation().Total()).
				Sub(d.ThirtyDayAllocation().Total())
			if !pooled.IsPositive() || !poolQty.IsPositive() {
				continue
			}
			poolCost = poolCost.Sub(poolCost.Mul(pooled).Div(poolQty))
			poolQty = poolQty.Sub(pooled)
		}

		ph := _PrintHelper{PrintAllDecimals: renderFullValues, Currency: currencies[asset]}
		costPerUnit := "-"
		if poolQty.IsPositive() {
			costPerUnit = ph.MoneyStr(poolCost.Div(poolQty))
		}
		table.Rows = append(table.Rows, []string{
			asset, poolQty.String(), ph.MoneyStr(poolCost), costPerUnit,
		})
	}

	return table
}

/*
RenderAggregateGains generates a RenderTable that will render out to this:
| Year             | Capital Gains |
+------------------+---------------+
| 2023             | xxxx.xx       |
| 2024             | xxxx.xx       |
| Since inception  | xxxx.xx       |
*/
func RenderAggregateGains(gains *CumulativeGains, renderFullValues bool) *RenderTable {
	table := &RenderTable{}
	table.Header = []string{"Year", "Capital Gains"}

	ph := _PrintHelper{PrintAllDecimals: renderFullValues, Currency: gains.Currency}

	for _, year := range gains.YearTotalsKeysSorted() {
		table.Rows = append(
			table.Rows,
			[]string{fmt.Sprintf("%d", year), ph.PlusMinusMoney(gains.YearTotals[year], false)})
	}
	table.Rows = append(
		table.Rows,
		[]string{"Since inception", ph.PlusMinusMoney(gains.Total, false)})

	return table
}

func PrintRenderTable(title string, tableModel *RenderTable, writer io.Writer) {
	for _, err := range tableModel.Errors {
		fmt.Fprintf(writer, "[!] %v. Printing parsed information state:\n", err)
	}
	fmt.Fprintf(writer, "%s\n", title)

	table := tw.NewWriter(writer)
	table.SetHeader(tableModel.Header)
	table.SetBorder(false)
	table.SetRowLine(true)

	for _, row := range tableModel.Rows {
		table.Append(row)
	}

	table.SetFooter(tableModel.Footer)

	table.Render()

	for _, note := range tableModel.Notes {
		fmt.Fprintln(writer, note)
	}

	fmt.Fprintln(writer, "")
}
