package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"sharepool/date"
	"sharepool/ingest"
	"sharepool/money"
	"sharepool/report"
	"sharepool/sharepooling"
	"sharepool/store"
)

// AssetBaseDate is the date assigned to seeded opening positions. It predates
// any plausible transaction, so seeds never trip the chronology check and
// always land in the Section 104 pool.
var AssetBaseDate = date.New(1900, 1, 1)

// AssetBase is an opening position assumed to exist before any recorded
// transaction, seeded into the pool as a single acquisition.
type AssetBase struct {
	Asset     string
	Quantity  decimal.Decimal
	CostBasis money.Amount
}

/* Takes a list of asset base strings, each formatted as:
 * SYM:quantity:totalCost[:CUR]. Eg. BTC:2:15000.00 or ETH:10:8000:EUR
 */
func ParseAssetBases(opts []string) (map[string]*AssetBase, error) {
	bases := make(map[string]*AssetBase)
	for _, opt := range opts {
		parts := strings.Split(opt, ":")
		if len(parts) != 3 && len(parts) != 4 {
			return nil, fmt.Errorf("invalid asset base format '%s'", opt)
		}
		asset := parts[0]
		quantity, err := decimal.NewFromString(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in '%s': %w", opt, err)
		}
		cost, err := decimal.NewFromString(parts[2])
		if err != nil {
			return nil, fmt.Errorf("invalid cost in '%s': %w", opt, err)
		}
		currency := money.GBP
		if len(parts) == 4 {
			currency = money.Currency(strings.ToUpper(parts[3]))
		}

		if _, ok := bases[asset]; ok {
			return nil, fmt.Errorf("asset %s specified multiple times", asset)
		}
		bases[asset] = &AssetBase{
			Asset: asset, Quantity: quantity, CostBasis: money.New(cost, currency)}
	}
	return bases, nil
}

type DescribedReader struct {
	Desc   string
	Reader io.Reader
}

type Options struct {
	AssetBases       map[string]*AssetBase
	RenderFullValues bool
	Year             int // when non-zero, only report gains realized in this year
}

func RunApp(
	ctx context.Context,
	csvFileReaders []DescribedReader,
	opts Options,
	events store.EventStore,
	logger zerolog.Logger,
	writer io.Writer) (retErr error) {

	allTxs := make([]*ingest.Tx, 0, 20)
	for _, csvReader := range csvFileReaders {
		txs, err := ingest.ParseTxCsv(csvReader.Reader, csvReader.Desc)
		if err != nil {
			return err
		}
		allTxs = append(allTxs, txs...)
	}

	cmds, err := ingest.Dispatch(allTxs)
	if err != nil {
		return err
	}

	assets := ingest.Assets(cmds)
	for asset := range opts.AssetBases {
		if !containsAsset(assets, asset) {
			assets = append(assets, asset)
		}
	}

	histories := make(map[string]*sharepooling.History)
	currencies := make(map[string]money.Currency)
	assetGains := make(map[string]*report.CumulativeGains)

	for _, asset := range assets {
		a, err := loadAsset(ctx, events, asset, logger)
		if err != nil {
			return err
		}

		tableErrs := []error{}
		if base, ok := opts.AssetBases[asset]; ok && a.History().IsEmpty() {
			if err := a.Acquire(sharepooling.AcquireAsset{
				Date: AssetBaseDate, Quantity: base.Quantity, CostBasis: base.CostBasis,
			}); err != nil {
				return fmt.Errorf("seeding %s: %w", asset, err)
			}
		}

		for _, cmd := range cmds {
			if cmd.Asset != asset {
				continue
			}
			var cmdErr error
			if cmd.Acquire != nil {
				cmdErr = a.Acquire(*cmd.Acquire)
			} else {
				cmdErr = a.DisposeOf(*cmd.Dispose)
			}
			if cmdErr != nil {
				tableErrs = append(tableErrs, cmdErr)
				retErr = cmdErr
				break
			}
		}

		if err := events.Append(ctx, asset, a.ReleaseEvents()); err != nil {
			return fmt.Errorf("persisting %s: %w", asset, err)
		}

		histories[asset] = a.History()
		currencies[asset] = a.Currency()
		gains := report.CalcAssetCumulativeGains(a.History(), a.Currency())
		if opts.Year != 0 {
			gains = gainsForYear(gains, opts.Year)
		}
		assetGains[asset] = gains

		renderHistory := a.History()
		if opts.Year != 0 {
			renderHistory = renderHistory.MadeBetween(
				date.New(opts.Year, time.January, 1), date.New(opts.Year, time.December, 31))
		}
		tableModel := report.RenderDisposalTableModel(renderHistory, gains, opts.RenderFullValues)
		tableModel.Errors = tableErrs
		report.PrintRenderTable(fmt.Sprintf("Disposals of %s", asset), tableModel, writer)
	}

	if len(assets) > 1 {
		aggGains := report.CalcCumulativeGains(assetGains)
		report.PrintRenderTable(
			"Aggregate Gains", report.RenderAggregateGains(aggGains, opts.RenderFullValues), writer)
	}

	report.PrintRenderTable(
		"Section 104 Pools",
		report.RenderPoolStatus(assets, histories, currencies, opts.RenderFullValues), writer)

	return retErr
}

func loadAsset(
	ctx context.Context, events store.EventStore, asset string,
	logger zerolog.Logger) (*sharepooling.Asset, error) {
	stored, err := events.Load(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", asset, err)
	}
	if len(stored) == 0 {
		return sharepooling.NewAsset(asset, logger), nil
	}
	return sharepooling.ReplayAsset(asset, stored, logger), nil
}

func gainsForYear(gains *report.CumulativeGains, year int) *report.CumulativeGains {
	total := gains.YearTotals[year]
	yearTotals := map[int]decimal.Decimal{}
	if t, ok := gains.YearTotals[year]; ok {
		yearTotals[year] = t
	}
	return &report.CumulativeGains{Total: total, YearTotals: yearTotals, Currency: gains.Currency}
}

func containsAsset(assets []string, asset string) bool {
	for _, a := range assets {
		if a == asset {
			return true
		}
	}
	return false
}
