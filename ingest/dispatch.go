package ingest

import (
	"fmt"

	"github.com/shopspring/decimal"

	"sharepool/money"
	"sharepool/sharepooling"
)

var two = decimal.NewFromInt(2)

// Command is a single engine command addressed to one asset. Exactly one of
// Acquire and Dispose is set.
type Command struct {
	Asset   string
	Acquire *sharepooling.AcquireAsset
	Dispose *sharepooling.DisposeOfAsset
}

// Dispatch translates raw transactions into engine commands, in date order.
//
// Fees fold into the taxable amounts: a buy's fee increases its cost basis,
// a sell's fee reduces its proceeds. A swap is a disposal of one asset and
// an acquisition of another at the same fiat value, with the fee split
// evenly between the two legs.
func Dispatch(txs []*Tx) ([]Command, error) {
	txs = SortTxs(txs)
	cmds := make([]Command, 0, len(txs))
	for _, tx := range txs {
		switch tx.Action {
		case BUY:
			cmds = append(cmds, Command{
				Asset: tx.Security,
				Acquire: &sharepooling.AcquireAsset{
					Date:      tx.Date,
					Quantity:  tx.Quantity,
					CostBasis: money.New(tx.Amount.Add(tx.Fee), tx.Currency),
				},
			})
		case SELL:
			cmds = append(cmds, Command{
				Asset: tx.Security,
				Dispose: &sharepooling.DisposeOfAsset{
					Date:     tx.Date,
					Quantity: tx.Quantity,
					Proceeds: money.New(tx.Amount.Sub(tx.Fee), tx.Currency),
				},
			})
		case SWAP:
			halfFee := tx.Fee.Div(two)
			cmds = append(cmds,
				Command{
					Asset: tx.Security,
					Dispose: &sharepooling.DisposeOfAsset{
						Date:     tx.Date,
						Quantity: tx.Quantity,
						Proceeds: money.New(tx.Amount.Sub(halfFee), tx.Currency),
					},
				},
				Command{
					Asset: tx.SwapSecurity,
					Acquire: &sharepooling.AcquireAsset{
						Date:      tx.Date,
						Quantity:  tx.SwapQuantity,
						CostBasis: money.New(tx.Amount.Add(halfFee), tx.Currency),
					},
				},
			)
		default:
			return nil, fmt.Errorf("unhandled action for %s on %s", tx.Security, tx.Date)
		}
	}
	return cmds, nil
}

// Assets returns the distinct assets the commands touch, in first-seen order.
func Assets(cmds []Command) []string {
	seen := map[string]bool{}
	assets := []string{}
	for _, cmd := range cmds {
		if !seen[cmd.Asset] {
			seen[cmd.Asset] = true
			assets = append(assets, cmd.Asset)
		}
	}
	return assets
}
