package sharepooling

import (
	"github.com/markphelps/optional"
	"github.com/shopspring/decimal"

	"sharepool/date"
	"sharepool/money"
)

// AcquireAsset records a purchase of the asset.
type AcquireAsset struct {
	Date      date.Date
	Quantity  decimal.Decimal
	CostBasis money.Amount
}

// DisposeOfAsset records a sale of the asset. TransactionID is present only
// when the aggregate replays one of its own reverted disposals, so the
// recomputed disposal overwrites the stale one instead of appending a
// duplicate; external callers leave it absent.
type DisposeOfAsset struct {
	Date          date.Date
	Quantity      decimal.Decimal
	Proceeds      money.Amount
	TransactionID optional.String
}
