package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"sharepool/date"
	"sharepool/money"
)

var CsvDateFormat string = date.DefaultFormat

type TxAction int

const (
	NO_ACTION TxAction = iota
	BUY
	SELL
	SWAP
)

func (a TxAction) String() string {
	switch a {
	case BUY:
		return "Buy"
	case SELL:
		return "Sell"
	case SWAP:
		return "Swap"
	}
	return "-"
}

// Tx is one raw exchange transaction as it appears in a CSV row, before it
// is translated into engine commands.
type Tx struct {
	Security     string
	Date         date.Date
	Action       TxAction
	Quantity     decimal.Decimal
	Amount       decimal.Decimal // total fiat value of the transaction
	Fee          decimal.Decimal
	Currency     money.Currency
	SwapSecurity string          // acquired asset, swaps only
	SwapQuantity decimal.Decimal // acquired quantity, swaps only
}

type ColParser func(string, *Tx) error

var colParserMap = map[string]ColParser{
	"security":      parseSecurity,
	"date":          parseDate,
	"action":        parseAction,
	"quantity":      parseQuantity,
	"amount":        parseAmount,
	"fee":           parseFee,
	"currency":      parseCurrency,
	"swap security": parseSwapSecurity,
	"swap quantity": parseSwapQuantity,
}

var ColNames []string

func init() {
	ColNames = make([]string, 0, len(colParserMap))
	for name := range colParserMap {
		ColNames = append(ColNames, name)
	}
	sort.Strings(ColNames)
}

func DefaultTx() *Tx {
	return &Tx{Currency: money.GBP}
}

func CheckTxSanity(tx *Tx) error {
	if tx.Security == "" {
		return fmt.Errorf("transaction has no security")
	} else if tx.Date.IsZero() {
		return fmt.Errorf("transaction has no date")
	} else if tx.Action == NO_ACTION {
		return fmt.Errorf("transaction has no action (Buy, Sell, Swap)")
	} else if !tx.Quantity.IsPositive() {
		return fmt.Errorf("transaction quantity must be positive")
	} else if tx.Amount.IsNegative() {
		return fmt.Errorf("transaction amount cannot be negative")
	}
	if tx.Action == SWAP {
		if tx.SwapSecurity == "" {
			return fmt.Errorf("swap has no swap security")
		} else if !tx.SwapQuantity.IsPositive() {
			return fmt.Errorf("swap quantity must be positive")
		} else if tx.SwapSecurity == tx.Security {
			return fmt.Errorf("cannot swap %s for itself", tx.Security)
		}
	}
	return nil
}

func ParseTxCsvFile(fname string) ([]*Tx, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return ParseTxCsv(fp, fname)
}

func ParseTxCsv(reader io.Reader, desc string) ([]*Tx, error) {
	csvR := csv.NewReader(reader)
	records, err := csvR.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV %s: %w", desc, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no rows found in %s", desc)
	}

	header := records[0]
	colParsers := make([]ColParser, len(header))
	for i, col := range header {
		sanCol := strings.TrimSpace(strings.ToLower(col))
		if parser, ok := colParserMap[sanCol]; ok {
			colParsers[i] = parser
		} else {
			fmt.Fprintf(os.Stderr, "Warning: Unrecognized column %s\n", sanCol)
			colParsers[i] = parseNothing
		}
	}

	txs := make([]*Tx, 0, len(records)-1)
	for i, record := range records[1:] {
		tx := DefaultTx()
		for j, col := range record {
			if err := colParsers[j](col, tx); err != nil {
				return nil, fmt.Errorf("error parsing %s at line:col %d:%d: %w", desc, i+1, j, err)
			}
		}
		if err := CheckTxSanity(tx); err != nil {
			return nil, fmt.Errorf("error parsing %s at line %d: %w", desc, i+1, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// SortTxs orders transactions by date, preserving input order within a day.
func SortTxs(txs []*Tx) []*Tx {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})
	return txs
}

func parseNothing(string, *Tx) error { return nil }

func parseSecurity(data string, tx *Tx) error {
	tx.Security = strings.TrimSpace(data)
	return nil
}

func parseDate(data string, tx *Tx) error {
	d, err := date.Parse(CsvDateFormat, strings.TrimSpace(data))
	if err != nil {
		return err
	}
	tx.Date = d
	return nil
}

func parseAction(data string, tx *Tx) error {
	switch strings.TrimSpace(strings.ToLower(data)) {
	case "buy":
		tx.Action = BUY
	case "sell":
		tx.Action = SELL
	case "swap":
		tx.Action = SWAP
	default:
		return fmt.Errorf("invalid action: %q", data)
	}
	return nil
}

func parseDecimalCol(name, data string, dst *decimal.Decimal) error {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil
	}
	d, err := decimal.NewFromString(data)
	if err != nil {
		return fmt.Errorf("error parsing %s: %w", name, err)
	}
	*dst = d
	return nil
}

func parseQuantity(data string, tx *Tx) error {
	return parseDecimalCol("quantity", data, &tx.Quantity)
}

func parseAmount(data string, tx *Tx) error {
	return parseDecimalCol("amount", data, &tx.Amount)
}

func parseFee(data string, tx *Tx) error {
	return parseDecimalCol("fee", data, &tx.Fee)
}

func parseCurrency(data string, tx *Tx) error {
	if c := strings.TrimSpace(strings.ToUpper(data)); c != "" {
		tx.Currency = money.Currency(c)
	}
	return nil
}

func parseSwapSecurity(data string, tx *Tx) error {
	tx.SwapSecurity = strings.TrimSpace(data)
	return nil
}

func parseSwapQuantity(data string, tx *Tx) error {
	return parseDecimalCol("swap quantity", data, &tx.SwapQuantity)
}
