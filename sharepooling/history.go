package sharepooling

import (
	"github.com/shopspring/decimal"

	"sharepool/date"
)

// History is the ordered transaction history of one asset. Transactions are
// keyed by identity: adding a transaction whose identity is already present
// replaces it in place, which is what lets a replayed disposal overwrite its
// stale incarnation instead of appending a duplicate.
//
// Filtered queries return read-only views sharing the same claims table.
type History struct {
	txs    []Transaction
	index  map[string]int
	claims *Claims
}

func NewHistory() *History {
	return &History{index: make(map[string]int), claims: NewClaims()}
}

func newHistoryView(txs []Transaction, claims *Claims) *History {
	index := make(map[string]int, len(txs))
	for i, tx := range txs {
		index[tx.ID()] = i
	}
	return &History{txs: txs, index: index, claims: claims}
}

// withClaims swaps in another claims table, so the matching engine can work
// against a cloned overlay without touching committed state.
func (h *History) withClaims(claims *Claims) *History {
	return &History{txs: h.txs, index: h.index, claims: claims}
}

func (h *History) Claims() *Claims { return h.claims }

// position is the transaction's original insertion order, stable across
// replace-in-place updates.
func (h *History) position(id string) int { return h.index[id] }

// Add appends the transaction, or replaces the existing transaction with
// the same identity at its original position.
func (h *History) Add(tx Transaction) {
	if i, ok := h.index[tx.ID()]; ok {
		h.txs[i] = tx
		return
	}
	h.index[tx.ID()] = len(h.txs)
	h.txs = append(h.txs, tx)
}

func (h *History) Get(id string) (Transaction, bool) {
	if i, ok := h.index[id]; ok {
		return h.txs[i], true
	}
	return nil, false
}

func (h *History) GetDisposal(id string) (*Disposal, bool) {
	tx, ok := h.Get(id)
	if !ok {
		return nil, false
	}
	d, ok := tx.(*Disposal)
	return d, ok
}

func (h *History) GetAcquisition(id string) (*Acquisition, bool) {
	tx, ok := h.Get(id)
	if !ok {
		return nil, false
	}
	a, ok := tx.(*Acquisition)
	return a, ok
}

func (h *History) Transactions() []Transaction { return h.txs }

func (h *History) Len() int { return len(h.txs) }

func (h *History) IsEmpty() bool { return len(h.txs) == 0 }

func (h *History) filter(keep func(Transaction) bool) *History {
	filtered := make([]Transaction, 0, len(h.txs))
	for _, tx := range h.txs {
		if keep(tx) {
			filtered = append(filtered, tx)
		}
	}
	return newHistoryView(filtered, h.claims)
}

func (h *History) Processed() *History {
	return h.filter(func(tx Transaction) bool { return tx.Processed() })
}

func (h *History) MadeOn(d date.Date) *History {
	return h.filter(func(tx Transaction) bool { return tx.Date().Equal(d) })
}

func (h *History) MadeBefore(d date.Date) *History {
	return h.filter(func(tx Transaction) bool { return tx.Date().Before(d) })
}

func (h *History) MadeBeforeOrOn(d date.Date) *History {
	return h.filter(func(tx Transaction) bool { return tx.Date().BeforeOrOn(d) })
}

func (h *History) MadeAfter(d date.Date) *History {
	return h.filter(func(tx Transaction) bool { return tx.Date().After(d) })
}

func (h *History) MadeAfterOrOn(d date.Date) *History {
	return h.filter(func(tx Transaction) bool { return tx.Date().AfterOrOn(d) })
}

// MadeBetween treats its bounds as unordered and includes both ends.
func (h *History) MadeBetween(a, b date.Date) *History {
	from, to := date.Min(a, b), date.Max(a, b)
	return h.filter(func(tx Transaction) bool {
		return tx.Date().AfterOrOn(from) && tx.Date().BeforeOrOn(to)
	})
}

// Quantity is the signed net quantity: acquisitions positive, disposals
// negative.
func (h *History) Quantity() decimal.Decimal {
	total := decimal.Zero
	for _, tx := range h.txs {
		switch tx.(type) {
		case *Acquisition:
			total = total.Add(tx.Quantity())
		case *Disposal:
			total = total.Sub(tx.Quantity())
		}
	}
	return total
}

func (h *History) Acquisitions() Acquisitions {
	acqs := make([]*Acquisition, 0, len(h.txs))
	for _, tx := range h.txs {
		if a, ok := tx.(*Acquisition); ok {
			acqs = append(acqs, a)
		}
	}
	return Acquisitions{list: acqs, claims: h.claims}
}

func (h *History) Disposals() Disposals {
	ds := make([]*Disposal, 0, len(h.txs))
	for _, tx := range h.txs {
		if d, ok := tx.(*Disposal); ok {
			ds = append(ds, d)
		}
	}
	return Disposals{list: ds}
}
