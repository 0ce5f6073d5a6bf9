package sharepooling

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"sharepool/date"
	"sharepool/money"
)

// Event types
const (
	EventTypeAssetAcquired    = "sharepooling.asset.acquired"
	EventTypeAssetDisposedOf  = "sharepooling.asset.disposed_of"
	EventTypeDisposalReverted = "sharepooling.disposal.reverted"
)

// Event is a durable state transition of one asset aggregate. Applying the
// full recorded list in order rebuilds the aggregate exactly.
type Event interface {
	EventType() string
}

type AssetAcquired struct {
	Acquisition *Acquisition
}

func (AssetAcquired) EventType() string { return EventTypeAssetAcquired }

type AssetDisposedOf struct {
	Disposal *Disposal
}

func (AssetDisposedOf) EventType() string { return EventTypeAssetDisposedOf }

// DisposalReverted carries an unprocessed copy of the disposal: identity and
// economics preserved, derived state dropped.
type DisposalReverted struct {
	Disposal *Disposal
}

func (DisposalReverted) EventType() string { return EventTypeDisposalReverted }

// transactionPayload is the flat persistence encoding shared by all event
// kinds. Decimals are exact strings, never floats; allocations map the
// referenced acquisition's identity to a decimal-string quantity.
type transactionPayload struct {
	ID        string            `json:"id"`
	Date      string            `json:"date"`
	Quantity  string            `json:"quantity"`
	Currency  string            `json:"currency"`
	CostBasis string            `json:"cost_basis"`
	Proceeds  string            `json:"proceeds,omitempty"`
	Processed bool              `json:"processed"`
	SameDay   map[string]string `json:"same_day_allocation,omitempty"`
	ThirtyDay map[string]string `json:"thirty_day_allocation,omitempty"`
}

func allocationToPayload(a *Allocation) map[string]string {
	if a.IsEmpty() {
		return nil
	}
	out := make(map[string]string, len(a.IDs()))
	for _, id := range a.IDs() {
		out[id] = a.Quantity(id).String()
	}
	return out
}

func allocationFromPayload(m map[string]string) (*Allocation, error) {
	a := NewAllocation()
	for id, q := range m {
		quantity, err := decimal.NewFromString(q)
		if err != nil {
			return nil, fmt.Errorf("allocation against %s: %w", id, err)
		}
		a.put(id, quantity)
	}
	return a, nil
}

// EncodeEvent serializes an event for persistence.
func EncodeEvent(e Event) ([]byte, error) {
	var p transactionPayload
	switch e := e.(type) {
	case AssetAcquired:
		a := e.Acquisition
		p = transactionPayload{
			ID:        a.ID(),
			Date:      a.Date().String(),
			Quantity:  a.Quantity().String(),
			Currency:  string(a.CostBasis().Currency),
			CostBasis: a.CostBasis().Value.String(),
			Processed: true,
		}
	case AssetDisposedOf:
		p = disposalPayload(e.Disposal)
	case DisposalReverted:
		p = disposalPayload(e.Disposal)
	default:
		return nil, fmt.Errorf("unknown event type %T", e)
	}
	return json.Marshal(p)
}

func disposalPayload(d *Disposal) transactionPayload {
	return transactionPayload{
		ID:        d.ID(),
		Date:      d.Date().String(),
		Quantity:  d.Quantity().String(),
		Currency:  string(d.Proceeds().Currency),
		CostBasis: d.CostBasis().Value.String(),
		Proceeds:  d.Proceeds().Value.String(),
		Processed: d.Processed(),
		SameDay:   allocationToPayload(d.SameDayAllocation()),
		ThirtyDay: allocationToPayload(d.ThirtyDayAllocation()),
	}
}

// DecodeEvent rebuilds an event from its persisted type and payload. The
// round trip is exact: DecodeEvent(type, EncodeEvent(e)) reproduces e.
func DecodeEvent(eventType string, payload []byte) (Event, error) {
	var p transactionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode %s: %w", eventType, err)
	}

	dt, err := date.Parse(date.DefaultFormat, p.Date)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", eventType, err)
	}
	quantity, err := decimal.NewFromString(p.Quantity)
	if err != nil {
		return nil, fmt.Errorf("decode %s quantity: %w", eventType, err)
	}
	costBasis, err := money.NewFromString(p.CostBasis, money.Currency(p.Currency))
	if err != nil {
		return nil, fmt.Errorf("decode %s cost basis: %w", eventType, err)
	}

	switch eventType {
	case EventTypeAssetAcquired:
		return AssetAcquired{
			Acquisition: NewAcquisition(p.ID, dt, quantity, costBasis),
		}, nil

	case EventTypeAssetDisposedOf, EventTypeDisposalReverted:
		proceeds, err := money.NewFromString(p.Proceeds, money.Currency(p.Currency))
		if err != nil {
			return nil, fmt.Errorf("decode %s proceeds: %w", eventType, err)
		}
		var d *Disposal
		if p.Processed {
			sameDay, err := allocationFromPayload(p.SameDay)
			if err != nil {
				return nil, err
			}
			thirtyDay, err := allocationFromPayload(p.ThirtyDay)
			if err != nil {
				return nil, err
			}
			d, err = NewDisposal(p.ID, dt, quantity, proceeds, costBasis, sameDay, thirtyDay)
			if err != nil {
				return nil, err
			}
		} else {
			d = NewUnprocessedDisposal(p.ID, dt, quantity, proceeds)
		}
		if eventType == EventTypeAssetDisposedOf {
			return AssetDisposedOf{Disposal: d}, nil
		}
		return DisposalReverted{Disposal: d}, nil
	}
	return nil, fmt.Errorf("unknown event type %q", eventType)
}
