package sharepooling

import (
	"sort"

	"github.com/markphelps/optional"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"sharepool/date"
	"sharepool/money"
)

// Asset is the aggregate for one fungible asset holding. It owns the
// transaction history and claims table, and is the only writer to them
// while a command is being processed.
//
// Because the 30-day rule looks forward, a new transaction can invalidate
// the cost basis of disposals already recorded. Every command therefore
// runs through one explicit action queue: revert the stale disposals,
// record the new transaction, then replay the reverted disposals in their
// original order — each replay going through the same pipeline, pushing its
// own actions to the front of the queue. The cascade is sequential, bounded
// by the finite history, and logged as a flat trace.
type Asset struct {
	id                  string
	currency            money.Currency
	lastTransactionDate date.Date
	history             *History
	pending             []Event
	logger              zerolog.Logger
}

func NewAsset(id string, logger zerolog.Logger) *Asset {
	return &Asset{
		id:      id,
		history: NewHistory(),
		logger:  logger.With().Str("asset", id).Logger(),
	}
}

// ReplayAsset rebuilds an aggregate from its persisted event list.
func ReplayAsset(id string, events []Event, logger zerolog.Logger) *Asset {
	a := NewAsset(id, logger)
	for _, e := range events {
		a.apply(e)
	}
	return a
}

func (a *Asset) ID() string               { return a.id }
func (a *Asset) Currency() money.Currency { return a.currency }
func (a *Asset) History() *History        { return a.history }

// ReleaseEvents hands over the events recorded since the last release.
func (a *Asset) ReleaseEvents() []Event {
	events := a.pending
	a.pending = nil
	return events
}

// Acquire applies a purchase. Already-recorded disposals that the new
// acquisition invalidates — same-day disposals of the same date, and
// 30-day-matchable disposals of the preceding 30 days — are reverted and
// replayed around it.
func (a *Asset) Acquire(cmd AcquireAsset) error {
	if err := a.checkCurrency(cmd.CostBasis.Currency); err != nil {
		return err
	}
	if err := a.checkChronology(cmd.Date); err != nil {
		return err
	}

	reverts := DisposalsToRevertOnAcquisition(a.history, cmd.Date, cmd.Quantity)
	acquisition := NewAcquisition(ulid.Make().String(), cmd.Date, cmd.Quantity, cmd.CostBasis)

	queue := make([]action, 0, 2*len(reverts)+1)
	for _, d := range reverts {
		queue = append(queue, action{kind: actionRevert, disposal: d})
	}
	queue = append(queue, action{kind: actionRecordAcquisition, acquisition: acquisition})
	for _, d := range a.inOriginalOrder(reverts) {
		queue = append(queue, replayAction(d))
	}
	return a.drain(queue)
}

// DisposeOf applies a sale, deriving its cost basis via the matching
// engine, reverting and replaying any disposals it invalidates first.
func (a *Asset) DisposeOf(cmd DisposeOfAsset) error {
	if err := a.checkCurrency(cmd.Proceeds.Currency); err != nil {
		return err
	}
	if err := a.checkChronology(cmd.Date); err != nil {
		return err
	}
	return a.drain([]action{{kind: actionDispose, cmd: cmd}})
}

type actionKind int

const (
	actionRevert actionKind = iota
	actionRecordAcquisition
	actionPlaceholder
	actionDispose
	actionMatch
)

func (k actionKind) String() string {
	switch k {
	case actionRevert:
		return "revert"
	case actionRecordAcquisition:
		return "record_acquisition"
	case actionPlaceholder:
		return "placeholder"
	case actionDispose:
		return "dispose"
	case actionMatch:
		return "match"
	}
	return "unknown"
}

type action struct {
	kind        actionKind
	disposal    *Disposal
	acquisition *Acquisition
	cmd         DisposeOfAsset
}

func replayAction(d *Disposal) action {
	return action{kind: actionDispose, cmd: DisposeOfAsset{
		Date:          d.Date(),
		Quantity:      d.Quantity(),
		Proceeds:      d.Proceeds(),
		TransactionID: optional.NewString(d.ID()),
	}}
}

// drain processes the action queue to exhaustion. Disposal actions may push
// further actions to the front of the queue (their own reverts and
// replays), which linearizes what would otherwise be a recursive descent.
func (a *Asset) drain(queue []action) error {
	for len(queue) > 0 {
		act := queue[0]
		queue = queue[1:]
		a.logger.Debug().Stringer("action", act.kind).Msg("processing action")

		switch act.kind {
		case actionRevert:
			a.recordThat(DisposalReverted{Disposal: act.disposal.CopyAsUnprocessed()})
		case actionRecordAcquisition:
			a.recordThat(AssetAcquired{Acquisition: act.acquisition})
		case actionPlaceholder:
			// Transient: no event. The final disposed-of event overwrites it.
			a.history.Add(act.disposal)
		case actionDispose:
			expansion, err := a.planDisposal(act.cmd)
			if err != nil {
				return err
			}
			queue = append(expansion, queue...)
		case actionMatch:
			if err := a.matchAndRecord(act.cmd); err != nil {
				return err
			}
		}
	}
	return nil
}

// planDisposal validates a disposal and expands it into queue actions. With
// nothing to revert it matches directly; otherwise it reverts the stale
// disposals, parks an unprocessed placeholder at its own identity so the
// replays can see it without matching against it, replays them in original
// order, and matches itself last.
func (a *Asset) planDisposal(cmd DisposeOfAsset) ([]action, error) {
	available := a.history.MadeBeforeOrOn(cmd.Date).Processed().Quantity()
	if cmd.Quantity.GreaterThan(available) {
		return nil, InsufficientQuantityError{
			Asset: a.id, Requested: cmd.Quantity, Available: available,
		}
	}

	cmd.TransactionID = optional.NewString(cmd.TransactionID.OrElse(ulid.Make().String()))

	reverts := DisposalsToRevertOnDisposal(a.history, cmd.Date, cmd.Quantity)
	if len(reverts) == 0 {
		return []action{{kind: actionMatch, cmd: cmd}}, nil
	}

	placeholder := NewUnprocessedDisposal(
		cmd.TransactionID.MustGet(), cmd.Date, cmd.Quantity, cmd.Proceeds)

	expansion := make([]action, 0, 2*len(reverts)+2)
	for _, d := range reverts {
		expansion = append(expansion, action{kind: actionRevert, disposal: d})
	}
	expansion = append(expansion, action{kind: actionPlaceholder, disposal: placeholder})
	for _, d := range a.inOriginalOrder(reverts) {
		expansion = append(expansion, replayAction(d))
	}
	return append(expansion, action{kind: actionMatch, cmd: cmd}), nil
}

// inOriginalOrder re-sorts disposals by their history position. The finders
// order their results for reversion budgeting (same-day set first, or most
// recent claimant first), but replays must run in the order the disposals
// were originally made, so contended 30-day capacity lands where it did
// before.
func (a *Asset) inOriginalOrder(reverts []*Disposal) []*Disposal {
	replays := make([]*Disposal, len(reverts))
	copy(replays, reverts)
	sort.Slice(replays, func(i, j int) bool {
		return a.history.position(replays[i].ID()) < a.history.position(replays[j].ID())
	})
	return replays
}

func (a *Asset) matchAndRecord(cmd DisposeOfAsset) error {
	costBasis, sameDay, thirtyDay, err := Match(a.history, cmd.Date, cmd.Quantity, cmd.Proceeds.Currency)
	if err != nil {
		return err
	}
	disposal, err := NewDisposal(
		cmd.TransactionID.MustGet(), cmd.Date, cmd.Quantity, cmd.Proceeds,
		costBasis, sameDay, thirtyDay)
	if err != nil {
		return err
	}
	a.recordThat(AssetDisposedOf{Disposal: disposal})
	return nil
}

func (a *Asset) checkCurrency(c money.Currency) error {
	if a.currency != "" && a.currency != c {
		return CurrencyMismatchError{Asset: a.id, Want: a.currency, Got: c}
	}
	return nil
}

func (a *Asset) checkChronology(d date.Date) error {
	if !a.lastTransactionDate.IsZero() && d.Before(a.lastTransactionDate) {
		return ChronologyError{Asset: a.id, Last: a.lastTransactionDate, Got: d}
	}
	return nil
}

func (a *Asset) recordThat(e Event) {
	a.apply(e)
	a.pending = append(a.pending, e)
}

// apply is the pure state transition: a deterministic function of (prior
// state, event), used identically for live commands and for rebuilding the
// aggregate from its event log.
func (a *Asset) apply(e Event) {
	switch e := e.(type) {
	case AssetAcquired:
		a.history.Add(e.Acquisition)
		a.establish(e.Acquisition.CostBasis().Currency, e.Acquisition.Date())

	case AssetDisposedOf:
		d := e.Disposal
		a.history.Add(d)
		claims := a.history.Claims()
		for _, id := range d.SameDayAllocation().IDs() {
			if acq, ok := a.history.GetAcquisition(id); ok {
				claims.AddSameDay(acq, d.SameDayAllocation().Quantity(id))
			}
		}
		for _, id := range d.ThirtyDayAllocation().IDs() {
			claims.AddThirtyDay(id, d.ThirtyDayAllocation().Quantity(id))
		}
		a.establish(d.Proceeds().Currency, d.Date())

	case DisposalReverted:
		// Restore the quantities the stale incarnation had claimed before
		// replacing it with the unprocessed copy.
		if prev, ok := a.history.GetDisposal(e.Disposal.ID()); ok && prev.Processed() {
			claims := a.history.Claims()
			for _, id := range prev.SameDayAllocation().IDs() {
				claims.SubSameDay(id, prev.SameDayAllocation().Quantity(id))
			}
			for _, id := range prev.ThirtyDayAllocation().IDs() {
				claims.SubThirtyDay(id, prev.ThirtyDayAllocation().Quantity(id))
			}
		}
		a.history.Add(e.Disposal)
	}
}

func (a *Asset) establish(c money.Currency, d date.Date) {
	if a.currency == "" {
		a.currency = c
	}
	a.lastTransactionDate = date.Max(a.lastTransactionDate, d)
}
