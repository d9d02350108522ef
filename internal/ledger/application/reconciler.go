package application

import (
	"errors"
	"fmt"

	bank "osi-dues/internal/bank/domain"
	"osi-dues/internal/events"
	ledger "osi-dues/internal/ledger/domain"
)

// Outcome classifies a reconciliation.
type Outcome string

const (
	OutcomeBalanced  Outcome = "balanced"
	OutcomeShortfall Outcome = "shortfall"
	OutcomeSurplus   Outcome = "surplus"
)

// Reconciliation compares the extract total with the tracking sheet sums.
// Difference is extract total minus recorded.
type Reconciliation struct {
	ExtractTotal bank.Amount
	Recorded     bank.Amount
	Difference   bank.Amount
	Outcome      Outcome
	Months       []int
}

// Message renders the outcome for operators.
func (r Reconciliation) Message() string {
	switch r.Outcome {
	case OutcomeShortfall:
		return fmt.Sprintf("tracking sheet is missing %s", r.Difference)
	case OutcomeSurplus:
		return fmt.Sprintf("tracking sheet has %s too much recorded", -r.Difference)
	default:
		return "tracking sheet matches the extract total"
	}
}

// Reconcile sums the accumulated-sum cells of the given tracking month blocks
// and compares them with the extract total. It only reads the document.
func Reconcile(reader ledger.CellReader, layout ledger.Layout, registry *UnitRegistry, months []int, extractTotal bank.Amount, sink events.Sink) (Reconciliation, error) {
	if reader == nil {
		return Reconciliation{}, ledger.ErrNilDocument
	}
	if registry == nil {
		return Reconciliation{}, errors.New("reconcile: nil registry")
	}
	if sink == nil {
		sink = events.Discard
	}
	t := layout.Tracking
	out := Reconciliation{ExtractTotal: extractTotal}
	for _, month := range months {
		block, ok := registry.Block(month)
		if !ok {
			continue
		}
		out.Months = append(out.Months, month)
		for row := block.FirstRow; row <= block.LastRow; row++ {
			v, err := reader.Value(t.Sheet, row, t.SumColumn())
			if err != nil {
				return out, fmt.Errorf("reconcile: %w", err)
			}
			out.Recorded += bank.AmountOrZero(v)
		}
	}

	out.Difference = extractTotal - out.Recorded
	switch {
	case out.Difference > 0:
		out.Outcome = OutcomeShortfall
		sink.Emit(events.Warnf(events.CodeReconciliation, "%s", out.Message()).
			WithRaw(extractTotal).WithParsed(out.Recorded))
	case out.Difference < 0:
		out.Outcome = OutcomeSurplus
		sink.Emit(events.Warnf(events.CodeReconciliation, "%s", out.Message()).
			WithRaw(extractTotal).WithParsed(out.Recorded))
	default:
		out.Outcome = OutcomeBalanced
		sink.Emit(events.Infof(events.CodeReconciliation, "%s", out.Message()).
			WithRaw(extractTotal).WithParsed(out.Recorded))
	}
	return out, nil
}
