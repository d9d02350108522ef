package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	bankapp "osi-dues/internal/bank/application"
	bank "osi-dues/internal/bank/domain"
	"osi-dues/internal/events"
	ledger "osi-dues/internal/ledger/domain"
)

// RunCompleted is published after every run, aborted or not.
type RunCompleted struct {
	RunID      string
	Report     *Report
	OccurredAt time.Time
}

// RunPublisher emits run completed events.
type RunPublisher interface {
	PublishRunCompleted(ctx context.Context, event RunCompleted) error
}

// RunObserver records run metrics.
type RunObserver interface {
	ObserveRun(report *Report)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// RunOptions tune a single run.
type RunOptions struct {
	// Units is the size of the sequential reference set 1..Units. Zero reads
	// the reference set from the roster unit column.
	Units int
	Debug bool
}

// Report summarises one run.
type Report struct {
	RunID        string
	StartedAt    time.Time
	FinishedAt   time.Time
	RowsRead     int
	RowsRejected int
	Payments     int
	PaymentTotal bank.Amount
	Months       []ledger.MonthColumnRange
	Allocations  []Allocation
	// Reconciliation is nil when the extract carries no total.
	Reconciliation *Reconciliation
	Writes         int
	Aborted        bool
	AbortReason    string
	Events         []events.Event
}

// Count returns the number of allocations with the given status.
func (r *Report) Count(status AllocationStatus) int {
	n := 0
	for _, a := range r.Allocations {
		if a.Status == status {
			n++
		}
	}
	return n
}

// Allocated returns the total of allocated payments.
func (r *Report) Allocated() bank.Amount {
	var total bank.Amount
	for _, a := range r.Allocations {
		if a.Status == StatusAllocated {
			total += a.Amount
		}
	}
	return total
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// ReconciliationService runs one bank extract against one ledger document.
type ReconciliationService struct {
	layout    ledger.Layout
	logger    *log.Logger
	sink      events.Sink
	observer  RunObserver
	publisher RunPublisher
	clock     Clock
}

// NewReconciliationService constructs the service. sink receives every event
// as it happens; the report keeps its own copy.
func NewReconciliationService(
	layout ledger.Layout,
	logger *log.Logger,
	sink events.Sink,
	observer RunObserver,
	publisher RunPublisher,
	clock Clock,
) (*ReconciliationService, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	if sink == nil {
		sink = events.Discard
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReconciliationService{
		layout:    layout,
		logger:    logger,
		sink:      sink,
		observer:  observer,
		publisher: publisher,
		clock:     clock,
	}, nil
}

// Run allocates the extract payments into doc and reconciles the result.
// Structural ledger problems abort the run before any write and are returned
// as errors; an empty month scan marks the report aborted without an error.
func (s *ReconciliationService) Run(ctx context.Context, doc ledger.Document, extract bankapp.Extract, opts RunOptions) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: s.clock.Now(),
		RowsRead:  len(extract.Rows),
	}
	collector := events.NewCollector()
	sink := events.Multi(collector, s.sink)

	err := s.run(doc, extract, opts, report, sink)
	if err != nil {
		report.Aborted = true
		report.AbortReason = err.Error()
	}
	report.FinishedAt = s.clock.Now()
	report.Events = collector.Events()

	s.logger.Printf("reconciliation run: id=%s rows=%d rejected=%d payments=%d allocated=%d recorded=%d skipped=%d writes=%d aborted=%t",
		report.RunID, report.RowsRead, report.RowsRejected, report.Payments,
		report.Count(StatusAllocated), report.Count(StatusAlreadyRecorded), report.Count(StatusSkipped),
		report.Writes, report.Aborted)

	if s.observer != nil {
		s.observer.ObserveRun(report)
	}
	if s.publisher != nil {
		if perr := s.publisher.PublishRunCompleted(ctx, RunCompleted{
			RunID:      report.RunID,
			Report:     report,
			OccurredAt: report.FinishedAt,
		}); perr != nil {
			s.logger.Printf("reconciliation run: publish failed: id=%s err=%v", report.RunID, perr)
		}
	}

	if err != nil && !errors.Is(err, ledger.ErrNoMonthRanges) && !errors.Is(err, ledger.ErrInsufficientColumns) {
		return report, err
	}
	return report, nil
}

func (s *ReconciliationService) run(doc ledger.Document, extract bankapp.Extract, opts RunOptions, report *Report, sink events.Sink) error {
	if doc == nil {
		return ledger.ErrNilDocument
	}
	if err := CheckSheets(doc, s.layout, sink); err != nil {
		return err
	}

	valid := SequentialUnits(opts.Units)
	if len(valid) == 0 {
		units, err := ReferenceUnits(doc, s.layout, sink)
		if err != nil {
			return err
		}
		valid = units
	}
	if len(valid) == 0 {
		valid = SequentialUnits(s.layout.UnitCount)
	}

	normalizer, err := bankapp.NewNormalizer(valid, sink)
	if err != nil {
		return err
	}
	payments, rejected := bankapp.Collect(extract.Rows, normalizer)
	report.RowsRejected = rejected
	report.Payments = payments.Len()
	report.PaymentTotal = payments.Total()

	r := s.layout.Roster
	ranges, err := ScanMonthRanges(doc, r.Sheet, r.Months, sink)
	if err != nil {
		return err
	}
	report.Months = ranges

	registry, err := NewUnitRegistry(doc, s.layout, sink)
	if err != nil {
		return err
	}
	l, err := ledger.NewLedger(doc, s.logger, opts.Debug)
	if err != nil {
		return err
	}
	allocator, err := NewAllocator(l, s.layout, ranges, registry, sink)
	if err != nil {
		return err
	}

	allocations, err := allocator.AllocateAll(payments)
	report.Allocations = allocations
	report.Writes = l.Writes()
	if err != nil {
		return fmt.Errorf("allocate: %w", err)
	}

	if extract.HasTotal {
		rec, err := Reconcile(doc, s.layout, registry, allocator.TouchedMonths(), extract.Total, sink)
		if err != nil {
			return err
		}
		report.Reconciliation = &rec
	}
	return nil
}
