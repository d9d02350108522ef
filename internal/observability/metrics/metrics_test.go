package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"osi-dues/internal/events"
	"osi-dues/internal/ledger/application"
)

func TestObserveRun(t *testing.T) {
	m := New()
	started := time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC)
	m.ObserveRun(&application.Report{
		StartedAt:    started,
		FinishedAt:   started.Add(time.Second),
		RowsRead:     5,
		RowsRejected: 2,
		Writes:       9,
		Allocations: []application.Allocation{
			{Amount: 1000, Status: application.StatusAllocated},
			{Amount: 100, Status: application.StatusAlreadyRecorded},
		},
		Reconciliation: &application.Reconciliation{Difference: 100},
		Events:         []events.Event{events.Errorf(events.CodeInvalidApartment, "x")},
	})

	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")); got != 1 {
		t.Fatalf("expected one successful run, got %v", got)
	}
	if got := testutil.ToFloat64(m.RowsTotal.WithLabelValues("rejected")); got != 2 {
		t.Fatalf("expected 2 rejected rows, got %v", got)
	}
	if got := testutil.ToFloat64(m.AllocatedAmount); got != 1000 {
		t.Fatalf("expected allocated 1000, got %v", got)
	}
	if got := testutil.ToFloat64(m.PaymentsTotal.WithLabelValues("already_recorded")); got != 1 {
		t.Fatalf("expected one already recorded payment, got %v", got)
	}
	if got := testutil.ToFloat64(m.EventsTotal.WithLabelValues("ERROR", "INVALID_APARTMENT")); got != 1 {
		t.Fatalf("expected one event, got %v", got)
	}
	if got := testutil.ToFloat64(m.Difference); got != 100 {
		t.Fatalf("expected difference 100, got %v", got)
	}
}

func TestObserveSaveAndTextfile(t *testing.T) {
	m := New()
	m.ObserveSave(errors.New("locked"), true)
	m.ObserveSave(nil, false)

	if got := testutil.ToFloat64(m.SavesTotal.WithLabelValues("permission_denied")); got != 1 {
		t.Fatalf("expected one denied save, got %v", got)
	}
	path := filepath.Join(t.TempDir(), "osi.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `osi_ledger_saves_total{result="success"} 1`) {
		t.Fatalf("unexpected textfile %s", data)
	}
}
