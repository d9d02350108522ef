package memory

import (
	"errors"
	"testing"

	ledger "osi-dues/internal/ledger/domain"
)

func TestDocumentSetAndBounds(t *testing.T) {
	doc := NewDocument("оплата")
	doc.Set("оплата", 3, 4, int64(100))
	doc.Set("оплата", 5, 2, "12")

	v, err := doc.Value("оплата", 3, 4)
	if err != nil || v != int64(100) {
		t.Fatalf("unexpected value %v %v", v, err)
	}
	if maxRow, _ := doc.MaxRow("оплата"); maxRow != 5 {
		t.Fatalf("expected max row 5, got %d", maxRow)
	}
	if maxCol, _ := doc.MaxColumn("оплата"); maxCol != 4 {
		t.Fatalf("expected max col 4, got %d", maxCol)
	}
	if err := doc.SetValue("оплата", 3, 4, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if v, _ := doc.Value("оплата", 3, 4); v != nil {
		t.Fatalf("expected cleared cell, got %v", v)
	}
}

func TestDocumentUnknownSheet(t *testing.T) {
	doc := NewDocument("a")
	if _, err := doc.Value("b", 1, 1); !errors.Is(err, ledger.ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
	if err := doc.SetValue("a", 0, 1, 1); !errors.Is(err, ledger.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestCopyFromAndClone(t *testing.T) {
	doc := NewDocument("a", "b")
	doc.Set("a", 1, 1, "x")
	doc.Set("b", 2, 3, 7.0)

	cp, err := CopyFrom(doc)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if v, _ := cp.Value("b", 2, 3); v != 7.0 {
		t.Fatalf("expected copied value, got %v", v)
	}

	clone := doc.Clone()
	clone.Set("a", 1, 1, "y")
	if v, _ := doc.Value("a", 1, 1); v != "x" {
		t.Fatalf("clone must not alias original, got %v", v)
	}
}
