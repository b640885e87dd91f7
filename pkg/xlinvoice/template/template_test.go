package template

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/errs"
	"github.com/xuri/excelize/v2"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		key       string
		variant   Variant
		defaulted bool
	}{
		{"client", VariantClient, false},
		{"hq", VariantHQ, false},
		{" HQ ", VariantHQ, false},
		{"Client", VariantClient, false},
		{"", VariantClient, true},
		{"branch", VariantClient, true},
	}

	for _, tt := range tests {
		sel := Select(tt.key)
		if sel.Variant != tt.variant || sel.Defaulted != tt.defaulted {
			t.Errorf("Select(%q) = %s (defaulted %v), expected %s (defaulted %v)",
				tt.key, sel.Variant, sel.Defaulted, tt.variant, tt.defaulted)
		}
		if sel.CellMap.Variant != tt.variant {
			t.Errorf("Select(%q).CellMap.Variant = %s", tt.key, sel.CellMap.Variant)
		}
	}
}

func TestCellMapWindows(t *testing.T) {
	tests := []struct {
		variant  Variant
		invoice  Window
		packing  Window
		capacity int
	}{
		{VariantClient, Window{33, 50}, Window{33, 50}, 18},
		{VariantHQ, Window{33, 45}, Window{35, 48}, 13},
	}

	for _, tt := range tests {
		m := CellMapFor(tt.variant)
		if m.Invoice.Rows != tt.invoice {
			t.Errorf("%s invoice rows = %+v, expected %+v", tt.variant, m.Invoice.Rows, tt.invoice)
		}
		if m.Packing.Rows != tt.packing {
			t.Errorf("%s packing rows = %+v, expected %+v", tt.variant, m.Packing.Rows, tt.packing)
		}
		if got := m.Invoice.Rows.Capacity(); got != tt.capacity {
			t.Errorf("%s invoice capacity = %d, expected %d", tt.variant, got, tt.capacity)
		}
		if m.Invoice.Sheet != SheetInvoice || m.Packing.Sheet != SheetPacking {
			t.Errorf("%s sheets = %v", tt.variant, m.Sheets())
		}
	}
}

func TestCellMapIsolated(t *testing.T) {
	a := CellMapFor(VariantHQ)
	a.Invoice.Columns[0].Letter = "Z"
	a.Packing.Rows.End = 99

	b := CellMapFor(VariantHQ)
	if b.Invoice.Columns[0].Letter != "A" || b.Packing.Rows.End != 48 {
		t.Error("CellMapFor returned shared state")
	}
}

func TestTableColumn(t *testing.T) {
	m := CellMapFor(VariantHQ)
	if col, ok := m.Invoice.Column(FieldAmount); !ok || col != "I" {
		t.Errorf("hq invoice amount column = %q, %v", col, ok)
	}
	if _, ok := m.Invoice.Column(FieldPackaging); ok {
		t.Error("invoice table should not map packaging")
	}
}

func TestWindowCapacity(t *testing.T) {
	if got := (Window{Start: 5, End: 4}).Capacity(); got != 0 {
		t.Errorf("inverted window capacity = %d", got)
	}
	if !(Window{Start: 5, End: 5}).Contains(5) {
		t.Error("single-row window should contain its row")
	}
}

func TestMemorySource(t *testing.T) {
	src := MemorySource{VariantClient: []byte("client-bytes")}

	data, err := src.Load(context.Background(), VariantClient)
	if err != nil || string(data) != "client-bytes" {
		t.Errorf("Load(client) = %q, %v", data, err)
	}
	if _, err := src.Load(context.Background(), VariantHQ); !errors.Is(err, errs.ErrTemplateNotFound) {
		t.Errorf("Expected ErrTemplateNotFound, got %v", err)
	}
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hq.xlsx"), []byte("hq-bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	src := NewDirSource(dir)

	data, err := src.Load(context.Background(), VariantHQ)
	if err != nil || string(data) != "hq-bytes" {
		t.Errorf("Load(hq) = %q, %v", data, err)
	}
	if _, err := src.Load(context.Background(), VariantClient); !errors.Is(err, errs.ErrTemplateNotFound) {
		t.Errorf("Expected ErrTemplateNotFound, got %v", err)
	}
}

type countingSource struct {
	mu    sync.Mutex
	calls int
	inner Source
}

func (c *countingSource) Load(ctx context.Context, v Variant) ([]byte, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.inner.Load(ctx, v)
}

func TestCachedSource(t *testing.T) {
	inner := &countingSource{inner: MemorySource{VariantHQ: []byte("hq")}}
	src := NewCachedSource(inner)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := src.Load(context.Background(), VariantHQ); err != nil {
				t.Errorf("Load failed: %v", err)
			}
		}()
	}
	wg.Wait()

	before := inner.calls
	if _, err := src.Load(context.Background(), VariantHQ); err != nil {
		t.Fatal(err)
	}
	if inner.calls != before {
		t.Errorf("cached load hit the source again")
	}

	if _, err := src.Load(context.Background(), VariantClient); !errors.Is(err, errs.ErrTemplateNotFound) {
		t.Errorf("Expected ErrTemplateNotFound, got %v", err)
	}

	src.Invalidate()
	src.Load(context.Background(), VariantHQ)
	if inner.calls != before+2 {
		t.Errorf("calls after invalidate = %d, expected %d", inner.calls, before+2)
	}
}

func TestSQLSource(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE templates (variant TEXT PRIMARY KEY, content BLOB)`); err != nil {
		t.Fatalf("create table failed: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO templates (variant, content) VALUES ($1, $2)`, "hq", []byte("hq-bytes")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	src, err := NewSQLSource(db, "templates")
	if err != nil {
		t.Fatalf("NewSQLSource failed: %v", err)
	}

	data, err := src.Load(context.Background(), VariantHQ)
	if err != nil || string(data) != "hq-bytes" {
		t.Errorf("Load(hq) = %q, %v", data, err)
	}
	if _, err := src.Load(context.Background(), VariantClient); !errors.Is(err, errs.ErrTemplateNotFound) {
		t.Errorf("Expected ErrTemplateNotFound, got %v", err)
	}

	if _, err := NewSQLSource(db, "templates; DROP TABLE x"); err == nil {
		t.Error("expected invalid table name error")
	}
}

func TestScaffold(t *testing.T) {
	for _, v := range Variants() {
		data, err := Scaffold(v)
		if err != nil {
			t.Fatalf("Scaffold(%s) failed: %v", v, err)
		}

		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("OpenReader failed: %v", err)
		}

		m := CellMapFor(v)
		got, _ := f.GetCellValue(SheetInvoice, m.Invoice.Anchors.InvoiceNo)
		if got != InvoiceNoPlaceholder {
			t.Errorf("%s invoice anchor = %q", v, got)
		}
		got, _ = f.GetCellValue(SheetPacking, m.Packing.Anchors.InvoiceNo)
		if got != PackingInvoiceNoPlaceholder {
			t.Errorf("%s packing anchor = %q", v, got)
		}

		weightCol, _ := m.Packing.Column(FieldTotalWeight)
		fx, _ := f.GetCellFormula(SheetPacking, weightCol+strconv.Itoa(m.Packing.Rows.Start))
		if fx == "" {
			t.Errorf("%s: expected stale formula in packing window", v)
		}
		f.Close()
	}
}
