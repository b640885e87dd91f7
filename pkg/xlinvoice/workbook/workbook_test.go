package workbook

import (
	"errors"
	"testing"

	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/errs"
	"github.com/xuri/excelize/v2"
)

func newTemplate(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	f.SetCellValue(sheetName, "A1", "INVOICE No.: {INVOICE No.}")
	f.SetCellValue(sheetName, "B2", 42)
	f.SetCellFormula(sheetName, "C2", "B2*2")

	custom := `0 "PCS/box"`
	styleID, err := f.NewStyle(&excelize.Style{CustomNumFmt: &custom})
	if err != nil {
		t.Fatalf("NewStyle failed: %v", err)
	}
	f.SetCellValue(sheetName, "D2", 12)
	f.SetCellStyle(sheetName, "D2", "D2", styleID)

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf.Bytes()
}

func TestLoadMalformed(t *testing.T) {
	_, err := Load([]byte("definitely not a workbook"))
	if !errors.Is(err, errs.ErrTemplateMalformed) {
		t.Fatalf("Expected ErrTemplateMalformed, got %v", err)
	}
}

func TestCellGetSet(t *testing.T) {
	wb, err := Load(newTemplate(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer wb.Close()

	text, ok, err := wb.Cell("Sheet1", "A1").Text()
	if err != nil || !ok || text != "INVOICE No.: {INVOICE No.}" {
		t.Errorf("Text() = %q, %v, %v", text, ok, err)
	}

	v, err := wb.Cell("Sheet1", "B2").Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v.Kind != KindNumber || v.Raw != "42" {
		t.Errorf("Get(B2) = %+v", v)
	}

	if err := wb.Cell("Sheet1", "B2").SetString("replaced"); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}
	if text, ok, _ := wb.Cell("Sheet1", "B2").Text(); !ok || text != "replaced" {
		t.Errorf("Text(B2) after SetString = %q, %v", text, ok)
	}

	if err := wb.Cell("Sheet1", "E5").SetNumber(7.5); err != nil {
		t.Fatalf("SetNumber failed: %v", err)
	}
	if v, _ := wb.Cell("Sheet1", "E5").Get(); v.Raw != "7.5" {
		t.Errorf("Get(E5) = %+v", v)
	}

	if err := wb.Cell("Sheet1", "B2").Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if v, _ := wb.Cell("Sheet1", "B2").Get(); v.Kind != KindEmpty || v.Raw != "" {
		t.Errorf("Get(B2) after Clear = %+v", v)
	}
}

func TestClearFormula(t *testing.T) {
	wb, err := Load(newTemplate(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer wb.Close()

	cell := wb.Cell("Sheet1", "C2")
	if fx, _ := cell.Formula(); fx != "B2*2" {
		t.Fatalf("Formula() = %q", fx)
	}
	if err := cell.ClearFormula(); err != nil {
		t.Fatalf("ClearFormula failed: %v", err)
	}
	if fx, _ := cell.Formula(); fx != "" {
		t.Errorf("Formula() after clear = %q", fx)
	}
}

func TestNumberFormat(t *testing.T) {
	wb, err := Load(newTemplate(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer wb.Close()

	cell := wb.Cell("Sheet1", "D2")
	if code, _ := cell.NumberFormat(); code != `0 "PCS/box"` {
		t.Errorf("NumberFormat() = %q", code)
	}

	if err := cell.SetNumberFormat("General"); err != nil {
		t.Fatalf("SetNumberFormat failed: %v", err)
	}
	if code, _ := cell.NumberFormat(); code != "General" {
		t.Errorf("NumberFormat() after reset = %q", code)
	}

	if err := cell.SetNumberFormat(`0 "SET""S""/box"`); err != nil {
		t.Fatalf("SetNumberFormat failed: %v", err)
	}
	if code, _ := cell.NumberFormat(); code != `0 "SET""S""/box"` {
		t.Errorf("NumberFormat() = %q", code)
	}
}

func TestSheetNotFound(t *testing.T) {
	wb, err := Load(newTemplate(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer wb.Close()

	if err := wb.Cell("PACKING LIST", "A1").SetString("x"); !errors.Is(err, errs.ErrSheetNotFound) {
		t.Errorf("Expected ErrSheetNotFound, got %v", err)
	}
	if err := wb.RequireSheets("Sheet1", "INVOICE"); !errors.Is(err, errs.ErrSheetNotFound) {
		t.Errorf("Expected ErrSheetNotFound, got %v", err)
	}
	if err := wb.RequireSheets("Sheet1"); err != nil {
		t.Errorf("RequireSheets(Sheet1) = %v", err)
	}
}

func TestSerializeReloads(t *testing.T) {
	wb, err := Load(newTemplate(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	wb.Cell("Sheet1", "A1").SetString("INVOICE No.: INV-001")
	out, err := wb.Serialize()
	wb.Close()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	again, err := Load(out)
	if err != nil {
		t.Fatalf("Load of serialized output failed: %v", err)
	}
	defer again.Close()
	if text, _, _ := again.Cell("Sheet1", "A1").Text(); text != "INVOICE No.: INV-001" {
		t.Errorf("Text(A1) = %q", text)
	}
}
