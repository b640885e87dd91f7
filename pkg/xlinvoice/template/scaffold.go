package template

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Placeholder texts written into scaffolded anchor cells.
const (
	InvoiceNoPlaceholder        = "INVOICE No.: {INVOICE No.}"
	PackingInvoiceNoPlaceholder = "INVOICE No.: [Invoice Number]"
	DatePlaceholder             = "DATE: {D}/{M}/{YYYY}"
)

var fieldHeaders = map[Field]string{
	FieldSeq:         "NO.",
	FieldPartNo:      "PART NO.",
	FieldPartName:    "DESCRIPTION",
	FieldPONo:        "P/O NO.",
	FieldUnit:        "UNIT",
	FieldQuantity:    "QTY",
	FieldUnitPrice:   "UNIT PRICE",
	FieldAmount:      "AMOUNT",
	FieldPackaging:   "PACKING",
	FieldPalletCount: "PALLETS",
	FieldTotalWeight: "G.W. (KG)",
}

// Scaffold builds a sample template for v: placeholder anchors, a header row
// above each item window, and two stale example rows (values, formulas and a
// custom packing format) at the top of each window.
func Scaffold(v Variant) ([]byte, error) {
	m := CellMapFor(v)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", m.Invoice.Sheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(m.Packing.Sheet); err != nil {
		return nil, err
	}

	for _, t := range m.Tables() {
		if err := scaffoldTable(f, t); err != nil {
			return nil, fmt.Errorf("scaffold %s: %w", t.Sheet, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scaffoldTable(f *excelize.File, t Table) error {
	sheet := t.Sheet
	anchors := []struct {
		cell string
		text string
	}{
		{t.Anchors.InvoiceNo, InvoiceNoPlaceholder},
		{t.Anchors.InvoiceDate, DatePlaceholder},
		{t.Anchors.OrderNo, "ORDER-SAMPLE"},
		{t.Anchors.Destination, "SAMPLE COUNTRY"},
		{t.Anchors.ConsigneeName, "SAMPLE CONSIGNEE"},
		{t.Anchors.ConsigneeAddress, "SAMPLE ADDRESS"},
		{t.Anchors.ConsigneeTel, "TEL:"},
		{t.Anchors.ConsigneeTaxID, "TAX ID:"},
	}
	if t.Kind == TablePacking {
		anchors[0].text = PackingInvoiceNoPlaceholder
	}
	for _, a := range anchors {
		if a.cell == "" {
			continue
		}
		if err := f.SetCellStr(sheet, a.cell, a.text); err != nil {
			return err
		}
	}

	for _, c := range t.Columns {
		cell := c.Letter + fmt.Sprint(t.Rows.Start-1)
		if err := f.SetCellStr(sheet, cell, fieldHeaders[c.Field]); err != nil {
			return err
		}
	}

	packFmt := `0 "PCS/box"`
	packStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &packFmt})
	if err != nil {
		return err
	}

	for i := 0; i < 2 && t.Rows.Contains(t.Rows.Start+i); i++ {
		row := t.Rows.Start + i
		for _, c := range t.Columns {
			cell := fmt.Sprintf("%s%d", c.Letter, row)
			switch c.Field {
			case FieldSeq:
				err = f.SetCellInt(sheet, cell, i+1)
			case FieldQuantity, FieldUnitPrice, FieldPalletCount:
				err = f.SetCellInt(sheet, cell, 10*(i+1))
			case FieldAmount, FieldTotalWeight:
				qty, _ := t.Column(FieldQuantity)
				err = f.SetCellFormula(sheet, cell, fmt.Sprintf("%s%d*2", qty, row))
			case FieldPackaging:
				if err = f.SetCellInt(sheet, cell, 50); err == nil {
					err = f.SetCellStyle(sheet, cell, cell, packStyle)
				}
			default:
				err = f.SetCellStr(sheet, cell, fmt.Sprintf("EXAMPLE %s %d", c.Field, i+1))
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
