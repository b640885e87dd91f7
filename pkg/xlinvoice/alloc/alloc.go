// Package alloc writes line items and header anchors into a loaded template.
package alloc

import (
	"fmt"
	"strconv"

	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/format"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/models"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/template"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/workbook"
)

// Report summarizes one table fill.
type Report struct {
	Table     template.TableKind `json:"table"`
	Sheet     string             `json:"sheet"`
	Capacity  int                `json:"capacity"`
	Items     int                `json:"items"`
	Written   int                `json:"written"`
	Truncated int                `json:"truncated"`
}

func cellName(letter string, row int) string {
	return letter + strconv.Itoa(row)
}

// Clear blanks every mapped column of every row in the table's window.
// Packing columns also lose their formulas and go back to "General".
func Clear(wb *workbook.Workbook, t template.Table) error {
	for row := t.Rows.Start; row <= t.Rows.End; row++ {
		for _, col := range t.Columns {
			cell := wb.Cell(t.Sheet, cellName(col.Letter, row))
			if t.Kind == template.TablePacking {
				if err := cell.ClearFormula(); err != nil {
					return err
				}
			}
			if err := cell.Clear(); err != nil {
				return err
			}
			if t.Kind == template.TablePacking {
				if err := cell.SetNumberFormat(format.GeneralNumberFormat); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Fill clears the table window and writes items into it, one per row from
// the first window row. Items beyond the window capacity are dropped and
// counted in Report.Truncated.
func Fill(wb *workbook.Workbook, t template.Table, items []models.LineItem) (Report, error) {
	report := Report{
		Table:    t.Kind,
		Sheet:    t.Sheet,
		Capacity: t.Rows.Capacity(),
		Items:    len(items),
	}

	if err := Clear(wb, t); err != nil {
		return report, err
	}

	for i, item := range items {
		row := t.Rows.Start + i
		if row > t.Rows.End {
			break
		}
		for _, col := range t.Columns {
			cell := wb.Cell(t.Sheet, cellName(col.Letter, row))
			if err := writeField(cell, col.Field, i+1, item); err != nil {
				return report, fmt.Errorf("row %d %s: %w", row, col.Field, err)
			}
		}
		report.Written++
	}
	report.Truncated = report.Items - report.Written

	return report, nil
}

func writeField(cell *workbook.Cell, field template.Field, seq int, item models.LineItem) error {
	switch field {
	case template.FieldSeq:
		return cell.SetNumber(float64(seq))
	case template.FieldPartNo:
		return cell.SetString(item.PartNo)
	case template.FieldPartName:
		return cell.SetString(item.PartName)
	case template.FieldPONo:
		return cell.SetString(item.PONo)
	case template.FieldUnit:
		return cell.SetString(item.Unit)
	case template.FieldQuantity:
		return cell.SetNumber(format.NumberOrZero(item.Quantity))
	case template.FieldUnitPrice:
		return cell.SetNumber(format.NumberOrZero(item.UnitPrice))
	case template.FieldAmount:
		return cell.SetNumber(format.ComputeLineTotal(item.Quantity, item.UnitPrice))
	case template.FieldPackaging:
		return writePackaging(cell, item)
	case template.FieldPalletCount:
		return cell.SetNumber(optionalNumber(item.PalletCount))
	case template.FieldTotalWeight:
		return cell.SetNumber(optionalNumber(item.TotalWeight))
	default:
		return fmt.Errorf("unknown field %q", field)
	}
}

// writePackaging leaves the cell blank with the "General" format when the
// item carries no finite packaging value.
func writePackaging(cell *workbook.Cell, item models.LineItem) error {
	if item.Packaging == nil || !format.Finite(*item.Packaging) {
		return nil
	}
	if err := cell.SetNumber(*item.Packaging); err != nil {
		return err
	}
	return cell.SetNumberFormat(format.BuildPackagingNumberFormat(item.Unit))
}

func optionalNumber(v *float64) float64 {
	if v == nil {
		return 0
	}
	return format.NumberOrZero(*v)
}
