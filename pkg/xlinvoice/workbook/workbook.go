// Package workbook is the in-memory view over one loaded template.
package workbook

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/errs"
	"github.com/xuri/excelize/v2"
)

// builtInNumFmt maps the built-in number format IDs the engine may read back.
var builtInNumFmt = map[int]string{
	0:  "General",
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	14: "mm-dd-yy",
	49: "@",
}

// Workbook wraps a single excelize file. It is owned by one render and is
// not safe for concurrent use.
type Workbook struct {
	f *excelize.File
}

// Load parses template bytes. Bytes are only read, never retained for writing.
func Load(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errs.New(errs.ErrTemplateMalformed, "workbook.load", err)
	}
	return &Workbook{f: f}, nil
}

// Close releases the temporary resources held by excelize.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// HasSheet reports whether the workbook contains the named sheet.
func (w *Workbook) HasSheet(name string) bool {
	idx, err := w.f.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// RequireSheets returns ErrSheetNotFound for the first missing sheet.
func (w *Workbook) RequireSheets(names ...string) error {
	for _, name := range names {
		if !w.HasSheet(name) {
			return errs.Errorf(errs.ErrSheetNotFound, "workbook.sheet", "%q", name)
		}
	}
	return nil
}

// Cell returns a handle to a cell. The sheet is checked on each operation.
func (w *Workbook) Cell(sheet, addr string) *Cell {
	return &Cell{wb: w, sheet: sheet, addr: addr}
}

// Serialize writes the workbook back to xlsx bytes.
func (w *Workbook) Serialize() ([]byte, error) {
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, errs.New(errs.ErrSerializationFailure, "workbook.serialize", err)
	}
	return buf.Bytes(), nil
}

// Kind is the stored type of a cell value.
type Kind int

// Cell value kinds.
const (
	KindEmpty Kind = iota
	KindString
	KindNumber
	KindBool
	KindOther
)

// Value is the raw content of a cell.
type Value struct {
	Kind Kind
	Raw  string
}

// Cell addresses one cell of one sheet.
type Cell struct {
	wb    *Workbook
	sheet string
	addr  string
}

// Address returns the A1-style address of the cell.
func (c *Cell) Address() string {
	return c.addr
}

// Sheet returns the owning sheet name.
func (c *Cell) Sheet() string {
	return c.sheet
}

func (c *Cell) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var missing excelize.ErrSheetNotExist
	if errors.As(err, &missing) || !c.wb.HasSheet(c.sheet) {
		return errs.Errorf(errs.ErrSheetNotFound, op, "%q", c.sheet)
	}
	return errs.New(errs.ErrTemplateMalformed, op, fmt.Errorf("%s!%s: %w", c.sheet, c.addr, err))
}

func (c *Cell) check(op string) error {
	if !c.wb.HasSheet(c.sheet) {
		return errs.Errorf(errs.ErrSheetNotFound, op, "%q", c.sheet)
	}
	return nil
}

// Get returns the raw (unformatted) cell content and its kind.
func (c *Cell) Get() (Value, error) {
	if err := c.check("cell.get"); err != nil {
		return Value{}, err
	}
	raw, err := c.wb.f.GetCellValue(c.sheet, c.addr, excelize.Options{RawCellValue: true})
	if err != nil {
		return Value{}, c.wrap("cell.get", err)
	}
	typ, err := c.wb.f.GetCellType(c.sheet, c.addr)
	if err != nil {
		return Value{}, c.wrap("cell.get", err)
	}
	return Value{Kind: kindOf(typ, raw), Raw: raw}, nil
}

func kindOf(typ excelize.CellType, raw string) Kind {
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return KindString
	case excelize.CellTypeBool:
		return KindBool
	case excelize.CellTypeNumber:
		return KindNumber
	case excelize.CellTypeUnset:
		if raw == "" {
			return KindEmpty
		}
		return KindNumber
	default:
		return KindOther
	}
}

// Text returns the cell content when the cell holds a string.
func (c *Cell) Text() (string, bool, error) {
	v, err := c.Get()
	if err != nil {
		return "", false, err
	}
	return v.Raw, v.Kind == KindString, nil
}

// SetString writes a string value.
func (c *Cell) SetString(s string) error {
	if err := c.check("cell.set"); err != nil {
		return err
	}
	return c.wrap("cell.set", c.wb.f.SetCellStr(c.sheet, c.addr, s))
}

// SetNumber writes a numeric value.
func (c *Cell) SetNumber(v float64) error {
	if err := c.check("cell.set"); err != nil {
		return err
	}
	return c.wrap("cell.set", c.wb.f.SetCellFloat(c.sheet, c.addr, v, -1, 64))
}

// Clear blanks the value of the cell, keeping its style.
func (c *Cell) Clear() error {
	if err := c.check("cell.clear"); err != nil {
		return err
	}
	return c.wrap("cell.clear", c.wb.f.SetCellDefault(c.sheet, c.addr, ""))
}

// Formula returns the cell formula, or "" when there is none.
func (c *Cell) Formula() (string, error) {
	if err := c.check("cell.formula"); err != nil {
		return "", err
	}
	fx, err := c.wb.f.GetCellFormula(c.sheet, c.addr)
	return fx, c.wrap("cell.formula", err)
}

// ClearFormula removes any formula stored in the cell.
func (c *Cell) ClearFormula() error {
	if err := c.check("cell.clearFormula"); err != nil {
		return err
	}
	return c.wrap("cell.clearFormula", c.wb.f.SetCellFormula(c.sheet, c.addr, ""))
}

// NumberFormat returns the format code applied to the cell.
func (c *Cell) NumberFormat() (string, error) {
	style, err := c.style("cell.numberFormat")
	if err != nil {
		return "", err
	}
	if style.CustomNumFmt != nil {
		return *style.CustomNumFmt, nil
	}
	if code, ok := builtInNumFmt[style.NumFmt]; ok {
		return code, nil
	}
	return "", nil
}

// SetNumberFormat applies a format code to the cell, keeping the rest of its
// style. "General" resets the cell to the built-in default.
func (c *Cell) SetNumberFormat(code string) error {
	style, err := c.style("cell.setNumberFormat")
	if err != nil {
		return err
	}
	if code == "" || code == builtInNumFmt[0] {
		style.NumFmt = 0
		style.CustomNumFmt = nil
	} else {
		style.NumFmt = 0
		style.CustomNumFmt = &code
	}
	id, err := c.wb.f.NewStyle(style)
	if err != nil {
		return c.wrap("cell.setNumberFormat", err)
	}
	return c.wrap("cell.setNumberFormat", c.wb.f.SetCellStyle(c.sheet, c.addr, c.addr, id))
}

func (c *Cell) style(op string) (*excelize.Style, error) {
	if err := c.check(op); err != nil {
		return nil, err
	}
	id, err := c.wb.f.GetCellStyle(c.sheet, c.addr)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	style, err := c.wb.f.GetStyle(id)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	return style, nil
}
