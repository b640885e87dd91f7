// Package template resolves template variants to their bytes and cell layout.
package template

import "strings"

// Variant identifies a pre-authored template layout.
type Variant string

const (
	// VariantClient is the client-facing layout.
	VariantClient Variant = "client"
	// VariantHQ is the headquarters-facing layout.
	VariantHQ Variant = "hq"
)

// Variants lists every known variant.
func Variants() []Variant {
	return []Variant{VariantClient, VariantHQ}
}

// Sheet names shared by every variant.
const (
	SheetInvoice = "INVOICE"
	SheetPacking = "PACKING LIST"
)

// Field is a line-item field written into an item table column.
type Field string

// Line-item fields.
const (
	FieldSeq         Field = "seq"
	FieldPartNo      Field = "partNo"
	FieldPartName    Field = "partName"
	FieldPONo        Field = "poNo"
	FieldUnit        Field = "unit"
	FieldQuantity    Field = "quantity"
	FieldUnitPrice   Field = "unitPrice"
	FieldAmount      Field = "amount"
	FieldPackaging   Field = "packaging"
	FieldPalletCount Field = "palletCount"
	FieldTotalWeight Field = "totalWeight"
)

// TableKind distinguishes the two item tables.
type TableKind string

// Item tables.
const (
	TableInvoice TableKind = "invoice"
	TablePacking TableKind = "packing"
)

// Window is an inclusive row range reserved for item rows.
type Window struct {
	Start int
	End   int
}

// Capacity returns the number of rows in the window.
func (w Window) Capacity() int {
	if w.End < w.Start {
		return 0
	}
	return w.End - w.Start + 1
}

// Contains reports whether row lies within the window.
func (w Window) Contains(row int) bool {
	return row >= w.Start && row <= w.End
}

// Column binds a field to a column letter.
type Column struct {
	Field  Field
	Letter string
}

// Anchors are the single cells holding header data. Empty means absent.
type Anchors struct {
	InvoiceNo        string
	InvoiceDate      string
	OrderNo          string
	Destination      string
	ConsigneeName    string
	ConsigneeAddress string
	ConsigneeTel     string
	ConsigneeTaxID   string
}

// Table is the layout of one item table on one sheet.
type Table struct {
	Kind    TableKind
	Sheet   string
	Rows    Window
	Columns []Column
	Anchors Anchors
}

// Column returns the letter bound to field.
func (t Table) Column(field Field) (string, bool) {
	for _, c := range t.Columns {
		if c.Field == field {
			return c.Letter, true
		}
	}
	return "", false
}

// CellMap is the complete layout of a variant. Values are built fresh by
// CellMapFor, so callers never share one.
type CellMap struct {
	Variant Variant
	Invoice Table
	Packing Table
}

// Tables returns the invoice and packing tables in fill order.
func (m CellMap) Tables() []Table {
	return []Table{m.Invoice, m.Packing}
}

// Sheets returns the sheet names the layout requires.
func (m CellMap) Sheets() []string {
	return []string{m.Invoice.Sheet, m.Packing.Sheet}
}

// CellMapFor builds the layout of v. Unknown variants get the client layout.
func CellMapFor(v Variant) CellMap {
	if v == VariantHQ {
		return hqCellMap()
	}
	return clientCellMap()
}

func clientCellMap() CellMap {
	return CellMap{
		Variant: VariantClient,
		Invoice: Table{
			Kind:  TableInvoice,
			Sheet: SheetInvoice,
			Rows:  Window{Start: 33, End: 50},
			Columns: []Column{
				{FieldSeq, "A"},
				{FieldPartNo, "B"},
				{FieldPartName, "C"},
				{FieldPONo, "D"},
				{FieldQuantity, "E"},
				{FieldUnit, "F"},
				{FieldUnitPrice, "G"},
				{FieldAmount, "H"},
			},
			Anchors: Anchors{
				InvoiceNo:        "F6",
				InvoiceDate:      "F7",
				OrderNo:          "F8",
				Destination:      "F10",
				ConsigneeName:    "B10",
				ConsigneeAddress: "B11",
				ConsigneeTel:     "B12",
				ConsigneeTaxID:   "B13",
			},
		},
		Packing: Table{
			Kind:  TablePacking,
			Sheet: SheetPacking,
			Rows:  Window{Start: 33, End: 50},
			Columns: []Column{
				{FieldSeq, "A"},
				{FieldPartNo, "B"},
				{FieldPartName, "C"},
				{FieldQuantity, "D"},
				{FieldUnit, "E"},
				{FieldPackaging, "F"},
				{FieldPalletCount, "G"},
				{FieldTotalWeight, "H"},
			},
			Anchors: Anchors{
				InvoiceNo:     "F6",
				InvoiceDate:   "F7",
				Destination:   "F10",
				ConsigneeName: "B10",
			},
		},
	}
}

func hqCellMap() CellMap {
	return CellMap{
		Variant: VariantHQ,
		Invoice: Table{
			Kind:  TableInvoice,
			Sheet: SheetInvoice,
			Rows:  Window{Start: 33, End: 45},
			Columns: []Column{
				{FieldSeq, "A"},
				{FieldPONo, "B"},
				{FieldPartNo, "C"},
				{FieldPartName, "D"},
				{FieldUnit, "E"},
				{FieldQuantity, "F"},
				{FieldUnitPrice, "G"},
				{FieldAmount, "I"},
			},
			Anchors: Anchors{
				InvoiceNo:        "G4",
				InvoiceDate:      "G5",
				OrderNo:          "G6",
				Destination:      "G8",
				ConsigneeName:    "A8",
				ConsigneeAddress: "A9",
				ConsigneeTel:     "A10",
				ConsigneeTaxID:   "A11",
			},
		},
		Packing: Table{
			Kind:  TablePacking,
			Sheet: SheetPacking,
			Rows:  Window{Start: 35, End: 48},
			Columns: []Column{
				{FieldSeq, "A"},
				{FieldPartNo, "B"},
				{FieldPartName, "C"},
				{FieldUnit, "D"},
				{FieldQuantity, "E"},
				{FieldPackaging, "F"},
				{FieldPalletCount, "H"},
				{FieldTotalWeight, "I"},
			},
			Anchors: Anchors{
				InvoiceNo:     "G4",
				InvoiceDate:   "G5",
				Destination:   "G8",
				ConsigneeName: "A8",
			},
		},
	}
}

// Selection is the result of resolving a variant key.
type Selection struct {
	Variant Variant
	CellMap CellMap
	// Defaulted is true when the key was not recognized and the client
	// layout was used instead.
	Defaulted bool
}

// Select resolves a variant key, case-insensitively. Unrecognized keys fall
// back to the client layout.
func Select(key string) Selection {
	v := Variant(strings.ToLower(strings.TrimSpace(key)))
	switch v {
	case VariantClient, VariantHQ:
		return Selection{Variant: v, CellMap: CellMapFor(v)}
	default:
		return Selection{Variant: VariantClient, CellMap: CellMapFor(VariantClient), Defaulted: true}
	}
}
