package alloc

import (
	"strings"

	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/format"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/models"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/template"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/workbook"
)

// Path records how an anchor cell received its text.
type Path int

const (
	// Written means the value was written as-is (no placeholder policy).
	Written Path = iota
	// Substituted means tokens in the template text were replaced in place.
	Substituted
	// Synthesized means the template text did not match and a complete
	// label was built instead.
	Synthesized
)

func (p Path) String() string {
	switch p {
	case Substituted:
		return "substituted"
	case Synthesized:
		return "synthesized"
	default:
		return "written"
	}
}

// MarshalText renders the path by name in JSON output.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Substitution is the text chosen for an anchor and the path that chose it.
type Substitution struct {
	Path Path
	Text string
}

// Invoice number tokens, in the spellings found across template revisions.
var invoiceNoTokens = []string{"{INVOICE No.}", "[Invoice Number]", "[Invoice No]"}

// Date tokens; all three must be present for in-place substitution.
var dateTokens = []string{"{D}", "{M}", "{YYYY}"}

// SubstituteInvoiceNo replaces any invoice-number token in current. When
// current is not a string or holds no token, it synthesizes the label.
func SubstituteInvoiceNo(current string, isString bool, invoiceNo string) Substitution {
	if isString {
		replaced := current
		for _, tok := range invoiceNoTokens {
			replaced = strings.ReplaceAll(replaced, tok, invoiceNo)
		}
		if replaced != current {
			return Substitution{Path: Substituted, Text: replaced}
		}
	}
	return Substitution{Path: Synthesized, Text: "INVOICE No.: " + invoiceNo}
}

// SubstituteDate fills {D}, {M} and {YYYY} in current from a D/M/YYYY date.
// An unparsable date or a template without all three tokens yields a
// synthesized label carrying the date as given.
func SubstituteDate(current string, isString bool, date string) Substitution {
	d, ok := format.ParseDisplayDate(date)
	if ok && isString && containsAll(current, dateTokens) {
		r := strings.NewReplacer("{D}", d.Day, "{M}", d.Month, "{YYYY}", d.Year)
		return Substitution{Path: Substituted, Text: r.Replace(current)}
	}

	text := strings.TrimSpace(date)
	if ok {
		text = d.String()
	}
	if text == "" {
		return Substitution{Path: Synthesized, Text: "DATE:"}
	}
	return Substitution{Path: Synthesized, Text: "DATE: " + text}
}

func containsAll(s string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(s, tok) {
			return false
		}
	}
	return true
}

// AnchorResult records the value written to one anchor cell.
type AnchorResult struct {
	Sheet  string `json:"sheet"`
	Cell   string `json:"cell"`
	Anchor string `json:"anchor"`
	Path   Path   `json:"path"`
	Text   string `json:"text"`
}

// FillAnchors writes the request header fields into the table's anchor
// cells. Anchors the layout does not define are skipped.
func FillAnchors(wb *workbook.Workbook, t template.Table, req *models.RenderRequest) ([]AnchorResult, error) {
	var results []AnchorResult

	substituted := []struct {
		name  string
		cell  string
		apply func(current string, isString bool) Substitution
	}{
		{"invoiceNo", t.Anchors.InvoiceNo, func(current string, isString bool) Substitution {
			return SubstituteInvoiceNo(current, isString, req.InvoiceNo)
		}},
		{"invoiceDate", t.Anchors.InvoiceDate, func(current string, isString bool) Substitution {
			return SubstituteDate(current, isString, req.InvoiceDate)
		}},
	}
	for _, a := range substituted {
		if a.cell == "" {
			continue
		}
		cell := wb.Cell(t.Sheet, a.cell)
		current, isString, err := cell.Text()
		if err != nil {
			return results, err
		}
		sub := a.apply(current, isString)
		if err := cell.SetString(sub.Text); err != nil {
			return results, err
		}
		results = append(results, AnchorResult{Sheet: t.Sheet, Cell: a.cell, Anchor: a.name, Path: sub.Path, Text: sub.Text})
	}

	plain := []struct {
		name string
		cell string
		text string
	}{
		{"orderNo", t.Anchors.OrderNo, req.OrderNo},
		{"destination", t.Anchors.Destination, req.DestinationCountry},
		{"consigneeName", t.Anchors.ConsigneeName, req.Consignee.Name},
		{"consigneeAddress", t.Anchors.ConsigneeAddress, req.Consignee.Address},
		{"consigneeTel", t.Anchors.ConsigneeTel, format.FormatTelLabel(req.Consignee.Tel)},
		{"consigneeTaxId", t.Anchors.ConsigneeTaxID, format.FormatTaxIDLabel(req.Consignee.TaxID)},
	}
	for _, a := range plain {
		if a.cell == "" {
			continue
		}
		if err := wb.Cell(t.Sheet, a.cell).SetString(a.text); err != nil {
			return results, err
		}
		results = append(results, AnchorResult{Sheet: t.Sheet, Cell: a.cell, Anchor: a.name, Path: Written, Text: a.text})
	}

	return results, nil
}
