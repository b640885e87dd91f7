// Package format provides the pure value formatters used when filling a template.
package format

import (
	"math"
	"regexp"
	"strings"
)

// GeneralNumberFormat is the default number format of an unstyled cell.
const GeneralNumberFormat = "General"

// packagingSuffix is appended to the unit label inside the quoted literal.
const packagingSuffix = "/box"

var displayDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

// DisplayDate holds the textual parts of a D/M/YYYY date.
type DisplayDate struct {
	Day   string
	Month string
	Year  string
}

// String renders the date back as D/M/YYYY.
func (d DisplayDate) String() string {
	return d.Day + "/" + d.Month + "/" + d.Year
}

// FormatTelLabel returns "TEL: <value>", or "TEL:" when value is blank.
func FormatTelLabel(value string) string {
	return label("TEL:", value)
}

// FormatTaxIDLabel returns "TAX ID: <value>", or "TAX ID:" when value is blank.
func FormatTaxIDLabel(value string) string {
	return label("TAX ID:", value)
}

func label(prefix, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return prefix
	}
	return prefix + " " + value
}

// ParseDisplayDate splits s into day, month and year. It only accepts the
// exact shape D{1,2}/M{1,2}/YYYY; the parts are not range-checked.
func ParseDisplayDate(s string) (DisplayDate, bool) {
	m := displayDatePattern.FindStringSubmatch(s)
	if m == nil {
		return DisplayDate{}, false
	}
	return DisplayDate{Day: m[1], Month: m[2], Year: m[3]}, true
}

// ComputeLineTotal returns qty*price, or 0 when either operand (or the
// product) is NaN or infinite.
func ComputeLineTotal(qty, price float64) float64 {
	if !Finite(qty) || !Finite(price) {
		return 0
	}
	total := qty * price
	if !Finite(total) {
		return 0
	}
	return total
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NumberOrZero returns v when finite, 0 otherwise.
func NumberOrZero(v float64) float64 {
	if Finite(v) {
		return v
	}
	return 0
}

// BuildPackagingNumberFormat returns the custom number format
// `0 "<label>/box"` with embedded quotes doubled. A blank label yields "0".
func BuildPackagingNumberFormat(unitLabel string) string {
	unitLabel = strings.TrimSpace(unitLabel)
	if unitLabel == "" {
		return "0"
	}
	return `0 "` + strings.ReplaceAll(unitLabel, `"`, `""`) + packagingSuffix + `"`
}

// PackagingLabel recovers the unit label from a format produced by
// BuildPackagingNumberFormat. It reports false for any other format.
func PackagingLabel(numFmt string) (string, bool) {
	if numFmt == "0" {
		return "", true
	}
	const prefix = `0 "`
	suffix := packagingSuffix + `"`
	if !strings.HasPrefix(numFmt, prefix) || !strings.HasSuffix(numFmt, suffix) || len(numFmt) < len(prefix)+len(suffix) {
		return "", false
	}
	escaped := numFmt[len(prefix) : len(numFmt)-len(suffix)]
	if strings.Contains(strings.ReplaceAll(escaped, `""`, ""), `"`) {
		return "", false
	}
	return strings.ReplaceAll(escaped, `""`, `"`), true
}
