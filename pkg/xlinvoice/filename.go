package xlinvoice

import (
	"strings"
	"unicode"
)

const fallbackFilename = "invoice"

// OutputFilename derives a download filename from the business order number.
// Path separators, control characters and characters reserved on common
// filesystems are dropped; an empty result falls back to "invoice".
func OutputFilename(orderNo string) string {
	var sb strings.Builder
	for _, r := range orderNo {
		if unicode.IsControl(r) || strings.ContainsRune(`/\<>:"|?*`, r) {
			continue
		}
		sb.WriteRune(r)
	}
	name := strings.Trim(sb.String(), " .")
	if name == "" {
		name = fallbackFilename
	}
	return name + ".xlsx"
}
