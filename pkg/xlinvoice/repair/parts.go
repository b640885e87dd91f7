package repair

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/archive"
)

const (
	defaultWorkbookPart      = "xl/workbook.xml"
	defaultSharedStringsPart = "xl/sharedStrings.xml"
)

// packageParts lists the parts the repair touches.
type packageParts struct {
	sharedStrings string // "" when the package has none
	worksheets    []string
}

type relationship struct {
	typ    string
	target string
}

// locateParts resolves the shared-strings and worksheet parts through the
// package and workbook relationships, falling back to the conventional
// paths when the relationships are absent.
func locateParts(a *archive.Archive) (packageParts, error) {
	workbookPart := defaultWorkbookPart
	if data, ok := a.Get("_rels/.rels"); ok {
		rels, err := parseRels(data)
		if err != nil {
			return packageParts{}, fmt.Errorf("_rels/.rels: %w", err)
		}
		for _, rel := range rels {
			if strings.HasSuffix(rel.typ, "/officeDocument") {
				workbookPart = resolvePartPath(rel.target, "")
				break
			}
		}
	}

	relsPath := path.Join(path.Dir(workbookPart), "_rels", path.Base(workbookPart)+".rels")
	data, ok := a.Get(relsPath)
	if !ok {
		return fallbackParts(a), nil
	}
	rels, err := parseRels(data)
	if err != nil {
		return packageParts{}, fmt.Errorf("%s: %w", relsPath, err)
	}

	var parts packageParts
	baseDir := path.Dir(workbookPart)
	for _, rel := range rels {
		switch {
		case strings.HasSuffix(rel.typ, "/worksheet"):
			if p := resolvePartPath(rel.target, baseDir); a.Has(p) {
				parts.worksheets = append(parts.worksheets, p)
			}
		case strings.HasSuffix(rel.typ, "/sharedStrings"):
			if p := resolvePartPath(rel.target, baseDir); a.Has(p) {
				parts.sharedStrings = p
			}
		}
	}
	return parts, nil
}

func fallbackParts(a *archive.Archive) packageParts {
	var parts packageParts
	if a.Has(defaultSharedStringsPart) {
		parts.sharedStrings = defaultSharedStringsPart
	}
	parts.worksheets = a.Match("xl/worksheets/sheet", ".xml")
	return parts
}

// resolvePartPath resolves a relationship target against the directory of
// its source part. Absolute targets are package-rooted.
func resolvePartPath(target, baseDir string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Clean(path.Join(baseDir, target)), "/")
}

func parseRels(data []byte) ([]relationship, error) {
	var rels []relationship
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return rels, nil
		}
		if err != nil {
			return nil, err
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			var rel relationship
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "Type":
					rel.typ = attr.Value
				case "Target":
					rel.target = attr.Value
				}
			}
			if rel.target != "" && !isExternal(se) {
				rels = append(rels, rel)
			}
		}
	}
}

func isExternal(se xml.StartElement) bool {
	for _, attr := range se.Attr {
		if attr.Name.Local == "TargetMode" && attr.Value == "External" {
			return true
		}
	}
	return false
}

// countSharedStringCells counts <c t="s"> elements in a worksheet, reading
// the whole part so any malformed XML is reported.
func countSharedStringCells(data []byte) (int, error) {
	count := 0
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return 0, err
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "c" {
			continue
		}
		for _, attr := range se.Attr {
			if attr.Name.Local == "t" && attr.Name.Space == "" && attr.Value == "s" {
				count++
				break
			}
		}
	}
}
