// Package repair recomputes the shared-string counters of a serialized
// workbook and strips phonetic annotations from the shared-string table.
package repair

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/archive"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/errs"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/models"
)

// phoneticTags are removed wherever they occur under the sst root.
var phoneticTags = map[string]bool{
	"rPh":        true,
	"phoneticPr": true,
}

// Repair rewrites the shared-strings part of a in place. A package without
// a shared-strings part is left untouched. Only the package rels, the
// workbook rels, the worksheets and the shared-strings part are parsed; a
// malformed one aborts the repair with ErrTemplateMalformed and leaves a
// unchanged. Other parts are copied as they are.
func Repair(a *archive.Archive) (models.RepairReport, error) {
	report, doc, err := analyze(a, true)
	if err != nil || doc == nil {
		return report, err
	}

	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true
	out, err := doc.WriteToBytes()
	if err != nil {
		return report, errs.New(errs.ErrSerializationFailure, "repair.sharedStrings", err)
	}
	a.Set(report.Part, out)
	return report, nil
}

// RepairBytes decodes an xlsx package, repairs it and encodes it again.
func RepairBytes(data []byte) ([]byte, models.RepairReport, error) {
	a, err := archive.Read(data)
	if err != nil {
		return nil, models.RepairReport{}, errs.New(errs.ErrTemplateMalformed, "repair.read", err)
	}
	report, err := Repair(a)
	if err != nil {
		return nil, report, err
	}
	out, err := a.Bytes()
	if err != nil {
		return nil, report, errs.New(errs.ErrSerializationFailure, "repair.write", err)
	}
	return out, report, nil
}

// Inspect computes the repair report of an xlsx package without changing it.
func Inspect(data []byte) (models.RepairReport, error) {
	a, err := archive.Read(data)
	if err != nil {
		return models.RepairReport{}, errs.New(errs.ErrTemplateMalformed, "repair.read", err)
	}
	report, _, err := analyze(a, false)
	return report, err
}

// analyze parses every worksheet and the shared-strings part. When mutate is
// set, the returned document carries the recomputed counters and no
// phonetic elements; otherwise PhoneticRemoved counts what would be removed.
func analyze(a *archive.Archive, mutate bool) (models.RepairReport, *etree.Document, error) {
	report := models.RepairReport{PrevCount: -1, PrevUniqueCount: -1}

	parts, err := locateParts(a)
	if err != nil {
		return report, nil, errs.New(errs.ErrTemplateMalformed, "repair.locate", err)
	}

	count := 0
	for _, name := range parts.worksheets {
		data, _ := a.Get(name)
		n, err := countSharedStringCells(data)
		if err != nil {
			return report, nil, errs.New(errs.ErrTemplateMalformed, "repair.worksheet", fmt.Errorf("%s: %w", name, err))
		}
		count += n
	}
	report.Worksheets = len(parts.worksheets)

	if parts.sharedStrings == "" {
		return report, nil, nil
	}
	report.Present = true
	report.Part = parts.sharedStrings

	data, _ := a.Get(parts.sharedStrings)
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return report, nil, errs.New(errs.ErrTemplateMalformed, "repair.sharedStrings", fmt.Errorf("%s: %w", parts.sharedStrings, err))
	}
	root := doc.Root()
	if root == nil || root.Tag != "sst" {
		return report, nil, errs.Errorf(errs.ErrTemplateMalformed, "repair.sharedStrings", "%s: missing sst root", parts.sharedStrings)
	}

	report.PrevCount = intAttr(root, "count")
	report.PrevUniqueCount = intAttr(root, "uniqueCount")
	report.Count = count
	report.UniqueCount = len(root.SelectElements("si"))
	report.PhoneticRemoved = stripPhonetic(root, mutate)

	if !mutate {
		return report, nil, nil
	}
	root.CreateAttr("count", strconv.Itoa(report.Count))
	root.CreateAttr("uniqueCount", strconv.Itoa(report.UniqueCount))
	return report, doc, nil
}

func intAttr(e *etree.Element, key string) int {
	attr := e.SelectAttr(key)
	if attr == nil {
		return -1
	}
	n, err := strconv.Atoi(attr.Value)
	if err != nil {
		return -1
	}
	return n
}

// stripPhonetic removes phonetic elements below e and returns how many were
// found. Nested phonetic elements are counted once with their ancestor.
func stripPhonetic(e *etree.Element, remove bool) int {
	removed := 0
	for _, child := range e.ChildElements() {
		if phoneticTags[child.Tag] {
			if remove {
				e.RemoveChild(child)
			}
			removed++
			continue
		}
		removed += stripPhonetic(child, remove)
	}
	return removed
}
