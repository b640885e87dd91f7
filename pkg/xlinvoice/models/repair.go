package models

// RepairReport describes what the shared-string repair changed.
type RepairReport struct {
	// Present is false when the package has no shared-strings part.
	Present bool `json:"present"`
	// Part is the archive path of the shared-strings part.
	Part string `json:"part,omitempty"`
	// PrevCount and PrevUniqueCount are the attribute values found before
	// repair (-1 when the attribute was absent or unparsable).
	PrevCount       int `json:"prev_count"`
	PrevUniqueCount int `json:"prev_unique_count"`
	// Count is the number of shared-string cells across all worksheets.
	Count int `json:"count"`
	// UniqueCount is the number of entries in the shared-string pool.
	UniqueCount int `json:"unique_count"`
	// Worksheets is the number of worksheet parts scanned.
	Worksheets int `json:"worksheets"`
	// PhoneticRemoved is the number of rPh and phoneticPr elements stripped.
	PhoneticRemoved int `json:"phonetic_removed"`
}

// Stale reports whether the counters differed from the recomputed values.
func (r RepairReport) Stale() bool {
	return r.Present && (r.PrevCount != r.Count || r.PrevUniqueCount != r.UniqueCount)
}
