package catalog

import (
	goversion "github.com/hashicorp/go-version"
)

// Anomaly is an adjacent pair listed in an order that semantic versioning
// would reverse.
type Anomaly struct {
	Listed string // shown first
	Newer  string // shown after Listed, but semantically greater
}

// OrderAnomalies inspects an ordered sequence and reports adjacent pairs whose
// lexicographic order disagrees with semantic version order. Identifiers
// that do not parse as versions are skipped. It never reorders anything.
func OrderAnomalies(entries []Entry) []Anomaly {
	var out []Anomaly
	for i := 0; i+1 < len(entries); i++ {
		a, errA := goversion.NewVersion(entries[i].ID)
		b, errB := goversion.NewVersion(entries[i+1].ID)
		if errA != nil || errB != nil {
			continue
		}
		if a.LessThan(b) {
			out = append(out, Anomaly{Listed: entries[i].ID, Newer: entries[i+1].ID})
		}
	}
	return out
}
