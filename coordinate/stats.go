// Statistics for Coordinate objects.
//
// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package coordinate

import (
	"sort"
)

// SummaryRecord is a single piece of summary data, recording how
// many work units were in some status in some work spec.
type SummaryRecord struct {
	Namespace string
	WorkSpec  string
	Status    WorkUnitStatus
	Count     int
}

// Summary is a summary of work unit statuses for some part of
// the Coordinate system.  The records are in no particular order.
// The records should not contain records with zero count.
type Summary []SummaryRecord

// Sort sorts the records of a summary in place.
func (s Summary) Sort() {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Namespace != s[j].Namespace {
			return s[i].Namespace < s[j].Namespace
		}
		if s[i].WorkSpec != s[j].WorkSpec {
			return s[i].WorkSpec < s[j].WorkSpec
		}
		return s[i].Status < s[j].Status
	})
}

// ByStatus totals the records of a summary per work unit status.
func (s Summary) ByStatus() map[WorkUnitStatus]int {
	result := make(map[WorkUnitStatus]int)
	for _, record := range s {
		result[record.Status] += record.Count
	}
	return result
}

// Summarizable describes Coordinate objects that can be summarized.
type Summarizable interface {
	Summarize() (Summary, error)
}
