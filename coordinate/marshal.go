// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package coordinate

import (
	"fmt"
	"strings"
)

// statusNames is indexed by WorkUnitStatus.
var statusNames = []string{
	AnyStatus:     "any",
	AvailableUnit: "available",
	PendingUnit:   "pending",
	FinishedUnit:  "finished",
	FailedUnit:    "failed",
}

// StatusNames returns the text forms of every real work unit status,
// followed by "any".
func StatusNames() []string {
	names := make([]string, 0, len(statusNames))
	for _, status := range WorkUnitStatuses {
		names = append(names, statusNames[status])
	}
	return append(names, statusNames[AnyStatus])
}

// ParseWorkUnitStatus reads the text form of a status.  Case and
// surrounding spaces are ignored.
func ParseWorkUnitStatus(text string) (WorkUnitStatus, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	for status, name := range statusNames {
		if name == text {
			return WorkUnitStatus(status), nil
		}
	}
	return AnyStatus, fmt.Errorf("invalid status (unmarshal, %+v)", text)
}

func (status WorkUnitStatus) valid() bool {
	return status >= 0 && int(status) < len(statusNames)
}

// String returns the text form of a work unit status, or a
// placeholder for invalid statuses.
func (status WorkUnitStatus) String() string {
	if !status.valid() {
		return fmt.Sprintf("WorkUnitStatus(%d)", int(status))
	}
	return statusNames[status]
}

// MarshalText returns a string representing a work unit status.
func (status WorkUnitStatus) MarshalText() ([]byte, error) {
	if !status.valid() {
		return nil, fmt.Errorf("invalid status (marshal, %+v)", int(status))
	}
	return []byte(statusNames[status]), nil
}

// UnmarshalText populates a work unit status from a string.
func (status *WorkUnitStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseWorkUnitStatus(string(text))
	if err != nil {
		return err
	}
	*status = parsed
	return nil
}
