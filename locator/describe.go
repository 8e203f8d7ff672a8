// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package locator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Dimension describes one supported locator dimension for help text.
type Dimension struct {
	// Name is the dimension name as it appears in locators.
	Name string

	// Syntax is a short hint at the value format, such as
	// "<boolean>" or "<work spec locator>".
	Syntax string

	// Description is a one-line explanation.
	Description string

	// Hidden dimensions are accepted but never described, and do
	// not have to be consumed.
	Hidden bool
}

// Describe renders help text listing the non-hidden dimensions.
func Describe(dims []Dimension) string {
	var b strings.Builder
	b.WriteString("Supported locator dimensions:\n")
	for _, dim := range dims {
		if dim.Hidden {
			continue
		}
		b.WriteString("  ")
		b.WriteString(dim.Name)
		if dim.Syntax != "" {
			b.WriteString(":")
			b.WriteString(dim.Syntax)
		}
		if dim.Description != "" {
			b.WriteString(" - ")
			b.WriteString(dim.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// maxSuggestionDistance is the largest edit distance at which an
// unknown dimension is considered a typo of a known one.
const maxSuggestionDistance = 2

// Suggest returns the known name closest to name, if any is within a
// couple of edits.
func Suggest(name string, known []string) (string, bool) {
	best := ""
	bestDistance := maxSuggestionDistance + 1
	for _, candidate := range known {
		if strings.HasPrefix(candidate, "$") {
			continue
		}
		distance := edlib.LevenshteinDistance(strings.ToLower(name), strings.ToLower(candidate))
		if distance < bestDistance {
			best = candidate
			bestDistance = distance
		}
	}
	return best, best != ""
}

func unknownDimensionMessage(name string, known []string) string {
	var visible []string
	for _, candidate := range known {
		if !strings.HasPrefix(candidate, "$") {
			visible = append(visible, candidate)
		}
	}
	sort.Strings(visible)
	message := fmt.Sprintf("Locator dimension '%s' is not supported.", name)
	if suggestion, ok := Suggest(name, visible); ok {
		message += fmt.Sprintf(" Did you mean '%s'?", suggestion)
	}
	return message + " Supported dimensions are: [" + strings.Join(visible, ", ") + "]"
}
