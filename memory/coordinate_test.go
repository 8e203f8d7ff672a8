// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"testing"

	"github.com/diffeo/go-locator/coordinate/coordinatetest"
	"github.com/stretchr/testify/suite"
)

// Suite runs the generic Coordinate tests against the memory backend.
type Suite struct {
	coordinatetest.Suite
}

// SetupSuite does global setup for the test suite.
func (s *Suite) SetupSuite() {
	s.Suite.SetupSuite()
	s.Coordinate = NewWithClock(s.Clock)
}

// TestCoordinate runs the Coordinate generic tests.
func TestCoordinate(t *testing.T) {
	suite.Run(t, &Suite{})
}
