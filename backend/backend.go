// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package backend provides a standard way to construct a coordinate
// interface based on command-line flags.
package backend

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-locator/coordinate"
	"github.com/diffeo/go-locator/memory"
)

// Backend describes user-visible parameters to store coordinate data.
// This implements the flag.Value interface, and so a typical use is
//
//     func main() {
//         backend := backend.Backend{Implementation: "memory"}
//         flag.Var(&backend, "backend", "impl[:address] of coordinate storage")
//         flag.Parse()
//         coordinate, err := backend.Coordinate(clock.New())
//     }
type Backend struct {
	// Implementation holds the name of the implementation; for
	// instance, "memory".
	Implementation string

	// Address holds some backend-specific address.  For the
	// memory backend it names an optional YAML fixture file to
	// load at startup.
	Address string
}

// Coordinate creates a new coordinate interface.  This generally should be
// only called once.  If b.Implementation is "memory", multiple calls to
// this will create multiple independent coordinate "worlds".
func (b *Backend) Coordinate(clk clock.Clock) (coordinate.Coordinate, error) {
	switch b.Implementation {
	case "memory":
		c := memory.NewWithClock(clk)
		if b.Address == "" {
			return c, nil
		}
		f, err := os.Open(b.Address)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err = memory.LoadFixture(c, f); err != nil {
			return nil, fmt.Errorf("%s: %v", b.Address, err)
		}
		return c, nil
	default:
		return nil, errors.New("unknown coordinate backend " + b.Implementation)
	}
}

// String renders a backend description as a string.
func (b *Backend) String() string {
	if b.Address == "" {
		return b.Implementation
	}
	return b.Implementation + ":" + b.Address
}

// Set parses a string into an existing backend description.  The
// string should be of the form "implementation:address", where
// address can be any string.  Set checks to see if the provided
// implementation is any of the known implementations, and returns an
// appropriate error if not.
//
// This is part of the flag.Value interface.  Note that neither Set
// nor Coordinate validates b.Address until the backend is created.
func (b *Backend) Set(param string) error {
	parts := strings.SplitN(param, ":", 2)
	switch parts[0] {
	case "memory":
	case "":
		return errors.New("must specify a backend type")
	default:
		return fmt.Errorf("unknown coordinate backend %q", parts[0])
	}
	b.Implementation = parts[0]
	b.Address = ""
	if len(parts) == 2 {
		b.Address = parts[1]
	}
	return nil
}
