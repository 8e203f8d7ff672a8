// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-locator/finder"
	"github.com/diffeo/go-locator/finders"
	"github.com/diffeo/go-locator/locator"
	"github.com/diffeo/go-locator/memory"
	"github.com/diffeo/go-locator/restclient"
	"github.com/diffeo/go-locator/restdata"
	"github.com/diffeo/go-locator/restserver"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const fixture = `
namespaces:
  - name: ""
    workers:
      - name: parent
        mode: run
      - name: child
        parent: parent
    work_specs:
      - data: {name: ingest}
        work_units:
          - name: u1
            status: pending
            worker: child
            age: 3m
          - name: u2
            age: 2m
          - name: "a unit/with spaces"
            age: 1m
`

// Suite sets up an object stack where the REST client code talks to
// the REST server code, which points at an in-memory backend.
type Suite struct {
	suite.Suite
	Server    *httptest.Server
	Client    *restclient.Client
	Namespace *restclient.Namespace
}

func (s *Suite) SetupSuite() {
	clk := clock.NewMock()
	backend := memory.NewWithClock(clk)
	s.Require().NoError(memory.LoadFixture(backend, strings.NewReader(fixture)))
	logger, _ := logtest.NewNullLogger()
	s.Server = httptest.NewServer(restserver.NewRouter(backend, restserver.Settings{
		Finders: finders.Settings{
			Finder:    finder.Settings{Logger: logger, Clock: clk},
			WorkUnits: finders.Defaults{Count: 2},
		},
		Logger: logger,
	}))

	var err error
	s.Client, err = restclient.New(context.Background(), s.Server.URL)
	s.Require().NoError(err)
	s.Namespace, err = s.Client.Namespace(context.Background(), "")
	s.Require().NoError(err)
}

func (s *Suite) TearDownSuite() {
	s.Server.Close()
}

func TestClient(t *testing.T) {
	suite.Run(t, &Suite{})
}

func (s *Suite) TestNamespaces() {
	names, err := s.Client.Namespaces(context.Background())
	if s.NoError(err) {
		s.Equal([]string{""}, names)
	}
	s.Equal("", s.Namespace.Name())

	summary, err := s.Namespace.Summary(context.Background())
	if s.NoError(err) {
		total := 0
		for _, record := range summary {
			total += record.Count
		}
		s.Equal(3, total)
	}
}

func (s *Suite) TestWorkSpec() {
	list, err := s.Namespace.WorkSpecs(context.Background(), "")
	if s.NoError(err) && s.Len(list.WorkSpecs, 1) {
		s.Equal("ingest", list.WorkSpecs[0].Name)
	}

	spec, err := s.Namespace.WorkSpec(context.Background(), "name:ingest")
	if s.NoError(err) {
		s.Equal("ingest", spec.Name)
		s.Equal(map[string]int{"pending": 1, "available": 2}, spec.Counts)
	}
}

func (s *Suite) TestWorkUnitPages() {
	ctx := context.Background()
	list, err := s.Namespace.WorkUnits(ctx, "workSpec:ingest")
	if !s.NoError(err) {
		return
	}
	var names []string
	for {
		for _, unit := range list.WorkUnits {
			names = append(names, unit.Name)
		}
		next := &restdata.WorkUnitList{}
		more, err := s.Namespace.Follow(ctx, list.NextURL, next)
		if !s.NoError(err) || !more {
			break
		}
		list = next
	}
	s.Equal([]string{"a unit/with spaces", "u2", "u1"}, names)
}

func (s *Suite) TestWorkUnitByLocator() {
	ctx := context.Background()
	list, err := s.Namespace.WorkUnits(ctx, "prefix:a")
	if !s.NoError(err) || !s.Len(list.WorkUnits, 1) {
		return
	}
	loc := list.WorkUnits[0].Locator
	unit, err := s.Namespace.WorkUnit(ctx, loc)
	if s.NoError(err) {
		s.Equal("a unit/with spaces", unit.Name)
		s.Equal(loc, unit.Locator)
	}
}

func (s *Suite) TestWorkers() {
	ctx := context.Background()
	worker, err := s.Namespace.Worker(ctx, "name:child")
	if s.NoError(err) {
		s.Equal("parent", worker.Parent)
	}

	children, err := s.Namespace.WorkerChildren(ctx, "name:parent", "")
	if s.NoError(err) && s.Len(children.Workers, 1) {
		s.Equal("child", children.Workers[0].Name)
	}

	children, err = s.Namespace.WorkerChildren(ctx, "name:parent", "mode:run")
	if s.NoError(err) {
		s.Empty(children.Workers)
	}

	list, err := s.Namespace.Workers(ctx, "mode:run")
	if s.NoError(err) && s.Len(list.Workers, 1) {
		s.Equal("parent", list.Workers[0].Name)
	}
}

func (s *Suite) TestErrors() {
	ctx := context.Background()
	_, err := s.Namespace.WorkSpecs(ctx, "bogus:1")
	s.IsType(locator.ErrBadRequest{}, err)

	_, err = s.Namespace.WorkSpec(ctx, "name:missing")
	s.IsType(locator.ErrNotFound{}, err)

	_, err = s.Namespace.Worker(ctx, "active:true")
	s.IsType(locator.ErrOperation{}, err)

	_, err = s.Namespace.Follow(ctx, "/no/such/path", &restdata.WorkerList{})
	if s.IsType(restclient.ErrorHTTP{}, err) {
		s.Equal(404, err.(restclient.ErrorHTTP).Response.StatusCode)
	}
}

func TestEmptyURL(t *testing.T) {
	_, err := restclient.New(context.Background(), "")
	assert.Error(t, err)
}
