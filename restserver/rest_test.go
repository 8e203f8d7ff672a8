// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-locator/coordinate"
	"github.com/diffeo/go-locator/finder"
	"github.com/diffeo/go-locator/finders"
	"github.com/diffeo/go-locator/memory"
	"github.com/diffeo/go-locator/restdata"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const fixture = `
namespaces:
  - name: test
    workers:
      - name: parent
        mode: run
      - name: child
        parent: parent
      - name: idle
        mode: idle
        inactive: true
    work_specs:
      - data: {name: ingest, priority: 3, then: index}
        work_units:
          - name: u1
            priority: 1
            status: pending
            worker: child
            age: 30m
          - name: u2
            status: finished
            worker: child
            age: 20m
          - name: u3
            priority: 5
            age: 10m
      - data: {name: index, runtime: python}
        work_units:
          - name: i1
            status: failed
            worker: idle
            age: 25m
          - name: i2
      - data: {name: ingest_extra, continuous: true}
`

// Suite runs requests against a router over a fixture.
type Suite struct {
	suite.Suite
	Clock  *clock.Mock
	Hook   *logtest.Hook
	Router http.Handler
}

func (s *Suite) SetupTest() {
	s.Clock = clock.NewMock()
	c := memory.NewWithClock(s.Clock)
	s.Require().NoError(memory.LoadFixture(c, strings.NewReader(fixture)))
	var logger *logrus.Logger
	logger, s.Hook = logtest.NewNullLogger()
	s.Router = NewRouter(c, Settings{
		Finders: finders.Settings{
			Finder:    finder.Settings{Logger: logger, Clock: s.Clock},
			WorkUnits: finders.Defaults{Count: 2},
		},
		Logger: logger,
	})
}

func TestRest(t *testing.T) {
	suite.Run(t, &Suite{})
}

// get fetches a path and decodes the response into out, if it is
// non-nil.  It returns the HTTP status.
func (s *Suite) get(path string, out interface{}) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", restdata.V1JSONMediaType)
	resp := httptest.NewRecorder()
	s.Router.ServeHTTP(resp, req)
	if out != nil {
		err := restdata.Decode(resp.Header().Get("Content-Type"), resp.Body, out)
		s.NoError(err, path)
	}
	return resp.Code
}

// query builds a list path with a locator query parameter.
func query(path, locator string) string {
	return path + "?" + url.Values{"locator": {locator}}.Encode()
}

func (s *Suite) TestRoot() {
	var root restdata.RootData
	s.Equal(http.StatusOK, s.get("/", &root))
	s.Equal("/", root.URL)
	s.Equal("/namespace", root.NamespacesURL)
	s.Equal("/namespace/{namespace}", root.NamespaceURL)

	var list restdata.NamespaceList
	s.Equal(http.StatusOK, s.get(root.NamespacesURL, &list))
	if s.Len(list.Namespaces, 1) {
		s.Equal("test", list.Namespaces[0].Name)
		s.Equal("/namespace/test", list.Namespaces[0].URL)
	}
}

func (s *Suite) TestNamespace() {
	var ns restdata.Namespace
	s.Equal(http.StatusOK, s.get("/namespace/test", &ns))
	s.Equal("test", ns.Name)
	s.Equal("/namespace/test/summary", ns.SummaryURL)
	s.Equal("/namespace/test/work_spec{?locator}", ns.WorkSpecsURL)
	s.Equal("/namespace/test/work_spec/{locator}", ns.WorkSpecURL)
	s.Equal("/namespace/test/work_unit{?locator}", ns.WorkUnitsURL)
	s.Equal("/namespace/test/work_unit/{locator}", ns.WorkUnitURL)
	s.Equal("/namespace/test/worker{?locator}", ns.WorkersURL)
	s.Equal("/namespace/test/worker/{locator}", ns.WorkerURL)
	s.Equal("/namespace/test/worker/{worker}/children{?locator}", ns.WorkerChildrenURL)
}

func (s *Suite) TestSummary() {
	var summary coordinate.Summary
	s.Equal(http.StatusOK, s.get("/namespace/test/summary", &summary))
	total := 0
	for _, record := range summary {
		s.Equal("test", record.Namespace)
		total += record.Count
	}
	s.Equal(5, total)
}

func (s *Suite) TestWorkSpecs() {
	var list restdata.WorkSpecList
	s.Equal(http.StatusOK, s.get(query("/namespace/test/work_spec", "prefix:ingest"), &list))
	var names []string
	for _, spec := range list.WorkSpecs {
		names = append(names, spec.Name)
	}
	s.Equal([]string{"ingest", "ingest_extra"}, names)
	s.Empty(list.NextURL)
	s.Empty(list.PrevURL)

	var spec restdata.WorkSpec
	s.Equal(http.StatusOK, s.get(list.WorkSpecs[0].URL, &spec))
	s.Equal("ingest", spec.Name)
	s.Equal("name:ingest", spec.Locator)
	s.Equal(3, spec.Priority)
	s.Equal("index", spec.Then)
	s.Equal(map[string]int{"pending": 1, "finished": 1, "available": 1}, spec.Counts)

	var units restdata.WorkUnitList
	s.Equal(http.StatusOK, s.get(spec.WorkUnitsURL, &units))
	names = nil
	for _, unit := range units.WorkUnits {
		names = append(names, unit.Name)
	}
	s.Equal([]string{"u3", "u2"}, names)
}

func (s *Suite) TestWorkUnitPaging() {
	var names []string
	next := "/namespace/test/work_unit"
	pages := 0
	for next != "" {
		var list restdata.WorkUnitList
		if !s.Equal(http.StatusOK, s.get(next, &list), next) {
			return
		}
		for _, unit := range list.WorkUnits {
			names = append(names, unit.Name)
		}
		if pages > 0 {
			s.NotEmpty(list.PrevURL)
		}
		next = list.NextURL
		pages++
		if pages > 5 {
			s.Fail("too many pages")
			return
		}
	}
	s.Equal([]string{"i2", "u3", "u2", "i1", "u1"}, names)
	s.Equal(3, pages)
}

func (s *Suite) TestWorkUnit() {
	var list restdata.WorkUnitList
	s.Equal(http.StatusOK, s.get(query("/namespace/test/work_unit", "status:pending"), &list))
	if !s.Len(list.WorkUnits, 1) {
		return
	}
	short := list.WorkUnits[0]
	s.Equal("u1", short.Name)
	s.Equal("ingest", short.WorkSpec)
	s.Equal("workSpec:(name:ingest),name:u1", short.Locator)
	s.Equal("/namespace/test/work_unit/"+restdata.EncodePathSegment(short.Locator), short.URL)

	var unit restdata.WorkUnit
	s.Equal(http.StatusOK, s.get(short.URL, &unit))
	s.Equal(coordinate.PendingUnit, unit.Status)
	s.Equal(1.0, unit.Priority)
	s.True(s.Clock.Now().Add(-30*time.Minute).Equal(unit.Created), "%v", unit.Created)
	s.Equal("/namespace/test/work_spec/name:ingest", unit.WorkSpecURL)
	s.Equal("/namespace/test/worker/name:child", unit.WorkerURL)
}

func (s *Suite) TestWorker() {
	var worker restdata.Worker
	s.Equal(http.StatusOK, s.get("/namespace/test/worker/name:parent", &worker))
	s.Equal("parent", worker.Name)
	s.Equal("run", worker.Mode)
	s.True(worker.Active)
	s.Empty(worker.Parent)
	s.Equal([]string{"/namespace/test/worker/name:child"}, worker.ChildURLs)
	s.Equal("/namespace/test/worker/name:parent/children", worker.ChildrenURL)

	var child restdata.Worker
	s.Equal(http.StatusOK, s.get(worker.ChildURLs[0], &child))
	s.Equal("parent", child.Parent)
	s.Equal("/namespace/test/worker/name:parent", child.ParentURL)

	var active restdata.WorkUnitList
	s.Equal(http.StatusOK, s.get(child.ActiveWorkUnitsURL, &active))
	if s.Len(active.WorkUnits, 1) {
		s.Equal("u1", active.WorkUnits[0].Name)
	}

	var workers restdata.WorkerList
	s.Equal(http.StatusOK, s.get(query("/namespace/test/worker", "active:false"), &workers))
	if s.Len(workers.Workers, 1) {
		s.Equal("idle", workers.Workers[0].Name)
	}
}

func (s *Suite) TestWorkerChildren() {
	var list restdata.WorkerList
	s.Equal(http.StatusOK, s.get("/namespace/test/worker/name:parent/children", &list))
	if s.Len(list.Workers, 1) {
		s.Equal("child", list.Workers[0].Name)
	}

	list = restdata.WorkerList{}
	s.Equal(http.StatusOK, s.get(query("/namespace/test/worker/name:parent/children", "mode:run"), &list))
	s.Empty(list.Workers)

	list = restdata.WorkerList{}
	s.Equal(http.StatusOK, s.get(query("/namespace/test/worker/name:parent/children", "child"), &list))
	if s.Len(list.Workers, 1) {
		s.Equal("child", list.Workers[0].Name)
	}

	list = restdata.WorkerList{}
	s.Equal(http.StatusOK, s.get(query("/namespace/test/worker/name:parent/children", "idle"), &list))
	s.Empty(list.Workers)

	list = restdata.WorkerList{}
	s.Equal(http.StatusOK, s.get("/namespace/test/worker/name:idle/children", &list))
	s.Empty(list.Workers)

	list = restdata.WorkerList{}
	s.Equal(http.StatusOK, s.get(query("/namespace/test/worker/name:idle/children", "mode:run,start:0,count:1"), &list))
	s.Empty(list.Workers)
}

func (s *Suite) TestWorkerChildrenErrors() {
	for _, path := range []string{
		"/namespace/test/worker/name:parent/children",
		"/namespace/test/worker/name:idle/children",
	} {
		var resp restdata.ErrorResponse
		s.Equal(http.StatusBadRequest, s.get(query(path, "bogus:1"), &resp), path)
		s.Equal("ErrBadRequest", resp.Error)
		s.Contains(resp.Message, "bogus")

		resp = restdata.ErrorResponse{}
		s.Equal(http.StatusBadRequest, s.get(query(path, "active:maybe"), &resp), path)
	}
}

func (s *Suite) TestErrors() {
	var resp restdata.ErrorResponse
	s.Equal(http.StatusBadRequest, s.get(query("/namespace/test/work_spec", "bogus:1"), &resp))
	s.Equal("ErrBadRequest", resp.Error)
	s.Contains(resp.Message, "bogus")

	resp = restdata.ErrorResponse{}
	s.Equal(http.StatusNotFound, s.get("/namespace/test/work_spec/name:missing", &resp))
	s.Equal("ErrNotFound", resp.Error)

	resp = restdata.ErrorResponse{}
	s.Equal(http.StatusInternalServerError, s.get("/namespace/test/work_spec/prefix:ingest", &resp))
	s.Equal("ErrOperation", resp.Error)
	if entry := s.Hook.LastEntry(); s.NotNil(entry) {
		s.Equal(logrus.WarnLevel, entry.Level)
		s.Equal(http.StatusInternalServerError, entry.Data["status"])
	}

	resp = restdata.ErrorResponse{}
	s.Equal(http.StatusBadRequest, s.get("/namespace/-!/work_spec", &resp))
}

func (s *Suite) TestHelp() {
	var resp restdata.ErrorResponse
	s.Equal(http.StatusBadRequest, s.get(query("/namespace/test/work_unit", "$help"), &resp))
	s.Contains(resp.Message, "workSpec")
	s.Contains(resp.Message, "createdAfter")
}

func (s *Suite) TestNegotiation() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "image/png")
	resp := httptest.NewRecorder()
	s.Router.ServeHTTP(resp, req)
	s.Equal(http.StatusNotAcceptable, resp.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/*")
	resp = httptest.NewRecorder()
	s.Router.ServeHTTP(resp, req)
	s.Equal(http.StatusOK, resp.Code)
	s.Equal("text/json", resp.Header().Get("Content-Type"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json;q=2")
	resp = httptest.NewRecorder()
	s.Router.ServeHTTP(resp, req)
	s.Equal(http.StatusBadRequest, resp.Code)

	req = httptest.NewRequest(http.MethodHead, "/namespace/test", nil)
	resp = httptest.NewRecorder()
	s.Router.ServeHTTP(resp, req)
	s.Equal(http.StatusOK, resp.Code)
	s.Zero(resp.Body.Len())

	req = httptest.NewRequest(http.MethodPost, "/namespace/test", nil)
	resp = httptest.NewRecorder()
	s.Router.ServeHTTP(resp, req)
	s.Equal(http.StatusMethodNotAllowed, resp.Code)
}

type failResponseWriter struct {
	Headers    http.Header
	StatusCode int
}

func (rw *failResponseWriter) Header() http.Header {
	if rw.Headers == nil {
		rw.Headers = make(http.Header)
	}
	return rw.Headers
}

func (rw *failResponseWriter) Write([]byte) (int, error) {
	return 0, errors.New("foo")
}

func (rw *failResponseWriter) WriteHeader(code int) {
	rw.StatusCode = code
}

// TestDoubleFault checks that, if there is an error serializing a JSON
// response, it doesn't actually panic the process.
func TestDoubleFault(t *testing.T) {
	backend := memory.New()
	namespace, err := backend.Namespace("")
	require.NoError(t, err)
	_, err = namespace.SetWorkSpec(map[string]interface{}{
		"name": "spec",
	})
	require.NoError(t, err)

	logger, hook := logtest.NewNullLogger()
	router := NewRouter(backend, Settings{Logger: logger})
	req := httptest.NewRequest(http.MethodGet, "/namespace/-/work_spec/name:spec", nil)
	resp := &failResponseWriter{}
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	if entry := hook.LastEntry(); assert.NotNil(t, entry) {
		assert.Equal(t, "writing response", entry.Message)
	}
}
