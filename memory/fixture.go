// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"fmt"
	"io"
	"io/ioutil"
	"time"

	"github.com/diffeo/go-locator/coordinate"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v2"
)

// Fixture describes the initial contents of a Coordinate, as loaded by
// LoadFixture.  A fixture file looks like
//
//     namespaces:
//       - name: ""
//         workers:
//           - name: parent
//             mode: run
//           - name: child
//             parent: parent
//         work_specs:
//           - data: {name: ingest, priority: 3}
//             work_units:
//               - name: u1
//                 priority: 1
//                 data: {url: "http://example.com/"}
//                 status: pending
//                 worker: child
//                 age: 10m
type Fixture struct {
	Namespaces []NamespaceFixture
}

// NamespaceFixture is one namespace of a Fixture.  Workers are created
// before work specs, in order, so a worker may name any earlier
// worker as its parent.
type NamespaceFixture struct {
	Name      string
	Workers   []WorkerFixture
	WorkSpecs []WorkSpecFixture `mapstructure:"work_specs"`
}

// WorkerFixture is one worker of a NamespaceFixture.
type WorkerFixture struct {
	Name     string
	Parent   string
	Mode     string
	Inactive bool
}

// WorkSpecFixture is one work spec of a NamespaceFixture.
type WorkSpecFixture struct {
	Data      map[string]interface{}
	WorkUnits []WorkUnitFixture `mapstructure:"work_units"`
}

// WorkUnitFixture is one work unit of a WorkSpecFixture.  Units with
// status pending, finished or failed must name a worker.  Age, a
// duration like "90s", makes the work unit that much older than the
// time it is loaded.
type WorkUnitFixture struct {
	Name     string
	Data     map[string]interface{}
	Priority float64
	Status   string
	Worker   string
	Age      string
}

// LoadFixture reads a YAML fixture and adds its contents to c.
func LoadFixture(c coordinate.Coordinate, r io.Reader) error {
	bytes, err := ioutil.ReadAll(r)
	if err != nil {
		return err
	}
	var raw interface{}
	if err = yaml.Unmarshal(bytes, &raw); err != nil {
		return err
	}
	var fixture Fixture
	config := mapstructure.DecoderConfig{
		Result:           &fixture,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(&config)
	if err != nil {
		return err
	}
	if err = decoder.Decode(StringKeys(raw)); err != nil {
		return err
	}
	return fixture.Apply(c)
}

// Apply adds the contents of a fixture to c.
func (f Fixture) Apply(c coordinate.Coordinate) error {
	for _, nsf := range f.Namespaces {
		ns, err := c.Namespace(nsf.Name)
		if err != nil {
			return err
		}
		if err = nsf.apply(ns); err != nil {
			return fmt.Errorf("namespace %q: %v", nsf.Name, err)
		}
	}
	return nil
}

func (nsf NamespaceFixture) apply(ns coordinate.Namespace) error {
	for _, wf := range nsf.Workers {
		w, err := ns.Worker(wf.Name)
		if err != nil {
			return err
		}
		if wf.Parent != "" {
			parent, err := ns.Worker(wf.Parent)
			if err == nil {
				err = w.SetParent(parent)
			}
			if err != nil {
				return err
			}
		}
		if wf.Mode != "" {
			if err = w.SetMode(wf.Mode); err != nil {
				return err
			}
		}
		if wf.Inactive {
			if err = w.SetActive(false); err != nil {
				return err
			}
		}
	}
	for _, sf := range nsf.WorkSpecs {
		spec, err := ns.SetWorkSpec(sf.Data)
		if err != nil {
			return err
		}
		for _, uf := range sf.WorkUnits {
			if err = uf.apply(ns, spec); err != nil {
				return fmt.Errorf("work unit %q: %v", uf.Name, err)
			}
		}
	}
	return nil
}

func (uf WorkUnitFixture) apply(ns coordinate.Namespace, spec coordinate.WorkSpec) error {
	var status coordinate.WorkUnitStatus = coordinate.AvailableUnit
	if uf.Status != "" {
		if err := status.UnmarshalText([]byte(uf.Status)); err != nil {
			return err
		}
	}
	var age time.Duration
	if uf.Age != "" {
		var err error
		if age, err = time.ParseDuration(uf.Age); err != nil {
			return err
		}
	}
	data := uf.Data
	if data == nil {
		data = make(map[string]interface{})
	}
	unit, err := spec.AddWorkUnit(uf.Name, data, uf.Priority)
	if err != nil {
		return err
	}
	if age != 0 {
		if memUnit, ok := unit.(*workUnit); ok {
			globalLock(memUnit)
			memUnit.created = memUnit.created.Add(-age)
			globalUnlock(memUnit)
		}
	}
	if status == coordinate.AvailableUnit {
		return nil
	}
	if uf.Worker == "" {
		return fmt.Errorf("status %v needs a worker", status)
	}
	w, err := ns.Worker(uf.Worker)
	if err != nil {
		return err
	}
	if err = w.Assign(unit); err != nil {
		return err
	}
	switch status {
	case coordinate.FinishedUnit:
		return unit.Finish(nil)
	case coordinate.FailedUnit:
		return unit.Fail(nil)
	}
	return nil
}

// StringKeys recursively converts the map[interface{}]interface{}
// values YAML decoding produces into map[string]interface{}.
func StringKeys(value interface{}) interface{} {
	switch v := value.(type) {
	case map[interface{}]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, item := range v {
			result[fmt.Sprint(key)] = StringKeys(item)
		}
		return result
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, item := range v {
			result[key] = StringKeys(item)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = StringKeys(item)
		}
		return result
	default:
		return value
	}
}
