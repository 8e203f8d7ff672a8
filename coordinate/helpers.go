// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package coordinate

import (
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// WorkSpecData contains data that can be extracted from a work spec's
// data dictionary.  ExtractWorkSpecMeta decodes it to build a
// WorkSpecMeta.
type WorkSpecData struct {
	// Name of the work spec.
	Name string

	// Disabled indicates whether the work spec is paused.
	// Defaults to false.
	Disabled bool

	// Continuous indicates whether the work spec expects to
	// receive generated work units.  Defaults to false.
	Continuous bool

	// Interval specifies the minimum interval, in seconds, between
	// generated work units for continuous work specs.
	Interval float64

	// Priority specifies an absolute priority for this work spec.
	// Defaults to 0.
	Priority int

	// Weight specifies the relative weight of this work spec.  If
	// this is zero, uses a value derived from Nice; if both are
	// unset, uses 20.
	Weight int

	// Nice specifies the "niceness" of this work spec, as the Unix
	// nice(1) tool.  If Weight is zero, then it is set to 20 - Nice.
	Nice int

	// MaxRunning specifies the maximum number of work units that
	// are allowed to be concurrently running.  If zero, there is
	// no limit.
	MaxRunning int `mapstructure:"max_running"`

	// Then specifies the name of another work spec that runs
	// after this one.
	Then string

	// Runtime specifies the name and possibly version of a
	// language runtime required to run this work spec.
	Runtime string
}

// ExtractWorkSpecMeta fills in as much of a WorkSpecMeta object as
// possible based on information given in a work spec definition.
// Keys that are not fields of WorkSpecData are ignored; weakly typed
// values ("true", "5") are accepted.
func ExtractWorkSpecMeta(workSpecDict map[string]interface{}) (name string, meta WorkSpecMeta, err error) {
	data := WorkSpecData{}
	config := mapstructure.DecoderConfig{
		Result:           &data,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(&config)
	if err != nil {
		return
	}
	if nameI, present := workSpecDict["name"]; present {
		if _, ok := nameI.(string); !ok {
			err = ErrBadWorkSpecName
			return
		}
	}
	err = decoder.Decode(workSpecDict)
	if err != nil {
		return
	}
	if data.Name == "" {
		err = ErrNoWorkSpecName
		return
	}
	name = data.Name
	if data.Weight == 0 {
		data.Weight = 20 - data.Nice
	}
	if data.Weight <= 0 {
		data.Weight = 1
	}
	meta.Priority = data.Priority
	meta.Weight = data.Weight
	meta.Paused = data.Disabled
	meta.Continuous = data.Continuous
	meta.Interval = time.Duration(data.Interval * float64(time.Second))
	meta.MaxRunning = data.MaxRunning
	meta.NextWorkSpecName = data.Then
	meta.Runtime = data.Runtime
	return
}

// DataValue looks up a possibly dotted key, like "source.url", in a
// nested data map.  It returns false if any step of the path is
// missing or is not a map.
func DataValue(data map[string]interface{}, key string) (interface{}, bool) {
	parts := strings.Split(key, ".")
	var current interface{} = data
	for _, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			if im, isIMap := current.(map[interface{}]interface{}); isIMap {
				m = make(map[string]interface{}, len(im))
				for k, v := range im {
					if ks, isString := k.(string); isString {
						m[ks] = v
					}
				}
			} else {
				return nil, false
			}
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
