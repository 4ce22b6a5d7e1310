package config

import (
	"reflect"
	"sort"
	"strings"

	"github.com/creasty/defaults"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"
)

// DecodeMonitorConfig pulls the inline OtherConfig values out of a core
// MonitorConfig and decodes them into the monitor-specific config struct
// `out`.  If any values are not decoded it is considered an error since the
// user provided config that would not be used and probably thought would.
// Struct defaults are applied to `out` after decoding.
func DecodeMonitorConfig(core *MonitorConfig, out MonitorCustomConfig) error {
	otherYaml, err := yaml.Marshal(core.OtherConfig)
	if err != nil {
		return err
	}

	if err := yaml.UnmarshalStrict(otherYaml, out); err != nil {
		log.WithFields(log.Fields{
			"monitorType": core.Type,
			"otherConfig": spew.Sdump(core.OtherConfig),
			"error":       err,
		}).Error("Invalid monitor-specific configuration")
		return err
	}

	// Keys that didn't match any field of `out` end up back in the inline
	// OtherConfig map, which is how we detect config the monitor would
	// silently ignore.
	if leftover := out.MonitorConfigCore().OtherConfig; len(leftover) > 0 {
		keys := make([]string, 0, len(leftover))
		for k := range leftover {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return errors.Errorf("unknown config option(s) for monitor %s: %s",
			core.Type, strings.Join(keys, ", "))
	}

	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "could not set defaults on monitor-specific config")
	}

	*out.MonitorConfigCore() = *core
	// The custom fields have been decoded; keeping the raw map around would
	// make config hashes unstable.
	out.MonitorConfigCore().OtherConfig = nil
	return nil
}

// CallConfigure does some reflection magic to call the Configure method of a
// monitor instance with the monitor's own config type, which the generic
// framework code cannot know statically.
func CallConfigure(instance, conf interface{}) error {
	instanceVal := reflect.ValueOf(instance)

	method := instanceVal.MethodByName("Configure")
	if !method.IsValid() {
		return errors.Errorf("no Configure method found for type %s", instanceVal.Type())
	}

	if method.Type().NumIn() != 1 {
		return errors.Errorf("Configure method of type %s should take exactly one argument that matches "+
			"the config type of the monitor", instanceVal.Type())
	}

	confVal := reflect.ValueOf(conf)
	if method.Type().In(0) != confVal.Type() {
		return errors.Errorf("Configure method of type %s expects argument of type %s but got %s",
			instanceVal.Type(), method.Type().In(0), confVal.Type())
	}

	ret := method.Call([]reflect.Value{confVal})[0]
	if ret.IsNil() {
		return nil
	}
	return ret.Interface().(error)
}
