package config

import (
	"github.com/mitchellh/hashstructure"
	log "github.com/sirupsen/logrus"

	"github.com/pollard/poll-agent/pkg/monitors/types"
)

// MonitorConfig is the core configuration common to all monitor instances.
// One instance of MonitorConfig configures exactly one monitor instance;
// monitoring two databases means two entries in the `monitors` config list
// and two fully independent instances.
type MonitorConfig struct {
	// The type of the monitor
	Type string `yaml:"type" json:"type"`
	// The interval (in seconds) at which the monitor's gather cycle runs.
	// If not set (or set to 0), the global agent intervalSeconds config
	// option is used instead.
	IntervalSeconds int `yaml:"intervalSeconds" json:"intervalSeconds"`
	// A set of extra dimensions (key:value pairs) to include on every sample
	// emitted by the monitor instance created from this configuration.
	ExtraDimensions map[string]string `yaml:"extraDimensions" json:"extraDimensions"`
	// OtherConfig is everything else that is custom to a particular monitor
	OtherConfig map[string]interface{} `yaml:",inline" json:"-"`

	// ValidationError holds a message concerning validation issues so that
	// diagnostics can report it.
	ValidationError string          `yaml:"-" json:"-" hash:"ignore"`
	MonitorID       types.MonitorID `yaml:"-" json:"-" hash:"ignore"`
}

// MonitorConfigCore provides a way of getting the MonitorConfig when embedded
// in a struct that is referenced through a more generic interface.
func (mc *MonitorConfig) MonitorConfigCore() *MonitorConfig {
	return mc
}

// ExtraConfig returns generic config as a map
func (mc *MonitorConfig) ExtraConfig() map[string]interface{} {
	return mc.OtherConfig
}

// Hash calculates a unique hash value for this config struct
func (mc *MonitorConfig) Hash() uint64 {
	hash, err := hashstructure.Hash(mc, nil)
	if err != nil {
		log.WithError(err).Error("Could not get hash of MonitorConfig struct")
		return 0
	}
	return hash
}

// MonitorCustomConfig represents monitor-specific configuration that doesn't
// appear in the MonitorConfig struct.
type MonitorCustomConfig interface {
	MonitorConfigCore() *MonitorConfig
}
