// Package config holds the configuration model of the agent: the top-level
// config file structure, the core per-monitor configuration, and the helpers
// used to decode and validate monitor-specific config.
package config

import (
	"io/ioutil"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/pollard/poll-agent/pkg/utils"
)

// Config is the top-level config struct for the agent, populated from the
// yaml config file.
type Config struct {
	// The default sampling interval for all monitors that don't set their
	// own.
	IntervalSeconds int `yaml:"intervalSeconds" default:"10" validate:"gt=0"`
	// Configuration of the agent's own log output.
	Logging LogConfig `yaml:"logging" default:"{}"`
	// Configuration of the sample emission pipeline.
	Writer WriterConfig `yaml:"writer" default:"{}"`
	// The list of monitor instances to run.
	Monitors []MonitorConfig `yaml:"monitors" default:"[]"`
}

// WriterConfig configures the sample writer that serializes all monitor
// emissions into the agent's output stream.
type WriterConfig struct {
	// The capacity of the buffer between monitors and the emission
	// goroutine.  Samples arriving while the buffer is full are dropped and
	// counted rather than blocking monitor schedules.
	BufferSize int `yaml:"bufferSize" default:"1000" validate:"gt=0"`
	// How often (in seconds) to log a throughput report.  Set to 0 to
	// disable the report.
	ReportIntervalSeconds int `yaml:"reportIntervalSeconds" default:"60" validate:"gte=0"`
}

// LoadConfig reads and validates the agent config file at the given path.
func LoadConfig(path string) (*Config, error) {
	contents, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read config file %s", path)
	}
	return loadConfigFromContent(contents)
}

func loadConfigFromContent(fileContent []byte) (*Config, error) {
	config := &Config{}

	if err := defaults.Set(config); err != nil {
		panic("Config defaults are wrong types: " + err.Error())
	}

	if err := yaml.Unmarshal(fileContent, config); err != nil {
		return nil, err
	}

	return config.initialize()
}

func (c *Config) initialize() (*Config, error) {
	if err := ValidateStruct(c); err != nil {
		return nil, err
	}

	for i := range c.Monitors {
		c.Monitors[i].IntervalSeconds = utils.FirstNonZero(c.Monitors[i].IntervalSeconds, c.IntervalSeconds)
	}

	return c, nil
}
