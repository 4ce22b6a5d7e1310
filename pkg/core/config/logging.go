package config

import log "github.com/sirupsen/logrus"

// LogConfig configures the agent's own logging output.
type LogConfig struct {
	// Valid levels include `debug`, `info`, `warn`, `error`.  Note that
	// `debug` logging may leak sensitive configuration (e.g. passwords) to
	// the agent output.
	Level string `yaml:"level" default:"info"`
}

// LogrusLevel returns the configured level as a logrus level value, or nil if
// the configured string is not a recognized level.
func (lc *LogConfig) LogrusLevel() *log.Level {
	if lc.Level != "" {
		level, err := log.ParseLevel(lc.Level)
		if err != nil {
			log.WithFields(log.Fields{
				"level": lc.Level,
			}).Error("Invalid log level set, defaulting to 'info'")
			return nil
		}
		return &level
	}
	return nil
}
