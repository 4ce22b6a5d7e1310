package monitors

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/pollard/poll-agent/pkg/core/config"
)

// Used to validate configuration that is common to all monitors up front,
// before the monitor instance ever sees it.  A failure here is fatal for the
// monitor: it never reaches its sampling state.
func validateConfig(registry *Registry, monConfig config.MonitorCustomConfig) error {
	conf := monConfig.MonitorConfigCore()

	if !registry.HasType(conf.Type) {
		return errors.New("monitor type not recognized")
	}

	if conf.IntervalSeconds <= 0 {
		return fmt.Errorf("invalid intervalSeconds provided: %d", conf.IntervalSeconds)
	}

	if err := config.ValidateStruct(monConfig); err != nil {
		return err
	}

	return config.ValidateCustomConfig(monConfig)
}
