package monitors

import (
	"context"
	"reflect"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/pollard/poll-agent/pkg/core/config"
	"github.com/pollard/poll-agent/pkg/monitors/types"
	"github.com/pollard/poll-agent/pkg/utils"
)

// Collectable monitors have their gather cycle driven by the agent on the
// configured interval.  Collect must be self-contained: an error return is
// treated as a failure of that cycle only and the monitor is retried on the
// next tick, indefinitely, until the agent shuts it down.
type Collectable interface {
	Collect(ctx context.Context) error
}

// Shutdownable monitors get their Shutdown method called when the agent
// stops them.  Monitors that hold no resources across cycles don't need it.
type Shutdownable interface {
	Shutdown()
}

// ActiveMonitor is a wrapper for an actual monitor instance that keeps some
// metadata about the monitor as well as a copy of its configuration.  It
// drives the instance's gather cycle and isolates its failures from other
// monitors' schedules.
type ActiveMonitor struct {
	instance   interface{}
	id         types.MonitorID
	configHash uint64
	output     types.Output
	config     config.MonitorCustomConfig
	// cancel function for the collection loop context
	cancel context.CancelFunc
	// Is the monitor marked for deletion?
	doomed bool

	collectCalls     atomic.Uint64
	collectFailures  atomic.Uint64
	intervalExceeded atomic.Uint64
}

// Validates the config, passes the right config type to the instance's
// Configure method, and starts the collection loop for Collectable
// instances.
func (am *ActiveMonitor) configureMonitor(registry *Registry, monConfig config.MonitorCustomConfig) error {
	if err := validateConfig(registry, monConfig); err != nil {
		return err
	}

	monConfig.MonitorConfigCore().MonitorID = am.id
	for k, v := range monConfig.MonitorConfigCore().ExtraDimensions {
		am.output.AddExtraDimension(k, v)
	}

	am.config = monConfig
	am.injectOutputIfNeeded()

	if err := config.CallConfigure(am.instance, monConfig); err != nil {
		return err
	}

	if mon, ok := am.instance.(Collectable); ok {
		var ctx context.Context
		ctx, am.cancel = context.WithCancel(context.Background())
		interval := time.Duration(am.config.MonitorConfigCore().IntervalSeconds) * time.Second

		logger := logrus.WithFields(logrus.Fields{
			"monitorType": monConfig.MonitorConfigCore().Type,
			"monitorID":   am.id,
		})

		utils.RunOnInterval(ctx, func() {
			start := time.Now()
			am.collectCalls.Inc()
			if err := mon.Collect(ctx); err != nil {
				am.collectFailures.Inc()
				logger.WithError(err).Error("Collecting data from monitor failed")
			}
			elapsed := time.Since(start)

			if elapsed > interval {
				am.intervalExceeded.Inc()
				logger.Warnf("Monitor took too long to run (%s) which will cause lagging samples", elapsed)
			}
		}, interval)
	}

	return nil
}

// Sets the Output field on the monitor instance if it has one.  Returns
// whether the field was actually set.
func (am *ActiveMonitor) injectOutputIfNeeded() bool {
	outputValue := utils.FindFieldWithEmbeddedStructs(am.instance, "Output",
		reflect.TypeOf((*types.Output)(nil)).Elem())

	if !outputValue.IsValid() {
		return false
	}

	outputValue.Set(reflect.ValueOf(am.output))

	return true
}

// Shutdown stops the collection loop and calls Shutdown on the monitor
// instance if it provides one.
func (am *ActiveMonitor) Shutdown() {
	if am.cancel != nil {
		am.cancel()
	}

	if sh, ok := am.instance.(Shutdownable); ok {
		sh.Shutdown()
	}
}
