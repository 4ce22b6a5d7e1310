package monitors

import (
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/pollard/poll-agent/pkg/monitors/types"
	"github.com/pollard/poll-agent/pkg/samples"
	"github.com/pollard/poll-agent/pkg/utils"
)

// How many drops accumulate between warning log lines.
const dropWarningInterval = 1000

// The default implementation of types.Output.  It attaches per-instance
// dimensions and forwards samples to the writer channel.  Sends never block:
// if the writer falls behind and its buffer fills, samples are dropped and
// counted so that one stuck emission sink cannot stall monitor schedules.
type monitorOutput struct {
	monitorType string
	monitorID   types.MonitorID
	sampleChan  chan<- *samples.Sample
	extraDims   map[string]string
	dropped     *atomic.Uint64
}

var _ types.Output = &monitorOutput{}

// Copy the output so that a different set of dimensions can be attached to
// it.  The dropped-sample counter stays shared with the original.
func (mo *monitorOutput) Copy() types.Output {
	o := *mo
	o.extraDims = utils.CloneStringMap(mo.extraDims)
	return &o
}

func (mo *monitorOutput) SendSamples(ss ...*samples.Sample) {
	now := time.Now()
	for _, s := range ss {
		if s.Timestamp.IsZero() {
			s.Timestamp = now
		}
		s.Dimensions = utils.MergeStringMaps(s.Dimensions, mo.extraDims)

		select {
		case mo.sampleChan <- s:
		default:
			if n := mo.dropped.Inc(); n%dropWarningInterval == 1 {
				log.WithFields(log.Fields{
					"monitorType": mo.monitorType,
					"monitorID":   mo.monitorID,
					"totalDropped": n,
				}).Warning("Sample buffer full, dropping samples")
			}
		}
	}
}

// AddExtraDimension can be called by monitors *before* samples are flowing
// to add an extra dimension value to all samples coming out of this output.
// This method is not thread-safe!
func (mo *monitorOutput) AddExtraDimension(key, value string) {
	mo.extraDims[key] = value
}

// RemoveExtraDimension will remove any dimension added to this output, either
// from the original configuration or from the AddExtraDimension method.
// This method is not thread-safe!
func (mo *monitorOutput) RemoveExtraDimension(key string) {
	delete(mo.extraDims, key)
}
