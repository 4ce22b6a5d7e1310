// Package writer contains the sample writer.  It consumes the samples
// gathered by all running monitors from a single buffered channel and emits
// them, in arrival order, through the agent's structured log output.
package writer

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/pollard/poll-agent/pkg/core/config"
	"github.com/pollard/poll-agent/pkg/samples"
	"github.com/pollard/poll-agent/pkg/utils"
)

// SampleWriter drains the sample channel that monitor outputs feed into.
// There is a single writer goroutine, so samples sent by any one monitor are
// emitted in the order they were gathered.
type SampleWriter struct {
	sampleChan chan *samples.Sample

	conf *config.WriterConfig

	samplesReceived atomic.Uint64
	samplesEmitted  atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc

	logger *logrus.Entry
}

// New creates a new SampleWriter.  It does nothing until Configure is
// called.
func New() *SampleWriter {
	return &SampleWriter{
		logger: logrus.WithField("component", "writer"),
	}
}

// SampleChannel returns the channel that monitor outputs should write
// samples to.  Only valid after Configure.
func (sw *SampleWriter) SampleChannel() chan<- *samples.Sample {
	return sw.sampleChan
}

// Configure sets up the writer's buffer and starts the drain loop along with
// a periodic throughput report.
func (sw *SampleWriter) Configure(conf *config.WriterConfig) {
	sw.conf = conf
	sw.sampleChan = make(chan *samples.Sample, conf.BufferSize)
	sw.ctx, sw.cancel = context.WithCancel(context.Background())

	go sw.listen()

	if conf.ReportIntervalSeconds > 0 {
		utils.RunOnInterval(sw.ctx, sw.reportThroughput,
			time.Duration(conf.ReportIntervalSeconds)*time.Second)
	}
}

func (sw *SampleWriter) listen() {
	for {
		select {
		case <-sw.ctx.Done():
			return
		case s := <-sw.sampleChan:
			sw.samplesReceived.Inc()
			sw.emit(s)
		}
	}
}

func (sw *SampleWriter) emit(s *samples.Sample) {
	sw.logger.WithFields(logrus.Fields{
		"metric":     s.Metric,
		"value":      s.Value.String(),
		"type":       s.Type.String(),
		"dimensions": formatDimensions(s.Dimensions),
		"timestamp":  s.Timestamp.UnixNano() / int64(time.Millisecond),
	}).Info("sample")

	sw.samplesEmitted.Inc()
}

func (sw *SampleWriter) reportThroughput() {
	sw.logger.WithFields(logrus.Fields{
		"samplesReceived": sw.samplesReceived.Load(),
		"samplesEmitted":  sw.samplesEmitted.Load(),
		"buffered":        len(sw.sampleChan),
	}).Info("Sample writer throughput")
}

// InternalMetrics returns the writer's counters for diagnostics.
func (sw *SampleWriter) InternalMetrics() map[string]uint64 {
	return map[string]uint64{
		"writer.samples_received": sw.samplesReceived.Load(),
		"writer.samples_emitted":  sw.samplesEmitted.Load(),
	}
}

// Shutdown stops the writer after draining whatever is currently buffered.
func (sw *SampleWriter) Shutdown() {
	for {
		select {
		case s := <-sw.sampleChan:
			sw.samplesReceived.Inc()
			sw.emit(s)
		default:
			if sw.cancel != nil {
				sw.cancel()
			}
			return
		}
	}
}

// Dimensions render with sorted keys so the emitted form is stable for a
// given sample.
func formatDimensions(dims map[string]string) string {
	if len(dims) == 0 {
		return ""
	}

	keys := make([]string, 0, len(dims))
	for k := range dims {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+dims[k])
	}
	return strings.Join(parts, ",")
}
