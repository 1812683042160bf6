package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChannelRecorder reports the activity of one bounded channel.
// It satisfies bounded.Recorder.
type ChannelRecorder struct {
	putAttempts  prometheus.Counter
	puts         prometheus.Counter
	takeAttempts prometheus.Counter
	taken        prometheus.Counter
	size         prometheus.Gauge
}

// ChannelRecorder returns a recorder labelled with the channel name.
// On a nil *Metrics it returns a nil recorder whose methods do nothing.
func (m *Metrics) ChannelRecorder(channel string) *ChannelRecorder {
	if m == nil {
		return nil
	}
	return &ChannelRecorder{
		putAttempts:  m.channelPutAttempts.WithLabelValues(channel),
		puts:         m.channelPuts.WithLabelValues(channel),
		takeAttempts: m.channelTakeAttempts.WithLabelValues(channel),
		taken:        m.channelTakenItems.WithLabelValues(channel),
		size:         m.channelSize.WithLabelValues(channel),
	}
}

func (r *ChannelRecorder) RecordPutAttempt() {
	if r == nil {
		return
	}
	r.putAttempts.Inc()
}

func (r *ChannelRecorder) RecordPut(size int) {
	if r == nil {
		return
	}
	r.puts.Inc()
	r.size.Set(float64(size))
}

func (r *ChannelRecorder) RecordTakeAttempt() {
	if r == nil {
		return
	}
	r.takeAttempts.Inc()
}

func (r *ChannelRecorder) RecordTake(n, size int) {
	if r == nil {
		return
	}
	r.taken.Add(float64(n))
	r.size.Set(float64(size))
}
