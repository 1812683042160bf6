package bounded

// Recorder receives channel activity for metrics.
// Implementations must be safe for concurrent use; Record* calls may be made
// while the channel's lock is held, so they must not call back into the channel.
type Recorder interface {
	RecordPutAttempt()
	RecordPut(size int)
	RecordTakeAttempt()
	RecordTake(n, size int)
}

// Option configures a Channel.
type Option func(*options)

type options struct {
	recorder Recorder
}

// WithRecorder reports put/take activity and the resulting size to r.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

type noopRecorder struct{}

func (noopRecorder) RecordPutAttempt() {}
func (noopRecorder) RecordPut(int) {}
func (noopRecorder) RecordTakeAttempt() {}
func (noopRecorder) RecordTake(int, int) {}
