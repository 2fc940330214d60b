// ABOUTME: Recorder event listener
// ABOUTME: Callback interface plus no-op and func-field implementations
package recorder

// Listener receives recording lifecycle events.
//
// Methods are called synchronously from the recorder's goroutines and must
// not call Start or Stop on the same Recorder.
type Listener interface {
	// OnStarted fires once when a recording becomes active
	OnStarted()

	// OnFailed fires on any failure. It carries no payload; use Recorder.LastError
	OnFailed()

	// OnProgress fires about once per second with the elapsed time as HH:MM:SS
	OnProgress(elapsed string)

	// OnFinished fires once per recording with the output file's base name
	OnFinished(name string)
}

// NopListener ignores every event. Embed it to override a subset.
type NopListener struct{}

func (NopListener) OnStarted()        {}
func (NopListener) OnFailed()         {}
func (NopListener) OnProgress(string) {}
func (NopListener) OnFinished(string) {}

// Callbacks adapts optional funcs to a Listener; nil fields are skipped
type Callbacks struct {
	Started  func()
	Failed   func()
	Progress func(elapsed string)
	Finished func(name string)
}

func (c Callbacks) OnStarted() {
	if c.Started != nil {
		c.Started()
	}
}

func (c Callbacks) OnFailed() {
	if c.Failed != nil {
		c.Failed()
	}
}

func (c Callbacks) OnProgress(elapsed string) {
	if c.Progress != nil {
		c.Progress(elapsed)
	}
}

func (c Callbacks) OnFinished(name string) {
	if c.Finished != nil {
		c.Finished(name)
	}
}
