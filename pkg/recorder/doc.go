// ABOUTME: Recorder package for capture-to-file sessions
// ABOUTME: Regroups capture buffers into encoder frames and drives the recording lifecycle
// Package recorder records a capture source into an encoded file.
//
// A Recorder owns one background feed goroutine per active recording. The
// goroutine reads from a capture.Stream, regroups the irregular buffers into
// fixed-size frames and hands them to an encode.FrameWriter through a Session.
// Progress is reported once per second through a Listener.
//
// Example:
//
//	rec := recorder.New(recorder.Config{
//		Source:   capture.NewMalgo(capture.MalgoConfig{}),
//		Open:     encode.OpenOpus,
//		Listener: recorder.Callbacks{Progress: func(t string) { fmt.Println(t) }},
//	})
//	if err := rec.Start("take1.opus", 32000); err != nil {
//		return err
//	}
//	defer rec.Release()
//
// Only one recording is active per Recorder. Start while active and Stop
// while idle are no-ops.
package recorder
