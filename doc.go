// Package mic captures microphone audio through the platform recorder
// (arecord on Linux, rec on macOS, sox on Windows) and exposes it as a
// continuous byte stream with silence and speech notifications.
//
// The recorder runs as a subprocess whose stdout is piped into a
// SilenceDetector. The detector passes every byte through unchanged and
// raises edge-triggered notifications when the audio goes quiet or speech
// resumes. Lifecycle notifications are raised on the same stream, so a
// consumer subscribes to one object for both data and state.
//
// # Basic Usage
//
// Record to a file:
//
//	m := mic.NewMicrophone(mic.DefaultOptions())
//	stream := m.AudioStream()
//
//	stream.On(mic.EventProcessExit, func(mic.Notification) {
//	    log.Println("recorder exited")
//	})
//
//	if err := m.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	go io.Copy(file, stream)
//
//	time.Sleep(3 * time.Second)
//	m.Close()
//
// Stop on silence:
//
//	opts := mic.DefaultOptions()
//	opts.ExitOnSilence = 6 // consecutive silent chunks
//
//	m := mic.NewMicrophone(opts)
//	m.AudioStream().On(mic.EventSilence, func(mic.Notification) {
//	    m.Stop()
//	})
//
// # Silence Detection
//
// Chunks are read as 16-bit little-endian signed samples. A chunk is speech
// when any sample exceeds an absolute amplitude of 2000, silence otherwise.
// The stream counts consecutive silent chunks:
//   - EventSilence is raised once, when the count reaches ExitOnSilence
//   - EventSound is raised when speech arrives after the count went past it
//
// ExitOnSilence = 0 disables detection.
//
// # Lifecycle
//
// Idle -> Running (Start), Running -> Paused (Pause), Paused -> Running
// (Resume), Running/Paused -> Idle (Stop or recorder exit). Stop, Pause and
// Resume are no-ops while idle. A duplicate Start is ignored, or fails with
// ErrAlreadyStarted when Options.Strict is set.
//
// # Requirements
//
// The recorder must be installed and accessible in PATH:
//   - Linux: apt-get install alsa-utils
//   - macOS: brew install sox
//   - Windows: install SoX and add it to PATH
//
// Verify installation:
//
//	err := mic.CheckCommandInstalled("arecord")
package mic
