// Package sink defines the output contract the APU mixer drains mixed
// stereo audio into, along with a handful of concrete sinks.
package sink

import "errors"

// ErrChannelsMismatch is returned by a sink's Append* method when the
// supplied frame length doesn't match Channels().
var ErrChannelsMismatch = errors.New("sink: frame length does not match channel count")

// errUnsupportedFormat is returned by an Append method that doesn't match
// the sink's declared Format().
var errUnsupportedFormat = errors.New("sink: append method does not match sink format")

// Format identifies the sample encoding a Sink expects from Append calls.
// Exactly one Append method is ever used against a given sink: the one
// matching its Format().
type Format int

const (
	// FormatFloat32 carries samples in [-1.0, 1.0].
	FormatFloat32 Format = iota
	// FormatInt16 carries samples scaled to the full int16 range.
	FormatInt16
	// FormatUint16 carries samples scaled to the full uint16 range and
	// biased to be unsigned, matching formats that have no native signed
	// representation.
	FormatUint16
)

// Sink is an audio output endpoint. It may back a live device, a file
// writer, or an in-memory capture buffer; the mixer treats all of them
// identically.
type Sink interface {
	// SampleRate is the sink's native output rate in Hz.
	SampleRate() uint32
	// Period is the number of output samples the mixer should batch into
	// a single drain before handing them to this sink.
	Period() uint32
	// Channels is the number of interleaved channels each Append frame
	// must supply.
	Channels() int
	// LeftChannel and RightChannel give the index within an Append frame
	// that carries the left/right mix; a sink that is purely stereo
	// returns 0 and 1.
	LeftChannel() int
	RightChannel() int
	// Format selects which Append method the mixer will call.
	Format() Format

	AppendFloat32(frame []float32) error
	AppendInt16(frame []int16) error
	AppendUint16(frame []uint16) error
}
