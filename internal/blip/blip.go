// Package blip implements the band-limited step synthesis engine the APU
// mixer uses to turn per-channel amplitude events into resampled PCM.
//
// No Go port of Blargg's blip_buf exists in the dependency corpus this
// repository was built from (see the root DESIGN.md), so the same minimal
// contract blip_buf exposes — add a delta at an integer input-clock time,
// end a frame, read back resampled output samples — is reimplemented here
// directly. Each step is reconstructed by splitting its energy between the
// two output samples nearest its true (fractional) position, weighted by
// distance; a sharp instantaneous jump becomes a one-sample ramp instead of
// landing entirely on a single output sample, which is the cheapest
// approximation to a band-limited edge that still keeps the whole engine
// small enough to read in one sitting.
package blip

// Buffer accumulates timestamped amplitude deltas on an input clock and
// resamples them to a fixed output sample rate. It is owned exclusively by
// the channel that writes to it, except while the mixer is draining it.
type Buffer struct {
	factor float64 // output samples per input clock

	deltas       []int32 // pending per-output-sample deltas, relative to the current frame start
	length       int     // number of valid entries in deltas (grows as AddDelta writes further out)
	frameSamples int     // samples finalized by the most recent EndFrame, still unread

	accum int32 // running integrated amplitude, carried across frames
}

// New creates a Buffer converting events on a clock running at clockRate Hz
// into samples at sampleRate Hz. maxSamples bounds the largest single frame
// the caller intends to request with EndFrame; the buffer grows on demand
// past it regardless, to tolerate late-arriving deltas near a frame edge.
func New(clockRate, sampleRate float64, maxSamples int) *Buffer {
	if maxSamples < 16 {
		maxSamples = 16
	}
	return &Buffer{
		factor: sampleRate / clockRate,
		deltas: make([]int32, maxSamples+2),
	}
}

// SetRates reconfigures the clock/output rate ratio without discarding
// buffered-but-unread samples.
func (b *Buffer) SetRates(clockRate, sampleRate float64) {
	b.factor = sampleRate / clockRate
}

func (b *Buffer) ensure(n int) {
	if n <= len(b.deltas) {
		return
	}
	grown := make([]int32, n*2)
	copy(grown, b.deltas)
	b.deltas = grown
}

// AddDelta registers an instantaneous amplitude change of delta occurring
// at input-clock time t, measured from the start of the current frame.
func (b *Buffer) AddDelta(t uint32, delta int32) {
	if delta == 0 {
		return
	}
	pos := float64(t) * b.factor
	i := int(pos)
	frac := pos - float64(i)

	b.ensure(i + 2)
	b.deltas[i] += int32(float64(delta) * (1 - frac))
	b.deltas[i+1] += int32(float64(delta) * frac)
	if end := i + 2; end > b.length {
		b.length = end
	}
}

// EndFrame closes the current frame at input-clock time t, making every
// output sample up to that point available to Read.
func (b *Buffer) EndFrame(t uint32) {
	pos := int(float64(t) * b.factor)
	b.ensure(pos)
	if pos > b.length {
		b.length = pos
	}
	b.frameSamples = pos
}

// SamplesAvail reports how many finished samples are waiting to be read.
func (b *Buffer) SamplesAvail() int {
	return b.frameSamples
}

// Read drains up to len(out) finished samples into out, integrating
// pending deltas into a running amplitude and clamping to int16 range. It
// returns the number of samples written, and shifts any remaining
// finalized-but-unread samples (and not-yet-finalized deltas) down to the
// front of the buffer for the next frame.
func (b *Buffer) Read(out []int16) int {
	n := b.frameSamples
	if n > len(out) {
		n = len(out)
	}

	acc := b.accum
	for i := 0; i < n; i++ {
		acc += b.deltas[i]
		out[i] = clampInt16(acc)
	}
	b.accum = acc

	remaining := copy(b.deltas, b.deltas[n:b.length])
	for i := remaining; i < len(b.deltas); i++ {
		b.deltas[i] = 0
	}
	b.length = remaining
	b.frameSamples -= n

	return n
}

func clampInt16(v int32) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}
