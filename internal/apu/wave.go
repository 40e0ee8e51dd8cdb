package apu

import "github.com/gbtools/dmgapu/internal/blip"

// WaveChannel is the arbitrary-waveform channel (channel 3). Its DAC latch
// (NR30 bit 7) must be set for a trigger to actually start the channel,
// but clearing the DAC only stops the channel if it is already running.
type WaveChannel struct {
	enabled    bool
	dacEnabled bool

	length    uint16
	newLength uint16
	lengthOn  bool

	volumeShift uint8

	frequency uint16
	period    uint32
	waveIdx   uint8
	lastAmp   int32
	delay     uint32

	// waveram holds the 32 4-bit samples unpacked one per byte, the order
	// they are played back in.
	waveram [32]uint8
}

// NewWaveChannel creates a wave channel in its power-on state.
func NewWaveChannel() *WaveChannel {
	return &WaveChannel{period: 2048}
}

// On reports the live NR52 status bit for this channel.
func (w *WaveChannel) On() bool {
	return w.enabled && (!w.lengthOn || w.length != 0)
}

// Write handles any write in NR30-NR34's range.
func (w *WaveChannel) Write(addr uint16, value uint8) {
	switch addr {
	case 0xFF1A:
		if value&0x80 == 0x80 {
			w.dacEnabled = true
		} else {
			w.dacEnabled = false
			w.enabled = false
		}
	case 0xFF1B:
		w.newLength = 256 - uint16(value)
	case 0xFF1C:
		w.volumeShift = value >> 5
	case 0xFF1D:
		w.frequency = (w.frequency & 0xFF00) | uint16(value)
		w.calculatePeriod()
	case 0xFF1E:
		w.frequency = (w.frequency & 0x00FF) | (uint16(value&0x7) << 8)
		w.calculatePeriod()
		w.lengthOn = value&0x40 == 0x40

		if value&0x80 == 0x80 && w.dacEnabled {
			w.length = w.newLength
			w.enabled = true
			w.waveIdx = 0
		}
	}
}

func (w *WaveChannel) calculatePeriod() {
	if w.frequency > 2048 {
		w.period = 0
	} else {
		w.period = (2048 - uint32(w.frequency)) * 2
	}
}

// WriteWaveRAM handles a write to the packed wave RAM I/O range
// (0xFF30-0xFF3F), unpacking the byte into the two nibbles it addresses.
func (w *WaveChannel) WriteWaveRAM(addr uint16, value uint8) {
	i := (addr - 0xFF30) * 2
	w.waveram[i] = value >> 4
	w.waveram[i+1] = value & 0xF
}

// ReadWaveRAM reconstructs a packed wave RAM byte from its two nibbles.
func (w *WaveChannel) ReadWaveRAM(addr uint16) uint8 {
	i := (addr - 0xFF30) * 2
	return w.waveram[i]<<4 | w.waveram[i+1]
}

// Run emits band-limited deltas for [start,end) into buf.
func (w *WaveChannel) Run(start, end uint32, buf *blip.Buffer) {
	if !w.enabled || (w.length == 0 && w.lengthOn) || w.period == 0 {
		if w.lastAmp != 0 {
			buf.AddDelta(start, -w.lastAmp)
			w.lastAmp = 0
			w.delay = 0
		}
		return
	}

	t := start + w.delay
	for t < end {
		sample := w.waveram[w.waveIdx]
		var amp int32
		if w.volumeShift >= 1 && w.volumeShift <= 3 {
			amp = int32(sample) >> (w.volumeShift - 1)
		}

		if amp != w.lastAmp {
			buf.AddDelta(t, amp-w.lastAmp)
			w.lastAmp = amp
		}
		t += w.period
		w.waveIdx = (w.waveIdx + 1) % 32
	}
	w.delay = t - end
}

// StepLength clocks the 256 Hz length counter.
func (w *WaveChannel) StepLength() {
	if w.lengthOn && w.length > 0 {
		w.length--
	}
}
