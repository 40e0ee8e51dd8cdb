package apu

import "github.com/gbtools/dmgapu/internal/blip"

// dutyPatterns are the four fixed 8-step waveforms selectable via NRx1 bits
// 7-6; values are the bipolar amplitude at each of the 8 phase steps.
var dutyPatterns = [4][8]int32{
	{-1, -1, -1, -1, 1, -1, -1, -1}, // 12.5%
	{-1, -1, -1, -1, 1, 1, -1, -1},  // 25%
	{-1, -1, 1, 1, 1, 1, -1, -1},    // 50%
	{1, 1, 1, 1, -1, -1, 1, 1},      // 75%
}

// PulseChannel is a square-wave channel (channels 1 and 2). Channel 1 adds
// a frequency sweep; channel 2 does not.
type PulseChannel struct {
	enabled bool

	// Sweep (channel 1 only)
	hasSweep       bool
	sweepFrequency uint16
	sweepDelay     uint8
	sweepPeriod    uint8
	sweepShift     uint8
	sweepByAdding  bool

	duty      uint8
	phase     uint8
	length    uint8
	newLength uint8
	lengthOn  bool

	frequency uint16
	period    uint32
	lastAmp   int32
	delay     uint32

	envelope VolumeEnvelope
}

// NewPulseChannel creates a square channel. withSweep selects channel-1
// behavior (NR10 honored) versus channel-2 (NR10 ignored).
func NewPulseChannel(withSweep bool) *PulseChannel {
	return &PulseChannel{
		hasSweep: withSweep,
		duty:     1,
		phase:    1,
		period:   2048,
	}
}

// On reports the live NR52 status bit for this channel.
func (p *PulseChannel) On() bool {
	return p.enabled && (!p.lengthOn || p.length != 0)
}

// Write handles any write in this channel's register range: NR10-NR14 for
// channel 1, NR20-NR24 for channel 2 (NR20/0xFF15 is unused and never
// dispatched here).
func (p *PulseChannel) Write(addr uint16, value uint8) {
	switch addr {
	case 0xFF10:
		if p.hasSweep {
			p.sweepPeriod = (value >> 4) & 0x7
			p.sweepShift = value & 0x7
			p.sweepByAdding = value&0x8 == 0x8
		}
	case 0xFF11, 0xFF16:
		p.duty = value >> 6
		p.newLength = 64 - (value & 0x3F)
	case 0xFF13, 0xFF18:
		p.frequency = (p.frequency & 0x0700) | uint16(value)
		p.length = p.newLength
		p.calculatePeriod()
	case 0xFF14, 0xFF19:
		p.frequency = (p.frequency & 0x00FF) | (uint16(value&0x07) << 8)
		p.calculatePeriod()
		p.lengthOn = value&0x40 == 0x40

		if value&0x80 == 0x80 {
			p.enabled = true
			p.length = p.newLength
			p.sweepFrequency = p.frequency
			if p.hasSweep && p.sweepPeriod > 0 && p.sweepShift > 0 {
				p.sweepDelay = 1
				p.stepSweep()
			}
		}
	}
	p.envelope.Write(addr, value)
}

func (p *PulseChannel) calculatePeriod() {
	if p.frequency > 2048 {
		p.period = 0
	} else {
		p.period = (2048 - uint32(p.frequency)) * 4
	}
}

// Run emits band-limited deltas for [start,end) into buf, assuming no
// volume or sweep adjustment happens within the interval.
func (p *PulseChannel) Run(start, end uint32, buf *blip.Buffer) {
	if !p.enabled || (p.length == 0 && p.lengthOn) || p.period == 0 {
		if p.lastAmp != 0 {
			buf.AddDelta(start, -p.lastAmp)
			p.lastAmp = 0
			p.delay = 0
		}
		return
	}

	t := start + p.delay
	pattern := dutyPatterns[p.duty]
	vol := int32(p.envelope.volume)

	for t < end {
		amp := vol * pattern[p.phase]
		if amp != p.lastAmp {
			buf.AddDelta(t, amp-p.lastAmp)
			p.lastAmp = amp
		}
		t += p.period
		p.phase = (p.phase + 1) % 8
	}
	p.delay = t - end
}

// StepLength clocks the 256 Hz length counter.
func (p *PulseChannel) StepLength() {
	if p.lengthOn && p.length > 0 {
		p.length--
	}
}

// StepEnvelope clocks the 64 Hz volume envelope.
func (p *PulseChannel) StepEnvelope() {
	p.envelope.Step()
}

// StepSweep clocks the 128 Hz frequency sweep; a no-op on channel 2 or
// when sweeping is disabled.
func (p *PulseChannel) StepSweep() {
	p.stepSweep()
}

func (p *PulseChannel) stepSweep() {
	if !p.hasSweep || p.sweepPeriod == 0 {
		return
	}

	if p.sweepDelay > 1 {
		p.sweepDelay--
		return
	}

	p.sweepDelay = p.sweepPeriod
	p.frequency = p.sweepFrequency
	p.calculatePeriod()

	offset := p.sweepFrequency >> p.sweepShift
	switch {
	case p.sweepByAdding && p.sweepFrequency+offset >= 2048:
		p.sweepDelay = 0
		p.sweepFrequency = 2048
	case p.sweepByAdding:
		p.sweepFrequency += offset
	case p.sweepFrequency <= offset:
		p.sweepFrequency = 0
	default:
		p.sweepFrequency -= offset
	}
}
