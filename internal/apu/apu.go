// Package apu implements the Game Boy Audio Processing Unit.
//
// The APU generates sound through 4 independent channels mixed into
// stereo output:
//   - Channel 1: Pulse wave with frequency sweep
//   - Channel 2: Pulse wave
//   - Channel 3: Programmable wave pattern
//   - Channel 4: Noise
//
// Unlike a sample-stepped synthesizer, each channel is driven by
// Run(start, end) over a shared input-clock timeline and emits amplitude
// deltas into its own band-limited buffer (internal/blip); the APU itself
// only decides where those timeline boundaries fall — at multiples of the
// frame sequencer's 256 Hz tick, and whenever enough clocks have elapsed
// to flush a batch of output samples to the configured sink.
package apu

import (
	"github.com/gbtools/dmgapu/internal/blip"
	"github.com/gbtools/dmgapu/internal/sink"
)

const (
	// ClocksPerSecond is the Game Boy's fixed CPU/input clock rate.
	ClocksPerSecond = 1 << 22
	// OutputSampleCount bounds how many output samples accumulate
	// between flushes to the sink.
	OutputSampleCount = 2000
)

// APU is the Game Boy Audio Processing Unit.
type APU struct {
	on bool

	// registerdata mirrors the last value written to each readable
	// register in 0xFF10-0xFF26, independent of channel-internal state;
	// several registers have write-only bits that read back as whatever
	// was last latched here.
	registerdata [0x17]uint8

	time        uint32
	prevTime    uint32
	nextTime    uint32
	timeDivider uint8

	outputPeriod uint32
	sinkPeriod   uint32

	channel1 *PulseChannel
	channel2 *PulseChannel
	channel3 *WaveChannel
	channel4 *NoiseChannel

	blip1, blip2, blip3, blip4 *blip.Buffer

	volumeLeft  uint8
	volumeRight uint8

	sink sink.Sink
}

// New creates an APU that mixes and flushes output to s.
func New(s sink.Sink) *APU {
	rate := s.SampleRate()
	outputPeriod := uint32(uint64(OutputSampleCount) * uint64(ClocksPerSecond) / uint64(rate))
	sinkPeriod := uint32(uint64(s.Period()) * uint64(ClocksPerSecond) / uint64(rate))
	maxSamples := OutputSampleCount + 64

	return &APU{
		nextTime:     ClocksPerSecond / 256,
		outputPeriod: outputPeriod,
		sinkPeriod:   sinkPeriod,
		channel1:     NewPulseChannel(true),
		channel2:     NewPulseChannel(false),
		channel3:     NewWaveChannel(),
		channel4:     NewNoiseChannel(),
		blip1:        blip.New(ClocksPerSecond, float64(rate), maxSamples),
		blip2:        blip.New(ClocksPerSecond, float64(rate), maxSamples),
		blip3:        blip.New(ClocksPerSecond, float64(rate), maxSamples),
		blip4:        blip.New(ClocksPerSecond, float64(rate), maxSamples),
		volumeLeft:   7,
		volumeRight:  7,
		sink:         s,
	}
}

// Read reads an APU register. Reading is unaffected by the master enable
// bit, matching hardware: the bus always returns the last latched value.
func (a *APU) Read(addr uint16) uint8 {
	a.run()

	switch {
	case addr >= 0xFF10 && addr <= 0xFF25:
		return a.registerdata[addr-0xFF10]
	case addr == 0xFF26:
		v := a.registerdata[addr-0xFF10] & 0xF0
		if a.channel1.On() {
			v |= 0x01
		}
		if a.channel2.On() {
			v |= 0x02
		}
		if a.channel3.On() {
			v |= 0x04
		}
		if a.channel4.On() {
			v |= 0x08
		}
		return v
	case addr >= 0xFF30 && addr <= 0xFF3F:
		return a.channel3.ReadWaveRAM(addr)
	default:
		return 0xFF
	}
}

// Write writes an APU register. Every register except NR52 itself is
// write-protected while the master enable bit is off.
func (a *APU) Write(addr uint16, value uint8) {
	if addr != 0xFF26 && !a.on {
		return
	}
	a.run()

	if addr >= 0xFF10 && addr <= 0xFF26 {
		a.registerdata[addr-0xFF10] = value
	}

	switch {
	case addr >= 0xFF10 && addr <= 0xFF14:
		a.channel1.Write(addr, value)
	case addr >= 0xFF16 && addr <= 0xFF19:
		a.channel2.Write(addr, value)
	case addr >= 0xFF1A && addr <= 0xFF1E:
		a.channel3.Write(addr, value)
	case addr >= 0xFF20 && addr <= 0xFF23:
		a.channel4.Write(addr, value)
	case addr == 0xFF24:
		a.volumeLeft = value & 0x7
		a.volumeRight = (value >> 4) & 0x7
	case addr == 0xFF26:
		a.on = value&0x80 == 0x80
	case addr >= 0xFF30 && addr <= 0xFF3F:
		a.channel3.WriteWaveRAM(addr, value)
	}
}

// Advance runs the APU forward by cycles input clocks, flushing mixed
// output to the sink once both the mixer's own output period and the
// sink's requested batch period have elapsed. A flush therefore waits for
// the larger of the two: a sink that asks for smaller batches than the
// mixer's own period still receives batches of the mixer's size. The frame
// sequencer is only brought up to date by a flush, Read or Write.
func (a *APU) Advance(cycles uint32) {
	if !a.on {
		return
	}

	a.time += cycles
	if a.time >= a.outputPeriod && a.time >= a.sinkPeriod {
		a.flush()
	}
}

func (a *APU) flush() {
	a.run()

	a.blip1.EndFrame(a.time)
	a.blip2.EndFrame(a.time)
	a.blip3.EndFrame(a.time)
	a.blip4.EndFrame(a.time)

	a.nextTime -= a.time
	a.time = 0
	a.prevTime = 0

	a.mix()
}

// run steps every channel and frame-sequencer subsystem up through the
// APU's current time, in 256 Hz slices.
func (a *APU) run() {
	for a.nextTime <= a.time {
		a.channel1.Run(a.prevTime, a.nextTime, a.blip1)
		a.channel2.Run(a.prevTime, a.nextTime, a.blip2)
		a.channel3.Run(a.prevTime, a.nextTime, a.blip3)
		a.channel4.Run(a.prevTime, a.nextTime, a.blip4)

		a.channel1.StepLength()
		a.channel2.StepLength()
		a.channel3.StepLength()
		a.channel4.StepLength()

		switch {
		case a.timeDivider == 0:
			a.channel1.StepEnvelope()
			a.channel2.StepEnvelope()
			a.channel4.StepEnvelope()
		case a.timeDivider&1 == 1:
			a.channel1.StepSweep()
		}

		a.timeDivider = (a.timeDivider + 1) % 4
		a.prevTime = a.nextTime
		a.nextTime += ClocksPerSecond / 256
	}

	if a.prevTime != a.time {
		a.channel1.Run(a.prevTime, a.time, a.blip1)
		a.channel2.Run(a.prevTime, a.time, a.blip2)
		a.channel3.Run(a.prevTime, a.time, a.blip3)
		a.channel4.Run(a.prevTime, a.time, a.blip4)
		a.prevTime = a.time
	}
}

// mix drains every channel's band-limited buffer, applies NR51 panning
// and NR50 master volume, and hands the result to the sink.
func (a *APU) mix() {
	sampleCount := a.blip1.SamplesAvail()
	panning := a.registerdata[0x15]

	leftVol := float64(a.volumeLeft) / 7.0 * (1.0 / 15.0) * 0.25
	rightVol := float64(a.volumeRight) / 7.0 * (1.0 / 15.0) * 0.25

	const batchSize = 2048
	buf1 := make([]int16, batchSize)
	buf2 := make([]int16, batchSize)
	buf3 := make([]int16, batchSize)
	buf4 := make([]int16, batchSize)

	outputted := 0
	for outputted < sampleCount {
		count1 := a.blip1.Read(buf1)
		count2 := a.blip2.Read(buf2)
		count3 := a.blip3.Read(buf3)
		count4 := a.blip4.Read(buf4)

		for i := 0; i < count1; i++ {
			var left, right float64

			if panning&0x01 == 0x01 {
				left += float64(buf1[i]) * leftVol
			}
			if panning&0x10 == 0x10 {
				right += float64(buf1[i]) * rightVol
			}
			if i < count2 {
				if panning&0x02 == 0x02 {
					left += float64(buf2[i]) * leftVol
				}
				if panning&0x20 == 0x20 {
					right += float64(buf2[i]) * rightVol
				}
			}
			if i < count3 {
				if panning&0x04 == 0x04 {
					left += float64(buf3[i]) * leftVol
				}
				if panning&0x40 == 0x40 {
					right += float64(buf3[i]) * rightVol
				}
			}
			if i < count4 {
				if panning&0x08 == 0x08 {
					left += float64(buf4[i]) * leftVol
				}
				if panning&0x80 == 0x80 {
					right += float64(buf4[i]) * rightVol
				}
			}

			a.emit(left, right)
		}

		outputted += count1
	}
}

// emit lays left and right into the sink's declared channel layout,
// leaving every lane that is neither the front-left nor front-right
// channel silent, then hands the frame to whichever Append* method
// matches the sink's native format.
func (a *APU) emit(left, right float64) {
	n := a.sink.Channels()
	li, ri := a.sink.LeftChannel(), a.sink.RightChannel()

	switch a.sink.Format() {
	case sink.FormatFloat32:
		frame := make([]float32, n)
		frame[li] = clampFloat(left)
		frame[ri] = clampFloat(right)
		_ = a.sink.AppendFloat32(frame)
	case sink.FormatInt16:
		frame := make([]int16, n)
		frame[li] = toInt16(left)
		frame[ri] = toInt16(right)
		_ = a.sink.AppendInt16(frame)
	case sink.FormatUint16:
		frame := make([]uint16, n)
		for i := range frame {
			frame[i] = 32768 // unsigned PCM silence sits at the midpoint, not 0
		}
		frame[li] = toUint16(left)
		frame[ri] = toUint16(right)
		_ = a.sink.AppendUint16(frame)
	}
}

func clampFloat(v float64) float32 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return float32(v)
	}
}

func toInt16(v float64) int16 {
	scaled := clampFloat(v) * 32767.0
	return int16(scaled)
}

func toUint16(v float64) uint16 {
	scaled := float64(clampFloat(v))*32767.0 + 32768.0
	return uint16(scaled)
}

// Reset returns the APU to its power-on state: master audio disabled, all
// registers and channel state cleared.
func (a *APU) Reset() {
	a.on = false
	a.registerdata = [0x17]uint8{}
	a.time = 0
	a.prevTime = 0
	a.timeDivider = 0
	a.nextTime = ClocksPerSecond / 256
	a.volumeLeft = 7
	a.volumeRight = 7
	a.channel1 = NewPulseChannel(true)
	a.channel2 = NewPulseChannel(false)
	a.channel3 = NewWaveChannel()
	a.channel4 = NewNoiseChannel()
}
