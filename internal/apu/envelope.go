package apu

// VolumeEnvelope implements the linear volume ramp shared by channels 1, 2
// and 4 (NRx2/NRx4). It is clocked at 64 Hz by the frame sequencer and
// saturates at the ends of its [0,15] range instead of wrapping.
type VolumeEnvelope struct {
	period        uint8
	goesUp        bool
	delay         uint8
	initialVolume uint8
	volume        uint8
}

// Write handles the envelope-relevant bits of an NRx2/NRx4 write. addr
// identifies which register was written so the same type can be shared by
// channels 1, 2 and 4 without knowing their base addresses.
func (e *VolumeEnvelope) Write(addr uint16, value uint8) {
	switch addr {
	case 0xFF12, 0xFF17, 0xFF21:
		e.period = value & 0x7
		e.goesUp = value&0x8 == 0x8
		e.initialVolume = value >> 4
		e.volume = e.initialVolume
	case 0xFF14, 0xFF19, 0xFF23:
		if value&0x80 == 0x80 {
			e.delay = e.period
			e.volume = e.initialVolume
		}
	}
}

// Step advances the envelope by one 64 Hz tick.
func (e *VolumeEnvelope) Step() {
	switch {
	case e.delay > 1:
		e.delay--
	case e.delay == 1:
		e.delay = e.period
		if e.goesUp && e.volume < 15 {
			e.volume++
		} else if !e.goesUp && e.volume > 0 {
			e.volume--
		}
	}
}
