package apu

import "testing"

func TestNoiseChannel_PeriodTable(t *testing.T) {
	tests := []struct {
		divisorCode uint8
		clockShift  uint8
		wantPeriod  uint32
	}{
		{0, 0, 8},
		{1, 0, 32},
		{7, 0, 128},
		{0, 4, 128},
	}

	for _, tt := range tests {
		n := NewNoiseChannel()
		n.Write(0xFF22, (tt.clockShift<<4)|tt.divisorCode)
		if n.period != tt.wantPeriod {
			t.Errorf("divisor=%d shift=%d: period = %d, want %d", tt.divisorCode, tt.clockShift, n.period, tt.wantPeriod)
		}
	}
}

func TestNoiseChannel_ShiftWidthFollowsNarrowBit(t *testing.T) {
	n := NewNoiseChannel()

	n.Write(0xFF22, 0x08) // narrow (7-bit) mode
	if n.shiftWidth != 6 {
		t.Errorf("shiftWidth = %d, want 6 in narrow mode", n.shiftWidth)
	}

	n.Write(0xFF22, 0x00)
	if n.shiftWidth != 14 {
		t.Errorf("shiftWidth = %d, want 14 in wide mode", n.shiftWidth)
	}
}

func TestNoiseChannel_LengthTimerDisables(t *testing.T) {
	n := NewNoiseChannel()

	n.Write(0xFF20, 0x3F) // length = 64-63 = 1
	n.Write(0xFF21, 0xF0) // max volume
	n.Write(0xFF23, 0xC0) // trigger, length enabled

	if !n.On() {
		t.Fatal("channel should be on after trigger")
	}

	n.StepLength()
	if n.On() {
		t.Error("channel should report off once its length counter reaches zero")
	}
}

func TestNoiseChannel_VolumeEnvelope(t *testing.T) {
	tests := []struct {
		name           string
		initialVolume  uint8
		envelopeAdd    bool
		envelopePeriod uint8
		expectedVolume uint8
	}{
		{"increase from 0", 0, true, 1, 1},
		{"decrease from 15", 15, false, 1, 14},
		{"no change with period 0", 8, true, 0, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNoiseChannel()

			nr42 := tt.initialVolume << 4
			if tt.envelopeAdd {
				nr42 |= 0x08
			}
			nr42 |= tt.envelopePeriod
			n.Write(0xFF21, nr42)
			n.Write(0xFF23, 0x80)

			n.StepEnvelope()

			if n.envelope.volume != tt.expectedVolume {
				t.Errorf("volume: got %d, want %d", n.envelope.volume, tt.expectedVolume)
			}
		})
	}
}

func TestNoiseChannel_SilentWhenVolumeZero(t *testing.T) {
	n := NewNoiseChannel()
	n.Write(0xFF21, 0x00) // zero volume, no envelope
	n.Write(0xFF23, 0x80) // trigger

	buf := newTestBlip()
	n.Run(0, 1000, buf)
	buf.EndFrame(1000)

	out := make([]int16, buf.SamplesAvail())
	buf.Read(out)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %d, want 0 with envelope volume pinned at zero", i, v)
		}
	}
}

func TestNoiseChannel_TriggerResetsState(t *testing.T) {
	n := NewNoiseChannel()
	n.state = 0x1234

	n.Write(0xFF21, 0xF0)
	n.Write(0xFF23, 0x80)

	if !n.On() {
		t.Error("channel should be on after trigger")
	}
	if n.state != 0xFF {
		t.Errorf("state = 0x%04X, want 0xFF after trigger", n.state)
	}
}

func TestNoiseChannel_RunProducesNonzeroOutput(t *testing.T) {
	n := NewNoiseChannel()
	n.Write(0xFF22, 0x00) // divisor 8, shift 0 -> period 8
	n.Write(0xFF21, 0xF0) // max volume
	n.Write(0xFF23, 0x80) // trigger

	buf := newTestBlip()
	n.Run(0, 1000, buf)
	buf.EndFrame(1000)

	out := make([]int16, buf.SamplesAvail())
	n2 := buf.Read(out)
	if n2 == 0 {
		t.Fatal("expected some samples from a running noise channel")
	}

	sawNonzero := false
	for _, v := range out[:n2] {
		if v != 0 {
			sawNonzero = true
			break
		}
	}
	if !sawNonzero {
		t.Error("expected a triggered, full-volume noise channel to produce nonzero output")
	}
}
