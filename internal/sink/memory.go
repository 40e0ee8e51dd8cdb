package sink

// Memory is an in-process Sink that captures every mixed frame, for use in
// tests that need to inspect exactly what the mixer produced.
type Memory struct {
	Rate    uint32
	Per     uint32
	Fmt     Format
	Floats  [][]float32
	Int16s  [][]int16
	Uint16s [][]uint16
}

// NewMemory creates a capture sink declaring the given rate, batch period
// and sample format.
func NewMemory(sampleRate, period uint32, format Format) *Memory {
	return &Memory{Rate: sampleRate, Per: period, Fmt: format}
}

func (m *Memory) SampleRate() uint32 { return m.Rate }
func (m *Memory) Period() uint32     { return m.Per }
func (m *Memory) Channels() int      { return 2 }
func (m *Memory) LeftChannel() int   { return 0 }
func (m *Memory) RightChannel() int  { return 1 }
func (m *Memory) Format() Format     { return m.Fmt }

func (m *Memory) AppendFloat32(frame []float32) error {
	if len(frame) != 2 {
		return ErrChannelsMismatch
	}
	cp := make([]float32, 2)
	copy(cp, frame)
	m.Floats = append(m.Floats, cp)
	return nil
}

func (m *Memory) AppendInt16(frame []int16) error {
	if len(frame) != 2 {
		return ErrChannelsMismatch
	}
	cp := make([]int16, 2)
	copy(cp, frame)
	m.Int16s = append(m.Int16s, cp)
	return nil
}

func (m *Memory) AppendUint16(frame []uint16) error {
	if len(frame) != 2 {
		return ErrChannelsMismatch
	}
	cp := make([]uint16, 2)
	copy(cp, frame)
	m.Uint16s = append(m.Uint16s, cp)
	return nil
}
