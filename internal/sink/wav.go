package sink

import (
	"io"

	"github.com/youpy/go-wav"
)

// WAVFile is a Sink that renders mixed audio to a 16-bit PCM WAV stream.
// numSamples bounds the RIFF header's declared data size; go-wav needs it
// up front rather than patching the header on Close.
type WAVFile struct {
	writer     *wav.Writer
	sampleRate uint32
	period     uint32
}

// NewWAVFile creates a WAV sink writing to w. numSamples is the total
// number of stereo frames the caller intends to write.
func NewWAVFile(w io.Writer, sampleRate uint32, period uint32, numSamples uint32) *WAVFile {
	return &WAVFile{
		writer:     wav.NewWriter(w, uint32(numSamples), 2, uint32(sampleRate), 16),
		sampleRate: sampleRate,
		period:     period,
	}
}

func (f *WAVFile) SampleRate() uint32 { return f.sampleRate }
func (f *WAVFile) Period() uint32     { return f.period }
func (f *WAVFile) Channels() int      { return 2 }
func (f *WAVFile) LeftChannel() int   { return 0 }
func (f *WAVFile) RightChannel() int  { return 1 }
func (f *WAVFile) Format() Format     { return FormatInt16 }

// AppendFloat32 is not supported by this sink.
func (f *WAVFile) AppendFloat32(frame []float32) error {
	return errUnsupportedFormat
}

// AppendInt16 writes one interleaved stereo frame.
func (f *WAVFile) AppendInt16(frame []int16) error {
	if len(frame) != 2 {
		return ErrChannelsMismatch
	}
	sample := wav.Sample{}
	sample.Values[0] = int(frame[0])
	sample.Values[1] = int(frame[1])
	return f.writer.WriteSamples([]wav.Sample{sample})
}

// AppendUint16 is not supported by this sink.
func (f *WAVFile) AppendUint16(frame []uint16) error {
	return errUnsupportedFormat
}
