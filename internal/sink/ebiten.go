package sink

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// Player is a live-playback Sink backed by ebiten's audio context (which
// in turn rides oto for the platform device), mirroring the pattern in
// the teacher's cmd/nostalgiza/audio.go: samples are queued as float32
// and converted to int16 only at the io.Reader boundary ebiten expects.
type Player struct {
	context *audio.Context
	player  *audio.Player

	mu     sync.Mutex
	pcm    []float32 // interleaved L,R
	period uint32
}

// NewPlayer opens a live playback sink at sampleRate Hz. period controls
// how many output samples the mixer batches into a single drain; it has
// no effect on playback latency, which ebiten/oto manage internally.
func NewPlayer(sampleRate uint32, period uint32) (*Player, error) {
	ctx := audio.NewContext(int(sampleRate))

	p := &Player{context: ctx, period: period}

	player, err := ctx.NewPlayer(&playerStream{owner: p})
	if err != nil {
		return nil, err
	}
	p.player = player
	return p, nil
}

// Start begins playback.
func (p *Player) Start() {
	p.player.Play()
}

// Stop pauses playback.
func (p *Player) Stop() {
	p.player.Pause()
}

func (p *Player) SampleRate() uint32 { return uint32(p.context.SampleRate()) }
func (p *Player) Period() uint32     { return p.period }
func (p *Player) Channels() int      { return 2 }
func (p *Player) LeftChannel() int   { return 0 }
func (p *Player) RightChannel() int  { return 1 }
func (p *Player) Format() Format     { return FormatFloat32 }

// AppendFloat32 queues one interleaved stereo frame for playback.
func (p *Player) AppendFloat32(frame []float32) error {
	if len(frame) != 2 {
		return ErrChannelsMismatch
	}
	p.mu.Lock()
	p.pcm = append(p.pcm, frame[0], frame[1])
	const maxQueued = 48000 * 2 // 1s of stereo samples at 48kHz
	if len(p.pcm) > maxQueued {
		p.pcm = p.pcm[len(p.pcm)-maxQueued:]
	}
	p.mu.Unlock()
	return nil
}

// AppendInt16 is not supported by this sink.
func (p *Player) AppendInt16(frame []int16) error {
	return errUnsupportedFormat
}

// AppendUint16 is not supported by this sink.
func (p *Player) AppendUint16(frame []uint16) error {
	return errUnsupportedFormat
}

// playerStream adapts Player's queued float32 PCM into the io.Reader
// shape ebiten's audio.Context.NewPlayer expects, converting to 16-bit
// samples at read time and returning silence once the queue runs dry
// rather than blocking.
type playerStream struct {
	owner *Player
}

func (r *playerStream) Read(buf []byte) (int, error) {
	r.owner.mu.Lock()
	defer r.owner.mu.Unlock()

	numSamples := len(buf) / 4 // 2 channels * 2 bytes
	avail := len(r.owner.pcm) / 2
	n := numSamples
	if n > avail {
		n = avail
	}

	for i := 0; i < n; i++ {
		left := int16(r.owner.pcm[i*2] * 32767.0)
		right := int16(r.owner.pcm[i*2+1] * 32767.0)
		buf[i*4] = byte(left)
		buf[i*4+1] = byte(left >> 8)
		buf[i*4+2] = byte(right)
		buf[i*4+3] = byte(right >> 8)
	}
	for i := n * 4; i < len(buf); i++ {
		buf[i] = 0
	}

	r.owner.pcm = r.owner.pcm[n*2:]
	return len(buf), nil
}
