// Package main provides the dmgapu CLI: a way to drive the APU core
// directly from a register-write script, either to a live speaker or to
// a rendered WAV file, without needing a full emulator front end.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/gbtools/dmgapu/internal/apu"
	"github.com/gbtools/dmgapu/internal/sink"
)

var (
	// ErrNoScript indicates the script file produced no events.
	ErrNoScript = errors.New("script contains no events")
)

// CLI is the dmgapu command-line interface.
type CLI struct {
	Play   PlayCmd   `cmd:"" help:"Replay a register-write script to the speakers."`
	Render RenderCmd `cmd:"" help:"Render a register-write script to a WAV file."`
}

// PlayCmd replays a script live.
type PlayCmd struct {
	Script     string `arg:"" type:"existingfile" help:"Path to a register-write script."`
	SampleRate uint32 `default:"48000" help:"Output sample rate in Hz."`
	Duration   int    `default:"5" help:"Total seconds of emulated time to run, counted from cycle 0."`
}

// Run executes the play command.
func (c *PlayCmd) Run() error {
	f, err := os.Open(c.Script)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()

	events, err := ParseScript(f)
	if err != nil {
		return fmt.Errorf("failed to parse script: %w", err)
	}
	if len(events) == 0 {
		return ErrNoScript
	}

	player, err := sink.NewPlayer(c.SampleRate, apu.OutputSampleCount)
	if err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	player.Start()

	a := apu.New(player)
	totalCycles := uint32(c.Duration) * apu.ClocksPerSecond
	Replay(a, events, totalCycles)

	time.Sleep(time.Duration(c.Duration) * time.Second)

	return nil
}

// RenderCmd renders a script to a WAV file.
type RenderCmd struct {
	Script     string `arg:"" type:"existingfile" help:"Path to a register-write script."`
	Out        string `arg:"" help:"Path to the WAV file to write."`
	SampleRate uint32 `default:"48000" help:"Output sample rate in Hz."`
	Duration   int    `default:"5" help:"Total seconds of emulated time to run, counted from cycle 0."`
}

// Run executes the render command.
func (c *RenderCmd) Run() error {
	f, err := os.Open(c.Script)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()

	events, err := ParseScript(f)
	if err != nil {
		return fmt.Errorf("failed to parse script: %w", err)
	}
	if len(events) == 0 {
		return ErrNoScript
	}

	out, err := os.Create(c.Out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	totalCycles := uint32(c.Duration) * apu.ClocksPerSecond
	numSamples := uint32(uint64(totalCycles) * uint64(c.SampleRate) / apu.ClocksPerSecond)

	wavSink := sink.NewWAVFile(out, c.SampleRate, apu.OutputSampleCount, numSamples)

	a := apu.New(wavSink)
	Replay(a, events, totalCycles)

	fmt.Printf("Rendered %s (%d events, %d samples) to %s\n", c.Script, len(events), numSamples, c.Out)
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("dmgapu"),
		kong.Description("A Game Boy (DMG) Audio Processing Unit core."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
