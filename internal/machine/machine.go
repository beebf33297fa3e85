// Package machine wires the CPU, bus, VDP, DCSG, CRU, tape, and decrementer
// into a runnable Tomy Tutor and drives the frame loop (spec.md §5).
package machine

import (
	"time"

	"github.com/classilla/tutti/internal/bus"
	"github.com/classilla/tutti/internal/cpu"
	"github.com/classilla/tutti/internal/cru"
	"github.com/classilla/tutti/internal/dcsg"
	"github.com/classilla/tutti/internal/debug"
	"github.com/classilla/tutti/internal/decrementer"
	"github.com/classilla/tutti/internal/tape"
	"github.com/classilla/tutti/internal/vdp"
)

// Tomy Tutor timing constants (spec.md §5 "Frame loop"): a 10.7 MHz TMS9995
// clock, 60 Hz refresh, sliced into per-frame CPU-cycle budgets.
const (
	CPUClockHz        = 10738635
	FramesPerSecond   = 60
	CyclesPerFrame    = CPUClockHz / FramesPerSecond
	SampleRate        = 44100
	SamplesPerFrame   = SampleRate / FramesPerSecond
)

// Machine owns every emulated component and the frame-stepping loop.
type Machine struct {
	CPU         *cpu.CPU
	Bus         *bus.Bus
	VDP         *vdp.VDP
	DCSG        *dcsg.DCSG
	CRU         *cru.CRU
	Tape        *tape.Tape
	Decrementer *decrementer.Decrementer
	Logger      *debug.Logger
	Trip        *debug.Trip

	// Warp disables real-time pacing; RunFrame then returns as soon as the
	// cycle budget is consumed.
	Warp bool

	// PasteProbeHits counts how many times the CPU has reached the
	// keyboard-probe pacing point (PC 0x18B2). The out-of-scope paste
	// translator is the intended consumer of this counter (SPEC_FULL.md
	// §4 "Paste-pacing trap"); this core only maintains the count.
	PasteProbeHits uint64

	lastFrameTime time.Time

	AudioBuffer [SamplesPerFrame]float32
}

// New builds a fully-wired, freshly reset Machine. ROM images are not
// loaded yet; the caller installs them with internal/rom before the first
// RunFrame call.
func New() *Machine {
	logger := debug.NewLogger(10000)
	trip := &debug.Trip{}

	b := bus.New(logger)
	v := vdp.New(logger)
	d := dcsg.New(SampleRate, logger)
	c := cru.New(logger)
	t := tape.New(logger)
	dec := decrementer.New()

	b.VDP = v
	b.DCSG = d
	b.Tape = t
	b.Decrementer = dec

	cpuCore := cpu.New(b, c, trip, logger)
	cpuCore.TapeHook = t.Hook

	c.SetDecrementerMode = func(_ bool) {
		// The mode flag is accepted and discarded: the decrementer always
		// runs in timer mode, and Advance's behavior never changes.
	}
	c.SetDecrementerEnabled = dec.SetEnabled
	dec.RequestInterrupt = cpuCore.RequestInterrupt

	m := &Machine{
		CPU:         cpuCore,
		Bus:         b,
		VDP:         v,
		DCSG:        d,
		CRU:         c,
		Tape:        t,
		Decrementer: dec,
		Logger:      logger,
		Trip:        trip,
	}
	cpuCore.PasteProbeHook = func() { m.PasteProbeHits++ }
	return m
}

// Reset clears RAM, zeroes the VDP's control registers, reloads PC/WP from
// ROM, reseeds the decrementer latch, and clears the debugger trip. VRAM,
// the VDP address pointer, the DCSG, the keyboard matrix, and the tape deck
// (including a loaded cassette) keep their state.
func (m *Machine) Reset() {
	m.Bus.Reset()
	for i := range m.VDP.Regs {
		m.VDP.Regs[i] = 0
	}
	m.CPU.Reset()
	m.Decrementer.SetLatch(0xFFFF)
	m.Trip.Clear()
}

// SetKey updates one keyboard matrix key's held state, called by the host
// on every key event.
func (m *Machine) SetKey(id cru.KeyID, pressed bool) {
	m.CRU.SetKey(id, pressed)
}

// LoadCassette mounts cassette data for the next LOAD.
func (m *Machine) LoadCassette(data []byte) {
	m.Tape.LoadCassette(data)
}

// EjectCassette returns and clears whatever was captured by the last SAVE.
func (m *Machine) EjectCassette() []byte {
	return m.Tape.EjectSave()
}

// RunFrame executes one frame's worth of CPU cycles, ticks the decrementer
// and DCSG in step with it, renders the VDP framebuffer, and paces to real
// time unless Warp is set (spec.md §5). It stops early, without consuming
// the rest of the frame's cycle budget, if the debugger trip latches.
func (m *Machine) RunFrame(fb *vdp.Framebuffer) {
	var cyclesThisFrame uint64
	nextSampleAt := uint64(0)
	sampleIdx := 0
	samplePeriod := uint64(CyclesPerFrame) / uint64(SamplesPerFrame)

	for cyclesThisFrame < CyclesPerFrame {
		if m.Trip.Tripped() {
			break
		}
		cycles, err := m.CPU.ExecuteNext()
		if err != nil {
			break
		}
		m.Decrementer.Advance(cycles)
		cyclesThisFrame += uint64(cycles)

		for cyclesThisFrame >= nextSampleAt && sampleIdx < SamplesPerFrame {
			m.AudioBuffer[sampleIdx] = m.DCSG.Sample()
			sampleIdx++
			nextSampleAt += samplePeriod
		}
	}
	for ; sampleIdx < SamplesPerFrame; sampleIdx++ {
		m.AudioBuffer[sampleIdx] = m.DCSG.Sample()
	}

	m.VDP.EnterVBlank()
	if fb != nil {
		m.VDP.Render(fb)
	}

	m.paceFrame()
}

const frameDuration = time.Second / FramesPerSecond

func (m *Machine) paceFrame() {
	now := time.Now()
	if m.lastFrameTime.IsZero() {
		m.lastFrameTime = now
		return
	}
	if !m.Warp {
		elapsed := now.Sub(m.lastFrameTime)
		if elapsed < frameDuration {
			time.Sleep(frameDuration - elapsed)
		}
	}
	m.lastFrameTime = time.Now()
}
