// Package dcsg implements the SN76489AN Digital Complex Sound Generator:
// three programmable tone channels and one noise channel, driven by the
// chip's single-byte latch/data write protocol (spec.md §4.8).
package dcsg

import "github.com/classilla/tutti/internal/debug"

// ClockHz is the DCSG's input clock. spec.md's own worked frequency example
// is built from ~1,789,772 Hz; original_source/tutorem/SN76489AN.c instead
// hardcodes 3,579,545 Hz (the NTSC colorburst rate undivided). The testable
// worked example in spec.md wins over the source's literal.
const ClockHz = 1789772

// volumeTable holds the chip's sixteen 2 dB-step attenuation levels,
// normalized to [0.0, 1.0]; index 15 is silence.
var volumeTable = func() [16]float32 {
	var t [16]float32
	level := float32(1.0)
	for i := 0; i < 15; i++ {
		t[i] = level
		level *= 0.7943282 // 10^(-2/20), one 2 dB step
	}
	t[15] = 0
	return t
}()

const (
	toneChannels = 3
	noiseChannel = 3

	noiseShiftN512  = 0
	noiseShiftN1024 = 1
	noiseShiftN2048 = 2
	noiseShiftTone2 = 3
)

type toneState struct {
	divisor  uint16 // 10-bit frequency divisor
	counter  int32
	output   bool
	attenIdx uint8
}

type noiseState struct {
	control  uint8 // FB bit (bit2) + shift rate (bits1-0)
	counter  int32
	lfsr     uint16
	output   bool
	attenIdx uint8
}

// DCSG is the sound chip. It implements bus.DCSGPortWriter.
type DCSG struct {
	tones [toneChannels]toneState
	noise noiseState

	latchedChannel int  // 0-3
	latchedIsVol   bool // true if the latched register is a volume register

	// prescaleFraction carries clock ticks not yet consumed by the chip's
	// fixed divide-by-16 input prescaler across Sample calls (spec.md
	// §4.8's /32 = /16 prescaler * /2 toggle-per-half-period figure;
	// original_source/tutorem/SN76489AN.c derives tone frequency as
	// 3579545/(32*freq[chan])).
	prescaleFraction uint32

	SampleRate uint32
	Log        *debug.Logger
}

// New creates a DCSG with all channels silent and the noise LFSR seeded to
// its reset value (all channels start fully attenuated, like real hardware
// after power-on).
func New(sampleRate uint32, log *debug.Logger) *DCSG {
	d := &DCSG{SampleRate: sampleRate, Log: log}
	for i := range d.tones {
		d.tones[i].attenIdx = 15
	}
	d.noise.attenIdx = 15
	d.noise.lfsr = 1 << 14
	return d
}

// Write implements bus.DCSGPortWriter: the single-byte latch/data protocol.
// A byte with bit 7 set latches a new register (channel in bits 6-5, type in
// bit 4, 4 data bits in bits 3-0); a byte with bit 7 clear supplies the
// upper 6 bits of a previously latched tone divisor.
func (d *DCSG) Write(b byte) {
	if b&0x80 != 0 {
		d.latchedChannel = int((b >> 5) & 0x03)
		d.latchedIsVol = b&0x10 != 0
		data := b & 0x0F
		d.applyLatch(data)
		return
	}

	// Data byte: only meaningful for a latched tone-frequency register.
	if d.latchedIsVol {
		if d.Log != nil {
			d.Log.LogDCSG(debug.LogLevelTrace, "DCSG data byte with no pending tone register ignored")
		}
		return
	}
	if d.latchedChannel == noiseChannel {
		return // noise control register is 3 bits wide, no data-byte follow-up
	}
	t := &d.tones[d.latchedChannel]
	t.divisor = (t.divisor & 0x000F) | (uint16(b&0x3F) << 4)
}

// applyLatch stores a freshly latched register's low nibble (or, for a
// volume register, its full 4-bit attenuation).
func (d *DCSG) applyLatch(data byte) {
	if d.latchedIsVol {
		if d.latchedChannel == noiseChannel {
			d.noise.attenIdx = data
		} else {
			d.tones[d.latchedChannel].attenIdx = data
		}
		return
	}
	if d.latchedChannel == noiseChannel {
		d.noise.control = data & 0x07
		d.noise.lfsr = 1 << 14
		return
	}
	t := &d.tones[d.latchedChannel]
	t.divisor = (t.divisor & 0x03F0) | uint16(data)
}

// clocksPerSampleFixed is how many DCSG clock ticks elapse between two
// consecutive audio samples, fixed-point with 16 fractional bits to avoid
// sample-rate drift (grounded on the teacher's fixed-point phase
// accumulator in internal/apu/fixed_point.go).
func (d *DCSG) clocksPerSampleFixed() uint64 {
	if d.SampleRate == 0 {
		return 0
	}
	return (uint64(ClockHz) << 16) / uint64(d.SampleRate)
}

// inputPrescale is the chip's fixed input clock divider: the tone and noise
// counters are driven from ClockHz/16, not the raw input clock
// (original_source/tutorem/SN76489AN.c's "3579545/(32)(register value)"
// factors into this fixed /16 prescaler times the /2 toggle-per-half-period
// already in stepTone).
const inputPrescale = 16

// Sample advances every channel by one audio sample's worth of DCSG clocks
// and returns the mixed output in [-1.0, 1.0], combined with the chip's
// pairwise soft-clipping mixer rather than a linear average.
func (d *DCSG) Sample() float32 {
	fixed := d.clocksPerSampleFixed()
	rawClocks := uint32(fixed >> 16)
	if rawClocks < 1 {
		rawClocks = 1
	}

	d.prescaleFraction += rawClocks
	clocks := int32(d.prescaleFraction / inputPrescale)
	d.prescaleFraction %= inputPrescale
	if clocks < 1 {
		clocks = 1
	}

	tone0 := d.stepTone(&d.tones[0], clocks)
	tone1 := d.stepTone(&d.tones[1], clocks)
	tone2 := d.stepTone(&d.tones[2], clocks)
	noise := d.stepNoise(clocks)

	mix := softClipMix(tone0, tone1)
	mix = softClipMix(mix, tone2)
	mix = softClipMix(mix, noise)
	return mix
}

// softClipMix combines two channel outputs the way
// original_source/tutorem/SN76489AN.c's mixer() does: bias both signals
// into [0, 2), multiply when both are in the lower half (quiet channels
// barely affect each other), otherwise blend additively and clamp, then
// remove the bias. Ported from that function's 16-bit PCM arithmetic to
// this package's normalized [-1, 1] samples (factor=1 stands in for its
// FACTOR=32768 bias, ampMax=2 for its AMPMAX=65535).
func softClipMix(a, b float32) float32 {
	const factor = 1.0
	const ampMax = 2 * factor

	ab := a + factor
	bb := b + factor

	var m float32
	if ab < factor && bb < factor {
		m = (ab * bb) / factor
	} else {
		m = 2*(ab+bb) - (ab*bb)/factor - ampMax
	}
	if m > ampMax {
		m = ampMax
	}
	return m - factor
}

func (d *DCSG) stepTone(t *toneState, clocks int32) float32 {
	period := int32(t.divisor)
	if period == 0 {
		period = 1
	}
	t.counter -= clocks
	for t.counter <= 0 {
		t.counter += period
		t.output = !t.output
	}
	if !t.output {
		return -volumeTable[t.attenIdx]
	}
	return volumeTable[t.attenIdx]
}

func (d *DCSG) stepNoise(clocks int32) float32 {
	n := &d.noise
	period := d.noiseShiftPeriod()
	n.counter -= clocks
	for n.counter <= 0 {
		n.counter += period
		d.clockLFSR()
	}
	if !n.output {
		return -volumeTable[n.attenIdx]
	}
	return volumeTable[n.attenIdx]
}

// noiseShiftPeriod returns the noise channel's tone-divisor-equivalent
// period: one of three fixed rates, or channel 2's own tone divisor when
// the control register selects NoiseShiftTone2.
func (d *DCSG) noiseShiftPeriod() int32 {
	switch d.noise.control & 0x03 {
	case noiseShiftN512:
		return 512
	case noiseShiftN1024:
		return 1024
	case noiseShiftN2048:
		return 2048
	default:
		p := int32(d.tones[2].divisor)
		if p == 0 {
			return 1
		}
		return p
	}
}

// State is the chip's complete save-state snapshot (spec.md §6).
type State struct {
	ToneDivisor [toneChannels]uint16
	ToneCounter [toneChannels]int32
	ToneOutput  [toneChannels]bool
	ToneAtten   [toneChannels]uint8

	NoiseControl uint8
	NoiseCounter int32
	NoiseLFSR    uint16
	NoiseOutput  bool
	NoiseAtten   uint8

	LatchedChannel int
	LatchedIsVol   bool

	PrescaleFraction uint32
}

// Snapshot captures the full chip state for save-state serialization.
func (d *DCSG) Snapshot() State {
	var s State
	for i, t := range d.tones {
		s.ToneDivisor[i] = t.divisor
		s.ToneCounter[i] = t.counter
		s.ToneOutput[i] = t.output
		s.ToneAtten[i] = t.attenIdx
	}
	s.NoiseControl = d.noise.control
	s.NoiseCounter = d.noise.counter
	s.NoiseLFSR = d.noise.lfsr
	s.NoiseOutput = d.noise.output
	s.NoiseAtten = d.noise.attenIdx
	s.LatchedChannel = d.latchedChannel
	s.LatchedIsVol = d.latchedIsVol
	s.PrescaleFraction = d.prescaleFraction
	return s
}

// Restore replaces the chip state with a previously captured snapshot.
func (d *DCSG) Restore(s State) {
	for i := range d.tones {
		d.tones[i] = toneState{
			divisor:  s.ToneDivisor[i],
			counter:  s.ToneCounter[i],
			output:   s.ToneOutput[i],
			attenIdx: s.ToneAtten[i],
		}
	}
	d.noise = noiseState{
		control:  s.NoiseControl,
		counter:  s.NoiseCounter,
		lfsr:     s.NoiseLFSR,
		output:   s.NoiseOutput,
		attenIdx: s.NoiseAtten,
	}
	d.latchedChannel = s.LatchedChannel
	d.latchedIsVol = s.LatchedIsVol
	d.prescaleFraction = s.PrescaleFraction
}

// clockLFSR advances the 15-bit linear feedback shift register one step.
// White noise (FB=1) taps bits 1 and 2; periodic noise (FB=0) recirculates
// bit 0 alone, producing a fixed-period square wave.
func (d *DCSG) clockLFSR() {
	n := &d.noise
	var feedback uint16
	if n.control&0x04 != 0 {
		feedback = ((n.lfsr >> 1) ^ (n.lfsr >> 2)) & 1
	} else {
		feedback = n.lfsr & 1
	}
	n.lfsr = (n.lfsr >> 1) | (feedback << 14)
	if n.lfsr == 0 {
		n.lfsr = 1
	}
	n.output = n.lfsr&1 != 0
}
