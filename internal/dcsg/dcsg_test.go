package dcsg

import "testing"

func TestLatchAndDataSetToneDivisor(t *testing.T) {
	d := New(44100, nil)
	d.Write(0x80) // latch channel 0 tone, low nibble 0
	d.Write(0x05) // data byte: high 6 bits = 5
	got := d.tones[0].divisor
	want := uint16(5 << 4)
	if got != want {
		t.Fatalf("tone divisor = %d, want %d", got, want)
	}
}

func TestVolumeLatchSetsAttenuationDirectly(t *testing.T) {
	d := New(44100, nil)
	d.Write(0x90 | 0x03) // channel 0 volume register, attenuation 3
	if d.tones[0].attenIdx != 3 {
		t.Fatalf("attenIdx = %d, want 3", d.tones[0].attenIdx)
	}
}

func TestAllChannelsSilentAfterReset(t *testing.T) {
	d := New(44100, nil)
	for i := 0; i < 1000; i++ {
		if s := d.Sample(); s != 0 {
			t.Fatalf("sample %d = %f, want silence before any channel is programmed", i, s)
		}
	}
}

func TestToneChannelProducesNonZeroOutputWhenUnmuted(t *testing.T) {
	d := New(44100, nil)
	d.Write(0x80) // latch channel 0 tone
	d.Write(0x01) // divisor = 16, an audible frequency
	d.Write(0x90) // channel 0 volume, attenuation 0 (loudest)

	nonZero := false
	for i := 0; i < 2000; i++ {
		if d.Sample() != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatalf("expected a nonzero sample from an unmuted tone channel")
	}
}

func TestNoiseLFSRNeverStaysAtZero(t *testing.T) {
	d := New(44100, nil)
	d.Write(0xE0 | 0x04) // latch noise control: white noise, N/512
	for i := 0; i < 5000; i++ {
		d.clockLFSR()
		if d.noise.lfsr == 0 {
			t.Fatalf("LFSR reached 0 at step %d", i)
		}
	}
}

func TestToneFrequencyMatchesWorkedExample(t *testing.T) {
	const sampleRate = 44100
	d := New(sampleRate, nil)
	d.Write(0x84) // latch channel 0 tone, divisor low nibble = 4
	d.Write(0x00) // divisor high bits = 0: divisor = 4
	d.Write(0x90) // channel 0 volume, attenuation 0 (loudest)

	const samples = sampleRate // one second
	toggles := 0
	last := d.tones[0].output
	for i := 0; i < samples; i++ {
		d.Sample()
		if d.tones[0].output != last {
			toggles++
			last = d.tones[0].output
		}
	}

	got := float64(toggles) / 2
	want := float64(ClockHz) / (32 * 4) // spec.md's worked example: ~13.98 kHz
	if diff := (got - want) / want; diff < -0.05 || diff > 0.05 {
		t.Fatalf("measured tone frequency %.1f Hz, want within 5%% of %.1f Hz", got, want)
	}
}

func TestNoiseShiftRateTone2UsesChannel2Divisor(t *testing.T) {
	d := New(44100, nil)
	d.Write(0xC0) // latch channel 2 tone
	d.Write(0x02) // divisor = 32
	d.Write(0xE0 | 0x03) // noise control: shift rate 3 = follow channel 2's divisor

	if got := d.noiseShiftPeriod(); got != 32 {
		t.Fatalf("noiseShiftPeriod() = %d, want channel 2's divisor %d", got, 32)
	}
}
