package machine

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classilla/tutti/internal/cru"
)

func encodeForTest(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// minimalROM1 is a 32 KiB image with just enough of a reset vector (WP in
// writable memory, PC pointing at a JMP-to-self loop so ExecuteNext never
// meets an illegal opcode) to exercise the frame loop without a real BIOS.
func minimalROM1() []byte {
	rom := make([]byte, 32768)
	// Reset vector: WP=0xE100 (real writable memory, not the unmapped
	// window), PC=0x0004.
	rom[0], rom[1] = 0xE1, 0x00
	rom[2], rom[3] = 0x00, 0x04
	// JMP $ (relative jump to self), an infinite no-op loop.
	rom[4], rom[5] = 0x10, 0xFF
	return rom
}

func TestSaveLoadRoundTripsArchitecturalState(t *testing.T) {
	m := New()
	require.NoError(t, m.Bus.LoadROM1(minimalROM1()))
	m.Reset()

	for i := 0; i < 64; i++ {
		if _, err := m.CPU.ExecuteNext(); err != nil {
			t.Fatalf("ExecuteNext: %v", err)
		}
	}
	m.VDP.WriteControl(0x00)
	m.VDP.WriteControl(0x40)
	m.VDP.WriteData(0xAB)
	m.DCSG.Write(0x9F) // channel 0 tone, fully attenuated
	m.CRU.SetKey(cru.Key1, true)
	m.Decrementer.SetLatch(0x1234)

	data, err := m.Save()
	require.NoError(t, err)

	fresh := New()
	require.NoError(t, fresh.Bus.LoadROM1(minimalROM1()))
	fresh.Reset()
	require.NoError(t, fresh.Load(data))

	require.Equal(t, m.CPU.State, fresh.CPU.State)
	require.Equal(t, m.Bus.Mem, fresh.Bus.Mem)
	require.Equal(t, m.VDP.Snapshot(), fresh.VDP.Snapshot())
	require.Equal(t, m.DCSG.Snapshot(), fresh.DCSG.Snapshot())
	require.Equal(t, m.CRU.Snapshot(), fresh.CRU.Snapshot())
	require.Equal(t, m.Decrementer.Snapshot(), fresh.Decrementer.Snapshot())
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	m := New()
	s := Snapshot{Version: 99}
	data, err := encodeForTest(s)
	require.NoError(t, err)
	require.Error(t, m.Load(data))
}
