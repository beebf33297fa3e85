// Package cpu implements the TMS9995 instruction interpreter: decode and
// execute one word at PC per call, maintaining PC/WP/ST and a running
// cycle count (spec.md §4.1).
package cpu

import (
	"fmt"

	"github.com/classilla/tutti/internal/debug"
)

// Status register bits (spec.md §3).
const (
	FlagLGT = 0x8000 // Logical greater than
	FlagAGT = 0x4000 // Arithmetic greater than
	FlagEQ  = 0x2000 // Equal
	FlagC   = 0x1000 // Carry
	FlagOV  = 0x0800 // Overflow
	FlagOP  = 0x0400 // Odd parity
	FlagX   = 0x0200 // Extended operation
	maskIM  = 0x000F // Interrupt mask (low nibble)
)

// Memory is the word/byte-addressable bus the CPU executes against.
type Memory interface {
	ReadByte(addr uint16) byte
	WriteByte(addr uint16, value byte)
	ReadWord(addr uint16) uint16
	WriteWord(addr uint16, value uint16)
}

// CRU is the Communication Register Unit surface the CPU issues CRU
// instructions through (spec.md §4.6).
type CRU interface {
	// ReadBits returns up to 8 bits read starting at the CRU address
	// implied by cruBase (the CPU's R12), keyed the way the keyboard
	// matrix and decrementer flags decode it.
	ReadBits(cruBase uint16, count uint8) uint16
	// WriteBit sets or clears the single CRU bit at addr (R12 +
	// displacement*2, already computed by the caller).
	WriteBit(addr uint16, value bool)
	// TestBit reads a single CRU input bit for TB.
	TestBit(addr uint16) bool
}

// State is the complete architectural state of the CPU (spec.md §3).
type State struct {
	PC uint16
	WP uint16
	ST uint16

	// LastParity holds the value whose parity feeds ST.OP; it is only
	// reconciled into ST when ST is observed (spec.md §3, §8).
	LastParity byte

	Cycles uint64

	// InterruptPending holds a pending interrupt level (1-15), or 0 for
	// none. It is set by RequestInterrupt and consumed at the top of
	// ExecuteNext, matching spec.md §5's "an interrupt may only be taken
	// between instructions, never inside one."
	InterruptPending uint8
}

// CPU is the TMS9995 interpreter plus the devices it reaches through Mem
// and Cru. Register-ness is purely a memory-addressing convention: the
// sixteen "workspace registers" live at Mem[WP+2k] (spec.md §3), so the
// CPU itself only stores PC/WP/ST/LastParity/Cycles.
type CPU struct {
	State State
	Mem   Memory
	Cru   CRU
	Trip  *debug.Trip
	Log   *debug.Logger

	// TapeHook is consulted once per instruction with the post-fetch PC so
	// the tape trap table (internal/tape) can intercept known ROM entry
	// points before the fetched instruction executes. Returning true means
	// the trap fully handled this "instruction" (it already advanced PC
	// and registers); ExecuteNext then returns without decoding.
	TapeHook func(cpu *CPU) (handled bool, cycles uint32)

	// PasteProbeHook is called once whenever PC equals the paste-pacing
	// address (0x18B2 in the stock ROM); see SPEC_FULL.md §4 "Paste-pacing
	// trap". The out-of-scope paste translator owns the actual counter.
	PasteProbeHook func()
}

// pasteProbePC is the ROM address where the keyboard-probe loop finishes a
// pass, used by the out-of-scope paste translator to pace keystrokes
// (SPEC_FULL.md §4, grounded on original_source/tutorem/TMS9995.c:400).
const pasteProbePC = 0x18B2

// New creates a CPU bound to the given bus and CRU device.
func New(mem Memory, cru CRU, trip *debug.Trip, log *debug.Logger) *CPU {
	c := &CPU{Mem: mem, Cru: cru, Trip: trip, Log: log}
	return c
}

// Reset sets PC/WP from the first two words of ROM1 and clears the rest of
// architectural state (spec.md §3 "Lifecycle").
func (c *CPU) Reset() {
	c.State.WP = c.Mem.ReadWord(0x0000) &^ 1
	c.State.PC = c.Mem.ReadWord(0x0002) &^ 1
	c.State.ST = 0
	c.State.LastParity = 0
	c.State.Cycles = 0
	c.State.InterruptPending = 0
}

// R returns the address of workspace register k.
func (c *CPU) R(k uint8) uint16 {
	return c.State.WP + 2*uint16(k)
}

// GetReg reads workspace register k.
func (c *CPU) GetReg(k uint8) uint16 {
	return c.Mem.ReadWord(c.R(k))
}

// SetReg writes workspace register k.
func (c *CPU) SetReg(k uint8, value uint16) {
	c.Mem.WriteWord(c.R(k), value)
}

// reconcileParity folds LastParity into ST.OP. Called before any
// instruction that reads ST into memory (STST, context switches) and
// before returning ST to a caller (spec.md §4.1, §8's parity invariant).
func (c *CPU) reconcileParity() {
	p := c.State.LastParity
	p ^= p >> 4
	p ^= p >> 2
	p ^= p >> 1
	odd := p&1 != 0
	if odd {
		c.State.ST |= FlagOP
	} else {
		c.State.ST &^= FlagOP
	}
}

// ReadST returns the status register with OP reconciled.
func (c *CPU) ReadST() uint16 {
	c.reconcileParity()
	return c.State.ST
}

func (c *CPU) setFlag(mask uint16, on bool) {
	if on {
		c.State.ST |= mask
	} else {
		c.State.ST &^= mask
	}
}

func (c *CPU) interruptMask() uint8 {
	return uint8(c.State.ST & maskIM)
}

func (c *CPU) setInterruptMask(level uint8) {
	c.State.ST = (c.State.ST &^ maskIM) | uint16(level&maskIM)
}

// RequestInterrupt latches a pending interrupt level (1-15). Multiple
// pending requests keep only the lowest (highest-priority) level, matching
// the decrementer (level 3) and tape (level 4) being independent sources
// that must not clobber one another before the CPU services either.
func (c *CPU) RequestInterrupt(level uint8) {
	if level == 0 {
		return
	}
	if c.State.InterruptPending == 0 || level < c.State.InterruptPending {
		c.State.InterruptPending = level
	}
}

// fetchWord reads the word at PC and advances PC by 2.
func (c *CPU) fetchWord() uint16 {
	w := c.Mem.ReadWord(c.State.PC)
	c.State.PC += 2
	return w
}

// ExecuteNext fetches, decodes, and executes one instruction, returning the
// cycle count consumed (spec.md §4.1's execute_next contract). Pending
// interrupts are serviced first, between instructions only.
func (c *CPU) ExecuteNext() (uint32, error) {
	if c.State.InterruptPending != 0 && c.State.InterruptPending <= c.interruptMask() {
		level := c.State.InterruptPending
		c.State.InterruptPending = 0
		c.acceptInterrupt(level)
		return 22, nil
	}

	if c.State.PC == pasteProbePC && c.PasteProbeHook != nil {
		c.PasteProbeHook()
	}

	if c.TapeHook != nil {
		if handled, cycles := c.TapeHook(c); handled {
			return cycles, nil
		}
	}

	startPC := c.State.PC
	opcode := c.fetchWord()
	cycles, err := c.execute(opcode)
	if err != nil {
		// Illegal opcode: PC is rewound to the offending word (spec.md
		// §4.1 "Illegal opcodes" and §8 scenario 6).
		c.State.PC = startPC
		c.Trip.Raise(startPC, c.State.WP, err.Error())
		if c.Log != nil {
			c.Log.LogCPUf(debug.LogLevelError, "illegal opcode 0x%04X at %04X: %v", opcode, startPC, err)
		}
		return 0, err
	}
	c.State.Cycles += uint64(cycles)
	return cycles, nil
}

// acceptInterrupt performs the BLWP-shaped context switch through the
// vector at 4*level and sets the interrupt mask to level, disallowing
// equal and lower priorities until re-enabled (spec.md §4.3).
func (c *CPU) acceptInterrupt(level uint8) {
	vector := uint16(level) * 4
	c.blwp(vector)
	c.setInterruptMask(level)
}

// blwp performs the Branch-and-Load-Workspace-Pointer context switch
// through the vector word pair at addr: new WP from addr, new PC from
// addr+2, with the old WP/PC/ST stashed into the new workspace's R13-R15
// (spec.md §4.1).
func (c *CPU) blwp(addr uint16) {
	oldWP := c.State.WP
	oldPC := c.State.PC
	oldST := c.ReadST()

	newWP := c.Mem.ReadWord(addr) &^ 1
	newPC := c.Mem.ReadWord(addr+2) &^ 1

	c.State.WP = newWP
	c.Mem.WriteWord(c.R(13), oldWP)
	c.Mem.WriteWord(c.R(14), oldPC)
	c.Mem.WriteWord(c.R(15), oldST)
	c.State.PC = newPC
}

// rtwp reverses blwp: ST/PC/WP are restored from R15/R14/R13 of the
// *current* workspace (spec.md §4.1).
func (c *CPU) rtwp() {
	newST := c.GetReg(15)
	newPC := c.GetReg(14) &^ 1
	newWP := c.GetReg(13) &^ 1
	c.State.ST = newST
	c.State.PC = newPC
	c.State.WP = newWP
	c.State.LastParity = 0
	if newST&FlagOP != 0 {
		c.State.LastParity = 1
	}
}

func illegalOpcode(word uint16) error {
	return fmt.Errorf("illegal opcode 0x%04X", word)
}
