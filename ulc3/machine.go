// Package ulc3 emulates the LC-3 teaching computer: a 16 bit word
// machine with eight registers, condition flags, memory mapped devices
// and a small set of traps for console input and output.
package ulc3

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ProgramStart is where loaded programs begin executing.
const ProgramStart = 0x3000

var (
	ErrUnknownTrap = errors.New("unknown trap vector")
	ErrInput       = errors.New("input unavailable")
)

// OpCode is the top four bits of an instruction word.
type OpCode uint16

const (
	OpBR   OpCode = iota // conditional branch
	OpADD                // addition
	OpLD                 // load
	OpST                 // store
	OpJSR                // jump to subroutine
	OpAND                // bitwise and
	OpLDR                // load base + offset
	OpSTR                // store base + offset
	OpRTI                // return from interrupt, unused
	OpNOT                // bitwise complement
	OpLDI                // load indirect
	OpSTI                // store indirect
	OpJMP                // jump, also return from subroutine
	OpRES                // reserved, unused
	OpLEA                // load effective address
	OpTRAP               // system call
)

// TrapVector selects the system call for a TRAP instruction.
type TrapVector uint16

const (
	TrapGetc  TrapVector = 0x20 // read one character into R0
	TrapOut   TrapVector = 0x21 // write the character in R0
	TrapPuts  TrapVector = 0x22 // write a word-per-character string
	TrapIn    TrapVector = 0x23 // prompt, read and echo one character
	TrapPutsp TrapVector = 0x24 // write a packed two-characters-per-word string
	TrapHalt  TrapVector = 0x25 // stop the machine
)

// Machine wires memory, registers and console streams into a runnable
// processor.
type Machine struct {
	Memory *Memory
	Reg    *Registers

	in  io.Reader
	out io.Writer
	log logrus.FieldLogger
}

func NewMachine(mem *Memory, in io.Reader, out io.Writer) *Machine {
	return &Machine{
		Memory: mem,
		Reg:    &Registers{},
		in:     in,
		out:    out,
		log:    logrus.StandardLogger(),
	}
}

// Run executes from ProgramStart until a HALT trap, an execution error
// or a cancelled context.
func (m *Machine) Run(ctx context.Context) error {
	m.Reg.PC = ProgramStart
	m.log.WithField("pc", m.Reg.PC).Debug("machine started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		halted, err := m.Step()
		if err != nil {
			return err
		}
		if halted {
			m.log.Debug("machine halted")
			return nil
		}
	}
}

// Step fetches, decodes and executes a single instruction. It reports
// whether the machine halted.
func (m *Machine) Step() (bool, error) {
	reg, mem := m.Reg, m.Memory

	ins := mem.Read(reg.PC)
	reg.PC++

	switch OpCode(ins >> 12) {
	case OpBR:
		cond := Flag(ins >> 9 & 0x7)
		if cond&reg.Cond != 0 {
			reg.PC += SignExtend(ins&0x1FF, 9)
		}

	case OpADD:
		dr, sr1 := ins>>9&0x7, ins>>6&0x7
		if ins>>5&0x1 == 1 {
			reg.R[dr] = reg.R[sr1] + SignExtend(ins&0x1F, 5)
		} else {
			reg.R[dr] = reg.R[sr1] + reg.R[ins&0x7]
		}
		reg.UpdateFlags(dr)

	case OpAND:
		dr, sr1 := ins>>9&0x7, ins>>6&0x7
		if ins>>5&0x1 == 1 {
			reg.R[dr] = reg.R[sr1] & SignExtend(ins&0x1F, 5)
		} else {
			reg.R[dr] = reg.R[sr1] & reg.R[ins&0x7]
		}
		reg.UpdateFlags(dr)

	case OpJMP:
		reg.PC = reg.R[ins>>6&0x7]

	case OpJSR:
		reg.R[7] = reg.PC
		if ins>>11&0x1 == 1 {
			reg.PC += SignExtend(ins&0x7FF, 11)
		} else {
			reg.PC = reg.R[ins>>6&0x7]
		}

	case OpLD:
		dr := ins >> 9 & 0x7
		reg.R[dr] = mem.Read(reg.PC + SignExtend(ins&0x1FF, 9))
		reg.UpdateFlags(dr)

	case OpLDI:
		dr := ins >> 9 & 0x7
		addr := mem.Read(reg.PC + SignExtend(ins&0x1FF, 9))
		reg.R[dr] = mem.Read(addr)
		reg.UpdateFlags(dr)

	case OpLDR:
		dr, br := ins>>9&0x7, ins>>6&0x7
		reg.R[dr] = mem.Read(reg.R[br] + SignExtend(ins&0x3F, 6))
		reg.UpdateFlags(dr)

	case OpLEA:
		dr := ins >> 9 & 0x7
		reg.R[dr] = reg.PC + SignExtend(ins&0x1FF, 9)
		reg.UpdateFlags(dr)

	case OpNOT:
		dr := ins >> 9 & 0x7
		reg.R[dr] = ^reg.R[ins>>6&0x7]
		reg.UpdateFlags(dr)

	case OpRES, OpRTI:
		// reserved and interrupt return are deliberate no-ops

	case OpST:
		mem.Write(reg.PC+SignExtend(ins&0x1FF, 9), reg.R[ins>>9&0x7])

	case OpSTI:
		addr := mem.Read(reg.PC + SignExtend(ins&0x1FF, 9))
		mem.Write(addr, reg.R[ins>>9&0x7])

	case OpSTR:
		sr, br := ins>>9&0x7, ins>>6&0x7
		mem.Write(reg.R[br]+SignExtend(ins&0x3F, 6), reg.R[sr])

	case OpTRAP:
		reg.R[7] = reg.PC
		return m.trap(TrapVector(ins & 0xFF))
	}

	return false, nil
}

func (m *Machine) trap(vector TrapVector) (bool, error) {
	reg, mem := m.Reg, m.Memory
	m.log.WithField("vector", fmt.Sprintf("0x%02X", uint16(vector))).Debug("trap")

	switch vector {
	case TrapGetc:
		c, err := m.readByte()
		if err != nil {
			return false, err
		}
		reg.R[0] = uint16(c)

	case TrapOut:
		if err := m.writeByte(byte(reg.R[0])); err != nil {
			return false, err
		}

	case TrapPuts:
		start := reg.R[0]
		for i := uint16(0); mem.Read(start+i) != 0; i++ {
			if err := m.writeByte(byte(mem.Read(start + i))); err != nil {
				return false, err
			}
		}

	case TrapIn:
		if _, err := io.WriteString(m.out, "Waiting for input: "); err != nil {
			return false, err
		}
		c, err := m.readByte()
		if err != nil {
			return false, err
		}
		if err := m.writeByte(c); err != nil {
			return false, err
		}
		reg.R[0] = uint16(c)

	case TrapPutsp:
		start := reg.R[0]
		for i := uint16(0); mem.Read(start+i) != 0; i++ {
			word := mem.Read(start + i)
			if err := m.writeByte(byte(word)); err != nil {
				return false, err
			}
			if err := m.writeByte(byte(word >> 8)); err != nil {
				return false, err
			}
		}

	case TrapHalt:
		return true, nil

	default:
		return false, errors.Wrapf(ErrUnknownTrap, "vector 0x%02X", uint16(vector))
	}

	return false, nil
}

func (m *Machine) readByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(m.in, buf[:]); err != nil {
		return 0, errors.Wrap(ErrInput, err.Error())
	}
	return buf[0], nil
}

func (m *Machine) writeByte(c byte) error {
	_, err := m.out.Write([]byte{c})
	return errors.WithStack(err)
}
