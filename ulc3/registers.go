package ulc3

// Flag is a condition code bit set by the last value written to a
// general purpose register.
type Flag uint16

const (
	FlagPositive Flag = 1 << iota
	FlagZero
	FlagNegative
)

// Registers holds the eight general purpose registers plus the program
// counter and the condition flags.
type Registers struct {
	R    [8]uint16
	PC   uint16
	Cond Flag
}

// UpdateFlags sets the condition code from the value in register r. The
// top bit decides negative.
func (reg *Registers) UpdateFlags(r uint16) {
	switch value := reg.R[r]; {
	case value == 0:
		reg.Cond = FlagZero
	case value>>15 == 1:
		reg.Cond = FlagNegative
	default:
		reg.Cond = FlagPositive
	}
}

// SignExtend widens a two's complement value of the given bit width to
// sixteen bits.
func SignExtend(value uint16, bits uint) uint16 {
	if value>>(bits-1)&1 == 1 {
		value |= 0xFFFF << bits
	}
	return value
}
