package ulc3

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// MemorySize is the full address space, one word per address.
const MemorySize = 1 << 16

var ErrBadImage = errors.New("image is truncated or malformed")

// Device is a memory mapped peripheral. Poll runs before a read of the
// mapped address and may store fresh data into memory; Reset runs after
// the read completed.
type Device interface {
	Poll()
	Reset()
}

// Memory is the machine's word addressed memory with optional devices
// mapped over individual addresses.
type Memory struct {
	cells   []uint16
	devices map[uint16]Device
}

func NewMemory() *Memory {
	return &Memory{
		cells:   make([]uint16, MemorySize),
		devices: map[uint16]Device{},
	}
}

// Read returns the word at addr, bracketing the access with the mapped
// device when one is registered there.
func (m *Memory) Read(addr uint16) uint16 {
	if d, ok := m.devices[addr]; ok {
		d.Poll()
		defer d.Reset()
	}
	return m.cells[addr]
}

func (m *Memory) Write(addr, value uint16) {
	m.cells[addr] = value
}

// MapDevice registers a device over addr. Later registrations replace
// earlier ones.
func (m *Memory) MapDevice(addr uint16, d Device) {
	m.devices[addr] = d
}

// LoadWords copies words into memory starting at addr.
func (m *Memory) LoadWords(addr uint16, words []uint16) {
	copy(m.cells[addr:], words)
}

// LoadBytes decodes big endian words from data and stores them starting
// at addr.
func (m *Memory) LoadBytes(addr uint16, data []byte) error {
	if len(data)%2 != 0 {
		return errors.Wrapf(ErrBadImage, "odd byte count %d", len(data))
	}

	words := make([]uint16, len(data)/2)
	for i := range words {
		words[i] = binary.BigEndian.Uint16(data[2*i:])
	}
	m.LoadWords(addr, words)
	return nil
}

// LoadImage reads an executable image whose first big endian word is
// the origin address, followed by the words to place there.
func (m *Memory) LoadImage(r io.Reader) error {
	var origin [2]byte
	if _, err := io.ReadFull(r, origin[:]); err != nil {
		return errors.Wrap(ErrBadImage, "missing origin word")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(ErrBadImage, err.Error())
	}
	return m.LoadBytes(binary.BigEndian.Uint16(origin[:]), data)
}
