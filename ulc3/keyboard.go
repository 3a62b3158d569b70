package ulc3

import "io"

// Keyboard status and data register addresses.
const (
	KBSR uint16 = 0xFE00
	KBDR uint16 = 0xFE02
)

// Keyboard is the memory mapped console keyboard. Incoming bytes queue
// on a channel; Poll publishes the next pending byte into the status
// and data registers and Reset clears the status register once the
// read completed. Map it over KBSR.
type Keyboard struct {
	mem  *Memory
	keys chan byte
}

func NewKeyboard(mem *Memory) *Keyboard {
	return &Keyboard{mem: mem, keys: make(chan byte, 64)}
}

// Feed queues one byte for the machine to pick up.
func (k *Keyboard) Feed(c byte) {
	k.keys <- c
}

// Pump copies bytes from r into the queue until r fails, usually from
// its own goroutine with a raw mode terminal as the source.
func (k *Keyboard) Pump(r io.Reader) {
	var buf [1]byte
	for {
		if _, err := r.Read(buf[:]); err != nil {
			return
		}
		k.keys <- buf[0]
	}
}

// Read hands queued bytes to input traps, blocking until one arrives.
// Routing trap input through the keyboard keeps a single consumer on
// the underlying stream.
func (k *Keyboard) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = <-k.keys
	return 1, nil
}

func (k *Keyboard) Poll() {
	select {
	case c := <-k.keys:
		k.mem.Write(KBSR, 1<<15)
		k.mem.Write(KBDR, uint16(c))
	default:
	}
}

func (k *Keyboard) Reset() {
	k.mem.Write(KBSR, 0)
}
