package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"utools/ulc3"
)

// run loads an executable image and drives the machine against the
// terminal until it halts or the user interrupts it.
func run(ctx context.Context, path string) error {
	image, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "cannot open image %s", path)
	}
	defer image.Close()

	mem := ulc3.NewMemory()
	if err := mem.LoadImage(image); err != nil {
		return err
	}

	kb := ulc3.NewKeyboard(mem)
	mem.MapDevice(ulc3.KBSR, kb)

	// raw mode lets the machine see keystrokes as they happen
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return errors.Wrap(err, "cannot switch terminal to raw mode")
		}
		defer func() {
			if err := term.Restore(fd, state); err != nil {
				logrus.WithError(err).Error("terminal restore failed")
			}
		}()
	}
	go kb.Pump(os.Stdin)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	machine := ulc3.NewMachine(mem, kb, os.Stdout)
	if err := machine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
