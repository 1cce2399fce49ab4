package feedback

import "io"

// Beeper emits the scan blip. It is best-effort only: callers must never
// let a failed blip block or fail the add itself.
type Beeper interface {
	Blip() error
}

// ConsoleBeeper rings the terminal bell.
type ConsoleBeeper struct {
	out io.Writer
}

func NewConsoleBeeper(out io.Writer) *ConsoleBeeper {
	return &ConsoleBeeper{out: out}
}

func (b *ConsoleBeeper) Blip() error {
	_, err := b.out.Write([]byte{'\a'})
	return err
}

// NopBeeper is used where the station has no speaker.
type NopBeeper struct{}

func (NopBeeper) Blip() error { return nil }
