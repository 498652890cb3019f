// Package game wraps a vm.Machine as a synchronous text-adventure
// driver: it writes command strings into the machine one byte at a
// time, drains emitted bytes into a prompt buffer, and offers a few
// best-effort helpers for scraping room name, inventory and exits out
// of the resulting text.
package game

import (
	"strings"

	"github.com/dhconnelly/synacorpp/vm"
)

// State mirrors the VM's Run/Halt split from the harness's point of
// view: either it's our turn to feed the VM a command, or the program
// has terminated.
type State int

const (
	WaitingForInput State = iota
	GameOver
)

func (s State) String() string {
	if s == GameOver {
		return "GameOver"
	}
	return "WaitingForInput"
}

// Game owns a vm.Machine exclusively and drives it as a command-line
// adventure.
type Game struct {
	vm    *vm.Machine
	state State

	prompt strings.Builder

	// position is a best-effort coordinate pair a caller may track
	// alongside the VM (e.g. while exploring a maze) and stash here;
	// the VM program itself never reports coordinates, so this is
	// purely a convenience field, never derived from VM output.
	posX, posY int
}

// New constructs a Game over image and runs it to its first input
// suspension, capturing the opening narration into the prompt buffer.
func New(image []uint16) (*Game, error) {
	g := &Game{vm: vm.New(image)}
	if err := g.drain(); err != nil {
		return nil, err
	}
	return g, nil
}

// State returns WaitingForInput or GameOver, mirroring the VM's state.
func (g *Game) State() State { return g.state }

// Prompt returns the text accumulated since the last Input call.
func (g *Game) Prompt() string { return g.prompt.String() }

// SetRegister is a passthrough to the VM, used for the
// teleporter-register patch.
func (g *Game) SetRegister(i int, v uint16) error {
	return g.vm.SetRegister(i, v)
}

// SetCallTrap is a passthrough to the VM's call-trap table, an
// alternative to SetRegister for short-circuiting an expensive
// in-binary verification routine.
func (g *Game) SetCallTrap(addr uint16, effect func(*vm.Machine)) {
	g.vm.SetCallTrap(addr, effect)
}

// Position returns the caller-tracked coordinate pair; see SetPosition.
func (g *Game) Position() (int, int) { return g.posX, g.posY }

// SetPosition lets a caller record its own notion of position (e.g.
// while probing maze branches) alongside the VM state; Game never
// derives a position from program output on its own.
func (g *Game) SetPosition(x, y int) { g.posX, g.posY = x, y }

// drain runs the VM until it suspends on IN or halts, appending every
// byte emitted via OUT to the prompt buffer. Precondition: the VM is in
// Run or has just suspended on Out; postcondition: the VM is in In or
// Halt.
func (g *Game) drain() error {
	for {
		if err := g.vm.Step(); err != nil {
			return err
		}
		switch g.vm.State() {
		case vm.Halt:
			g.state = GameOver
			return nil
		case vm.In:
			g.state = WaitingForInput
			return nil
		case vm.Out:
			g.prompt.WriteByte(g.vm.Output())
		case vm.Run:
			// continue
		}
	}
}

// Input writes cmd followed by a newline into the VM one byte at a
// time, draining after each byte, then returns the text accumulated
// after the terminating newline. incomplete reports whether the VM
// transitioned out of In before every byte of cmd was consumed — a
// non-fatal condition the caller may want to surface.
func (g *Game) Input(cmd string) (text string, incomplete bool, err error) {
	i := 0
	for ; i < len(cmd) && g.vm.State() == vm.In; i++ {
		g.vm.Input(cmd[i])
		if err := g.drain(); err != nil {
			return "", false, err
		}
	}
	incomplete = i != len(cmd)

	g.prompt.Reset()
	if g.vm.State() == vm.In {
		g.vm.Input('\n')
		if err := g.drain(); err != nil {
			return "", incomplete, err
		}
	}
	return g.Prompt(), incomplete, nil
}

// Location sends the synthetic "look" command and scans the returned
// text for the first pair of "==" delimiters, returning the room name
// between them. This is a heuristic string scan over program-produced
// text, not a parser for any particular game's output grammar.
func (g *Game) Location() (string, error) {
	text, _, err := g.Input("look")
	if err != nil {
		return "", err
	}
	return firstDelimited(text, "=="), nil
}

// Inventory sends the synthetic "inv" command and returns each
// "- item" bullet line found in the response, stripped of the bullet.
func (g *Game) Inventory() ([]string, error) {
	text, _, err := g.Input("inv")
	if err != nil {
		return nil, err
	}
	return bulletLines(text), nil
}

// Exits scans the last Prompt() text for a "Things you can see" /
// "There is" style exits section; lacking a reliable delimiter in the
// general case, this simply returns every bullet line in the prompt.
func (g *Game) Exits() []string {
	return bulletLines(g.Prompt())
}

func firstDelimited(text, delim string) string {
	start := strings.Index(text, delim)
	if start < 0 {
		return ""
	}
	start += len(delim)
	end := strings.Index(text[start:], delim)
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(text[start : start+end])
}

func bulletLines(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") {
			items = append(items, strings.TrimSpace(strings.TrimPrefix(line, "- ")))
		}
	}
	return items
}
