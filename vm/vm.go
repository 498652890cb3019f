// Package vm implements the Synacor word-addressed virtual machine: a
// 15-bit value space, 8 registers, a call stack, and coroutine-style
// suspension on OUT/IN so an outside driver can feed and drain I/O one
// byte at a time.
package vm

import (
	"fmt"
	"io"
)

const (
	// NumRegisters is the number of general purpose registers.
	NumRegisters = 8

	// Modulus is the 15-bit wraparound used by ADD, MULT and the
	// register-operand base. Values 0..Modulus-1 are literals;
	// Modulus..Modulus+NumRegisters-1 address registers 0..7.
	Modulus = 32768

	// memSize is the size of the flat word-addressed memory: the full
	// 16-bit address space. Addresses are uint16 values (register
	// contents resolved by get() can exceed Modulus-1), so every
	// reachable address is in range.
	memSize = 1 << 16
)

// State is one of the four VM states from the suspension state machine.
type State int

const (
	Run State = iota
	Halt
	Out
	In
)

func (s State) String() string {
	switch s {
	case Run:
		return "Run"
	case Halt:
		return "Halt"
	case Out:
		return "Out"
	case In:
		return "In"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Machine is a Synacor VM instance. It is not resumable once Halted,
// and it is not goroutine safe.
type Machine struct {
	mem   []uint16
	regs  [NumRegisters]uint16
	stack *Stack
	pc    uint16
	state State
	out   byte
	in    byte

	traps map[uint16]func(*Machine)
	trace io.Writer
}

// New builds a Machine with image loaded at address 0, registers and
// stack zeroed/empty, pc at 0 and state Run.
func New(image []uint16) *Machine {
	m := &Machine{
		mem:   make([]uint16, memSize),
		stack: newStack(),
		state: Run,
	}
	copy(m.mem, image)
	return m
}

// State returns the current VM state.
func (m *Machine) State() State { return m.state }

// Output returns the most recently emitted byte. Only meaningful when
// State() == Out.
func (m *Machine) Output() byte { return m.out }

// Input latches a byte to be consumed by the next Step call. Only
// meaningful when State() == In.
func (m *Machine) Input(b byte) { m.in = b }

// SetRegister writes directly into register i from outside the
// program, e.g. for the teleporter-register patch.
func (m *Machine) SetRegister(i int, v uint16) error {
	if i < 0 || i >= NumRegisters {
		return fmt.Errorf("vm: register index %d out of range", i)
	}
	m.regs[i] = v
	return nil
}

// Register reads register i without going through program execution.
func (m *Machine) Register(i int) uint16 {
	return m.regs[i]
}

// SetTrace enables per-instruction tracing to w. Pass nil to disable.
// Trace lines never interleave with OUT bytes, which only ever reach
// Output().
func (m *Machine) SetTrace(w io.Writer) { m.trace = w }

// SetCallTrap registers a short-circuit for CALL instructions that
// target addr: instead of pushing the stack and jumping, effect runs
// against the machine and execution resumes at the instruction after
// CALL. Used by the game harness to skip an expensive in-binary
// verification routine.
func (m *Machine) SetCallTrap(addr uint16, effect func(*Machine)) {
	if m.traps == nil {
		m.traps = make(map[uint16]func(*Machine))
	}
	m.traps[addr] = effect
}

// ClearCallTrap removes a previously registered trap.
func (m *Machine) ClearCallTrap(addr uint16) {
	delete(m.traps, addr)
}

// Clone returns a deep copy of the machine: memory, registers, stack,
// pc and state are all independent of the original. Traps and the
// trace writer are shared by reference since they're driver-owned
// configuration, not mutable VM state.
func (m *Machine) Clone() *Machine {
	cp := &Machine{
		mem:   make([]uint16, len(m.mem)),
		regs:  m.regs,
		stack: m.stack.clone(),
		pc:    m.pc,
		state: m.state,
		out:   m.out,
		in:    m.in,
		traps: m.traps,
		trace: m.trace,
	}
	copy(cp.mem, m.mem)
	return cp
}

// memget reads memory; unwritten cells read as 0, which is automatic
// since mem is a zero-initialized flat array sized to the full 16-bit
// address space.
func (m *Machine) memget(addr uint16) uint16 {
	return m.mem[addr]
}

func (m *Machine) memset(addr, val uint16) {
	m.mem[addr] = val
}

// get resolves a value cell: literal if < Modulus, register if in
// Modulus..Modulus+7, otherwise InvalidOperand.
func (m *Machine) get(v uint16) (uint16, error) {
	if v < Modulus {
		return v, nil
	}
	if reg := v - Modulus; reg < NumRegisters {
		return m.regs[reg], nil
	}
	return 0, &InvalidOperand{Word: v}
}

// setTarget resolves a set-target operand and writes val into the
// register it names. Targeting anything but a register is
// InvalidRegister: SET and every other instruction that writes a
// result must target a register, never a literal or raw memory cell.
func (m *Machine) setTarget(target, val uint16) error {
	if target < Modulus || target >= Modulus+NumRegisters {
		return &InvalidRegister{Word: target}
	}
	m.regs[target-Modulus] = val
	return nil
}

func (m *Machine) pop() (uint16, error) {
	v, ok := m.stack.Pop()
	if !ok {
		return 0, &StackUnderflow{}
	}
	return v, nil
}

// Step executes at most one instruction. It is a no-op if State() ==
// Halt. A non-nil error is fatal: the VM does not continue executing
// past it, and the caller should treat state as terminal even if it
// still nominally reports Run.
func (m *Machine) Step() error {
	if m.state == Halt {
		return nil
	}

	if m.state == In {
		word := m.mem[m.pc]
		op := word
		if !IsOpcode(op) {
			return &InvalidOpcode{Word: op}
		}
		a := m.mem[m.pc+1]
		if err := m.setTarget(a, uint16(m.in)); err != nil {
			return err
		}
		m.pc += uint16(1 + Arity(OpIn))
	}

	m.state = Run
	return m.exec()
}

// exec decodes and runs the instruction at pc, assuming state has
// already been reset past any pending IN suspension.
func (m *Machine) exec() error {
	word := m.mem[m.pc]
	if !IsOpcode(word) {
		return &InvalidOpcode{Word: word}
	}
	op := word
	arity := Arity(op)

	var args [3]uint16
	for i := 0; i < arity; i++ {
		args[i] = m.mem[m.pc+1+uint16(i)]
	}

	if m.trace != nil {
		m.writeTrace(op, args, arity)
	}

	nextPC := m.pc + 1 + uint16(arity)

	switch op {
	case OpHalt:
		m.state = Halt
		return nil

	case OpSet:
		b, err := m.get(args[1])
		if err != nil {
			return err
		}
		if err := m.setTarget(args[0], b); err != nil {
			return err
		}

	case OpPush:
		a, err := m.get(args[0])
		if err != nil {
			return err
		}
		m.stack.Push(a)

	case OpPop:
		v, err := m.pop()
		if err != nil {
			return err
		}
		if err := m.setTarget(args[0], v); err != nil {
			return err
		}

	case OpEq:
		b, err := m.get(args[1])
		if err != nil {
			return err
		}
		c, err := m.get(args[2])
		if err != nil {
			return err
		}
		var eq uint16
		if b == c {
			eq = 1
		}
		if err := m.setTarget(args[0], eq); err != nil {
			return err
		}

	case OpGt:
		b, err := m.get(args[1])
		if err != nil {
			return err
		}
		c, err := m.get(args[2])
		if err != nil {
			return err
		}
		var gt uint16
		if b > c {
			gt = 1
		}
		if err := m.setTarget(args[0], gt); err != nil {
			return err
		}

	case OpJmp:
		a, err := m.get(args[0])
		if err != nil {
			return err
		}
		nextPC = a

	case OpJt:
		a, err := m.get(args[0])
		if err != nil {
			return err
		}
		if a != 0 {
			b, err := m.get(args[1])
			if err != nil {
				return err
			}
			nextPC = b
		}

	case OpJf:
		a, err := m.get(args[0])
		if err != nil {
			return err
		}
		if a == 0 {
			b, err := m.get(args[1])
			if err != nil {
				return err
			}
			nextPC = b
		}

	case OpAdd:
		b, err := m.get(args[1])
		if err != nil {
			return err
		}
		c, err := m.get(args[2])
		if err != nil {
			return err
		}
		if err := m.setTarget(args[0], uint16((uint32(b)+uint32(c))%Modulus)); err != nil {
			return err
		}

	case OpMult:
		b, err := m.get(args[1])
		if err != nil {
			return err
		}
		c, err := m.get(args[2])
		if err != nil {
			return err
		}
		if err := m.setTarget(args[0], uint16((uint32(b)*uint32(c))%Modulus)); err != nil {
			return err
		}

	case OpMod:
		b, err := m.get(args[1])
		if err != nil {
			return err
		}
		c, err := m.get(args[2])
		if err != nil {
			return err
		}
		if err := m.setTarget(args[0], b%c); err != nil {
			return err
		}

	case OpAnd:
		b, err := m.get(args[1])
		if err != nil {
			return err
		}
		c, err := m.get(args[2])
		if err != nil {
			return err
		}
		if err := m.setTarget(args[0], b&c); err != nil {
			return err
		}

	case OpOr:
		b, err := m.get(args[1])
		if err != nil {
			return err
		}
		c, err := m.get(args[2])
		if err != nil {
			return err
		}
		if err := m.setTarget(args[0], b|c); err != nil {
			return err
		}

	case OpNot:
		b, err := m.get(args[1])
		if err != nil {
			return err
		}
		if err := m.setTarget(args[0], (^b)&0x7FFF); err != nil {
			return err
		}

	case OpRmem:
		b, err := m.get(args[1])
		if err != nil {
			return err
		}
		if err := m.setTarget(args[0], m.memget(b)); err != nil {
			return err
		}

	case OpWmem:
		a, err := m.get(args[0])
		if err != nil {
			return err
		}
		b, err := m.get(args[1])
		if err != nil {
			return err
		}
		m.memset(a, b)

	case OpCall:
		a, err := m.get(args[0])
		if err != nil {
			return err
		}
		if effect, trapped := m.traps[a]; trapped {
			effect(m)
			// nextPC already points past CALL; no stack push.
		} else {
			m.stack.Push(nextPC)
			nextPC = a
		}

	case OpRet:
		v, ok := m.stack.Pop()
		if !ok {
			m.state = Halt
			return nil
		}
		nextPC = v

	case OpOut:
		a, err := m.get(args[0])
		if err != nil {
			return err
		}
		m.out = byte(a & 0xFF)
		m.state = Out

	case OpIn:
		m.state = In
		nextPC = m.pc // stays on IN until a byte is supplied

	case OpNoop:
		// nothing

	default:
		return &InvalidOpcode{Word: op}
	}

	m.pc = nextPC
	return nil
}

func (m *Machine) writeTrace(op uint16, args [3]uint16, arity int) {
	fmt.Fprintf(m.trace, "[%d] %s", m.pc, Mnemonic(op))
	for i := 0; i < arity; i++ {
		fmt.Fprintf(m.trace, " %s", renderOperand(args[i]))
	}
	fmt.Fprintln(m.trace)
}

func renderOperand(v uint16) string {
	if v >= Modulus && v < Modulus+NumRegisters {
		return fmt.Sprintf("r%d", v-Modulus)
	}
	return fmt.Sprintf("%d", v)
}
