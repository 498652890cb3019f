// Package disasm renders a Synacor program image as a human-readable
// instruction listing. It is a pure function over the image: it shares
// the opcode table with package vm so the two can never disagree about
// an instruction's shape. It walks the whole image and falls back to
// printing data words raw, since program and data share one address
// space and the decoder has no way to tell them apart up front.
package disasm

import (
	"fmt"
	"strings"

	"github.com/dhconnelly/synacorpp/vm"
)

// Disasm walks image linearly from address 0 and returns one line per
// decoded instruction or raw data word. The decoder is context-free: it
// cannot distinguish interleaved data from code, so a word that isn't a
// defined opcode is emitted as a bare value and the walk advances by
// one word.
func Disasm(image []uint16) string {
	var b strings.Builder
	for addr := 0; addr < len(image); {
		word := image[addr]
		if !vm.IsOpcode(word) {
			fmt.Fprintf(&b, "[%d] %d\n", addr, word)
			addr++
			continue
		}

		arity := vm.Arity(word)
		if addr+arity >= len(image) {
			// Not enough words left for the declared operand count;
			// treat it as a data word rather than reading past the
			// image.
			fmt.Fprintf(&b, "[%d] %d\n", addr, word)
			addr++
			continue
		}

		fmt.Fprintf(&b, "[%d] %s", addr, vm.Mnemonic(word))
		for i := 0; i < arity; i++ {
			fmt.Fprintf(&b, " %s", operand(image[addr+1+i]))
		}
		b.WriteByte('\n')
		addr += 1 + arity
	}
	return b.String()
}

func operand(v uint16) string {
	if v >= vm.Modulus && v < vm.Modulus+vm.NumRegisters {
		return fmt.Sprintf("r%d", v-vm.Modulus)
	}
	return fmt.Sprintf("%d", v)
}
