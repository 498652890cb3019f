package disasm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dhconnelly/synacorpp/disasm"
	"github.com/dhconnelly/synacorpp/vm"
)

func TestEmitByteDecodesAtAddressZero(t *testing.T) {
	out := disasm.Disasm([]uint16{vm.OpOut, 65, vm.OpHalt})
	assert.Contains(t, out, "[0] OUT 65\n")
	assert.Contains(t, out, "[2] HALT\n")
}

func TestRegisterOperandsRenderAsRN(t *testing.T) {
	out := disasm.Disasm([]uint16{vm.OpAdd, vm.Modulus, vm.Modulus + 1, 5})
	assert.Contains(t, out, "[0] ADD r0 r1 5\n")
}

func TestDataWordFallsBackToRawValue(t *testing.T) {
	out := disasm.Disasm([]uint16{40000, vm.OpHalt})
	assert.Contains(t, out, "[0] 40000\n")
	assert.Contains(t, out, "[1] HALT\n")
}

func TestLosslessInstructionBoundaries(t *testing.T) {
	image := []uint16{
		vm.OpJt, 1, 6,
		vm.OpOut, 66, vm.OpHalt,
		vm.OpOut, 65, vm.OpHalt,
	}
	out := disasm.Disasm(image)
	assert.Contains(t, out, "[0] JT 1 6\n")
	assert.Contains(t, out, "[3] OUT 66\n")
	assert.Contains(t, out, "[5] HALT\n")
	assert.Contains(t, out, "[6] OUT 65\n")
	assert.Contains(t, out, "[8] HALT\n")
}

func TestTruncatedOperandsFallBackToRawValue(t *testing.T) {
	// ADD declares 3 operands but only one word follows.
	out := disasm.Disasm([]uint16{vm.OpAdd, 1})
	assert.Contains(t, out, "[0] 9\n")
	assert.Contains(t, out, "[1] 1\n")
}
