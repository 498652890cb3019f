package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhconnelly/synacorpp/vm"
)

func TestLoadImageLittleEndianRoundTrip(t *testing.T) {
	// word 65 (0x0041) little-endian is 0x41, 0x00.
	buf := bytes.NewReader([]byte{0x41, 0x00, 0x13, 0x80})
	image, err := vm.LoadImage(buf)
	require.NoError(t, err)
	assert.Equal(t, []uint16{65, 0x8013}, image)
}

func TestLoadImageEmptyStreamIsEmptyImage(t *testing.T) {
	image, err := vm.LoadImage(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, image)
}

func TestLoadImageRejectsTrailingOddByte(t *testing.T) {
	_, err := vm.LoadImage(bytes.NewReader([]byte{0x01, 0x00, 0xFF}))
	require.Error(t, err)
}
