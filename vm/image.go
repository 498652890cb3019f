package vm

import (
	"encoding/binary"
	"fmt"
	"io"
)

// LoadImage reads a program image as a stream of little-endian 16-bit
// words: low byte first, high byte second. It streams from r rather
// than requiring the whole file in memory first, and reports a
// trailing odd byte as an error instead of silently dropping it.
func LoadImage(r io.Reader) ([]uint16, error) {
	image := make([]uint16, 0, 1024)
	buf := make([]byte, 2)
	for {
		n, err := io.ReadFull(r, buf)
		if err == io.EOF {
			return image, nil
		}
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("vm: program image has a trailing odd byte (%d of 2)", n)
		}
		if err != nil {
			return nil, fmt.Errorf("vm: reading program image: %w", err)
		}
		image = append(image, binary.LittleEndian.Uint16(buf))
	}
}
