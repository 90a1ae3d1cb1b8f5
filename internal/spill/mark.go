package spill

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Mark locates one framed serialized page inside pages.bin and carries the
// xxhash64 of the frame bytes.
type Mark struct {
	Offset   uint64
	Checksum uint64
}

const markSize = 16 // 2 x uint64

// WriteMarks writes a slice of marks to a writer.
func WriteMarks(w io.Writer, marks []Mark) error {
	buf := make([]byte, 0, len(marks)*markSize)
	for _, m := range marks {
		buf = binary.LittleEndian.AppendUint64(buf, m.Offset)
		buf = binary.LittleEndian.AppendUint64(buf, m.Checksum)
	}
	_, err := w.Write(buf)
	return err
}

// ReadMarksFromFile reads all marks from a .mrk file.
func ReadMarksFromFile(path string) ([]Mark, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data)%markSize != 0 {
		return nil, fmt.Errorf("mark file size %d is not a multiple of %d", len(data), markSize)
	}
	marks := make([]Mark, len(data)/markSize)
	for i := range marks {
		offset := i * markSize
		marks[i].Offset = binary.LittleEndian.Uint64(data[offset:])
		marks[i].Checksum = binary.LittleEndian.Uint64(data[offset+8:])
	}
	return marks, nil
}
