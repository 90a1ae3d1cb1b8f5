package serde

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Framed serialized page:
//   [compression (1)] [position_count (4 LE)] [uncompressed_size (4 LE)] [payload_size (4 LE)] [payload...]

const HeaderSize = 13

// Header is the fixed part of a framed serialized page.
type Header struct {
	Compression      Compression
	PositionCount    uint32
	UncompressedSize uint32
	PayloadSize      uint32
}

// FramedSize returns the total length of the frame including the header.
func (h Header) FramedSize() int {
	return HeaderSize + int(h.PayloadSize)
}

func (h Header) put(b []byte) {
	b[0] = byte(h.Compression)
	binary.LittleEndian.PutUint32(b[1:5], h.PositionCount)
	binary.LittleEndian.PutUint32(b[5:9], h.UncompressedSize)
	binary.LittleEndian.PutUint32(b[9:13], h.PayloadSize)
}

// ReadHeader decodes the header at the start of data.
func ReadHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: frame too small: %d bytes", ErrInvalidSerializedPage, len(data))
	}
	return Header{
		Compression:      Compression(data[0]),
		PositionCount:    binary.LittleEndian.Uint32(data[1:5]),
		UncompressedSize: binary.LittleEndian.Uint32(data[5:9]),
		PayloadSize:      binary.LittleEndian.Uint32(data[9:13]),
	}, nil
}

func headerOf(sp *SerializedPage) Header {
	return Header{
		Compression:      sp.Compression(),
		PositionCount:    uint32(sp.PositionCount()),
		UncompressedSize: uint32(sp.UncompressedSizeInBytes()),
		PayloadSize:      uint32(sp.SizeInBytes()),
	}
}

// AppendSerializedPage appends the frame of sp to dst.
func AppendSerializedPage(dst []byte, sp *SerializedPage) []byte {
	var hdr [HeaderSize]byte
	headerOf(sp).put(hdr[:])
	dst = append(dst, hdr[:]...)
	return append(dst, sp.Payload()...)
}

// WriteSerializedPage writes the frame of sp to w and returns the number of
// bytes written.
func WriteSerializedPage(w io.Writer, sp *SerializedPage) (int, error) {
	if sp == nil {
		return 0, ErrNilSerializedPage
	}
	var hdr [HeaderSize]byte
	headerOf(sp).put(hdr[:])
	n, err := w.Write(hdr[:])
	if err != nil {
		return n, err
	}
	m, err := w.Write(sp.Payload())
	return n + m, err
}

// ReadSerializedPage reads one frame from r. The payload is read into a new
// buffer of exactly the declared size.
func ReadSerializedPage(r io.Reader) (*SerializedPage, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	h, err := ReadHeader(hdr[:])
	if err != nil {
		return nil, err
	}
	if h.PayloadSize > MaxSerializedSize {
		return nil, fmt.Errorf("%w: payload size %d out of range", ErrInvalidSerializedPage, h.PayloadSize)
	}
	payload := make([]byte, h.PayloadSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	return h.build(payload)
}

// ParseSerializedPage decodes the frame at the start of data without copying
// the payload, and returns the frame length.
func ParseSerializedPage(data []byte) (*SerializedPage, int, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, 0, err
	}
	end := uint64(HeaderSize) + uint64(h.PayloadSize)
	if end > uint64(len(data)) {
		return nil, 0, fmt.Errorf("%w: frame needs %d bytes, have %d", ErrInvalidSerializedPage, end, len(data))
	}
	sp, err := h.build(data[HeaderSize:end:end])
	if err != nil {
		return nil, 0, err
	}
	return sp, int(end), nil
}

func (h Header) build(payload []byte) (*SerializedPage, error) {
	return NewSerializedPage(payload, h.Compression, int(h.PositionCount), int(h.UncompressedSize))
}
