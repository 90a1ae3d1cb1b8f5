// Package spill writes serialized pages to disk and reads them back.
//
// A spill is a directory:
//
//	pages.bin        framed serialized pages, back to back
//	pages.mrk        one Mark per page
//	count.txt        total number of rows
//	compression.txt  compression method name
//
// It is written under tmp_<name> and renamed into place on Close.
package spill

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/harshithgowdakt/granuleserde/internal/compression"
	"github.com/harshithgowdakt/granuleserde/internal/page"
	"github.com/harshithgowdakt/granuleserde/internal/serde"
)

const (
	binFile         = "pages.bin"
	markFile        = "pages.mrk"
	countFile       = "count.txt"
	compressionFile = "compression.txt"
)

var ErrChecksumMismatch = errors.New("spill: checksum mismatch")

// File describes a finished spill.
type File struct {
	Dir       string
	Method    byte
	NumPages  int
	NumRows   uint64
	SizeBytes uint64
}

// Writer appends pages to a new spill. It is not safe for concurrent use.
type Writer struct {
	tmpDir   string
	finalDir string
	method   byte
	codec    *serde.PageCodec

	bin    *os.File
	bw     *bufio.Writer
	frame  []byte
	marks  []Mark
	offset uint64
	rows   uint64
	done   bool
}

// NewWriter starts a spill named name under baseDir, compressing pages with
// method.
func NewWriter(baseDir, name string, blocks serde.BlockCodec, method byte, opts ...compression.Option) (*Writer, error) {
	factory, err := serde.NewFactory(blocks, method, opts...)
	if err != nil {
		return nil, err
	}
	codec, err := factory.New()
	if err != nil {
		return nil, err
	}

	tmpDir := filepath.Join(baseDir, "tmp_"+name)
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		codec.Close()
		return nil, fmt.Errorf("creating tmp dir: %w", err)
	}
	bin, err := os.Create(filepath.Join(tmpDir, binFile))
	if err != nil {
		codec.Close()
		os.RemoveAll(tmpDir)
		return nil, err
	}
	return &Writer{
		tmpDir:   tmpDir,
		finalDir: filepath.Join(baseDir, name),
		method:   method,
		codec:    codec,
		bin:      bin,
		bw:       bufio.NewWriter(bin),
	}, nil
}

// WritePage serializes p and appends it.
func (w *Writer) WritePage(p *page.Page) error {
	sp, err := w.codec.Serialize(p)
	if err != nil {
		return err
	}
	return w.WriteSerialized(sp)
}

// WriteRaw appends blocks that are already encoded, compressing them with
// the spill's method.
func (w *Writer) WriteRaw(raw []byte, positionCount int) error {
	sp, err := w.codec.WrapBuffer(raw, positionCount)
	if err != nil {
		return err
	}
	return w.WriteSerialized(sp)
}

// WriteSerialized appends a unit as is. It must have been produced with the
// spill's compression method.
func (w *Writer) WriteSerialized(sp *serde.SerializedPage) error {
	if w.done {
		return errors.New("spill: writer is closed")
	}
	if sp == nil {
		return serde.ErrNilSerializedPage
	}
	w.frame = serde.AppendSerializedPage(w.frame[:0], sp)
	if _, err := w.bw.Write(w.frame); err != nil {
		return fmt.Errorf("writing page %d: %w", len(w.marks), err)
	}
	w.marks = append(w.marks, Mark{Offset: w.offset, Checksum: xxhash.Sum64(w.frame)})
	w.offset += uint64(len(w.frame))
	w.rows += uint64(sp.PositionCount())
	return nil
}

// Close finishes the spill and moves it into place.
func (w *Writer) Close() (*File, error) {
	if w.done {
		return nil, errors.New("spill: writer is closed")
	}
	w.done = true
	defer w.codec.Close()

	success := false
	defer func() {
		if !success {
			os.RemoveAll(w.tmpDir)
		}
	}()

	if err := w.bw.Flush(); err != nil {
		w.bin.Close()
		return nil, err
	}
	if err := w.bin.Close(); err != nil {
		return nil, err
	}

	mrk, err := os.Create(filepath.Join(w.tmpDir, markFile))
	if err != nil {
		return nil, err
	}
	if err := WriteMarks(mrk, w.marks); err != nil {
		mrk.Close()
		return nil, fmt.Errorf("writing marks: %w", err)
	}
	if err := mrk.Close(); err != nil {
		return nil, err
	}

	if err := os.WriteFile(filepath.Join(w.tmpDir, countFile),
		[]byte(strconv.FormatUint(w.rows, 10)+"\n"), 0644); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(w.tmpDir, compressionFile),
		[]byte(compression.MethodName(w.method)+"\n"), 0644); err != nil {
		return nil, err
	}

	if _, err := os.Stat(w.finalDir); err == nil {
		return nil, fmt.Errorf("spill %s already exists", w.finalDir)
	}
	if err := os.Rename(w.tmpDir, w.finalDir); err != nil {
		return nil, fmt.Errorf("renaming spill dir: %w", err)
	}
	success = true

	return &File{
		Dir:       w.finalDir,
		Method:    w.method,
		NumPages:  len(w.marks),
		NumRows:   w.rows,
		SizeBytes: w.offset,
	}, nil
}

// Abort discards everything written so far.
func (w *Writer) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	w.codec.Close()
	w.bin.Close()
	return os.RemoveAll(w.tmpDir)
}
