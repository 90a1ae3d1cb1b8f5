package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/harshithgowdakt/granuleserde/internal/blockcodec"
	"github.com/harshithgowdakt/granuleserde/internal/compression"
	"github.com/harshithgowdakt/granuleserde/internal/serde"
	"github.com/harshithgowdakt/granuleserde/internal/spill"
	"github.com/harshithgowdakt/granuleserde/internal/types"
)

type pageJSON struct {
	Page             int        `json:"page"`
	Offset           uint64     `json:"offset"`
	Checksum         string     `json:"checksum"`
	Compression      string     `json:"compression"`
	Positions        int        `json:"positions"`
	UncompressedSize int        `json:"uncompressed_bytes"`
	PayloadSize      int        `json:"payload_bytes"`
	Ratio            float64    `json:"ratio"`
	Channels         []string   `json:"channels,omitempty"`
	Rows             [][]string `json:"rows,omitempty"`
	Error            string     `json:"error,omitempty"`
}

type dumpJSON struct {
	Spill       string     `json:"spill"`
	Compression string     `json:"compression"`
	Rows        uint64     `json:"rows"`
	FileSize    string     `json:"file_size"`
	Pages       []pageJSON `json:"pages"`
}

func main() {
	dir := flag.String("spill", "", "Spill directory")
	decode := flag.Bool("decode", false, "Decode pages and include channel types")
	sample := flag.Int("rows", 0, "Number of rows per page to print when decoding")
	flag.Parse()

	if *dir == "" {
		fatalf("missing required -spill")
	}

	out, err := dump(*dir, *decode, *sample)
	if err != nil {
		fatalf("%v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fatalf("encode json: %v", err)
	}
}

// dump reads every page of the spill at dir. The reader is closed before
// dump returns, so callers may exit on error.
func dump(dir string, decode bool, sample int) (dumpJSON, error) {
	r, err := spill.Open(dir, blockcodec.New())
	if err != nil {
		return dumpJSON{}, fmt.Errorf("open spill: %w", err)
	}
	defer r.Close()

	out := dumpJSON{
		Spill:       r.Dir(),
		Compression: compression.MethodName(r.Method()),
		Rows:        r.NumRows(),
		FileSize:    humanize.IBytes(uint64(r.SizeBytes())),
		Pages:       make([]pageJSON, 0, r.NumPages()),
	}

	for i, m := range r.Marks() {
		pj := pageJSON{
			Page:     i,
			Offset:   m.Offset,
			Checksum: fmt.Sprintf("%016x", m.Checksum),
		}
		sp, err := r.ReadSerialized(i)
		if err != nil {
			pj.Error = err.Error()
			out.Pages = append(out.Pages, pj)
			continue
		}
		pj.Compression = sp.Compression().String()
		pj.Positions = sp.PositionCount()
		pj.UncompressedSize = sp.UncompressedSizeInBytes()
		pj.PayloadSize = sp.SizeInBytes()
		if sp.UncompressedSizeInBytes() > 0 {
			pj.Ratio = float64(sp.SizeInBytes()) / float64(sp.UncompressedSizeInBytes())
		}

		if decode {
			decodeInto(&pj, r, i, sample)
		}
		out.Pages = append(out.Pages, pj)
	}
	return out, nil
}

func decodeInto(pj *pageJSON, r *spill.Reader, i, sample int) {
	p, err := r.ReadPage(i)
	if err != nil {
		pj.Error = err.Error()
		return
	}
	for c := 0; c < p.ChannelCount(); c++ {
		pj.Channels = append(pj.Channels, p.Block(c).DataType().Name())
	}
	for _, row := range p.Rows(0, sample) {
		vals := make([]string, len(row))
		for c, v := range row {
			vals[c] = types.FormatValue(p.Block(c).DataType(), v)
		}
		pj.Rows = append(pj.Rows, vals)
	}
}

// usage prints the frame layout along with the flags.
func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"usage: spilldump -spill DIR [-decode] [-rows N]\n\nEach page is a %d-byte header followed by its payload.\n\n",
			serde.HeaderSize)
		flag.PrintDefaults()
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
