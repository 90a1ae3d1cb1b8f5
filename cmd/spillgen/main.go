package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/harshithgowdakt/granuleserde/internal/blockcodec"
	"github.com/harshithgowdakt/granuleserde/internal/compression"
	"github.com/harshithgowdakt/granuleserde/internal/exchange"
	"github.com/harshithgowdakt/granuleserde/internal/page"
	"github.com/harshithgowdakt/granuleserde/internal/serde"
	"github.com/harshithgowdakt/granuleserde/internal/spill"
	"github.com/harshithgowdakt/granuleserde/internal/types"
)

func main() {
	dataDir := flag.String("data-dir", "./granuleserde-spill", "Directory that holds spills")
	name := flag.String("name", "spill_1", "Spill name")
	method := flag.String("compression", "lz4", "Compression method: none, lz4 or zstd")
	batches := flag.Int("batches", 4, "Number of generated batches")
	rows := flag.Int("rows", 50000, "Rows per batch")
	granule := flag.Int("granule-size", page.DefaultGranuleSize, "Maximum rows per spilled page")
	workers := flag.Int("workers", 0, "Serialization workers (0 = NumCPU)")
	seed := flag.Int64("seed", 1, "Random seed")
	schemaFlag := flag.String("schema", defaultSchema, "Comma-separated channel types, e.g. DateTime,Dict(String),UInt64")
	flag.Parse()

	schema, err := types.ParseSchema(*schemaFlag)
	if err != nil {
		log.Fatalf("Invalid -schema: %v", err)
	}

	m, err := compression.ParseMethod(*method)
	if err != nil {
		log.Fatalf("Invalid -compression: %v", err)
	}
	if *batches < 0 || *rows < 0 {
		log.Fatalf("-batches and -rows must not be negative")
	}
	if err := os.MkdirAll(*dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	blocks := blockcodec.New()
	factory, err := serde.NewFactory(blocks, m)
	if err != nil {
		log.Fatalf("Failed to configure codec: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	var pages []*page.Page
	var rawSize int64
	for i := 0; i < *batches; i++ {
		batch := generatePage(rng, schema, *rows)
		rawSize += batch.SizeInBytes()
		pages = append(pages, batch.Split(*granule)...)
	}

	units, err := exchange.SerializeAll(ctx, factory, pages, *workers)
	if err != nil {
		log.Fatalf("Serialization failed: %v", err)
	}

	w, err := spill.NewWriter(*dataDir, *name, blocks, m)
	if err != nil {
		log.Fatalf("Failed to create spill: %v", err)
	}
	compressed := 0
	for _, sp := range units {
		if sp.IsCompressed() {
			compressed++
		}
		if err := w.WriteSerialized(sp); err != nil {
			w.Abort()
			log.Fatalf("Write failed: %v", err)
		}
	}
	f, err := w.Close()
	if err != nil {
		log.Fatalf("Failed to finish spill: %v", err)
	}

	fmt.Printf("Spill: %s\n", f.Dir)
	fmt.Printf("Schema: %v\n", schema)
	fmt.Printf("Compression: %s (%d/%d pages compressed)\n", compression.MethodName(f.Method), compressed, f.NumPages)
	fmt.Printf("Rows: %s\n", humanize.Comma(int64(f.NumRows)))
	fmt.Printf("Estimated page size: %s, on disk: %s\n", humanize.IBytes(uint64(rawSize)), humanize.IBytes(f.SizeBytes))
}
