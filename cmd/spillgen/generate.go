package main

import (
	"fmt"
	"math/rand"

	"github.com/harshithgowdakt/granuleserde/internal/column"
	"github.com/harshithgowdakt/granuleserde/internal/page"
	"github.com/harshithgowdakt/granuleserde/internal/types"
)

// defaultSchema is shaped like request logs: timestamp, region, request id,
// latency, status code.
const defaultSchema = "DateTime,Dict(String),UInt64,Float32,UInt16"

// dictionaryPool is the number of distinct values in a dictionary channel.
const dictionaryPool = 8

var regions = []string{"us-east", "us-west", "eu-central", "ap-south"}

func generatePage(rng *rand.Rand, schema []types.ChannelType, rows int) *page.Page {
	start := uint32(1700000000 + rng.Intn(86400))
	cols := make([]column.Column, len(schema))
	for c, ct := range schema {
		if ct.Dictionary {
			pool := make([]types.Value, dictionaryPool)
			for i := range pool {
				pool[i] = randomValue(rng, ct.Type, start, i)
			}
			dc := column.NewDictionaryColumn(ct.Type, rows)
			for i := 0; i < rows; i++ {
				dc.Append(pool[rng.Intn(len(pool))])
			}
			cols[c] = dc
			continue
		}
		col := column.NewColumnWithCapacity(ct.Type, rows)
		for i := 0; i < rows; i++ {
			col.Append(randomValue(rng, ct.Type, start, i))
		}
		cols[c] = col
	}
	p, err := page.New(rows, cols...)
	if err != nil {
		panic(err)
	}
	return p
}

// randomValue returns the value of row i for a channel of type dt.
func randomValue(rng *rand.Rand, dt types.DataType, start uint32, i int) types.Value {
	switch dt {
	case types.TypeUInt8:
		return uint8(rng.Intn(256))
	case types.TypeUInt16:
		if rng.Intn(50) == 0 {
			return uint16(500)
		}
		return uint16(200)
	case types.TypeUInt32:
		return rng.Uint32()
	case types.TypeUInt64:
		return rng.Uint64()
	case types.TypeInt8:
		return int8(rng.Intn(256) - 128)
	case types.TypeInt16:
		return int16(rng.Intn(1<<16) - 1<<15)
	case types.TypeInt32:
		return rng.Int31() - 1<<30
	case types.TypeInt64:
		return rng.Int63() - 1<<62
	case types.TypeFloat32:
		return float32(rng.ExpFloat64() * 20)
	case types.TypeFloat64:
		return rng.NormFloat64()
	case types.TypeString:
		if i < len(regions) {
			return regions[i]
		}
		return fmt.Sprintf("%s-%d", regions[i%len(regions)], rng.Intn(1000))
	case types.TypeDateTime:
		return start + uint32(i/16)
	default:
		panic(fmt.Sprintf("unsupported data type: %s", dt))
	}
}
