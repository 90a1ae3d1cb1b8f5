package types_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshithgowdakt/granuleserde/internal/types"
)

func TestParseDataType(t *testing.T) {
	dt, err := types.ParseDataType(" uint64 ")
	require.NoError(t, err)
	assert.Equal(t, types.TypeUInt64, dt)
	assert.Equal(t, 8, dt.FixedSize())

	dt, err = types.ParseDataType("String")
	require.NoError(t, err)
	assert.Equal(t, 0, dt.FixedSize())

	_, err = types.ParseDataType("Decimal")
	assert.Error(t, err)
}

func TestNamesRoundTrip(t *testing.T) {
	for dt := types.TypeUInt8; dt.Valid(); dt++ {
		got, err := types.ParseDataType(dt.Name())
		require.NoError(t, err)
		assert.Equal(t, dt, got)
	}
}

func TestValid(t *testing.T) {
	assert.True(t, types.TypeDateTime.Valid())
	assert.False(t, types.DataType(200).Valid())
	assert.Equal(t, "Unknown", types.DataType(200).Name())
	assert.Equal(t, 0, types.DataType(200).FixedSize())
}

func TestParseSchema(t *testing.T) {
	schema, err := types.ParseSchema("DateTime, dict(String),UInt64,Float32")
	require.NoError(t, err)
	assert.Equal(t, []types.ChannelType{
		{Type: types.TypeDateTime},
		{Type: types.TypeString, Dictionary: true},
		{Type: types.TypeUInt64},
		{Type: types.TypeFloat32},
	}, schema)
	assert.Equal(t, "Dict(String)", schema[1].String())

	for _, bad := range []string{"", "UInt64,", "Dict()", "Dict(Blob)", "Dict(String"} {
		_, err := types.ParseSchema(bad)
		assert.Error(t, err, bad)
	}
}

func TestSameValue(t *testing.T) {
	assert.True(t, types.SameValue(int32(-4), int32(-4)))
	assert.False(t, types.SameValue(int32(1), int64(1)))
	assert.True(t, types.SameValue(math.NaN(), math.NaN()))
	assert.False(t, types.SameValue(0.0, math.Copysign(0, -1)))
	assert.True(t, types.SameValue("a", "a"))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "2023-11-14T22:13:20Z", types.FormatValue(types.TypeDateTime, uint32(1700000000)))
	assert.Equal(t, "1700000000", types.FormatValue(types.TypeUInt32, uint32(1700000000)))
	assert.Equal(t, "-3", types.FormatValue(types.TypeInt8, int8(-3)))
	assert.Equal(t, "0.5", types.FormatValue(types.TypeFloat32, float32(0.5)))
	assert.Equal(t, "NULL", types.FormatValue(types.TypeString, nil))
}
