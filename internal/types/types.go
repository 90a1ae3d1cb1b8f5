package types

import (
	"fmt"
	"strings"
)

// DataType identifies the value type of a channel. The numeric value is the
// type byte written by the block codec, so constants are append-only.
type DataType uint8

const (
	TypeUInt8 DataType = iota
	TypeUInt16
	TypeUInt32
	TypeUInt64
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeString
	TypeDateTime // uint32 unix seconds

	numTypes
)

var typeNames = [numTypes]string{
	TypeUInt8:    "UInt8",
	TypeUInt16:   "UInt16",
	TypeUInt32:   "UInt32",
	TypeUInt64:   "UInt64",
	TypeInt8:     "Int8",
	TypeInt16:    "Int16",
	TypeInt32:    "Int32",
	TypeInt64:    "Int64",
	TypeFloat32:  "Float32",
	TypeFloat64:  "Float64",
	TypeString:   "String",
	TypeDateTime: "DateTime",
}

var fixedSizes = [numTypes]int{
	TypeUInt8:    1,
	TypeUInt16:   2,
	TypeUInt32:   4,
	TypeUInt64:   8,
	TypeInt8:     1,
	TypeInt16:    2,
	TypeInt32:    4,
	TypeInt64:    8,
	TypeFloat32:  4,
	TypeFloat64:  8,
	TypeDateTime: 4,
}

// Valid reports whether dt is a known type. Type bytes read from a buffer
// must be checked before use.
func (dt DataType) Valid() bool { return dt < numTypes }

// Name returns the display name of dt, or "Unknown".
func (dt DataType) Name() string {
	if !dt.Valid() {
		return "Unknown"
	}
	return typeNames[dt]
}

func (dt DataType) String() string { return dt.Name() }

// FixedSize returns the encoded width of one value, 0 for String and
// unknown types.
func (dt DataType) FixedSize() int {
	if !dt.Valid() {
		return 0
	}
	return fixedSizes[dt]
}

// ParseDataType resolves a type name, ignoring case and surrounding space.
func ParseDataType(name string) (DataType, error) {
	s := strings.TrimSpace(name)
	for dt, n := range typeNames {
		if strings.EqualFold(n, s) {
			return DataType(dt), nil
		}
	}
	return 0, fmt.Errorf("unknown data type: %q", name)
}

// ChannelType is a channel's value type plus whether it is dictionary
// encoded. It is written as "Type" or "Dict(Type)".
type ChannelType struct {
	Type       DataType
	Dictionary bool
}

func (ct ChannelType) String() string {
	if ct.Dictionary {
		return "Dict(" + ct.Type.Name() + ")"
	}
	return ct.Type.Name()
}

// ParseChannelType parses "Type" or "Dict(Type)".
func ParseChannelType(s string) (ChannelType, error) {
	s = strings.TrimSpace(s)
	if len(s) > len("Dict()") && strings.EqualFold(s[:5], "dict(") && s[len(s)-1] == ')' {
		dt, err := ParseDataType(s[5 : len(s)-1])
		if err != nil {
			return ChannelType{}, err
		}
		return ChannelType{Type: dt, Dictionary: true}, nil
	}
	dt, err := ParseDataType(s)
	if err != nil {
		return ChannelType{}, err
	}
	return ChannelType{Type: dt}, nil
}

// ParseSchema parses a comma-separated list of channel types.
func ParseSchema(s string) ([]ChannelType, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty schema")
	}
	parts := strings.Split(s, ",")
	out := make([]ChannelType, 0, len(parts))
	for i, p := range parts {
		ct, err := ParseChannelType(p)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}
		out = append(out, ct)
	}
	return out, nil
}
