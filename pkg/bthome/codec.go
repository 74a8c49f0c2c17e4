// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Sensorwire Labs

package bthome

import (
	"fmt"
	"math"
)

// boundsKey selects an integer range by signedness and byte width.
type boundsKey struct {
	signed bool
	width  int
}

type integerBounds struct {
	Min int64
	Max int64
}

// integerRanges centralizes the representable range for every supported
// (signed, width) pair. Widths outside this table are configuration errors.
var integerRanges = map[boundsKey]integerBounds{
	{false, 1}: {0, 255},
	{true, 1}:  {-128, 127},
	{false, 2}: {0, 65535},
	{true, 2}:  {-32768, 32767},
	{false, 3}: {0, 16777215},
	{true, 3}:  {-8388608, 8388607},
	{false, 4}: {0, 4294967295},
	{true, 4}:  {-2147483648, 2147483647},
}

// encodeInteger packs a raw integer into little-endian bytes of the given
// width. Width 4 is the maximum the format supports.
func encodeInteger(raw int64, signed bool, width int) ([]byte, error) {
	bounds, ok := integerRanges[boundsKey{signed, width}]
	if !ok {
		return nil, &EncodeError{
			Kind:    EncodeUnsupportedWidth,
			Message: fmt.Sprintf("unsupported integer width %d (max 4)", width),
		}
	}
	if raw < bounds.Min || raw > bounds.Max {
		return nil, &EncodeError{
			Kind:    EncodeOverflow,
			Message: fmt.Sprintf("raw value %d out of range [%d, %d] for width %d", raw, bounds.Min, bounds.Max, width),
		}
	}

	out := make([]byte, width)
	u := uint64(raw) // two's complement for negatives
	for i := 0; i < width; i++ {
		out[i] = byte(u >> (8 * i))
	}
	return out, nil
}

// decodeInteger unpacks little-endian bytes into a raw integer,
// sign-extending when the type is signed.
func decodeInteger(data []byte, signed bool) int64 {
	var u uint64
	for i, b := range data {
		u |= uint64(b) << (8 * i)
	}
	if signed {
		bits := uint(len(data)) * 8
		if bits < 64 && u&(1<<(bits-1)) != 0 {
			u |= ^uint64(0) << bits
		}
	}
	return int64(u)
}

// scaleToRaw converts a physical value to its transmitted integer using the
// type's scale factor. Rounding rule: math.Round, i.e. half away from zero;
// 0.5-unit inputs round outward, which bounds round-trip error at one unit.
func scaleToRaw(value, factor float64) (int64, error) {
	q := value / factor
	if math.IsNaN(q) || math.IsInf(q, 0) || q >= math.MaxInt64 || q <= math.MinInt64 {
		return 0, &EncodeError{
			Kind:    EncodeOverflow,
			Message: fmt.Sprintf("value %g overflows after scaling by factor %g", value, factor),
		}
	}
	return int64(math.Round(q)), nil
}

// decodeValue interprets one measurement's value bytes against its registry
// definition. For fixed-width types data is exactly def.Size bytes; for
// variable-width types it is the length-prefixed payload with the prefix
// already stripped.
func decodeValue(def ObjectDefinition, data []byte) interface{} {
	switch def.Name {
	case TypeButton:
		return ButtonEvent(data[0])

	case TypeDimmer:
		return DimmerEvent{Action: DimmerAction(data[0]), Steps: data[1]}

	case TypeFirmwareVersion32:
		raw := uint32(decodeInteger(data, false))
		return FirmwareVersion{
			Major:    uint8(raw >> 24),
			Minor:    uint8(raw >> 16),
			Patch:    uint8(raw >> 8),
			Build:    uint8(raw),
			HasBuild: true,
		}

	case TypeFirmwareVersion24:
		raw := uint32(decodeInteger(data, false))
		return FirmwareVersion{
			Major: uint8(raw >> 16),
			Minor: uint8(raw >> 8),
			Patch: uint8(raw),
		}

	case TypeText:
		return string(data)

	case TypeRaw:
		out := make([]byte, len(data))
		copy(out, data)
		return out

	default:
		raw := decodeInteger(data, def.Signed)
		if isBinaryDefinition(def) {
			return raw != 0
		}
		return float64(raw) * def.Factor
	}
}

// encodeValue packs a measurement value into wire bytes per its registry
// definition. Variable-width types include the one-byte length prefix.
func encodeValue(def ObjectDefinition, value interface{}) ([]byte, error) {
	switch def.Name {
	case TypeButton:
		if ev, ok := value.(ButtonEvent); ok {
			return []byte{byte(ev)}, nil
		}
		n, ok := numericValue(value)
		if !ok {
			return nil, wrongShapeError(def.Name, value)
		}
		return encodeInteger(int64(n), false, 1)

	case TypeDimmer:
		ev, ok := value.(DimmerEvent)
		if !ok {
			return nil, wrongShapeError(def.Name, value)
		}
		return []byte{byte(ev.Action), ev.Steps}, nil

	case TypeFirmwareVersion32:
		fw, ok := value.(FirmwareVersion)
		if !ok {
			return nil, wrongShapeError(def.Name, value)
		}
		raw := uint32(fw.Major)<<24 | uint32(fw.Minor)<<16 | uint32(fw.Patch)<<8 | uint32(fw.Build)
		return encodeInteger(int64(raw), false, 4)

	case TypeFirmwareVersion24:
		fw, ok := value.(FirmwareVersion)
		if !ok {
			return nil, wrongShapeError(def.Name, value)
		}
		raw := uint32(fw.Major)<<16 | uint32(fw.Minor)<<8 | uint32(fw.Patch)
		return encodeInteger(int64(raw), false, 3)

	case TypeText:
		var payload []byte
		switch v := value.(type) {
		case string:
			payload = []byte(v)
		case []byte:
			payload = v
		default:
			return nil, wrongShapeError(def.Name, value)
		}
		return encodeVariable(def.Name, payload)

	case TypeRaw:
		payload, ok := value.([]byte)
		if !ok {
			return nil, wrongShapeError(def.Name, value)
		}
		return encodeVariable(def.Name, payload)

	default:
		if isBinaryDefinition(def) {
			b, ok := value.(bool)
			if !ok {
				return nil, wrongShapeError(def.Name, value)
			}
			if b {
				return []byte{1}, nil
			}
			return []byte{0}, nil
		}

		n, ok := numericValue(value)
		if !ok {
			return nil, wrongShapeError(def.Name, value)
		}
		raw, err := scaleToRaw(n, def.Factor)
		if err != nil {
			return nil, err
		}
		return encodeInteger(raw, def.Signed, def.Size)
	}
}

// encodeVariable prefixes a payload with its one-byte length.
func encodeVariable(name string, payload []byte) ([]byte, error) {
	if len(payload) > 255 {
		return nil, &EncodeError{
			Kind:    EncodeOverflow,
			Message: fmt.Sprintf("%s payload too long: %d bytes (max 255)", name, len(payload)),
		}
	}
	out := make([]byte, 0, len(payload)+1)
	out = append(out, byte(len(payload)))
	return append(out, payload...), nil
}

func wrongShapeError(name string, value interface{}) error {
	return &EncodeError{
		Kind:    EncodeBadParameter,
		Message: fmt.Sprintf("unsupported value %T for type %q", value, name),
	}
}
