// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Sensorwire Labs

package bthome

import (
	"bytes"
	"math"
	"testing"
)

// ============================================================
// Registry Tests
// ============================================================

func TestLookupID_Known(t *testing.T) {
	def, ok := LookupID(0x02)
	if !ok {
		t.Fatal("object id 0x02 should be registered")
	}
	if def.Name != "temperature" {
		t.Errorf("Expected temperature, got %q", def.Name)
	}
	if def.Factor != 0.01 || !def.Signed || def.Size != 2 {
		t.Errorf("Wrong definition for 0x02: %+v", def)
	}
}

func TestLookupID_Unknown(t *testing.T) {
	for _, id := range []uint8{0x30, 0x61, 0xAA, 0xEF, 0xFF} {
		if _, ok := LookupID(id); ok {
			t.Errorf("object id 0x%02X should not be registered", id)
		}
	}
}

func TestLookupName_CanonicalAlias(t *testing.T) {
	tests := []struct {
		name string
		id   uint8
	}{
		{"temperature", 0x02}, // also at 0x45, 0x57, 0x58
		{"humidity", 0x03},    // also at 0x2E
		{"moisture", 0x14},    // also at 0x2F
		{"voltage", 0x0C},     // also at 0x4A
		{"energy", 0x0A},      // also at 0x4D
		{"gas", 0x4B},         // also at 0x4C
		{"power", 0x0B},       // also at 0x5C
		{"current", 0x43},     // also at 0x5D
		{"volume", 0x47},      // also at 0x4E
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, _, ok := LookupName(tt.name)
			if !ok {
				t.Fatalf("name %q should resolve", tt.name)
			}
			if id != tt.id {
				t.Errorf("Expected canonical id 0x%02X, got 0x%02X", tt.id, id)
			}
		})
	}
}

func TestLookupName_Unknown(t *testing.T) {
	if _, _, ok := LookupName("flux_capacitance"); ok {
		t.Error("unregistered name should not resolve")
	}
}

func TestIsBinarySensor(t *testing.T) {
	binary := []string{"motion", "door", "window", "occupancy", "smoke",
		"generic_boolean", "power_on", "battery_low", "gas_detected",
		"moisture_warning", "tamper", "lock"}
	for _, name := range binary {
		if !IsBinarySensor(name) {
			t.Errorf("%q should be a binary sensor", name)
		}
	}

	numeric := []string{"packet_id", "count", "count_int8", "uv_index",
		"channel", "battery", "temperature", "humidity", TypeButton,
		TypeDimmer, TypeText, TypeRaw}
	for _, name := range numeric {
		if IsBinarySensor(name) {
			t.Errorf("%q should not be a binary sensor", name)
		}
	}
}

func TestRegistry_AliasNamesShareSemantics(t *testing.T) {
	// Every id sharing a name must agree on its unit, so decoded values of
	// any alias stay comparable.
	units := make(map[string]string)
	for id := 0; id < 256; id++ {
		def, ok := LookupID(uint8(id))
		if !ok {
			continue
		}
		if prev, seen := units[def.Name]; seen && prev != def.Unit {
			t.Errorf("name %q has conflicting units %q and %q", def.Name, prev, def.Unit)
		}
		units[def.Name] = def.Unit
	}
}

// ============================================================
// Integer Codec Tests
// ============================================================

func TestEncodeInteger_LittleEndian(t *testing.T) {
	tests := []struct {
		name     string
		raw      int64
		signed   bool
		width    int
		expected []byte
	}{
		{"uint8", 0x7F, false, 1, []byte{0x7F}},
		{"uint16", 0x0929, false, 2, []byte{0x29, 0x09}},
		{"uint24", 0x01020F, false, 3, []byte{0x0F, 0x02, 0x01}},
		{"uint32 max", 4294967295, false, 4, []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"int16 negative", -1, true, 2, []byte{0xFF, 0xFF}},
		{"int16 min", -32768, true, 2, []byte{0x00, 0x80}},
		{"int8 negative", -40, true, 1, []byte{0xD8}},
		{"int32 negative", -2, true, 4, []byte{0xFE, 0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := encodeInteger(tt.raw, tt.signed, tt.width)
			if err != nil {
				t.Fatalf("Encode error: %v", err)
			}
			if !bytes.Equal(out, tt.expected) {
				t.Errorf("Expected % X, got % X", tt.expected, out)
			}
		})
	}
}

func TestEncodeInteger_Overflow(t *testing.T) {
	tests := []struct {
		name   string
		raw    int64
		signed bool
		width  int
	}{
		{"uint8 too large", 256, false, 1},
		{"uint8 negative", -1, false, 1},
		{"int16 too large", 32768, true, 2},
		{"int16 too small", -32769, true, 2},
		{"uint24 too large", 16777216, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := encodeInteger(tt.raw, tt.signed, tt.width)
			eerr, ok := err.(*EncodeError)
			if !ok {
				t.Fatalf("Expected EncodeError, got %v", err)
			}
			if eerr.Kind != EncodeOverflow {
				t.Errorf("Expected EncodeOverflow, got %v", eerr.Kind)
			}
		})
	}
}

func TestEncodeInteger_UnsupportedWidth(t *testing.T) {
	for _, width := range []int{0, 5, 8} {
		_, err := encodeInteger(0, false, width)
		eerr, ok := err.(*EncodeError)
		if !ok || eerr.Kind != EncodeUnsupportedWidth {
			t.Errorf("width %d: expected EncodeUnsupportedWidth, got %v", width, err)
		}
	}
}

func TestDecodeInteger_SignExtension(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		signed   bool
		expected int64
	}{
		{"uint16", []byte{0x29, 0x09}, false, 2345},
		{"int16 negative", []byte{0xFF, 0xFF}, true, -1},
		{"int16 min", []byte{0x00, 0x80}, true, -32768},
		{"uint16 high bit unsigned", []byte{0x00, 0x80}, false, 32768},
		{"int8 negative", []byte{0xD8}, true, -40},
		{"int24 negative", []byte{0xFF, 0xFF, 0xFF}, true, -1},
		{"uint32", []byte{0x01, 0x00, 0x00, 0x01}, false, 16777217},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeInteger(tt.data, tt.signed)
			if got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestIntegerCodec_RoundTrip(t *testing.T) {
	for key, bounds := range integerRanges {
		values := []int64{bounds.Min, bounds.Min + 1, -1, 0, 1, bounds.Max - 1, bounds.Max}
		for _, v := range values {
			if v < bounds.Min || v > bounds.Max {
				continue
			}
			out, err := encodeInteger(v, key.signed, key.width)
			if err != nil {
				t.Fatalf("encode %d (signed=%v width=%d): %v", v, key.signed, key.width, err)
			}
			if got := decodeInteger(out, key.signed); got != v {
				t.Errorf("round trip %d (signed=%v width=%d): got %d", v, key.signed, key.width, got)
			}
		}
	}
}

func TestScaleToRaw_Rounding(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		factor   float64
		expected int64
	}{
		{"exact", 23.45, 0.01, 2345},
		{"round down", 23.454, 0.01, 2345},
		{"round up", 23.456, 0.01, 2346},
		{"half away from zero positive", 2.5, 1, 3},
		{"half away from zero negative", -2.5, 1, -3},
		{"factor one", 42, 1, 42},
		{"millivolts", 3.305, 0.001, 3305},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scaleToRaw(tt.value, tt.factor)
			if err != nil {
				t.Fatalf("scaleToRaw error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestScaleToRaw_Overflow(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1e300} {
		_, err := scaleToRaw(v, 0.001)
		eerr, ok := err.(*EncodeError)
		if !ok || eerr.Kind != EncodeOverflow {
			t.Errorf("value %g: expected EncodeOverflow, got %v", v, err)
		}
	}
}

// ============================================================
// Value Shape Tests
// ============================================================

func TestButtonEvent_String(t *testing.T) {
	tests := []struct {
		event    ButtonEvent
		expected string
	}{
		{ButtonNone, "none"},
		{ButtonPress, "press"},
		{ButtonDoublePress, "double_press"},
		{ButtonLongPress, "long_press"},
		{ButtonHoldPress, "hold_press"},
		{ButtonHoldPressAlt, "hold_press"},
		{ButtonRelease, "release"},
		{ButtonEvent(0x42), "66"},
	}
	for _, tt := range tests {
		if got := tt.event.String(); got != tt.expected {
			t.Errorf("ButtonEvent(0x%02X): expected %q, got %q", uint8(tt.event), tt.expected, got)
		}
	}
}

func TestDimmerEvent_String(t *testing.T) {
	ev := DimmerEvent{Action: DimmerRotateLeft, Steps: 3}
	if got := ev.String(); got != "rotate_left (3 steps)" {
		t.Errorf("Unexpected dimmer string: %q", got)
	}
}

func TestFirmwareVersion_String(t *testing.T) {
	with := FirmwareVersion{Major: 1, Minor: 2, Patch: 3, Build: 4, HasBuild: true}
	if got := with.String(); got != "1.2.3+4" {
		t.Errorf("Expected 1.2.3+4, got %q", got)
	}
	without := FirmwareVersion{Major: 6, Minor: 1, Patch: 0}
	if got := without.String(); got != "6.1.0" {
		t.Errorf("Expected 6.1.0, got %q", got)
	}
}

func TestDecodeValue_FirmwareVersion32(t *testing.T) {
	def, _ := LookupID(0xF1)
	// 0x01020304 little-endian on the wire
	v := decodeValue(def, []byte{0x04, 0x03, 0x02, 0x01})
	fw, ok := v.(FirmwareVersion)
	if !ok {
		t.Fatalf("Expected FirmwareVersion, got %T", v)
	}
	if fw.Major != 1 || fw.Minor != 2 || fw.Patch != 3 || fw.Build != 4 || !fw.HasBuild {
		t.Errorf("Wrong decomposition: %+v", fw)
	}
}

func TestDecodeValue_FirmwareVersion24(t *testing.T) {
	def, _ := LookupID(0xF2)
	v := decodeValue(def, []byte{0x00, 0x01, 0x06})
	fw, ok := v.(FirmwareVersion)
	if !ok {
		t.Fatalf("Expected FirmwareVersion, got %T", v)
	}
	if fw.Major != 6 || fw.Minor != 1 || fw.Patch != 0 || fw.HasBuild {
		t.Errorf("Wrong decomposition: %+v", fw)
	}
}

func TestMeasurement_Accessors(t *testing.T) {
	m := NewMeasurement("temperature", 23.45)
	if m.Unit != "°C" {
		t.Errorf("Expected unit °C, got %q", m.Unit)
	}
	if n, ok := m.Number(); !ok || n != 23.45 {
		t.Errorf("Number() = %v, %v", n, ok)
	}
	if _, ok := m.Bool(); ok {
		t.Error("Bool() should fail for numeric value")
	}

	b := NewMeasurement("motion", true)
	if v, ok := b.Bool(); !ok || !v {
		t.Errorf("Bool() = %v, %v", v, ok)
	}
	if _, ok := b.Number(); ok {
		t.Error("Number() should fail for boolean value")
	}
}
