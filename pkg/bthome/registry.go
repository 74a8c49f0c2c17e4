// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Sensorwire Labs

// Package bthome implements the BTHome v2 binary sensor-telemetry format.
//
// BTHome packs a device-info byte, an optional device address, and a
// sequence of (object id, value) pairs into a compact byte string that
// low-power devices broadcast as BLE service data. Payloads may be
// protected with AES-128-CCM authenticated encryption.
//
// This package provides the object-id registry, value encoding/decoding,
// measurement validation, the payload stream decoder, and the encryption
// layer. See https://bthome.io/format/ for the wire format reference.
package bthome

// Device-info byte layout: bits 7-5 version, bit 4 trigger-based,
// bits 3-1 reserved, bit 0 encryption.
const (
	Version = 2

	deviceInfoVersionShift = 5
	deviceInfoTriggerFlag  = 0x10
	deviceInfoEncryptFlag  = 0x01
)

// SizeVariable marks object types whose value carries a one-byte length
// prefix instead of a fixed width.
const SizeVariable = 0

// DeviceAddressSize is the length of an embedded device address in bytes.
const DeviceAddressSize = 6

// Measurement type names with special value encodings.
const (
	TypeButton            = "button"
	TypeDimmer            = "dimmer"
	TypeFirmwareVersion32 = "firmware_version_uint32"
	TypeFirmwareVersion24 = "firmware_version_uint24"
	TypeText              = "text"
	TypeRaw               = "raw"

	// TypeUnknown tags the synthetic measurement produced when the
	// decoder hits an unregistered object id.
	TypeUnknown = "unknown"
)

// ObjectDefinition describes one entry of the object-id registry.
type ObjectDefinition struct {
	Name   string
	Unit   string
	Factor float64
	Signed bool
	Size   int // value width in bytes, or SizeVariable
}

// objectTable is the static BTHome v2 object-id registry. One semantic
// name may appear under several ids (e.g. temperature at different
// resolutions); name lookups resolve to the lowest id.
var objectTable = map[uint8]ObjectDefinition{
	0x00: {Name: "packet_id", Unit: "", Factor: 1, Size: 1},
	0x01: {Name: "battery", Unit: "%", Factor: 1, Size: 1},
	0x02: {Name: "temperature", Unit: "°C", Factor: 0.01, Signed: true, Size: 2},
	0x03: {Name: "humidity", Unit: "%", Factor: 0.01, Size: 2},
	0x04: {Name: "pressure", Unit: "hPa", Factor: 0.01, Size: 3},
	0x05: {Name: "illuminance", Unit: "lux", Factor: 0.01, Size: 3},
	0x06: {Name: "mass", Unit: "kg", Factor: 0.01, Size: 2},
	0x07: {Name: "mass_lb", Unit: "lb", Factor: 0.01, Size: 2},
	0x08: {Name: "dewpoint", Unit: "°C", Factor: 0.01, Signed: true, Size: 2},
	0x09: {Name: "count", Unit: "", Factor: 1, Size: 1},
	0x0A: {Name: "energy", Unit: "kWh", Factor: 0.001, Size: 3},
	0x0B: {Name: "power", Unit: "W", Factor: 0.01, Size: 3},
	0x0C: {Name: "voltage", Unit: "V", Factor: 0.001, Size: 2},
	0x0D: {Name: "pm2_5", Unit: "µg/m³", Factor: 1, Size: 2},
	0x0E: {Name: "pm10", Unit: "µg/m³", Factor: 1, Size: 2},

	// Binary sensors: unitless single-byte 0/1 values.
	0x0F: {Name: "generic_boolean", Unit: "", Factor: 1, Size: 1},
	0x10: {Name: "power_on", Unit: "", Factor: 1, Size: 1},
	0x11: {Name: "opening", Unit: "", Factor: 1, Size: 1},
	0x12: {Name: "co2", Unit: "ppm", Factor: 1, Size: 2},
	0x13: {Name: "tvoc", Unit: "µg/m³", Factor: 1, Size: 2},
	0x14: {Name: "moisture", Unit: "%", Factor: 0.01, Size: 2},
	0x15: {Name: "battery_low", Unit: "", Factor: 1, Size: 1},
	0x16: {Name: "battery_charging", Unit: "", Factor: 1, Size: 1},
	0x17: {Name: "carbon_monoxide", Unit: "", Factor: 1, Size: 1},
	0x18: {Name: "cold", Unit: "", Factor: 1, Size: 1},
	0x19: {Name: "connectivity", Unit: "", Factor: 1, Size: 1},
	0x1A: {Name: "door", Unit: "", Factor: 1, Size: 1},
	0x1B: {Name: "garage_door", Unit: "", Factor: 1, Size: 1},
	0x1C: {Name: "gas_detected", Unit: "", Factor: 1, Size: 1},
	0x1D: {Name: "heat", Unit: "", Factor: 1, Size: 1},
	0x1E: {Name: "light", Unit: "", Factor: 1, Size: 1},
	0x1F: {Name: "lock", Unit: "", Factor: 1, Size: 1},
	0x20: {Name: "moisture_warning", Unit: "", Factor: 1, Size: 1},
	0x21: {Name: "motion", Unit: "", Factor: 1, Size: 1},
	0x22: {Name: "moving", Unit: "", Factor: 1, Size: 1},
	0x23: {Name: "occupancy", Unit: "", Factor: 1, Size: 1},
	0x24: {Name: "plug", Unit: "", Factor: 1, Size: 1},
	0x25: {Name: "presence", Unit: "", Factor: 1, Size: 1},
	0x26: {Name: "problem", Unit: "", Factor: 1, Size: 1},
	0x27: {Name: "running", Unit: "", Factor: 1, Size: 1},
	0x28: {Name: "safety", Unit: "", Factor: 1, Size: 1},
	0x29: {Name: "smoke", Unit: "", Factor: 1, Size: 1},
	0x2A: {Name: "sound", Unit: "", Factor: 1, Size: 1},
	0x2B: {Name: "tamper", Unit: "", Factor: 1, Size: 1},
	0x2C: {Name: "vibration", Unit: "", Factor: 1, Size: 1},
	0x2D: {Name: "window", Unit: "", Factor: 1, Size: 1},

	0x2E: {Name: "humidity", Unit: "%", Factor: 1, Size: 1},
	0x2F: {Name: "moisture", Unit: "%", Factor: 1, Size: 1},

	// Events.
	0x3A: {Name: TypeButton, Unit: "", Factor: 1, Size: 1},
	0x3C: {Name: TypeDimmer, Unit: "", Factor: 1, Size: 2},

	0x3D: {Name: "count_uint16", Unit: "", Factor: 1, Size: 2},
	0x3E: {Name: "count_uint32", Unit: "", Factor: 1, Size: 4},
	0x3F: {Name: "rotation", Unit: "°", Factor: 0.1, Signed: true, Size: 2},
	0x40: {Name: "distance_mm", Unit: "mm", Factor: 1, Size: 2},
	0x41: {Name: "distance_m", Unit: "m", Factor: 0.1, Size: 2},
	0x42: {Name: "duration", Unit: "s", Factor: 0.001, Size: 3},
	0x43: {Name: "current", Unit: "A", Factor: 0.001, Size: 2},
	0x44: {Name: "speed", Unit: "m/s", Factor: 0.01, Size: 2},
	0x45: {Name: "temperature", Unit: "°C", Factor: 0.1, Signed: true, Size: 2},
	0x46: {Name: "uv_index", Unit: "", Factor: 0.1, Size: 1},
	0x47: {Name: "volume", Unit: "L", Factor: 0.1, Size: 2},
	0x48: {Name: "volume_ml", Unit: "mL", Factor: 1, Size: 2},
	0x49: {Name: "volume_flow_rate", Unit: "m³/hr", Factor: 0.001, Size: 2},
	0x4A: {Name: "voltage", Unit: "V", Factor: 0.1, Size: 2},
	0x4B: {Name: "gas", Unit: "m³", Factor: 0.001, Size: 3},
	0x4C: {Name: "gas", Unit: "m³", Factor: 0.001, Size: 4},
	0x4D: {Name: "energy", Unit: "kWh", Factor: 0.001, Size: 4},
	0x4E: {Name: "volume", Unit: "L", Factor: 0.001, Size: 4},
	0x4F: {Name: "water", Unit: "L", Factor: 0.001, Size: 4},
	0x50: {Name: "timestamp", Unit: "", Factor: 1, Size: 4},
	0x51: {Name: "acceleration", Unit: "m/s²", Factor: 0.001, Size: 2},
	0x52: {Name: "gyroscope", Unit: "°/s", Factor: 0.001, Size: 2},
	0x53: {Name: TypeText, Unit: "", Factor: 1, Size: SizeVariable},
	0x54: {Name: TypeRaw, Unit: "", Factor: 1, Size: SizeVariable},
	0x55: {Name: "volume_storage", Unit: "L", Factor: 0.001, Size: 4},
	0x56: {Name: "conductivity", Unit: "µS/cm", Factor: 1, Size: 2},
	0x57: {Name: "temperature", Unit: "°C", Factor: 1, Signed: true, Size: 1},
	0x58: {Name: "temperature", Unit: "°C", Factor: 0.35, Signed: true, Size: 1},
	0x59: {Name: "count_int8", Unit: "", Factor: 1, Signed: true, Size: 1},
	0x5A: {Name: "count_int16", Unit: "", Factor: 1, Signed: true, Size: 2},
	0x5B: {Name: "count_int32", Unit: "", Factor: 1, Signed: true, Size: 4},
	0x5C: {Name: "power", Unit: "W", Factor: 0.01, Signed: true, Size: 4},
	0x5D: {Name: "current", Unit: "A", Factor: 0.001, Signed: true, Size: 2},
	0x5E: {Name: "direction", Unit: "°", Factor: 0.01, Size: 2},
	0x5F: {Name: "precipitation", Unit: "mm", Factor: 1, Size: 2},
	0x60: {Name: "channel", Unit: "", Factor: 1, Size: 1},

	// Device metadata.
	0xF0: {Name: "device_type_id", Unit: "", Factor: 1, Size: 2},
	0xF1: {Name: TypeFirmwareVersion32, Unit: "", Factor: 1, Size: 4},
	0xF2: {Name: TypeFirmwareVersion24, Unit: "", Factor: 1, Size: 3},
}

// binarySensorExclusions lists single-byte, factor-1, unitless types that
// carry numeric or event semantics rather than booleans. Classification of
// a type as a binary sensor is rule-based (see isBinaryDefinition), not a
// per-entry flag; this set is the rule's only escape hatch.
var binarySensorExclusions = map[string]bool{
	"packet_id":           true,
	"count":               true,
	"count_int8":          true,
	"uv_index":            true,
	"channel":             true,
	"device_type_id":      true,
	TypeButton:            true,
	TypeDimmer:            true,
	TypeFirmwareVersion32: true,
	TypeFirmwareVersion24: true,
}

// nameIndex maps a semantic name to its canonical (lowest) object id.
var nameIndex map[string]uint8

func init() {
	nameIndex = make(map[string]uint8, len(objectTable))
	for id := 0; id < 256; id++ {
		def, ok := objectTable[uint8(id)]
		if !ok {
			continue
		}
		if _, seen := nameIndex[def.Name]; !seen {
			nameIndex[def.Name] = uint8(id)
		}
	}
}

// LookupID returns the registry definition for an object id.
func LookupID(id uint8) (ObjectDefinition, bool) {
	def, ok := objectTable[id]
	return def, ok
}

// LookupName returns the canonical object id and definition for a semantic
// name. Names aliased to multiple ids resolve to the lowest id.
func LookupName(name string) (uint8, ObjectDefinition, bool) {
	id, ok := nameIndex[name]
	if !ok {
		return 0, ObjectDefinition{}, false
	}
	return id, objectTable[id], true
}

// IsBinarySensor reports whether the named type carries a boolean value.
func IsBinarySensor(name string) bool {
	_, def, ok := LookupName(name)
	return ok && isBinaryDefinition(def)
}

// isBinaryDefinition applies the binary-sensor classification rule: a
// unitless single-byte type with factor 1 whose name is not excluded.
func isBinaryDefinition(def ObjectDefinition) bool {
	return def.Unit == "" && def.Size == 1 && def.Factor == 1 &&
		!binarySensorExclusions[def.Name]
}

// isRegisteredID reports whether an object id exists in the registry.
// The decoder's address heuristic relies on this check.
func isRegisteredID(id uint8) bool {
	_, ok := objectTable[id]
	return ok
}
