// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Sensorwire Labs

package bthome

import "fmt"

// ButtonEvent is the decoded value of a button object. Bytes outside the
// enumerated set pass through as their raw numeric value.
type ButtonEvent uint8

// Button event values
const (
	ButtonNone            ButtonEvent = 0x00
	ButtonPress           ButtonEvent = 0x01
	ButtonDoublePress     ButtonEvent = 0x02
	ButtonTriplePress     ButtonEvent = 0x03
	ButtonLongPress       ButtonEvent = 0x04
	ButtonLongDoublePress ButtonEvent = 0x05
	ButtonLongTriplePress ButtonEvent = 0x06
	ButtonHoldPress       ButtonEvent = 0x80
	ButtonHoldPressAlt    ButtonEvent = 0xFE
	ButtonRelease         ButtonEvent = 0xFF
)

// String returns the event name, or the raw value for unmapped bytes.
func (b ButtonEvent) String() string {
	switch b {
	case ButtonNone:
		return "none"
	case ButtonPress:
		return "press"
	case ButtonDoublePress:
		return "double_press"
	case ButtonTriplePress:
		return "triple_press"
	case ButtonLongPress:
		return "long_press"
	case ButtonLongDoublePress:
		return "long_double_press"
	case ButtonLongTriplePress:
		return "long_triple_press"
	case ButtonHoldPress, ButtonHoldPressAlt:
		return "hold_press"
	case ButtonRelease:
		return "release"
	default:
		return fmt.Sprintf("%d", uint8(b))
	}
}

// DimmerAction is the low-byte event of a dimmer object.
type DimmerAction uint8

// Dimmer action values
const (
	DimmerNone        DimmerAction = 0x00
	DimmerRotateLeft  DimmerAction = 0x01
	DimmerRotateRight DimmerAction = 0x02
)

// String returns the action name, or the raw value for unmapped bytes.
func (d DimmerAction) String() string {
	switch d {
	case DimmerNone:
		return "none"
	case DimmerRotateLeft:
		return "rotate_left"
	case DimmerRotateRight:
		return "rotate_right"
	default:
		return fmt.Sprintf("%d", uint8(d))
	}
}

// DimmerEvent is the decoded value of a dimmer object: an action plus the
// number of rotation steps.
type DimmerEvent struct {
	Action DimmerAction `json:"action"`
	Steps  uint8        `json:"steps"`
}

// String formats the event as "action (n steps)".
func (d DimmerEvent) String() string {
	return fmt.Sprintf("%s (%d steps)", d.Action, d.Steps)
}

// FirmwareVersion is the decoded value of a firmware-version object.
// HasBuild is false for the 3-byte encoding, which has no build field.
type FirmwareVersion struct {
	Major    uint8 `json:"major"`
	Minor    uint8 `json:"minor"`
	Patch    uint8 `json:"patch"`
	Build    uint8 `json:"build,omitempty"`
	HasBuild bool  `json:"-"`
}

// String formats the version as "major.minor.patch" or "major.minor.patch+build".
func (f FirmwareVersion) String() string {
	if f.HasBuild {
		return fmt.Sprintf("%d.%d.%d+%d", f.Major, f.Minor, f.Patch, f.Build)
	}
	return fmt.Sprintf("%d.%d.%d", f.Major, f.Minor, f.Patch)
}

// Measurement is one sensor reading or event. Value holds one of: float64
// (numeric sensors), bool (binary sensors), ButtonEvent, DimmerEvent,
// FirmwareVersion, string (text) or []byte (raw).
//
// ObjectID, when set before encoding, bypasses the name-to-id lookup and
// selects an exact registry entry. The decoder always fills it in.
// UnknownPayload is set only on the synthetic TypeUnknown measurement.
type Measurement struct {
	Type           string      `json:"type"`
	Value          interface{} `json:"value"`
	Unit           string      `json:"unit,omitempty"`
	ObjectID       *uint8      `json:"object_id,omitempty"`
	UnknownPayload []byte      `json:"unknown_payload,omitempty"`
}

// NewMeasurement creates a measurement for a registry type name.
func NewMeasurement(typ string, value interface{}) Measurement {
	m := Measurement{Type: typ, Value: value}
	if _, def, ok := LookupName(typ); ok {
		m.Unit = def.Unit
	}
	return m
}

// Number returns the measurement value as a float64 if it is numeric.
func (m Measurement) Number() (float64, bool) {
	return numericValue(m.Value)
}

// Bool returns the measurement value as a bool if it is boolean.
func (m Measurement) Bool() (bool, bool) {
	v, ok := m.Value.(bool)
	return v, ok
}

// numericValue coerces the numeric shapes a caller may supply.
func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// DecodedEnvelope is the result of one Decode call. Measurements appear in
// wire order. For encrypted payloads the ciphertext, counter and MIC are
// present as far as the encrypted tail could be parsed; Counter and MIC are
// nil when the tail is shorter than 8 bytes.
type DecodedEnvelope struct {
	Version       int           `json:"version"`
	Encrypted     bool          `json:"encrypted"`
	TriggerBased  bool          `json:"trigger_based"`
	Measurements  []Measurement `json:"measurements"`
	DeviceAddress []byte        `json:"device_address,omitempty"`
	Ciphertext    []byte        `json:"ciphertext,omitempty"`
	Counter       *uint32       `json:"counter,omitempty"`
	MIC           []byte        `json:"mic,omitempty"`
}
