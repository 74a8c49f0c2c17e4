// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Sensorwire Labs

package bthome

import (
	"fmt"
	"math"
)

// resolveDefinition finds the registry entry for a measurement. An explicit
// ObjectID bypasses the name lookup but must still exist in the registry.
func resolveDefinition(m Measurement) (uint8, ObjectDefinition, error) {
	if m.ObjectID != nil {
		def, ok := LookupID(*m.ObjectID)
		if !ok {
			return 0, ObjectDefinition{}, &ValidationError{
				Kind:    ValidationUnsupportedType,
				Index:   -1,
				Message: fmt.Sprintf("object id 0x%02X is not registered", *m.ObjectID),
			}
		}
		return *m.ObjectID, def, nil
	}

	id, def, ok := LookupName(m.Type)
	if !ok {
		return 0, ObjectDefinition{}, &ValidationError{
			Kind:    ValidationUnsupportedType,
			Index:   -1,
			Message: fmt.Sprintf("unsupported measurement type %q", m.Type),
		}
	}
	return id, def, nil
}

// ValidateMeasurement checks that a single measurement can be encoded:
// the type must resolve in the registry, the value must match the type's
// shape (boolean only for binary sensors), and numeric values must fit the
// type's integer range after factor conversion.
func ValidateMeasurement(m Measurement) error {
	_, def, err := resolveDefinition(m)
	if err != nil {
		return err
	}
	return validateValue(def, m.Value)
}

// ValidateMeasurements validates a list in order and halts at the first
// failure, reporting its zero-based index.
func ValidateMeasurements(measurements []Measurement) error {
	for i, m := range measurements {
		if err := ValidateMeasurement(m); err != nil {
			if verr, ok := err.(*ValidationError); ok {
				return &ValidationError{
					Kind:    verr.Kind,
					Index:   i,
					Message: fmt.Sprintf("measurement %d: %s", i, verr.Message),
				}
			}
			return err
		}
	}
	return nil
}

func validateValue(def ObjectDefinition, value interface{}) error {
	switch def.Name {
	case TypeButton:
		if _, ok := value.(ButtonEvent); ok {
			return nil
		}
		return validateRange(def, value)

	case TypeDimmer:
		if _, ok := value.(DimmerEvent); !ok {
			return wrongKindError(def.Name, value, "a DimmerEvent")
		}
		return nil

	case TypeFirmwareVersion32, TypeFirmwareVersion24:
		if _, ok := value.(FirmwareVersion); !ok {
			return wrongKindError(def.Name, value, "a FirmwareVersion")
		}
		return nil

	case TypeText:
		switch v := value.(type) {
		case string:
			return validateVariableLength(def.Name, len(v))
		case []byte:
			return validateVariableLength(def.Name, len(v))
		}
		return wrongKindError(def.Name, value, "a string")

	case TypeRaw:
		v, ok := value.([]byte)
		if !ok {
			return wrongKindError(def.Name, value, "a byte slice")
		}
		return validateVariableLength(def.Name, len(v))
	}

	if b, ok := value.(bool); ok {
		if !isBinaryDefinition(def) {
			return &ValidationError{
				Kind:    ValidationWrongValueKind,
				Index:   -1,
				Message: fmt.Sprintf("boolean value %v not allowed for non-binary type %q", b, def.Name),
			}
		}
		return nil
	}

	if isBinaryDefinition(def) {
		return wrongKindError(def.Name, value, "a boolean")
	}
	return validateRange(def, value)
}

// validateRange converts a numeric value to its raw integer and checks it
// against the (signed, width) bounds, reported back in physical units.
func validateRange(def ObjectDefinition, value interface{}) error {
	n, ok := numericValue(value)
	if !ok {
		return wrongKindError(def.Name, value, "a number")
	}

	raw, err := scaleToRaw(n, def.Factor)
	if err != nil {
		return err
	}

	bounds, ok := integerRanges[boundsKey{def.Signed, def.Size}]
	if !ok {
		return &EncodeError{
			Kind:    EncodeUnsupportedWidth,
			Message: fmt.Sprintf("unsupported integer width %d for type %q", def.Size, def.Name),
		}
	}
	if raw < bounds.Min || raw > bounds.Max {
		return &ValidationError{
			Kind:  ValidationOutOfRange,
			Index: -1,
			Message: fmt.Sprintf("value %s out of range for %s: allowed [%s, %s]",
				formatNumber(n), def.Name,
				formatNumber(float64(bounds.Min)*def.Factor),
				formatNumber(float64(bounds.Max)*def.Factor)),
		}
	}
	return nil
}

func validateVariableLength(name string, length int) error {
	if length > 255 {
		return &ValidationError{
			Kind:    ValidationOutOfRange,
			Index:   -1,
			Message: fmt.Sprintf("%s payload too long: %d bytes (max 255)", name, length),
		}
	}
	return nil
}

func wrongKindError(name string, value interface{}, want string) error {
	return &ValidationError{
		Kind:    ValidationWrongValueKind,
		Index:   -1,
		Message: fmt.Sprintf("value %v (%T) for type %q must be %s", value, value, name, want),
	}
}

// formatNumber renders bounds and values without trailing zeros.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
