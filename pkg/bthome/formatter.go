// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Sensorwire Labs

package bthome

import (
	"fmt"
	"strings"
)

// FormatMeasurement renders a single measurement as "name: value unit".
// Special shapes (button, dimmer, firmware, raw, unknown) get their own
// renderings.
func FormatMeasurement(m Measurement) string {
	switch v := m.Value.(type) {
	case ButtonEvent:
		return fmt.Sprintf("%s: %s", m.Type, v)
	case DimmerEvent:
		return fmt.Sprintf("%s: %s", m.Type, v)
	case FirmwareVersion:
		return fmt.Sprintf("%s: %s", m.Type, v)
	case bool:
		return fmt.Sprintf("%s: %v", m.Type, v)
	case string:
		return fmt.Sprintf("%s: %q", m.Type, v)
	case []byte:
		return fmt.Sprintf("%s: %X", m.Type, v)
	}

	if m.Type == TypeUnknown {
		if m.ObjectID != nil {
			return fmt.Sprintf("unknown object 0x%02X: %X", *m.ObjectID, m.UnknownPayload)
		}
		return fmt.Sprintf("unknown object: %X", m.UnknownPayload)
	}

	if n, ok := m.Number(); ok {
		if m.Unit != "" {
			return fmt.Sprintf("%s: %s %s", m.Type, formatNumber(n), m.Unit)
		}
		return fmt.Sprintf("%s: %s", m.Type, formatNumber(n))
	}
	return fmt.Sprintf("%s: %v", m.Type, m.Value)
}

// FormatEnvelope renders a decoded envelope as a multi-line report.
func FormatEnvelope(env *DecodedEnvelope) string {
	var sb strings.Builder

	flags := make([]string, 0, 2)
	if env.Encrypted {
		flags = append(flags, "encrypted")
	}
	if env.TriggerBased {
		flags = append(flags, "trigger-based")
	}
	if len(flags) > 0 {
		fmt.Fprintf(&sb, "BTHome v%d payload (%s)\n", env.Version, strings.Join(flags, ", "))
	} else {
		fmt.Fprintf(&sb, "BTHome v%d payload\n", env.Version)
	}

	if len(env.DeviceAddress) > 0 {
		fmt.Fprintf(&sb, "  device address: %s\n", FormatDeviceAddress(env.DeviceAddress))
	}

	if env.Encrypted && len(env.Measurements) == 0 {
		fmt.Fprintf(&sb, "  locked: %d bytes of ciphertext", len(env.Ciphertext))
		if env.Counter != nil {
			fmt.Fprintf(&sb, ", counter %d", *env.Counter)
		}
		sb.WriteString(" (no key supplied)\n")
		return sb.String()
	}

	if env.Encrypted && env.Counter != nil {
		fmt.Fprintf(&sb, "  counter: %d\n", *env.Counter)
	}

	for _, m := range env.Measurements {
		fmt.Fprintf(&sb, "  %s\n", FormatMeasurement(m))
	}
	return sb.String()
}
