// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Sensorwire Labs

package bthome

import (
	"encoding/binary"
	"fmt"
)

// EncodeOptions controls payload construction. Supplying a Key enables
// encryption; DeviceAddress is then required for the nonce. For plaintext
// payloads a DeviceAddress is embedded after the device-info byte.
type EncodeOptions struct {
	TriggerBased  bool
	DeviceAddress []byte
	Key           []byte
	Counter       uint32
}

// Encode validates and encodes a measurement list into a BTHome v2
// payload. Validation is fail-fast: no bytes are produced for an invalid
// list. Measurements appear on the wire in list order.
func Encode(measurements []Measurement, opts *EncodeOptions) ([]byte, error) {
	if opts == nil {
		opts = &EncodeOptions{}
	}
	if err := ValidateMeasurements(measurements); err != nil {
		return nil, err
	}

	encrypted := len(opts.Key) > 0
	info := byte(Version << deviceInfoVersionShift)
	if opts.TriggerBased {
		info |= deviceInfoTriggerFlag
	}
	if encrypted {
		info |= deviceInfoEncryptFlag
	}

	var stream []byte
	for _, m := range measurements {
		id, def, err := resolveDefinition(m)
		if err != nil {
			return nil, err
		}
		valueBytes, err := encodeValue(def, m.Value)
		if err != nil {
			return nil, err
		}
		stream = append(stream, id)
		stream = append(stream, valueBytes...)
	}

	if encrypted {
		ciphertext, mic, err := Encrypt(stream, opts.Key, opts.DeviceAddress, info, opts.Counter)
		if err != nil {
			return nil, err
		}
		out := make([]byte, 0, 1+len(ciphertext)+4+MICSize)
		out = append(out, info)
		out = append(out, ciphertext...)
		out = binary.LittleEndian.AppendUint32(out, opts.Counter)
		return append(out, mic...), nil
	}

	out := make([]byte, 0, 1+DeviceAddressSize+len(stream))
	out = append(out, info)
	if len(opts.DeviceAddress) > 0 {
		if len(opts.DeviceAddress) != DeviceAddressSize {
			return nil, &EncodeError{
				Kind:    EncodeBadParameter,
				Message: fmt.Sprintf("device address must be %d bytes, got %d", DeviceAddressSize, len(opts.DeviceAddress)),
			}
		}
		out = append(out, opts.DeviceAddress...)
	}
	return append(out, stream...), nil
}
