// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Sensorwire Labs

package bthome

import (
	"encoding/binary"
	"fmt"
)

// DecodeOptions supplies the decryption material for encrypted payloads.
// Both fields must be set to decrypt; without a key an encrypted payload
// still decodes to a valid "locked" envelope with no measurements.
type DecodeOptions struct {
	Key           []byte
	DeviceAddress []byte
}

// Decode parses a BTHome v2 payload into an envelope.
//
// For plaintext payloads a leading device address is detected
// heuristically: with at least 7 bytes after the device-info byte, a first
// byte that is not a registered object id followed by a 7th byte that is
// one consumes the first 6 bytes as the address. Adversarial data shaped
// that way is misread as an address; this ambiguity is inherent to the
// format and accepted.
//
// Decode errors are fatal and return no envelope, with one exception: an
// unregistered object id ends parsing successfully, folding the rest of
// the payload into a single TypeUnknown measurement.
func Decode(data []byte, opts *DecodeOptions) (*DecodedEnvelope, error) {
	if opts == nil {
		opts = &DecodeOptions{}
	}
	if len(data) == 0 {
		return nil, &DecodeError{
			Kind:    DecodeInsufficientData,
			Message: "empty payload: missing device-info byte",
		}
	}

	info := data[0]
	version := int(info >> deviceInfoVersionShift)
	if version != Version {
		return nil, &DecodeError{
			Kind:    DecodeBadVersion,
			Message: fmt.Sprintf("unsupported payload version %d (expected %d)", version, Version),
		}
	}

	envelope := &DecodedEnvelope{
		Version:      version,
		Encrypted:    info&deviceInfoEncryptFlag != 0,
		TriggerBased: info&deviceInfoTriggerFlag != 0,
		Measurements: []Measurement{},
	}
	rest := data[1:]

	if envelope.Encrypted {
		return decodeEncrypted(envelope, info, rest, opts)
	}

	// Address heuristic: only worth attempting when 6 address bytes plus
	// at least one object id could fit.
	if len(rest) >= DeviceAddressSize+1 &&
		!isRegisteredID(rest[0]) && isRegisteredID(rest[DeviceAddressSize]) {
		envelope.DeviceAddress = append([]byte(nil), rest[:DeviceAddressSize]...)
		rest = rest[DeviceAddressSize:]
	}

	if err := decodeStream(envelope, rest); err != nil {
		return nil, err
	}
	return envelope, nil
}

// decodeEncrypted splits the encrypted tail and, when key material is
// available, decrypts and parses the inner measurement stream.
// Tail layout: [ciphertext][counter: 4 bytes LE][mic: 4 bytes].
func decodeEncrypted(envelope *DecodedEnvelope, info byte, rest []byte, opts *DecodeOptions) (*DecodedEnvelope, error) {
	if len(rest) < 4+MICSize {
		// Too short to carry counter and MIC; keep what we can.
		envelope.Ciphertext = append([]byte(nil), rest...)
		return envelope, nil
	}

	split := len(rest) - 4 - MICSize
	envelope.Ciphertext = append([]byte(nil), rest[:split]...)
	counter := binary.LittleEndian.Uint32(rest[split : split+4])
	envelope.Counter = &counter
	envelope.MIC = append([]byte(nil), rest[split+4:]...)

	if len(opts.Key) == 0 {
		// Locked result: valid, just not decryptable without a key.
		return envelope, nil
	}

	plaintext, err := Decrypt(envelope.Ciphertext, envelope.MIC, opts.Key, opts.DeviceAddress, info, counter)
	if err != nil {
		return nil, err
	}
	if err := decodeStream(envelope, plaintext); err != nil {
		return nil, err
	}
	return envelope, nil
}

// decodeStream consumes (object id, value) pairs until the buffer is
// exhausted or an unregistered id truncates parsing.
func decodeStream(envelope *DecodedEnvelope, buf []byte) error {
	for len(buf) > 0 {
		id := buf[0]
		buf = buf[1:]

		def, ok := LookupID(id)
		if !ok {
			// Recovery policy: the rest of the payload cannot be framed
			// without knowing this id's width, so it all becomes one
			// opaque measurement and parsing stops.
			objectID := id
			envelope.Measurements = append(envelope.Measurements, Measurement{
				Type:           TypeUnknown,
				ObjectID:       &objectID,
				UnknownPayload: append([]byte(nil), buf...),
			})
			return nil
		}

		if len(buf) == 0 {
			return &DecodeError{
				Kind:    DecodeNoData,
				Message: fmt.Sprintf("object id 0x%02X (%s) with no data", id, def.Name),
			}
		}

		var valueBytes []byte
		if def.Size == SizeVariable {
			length := int(buf[0])
			buf = buf[1:]
			if len(buf) < length {
				return &DecodeError{
					Kind:    DecodeMalformedVariable,
					Message: fmt.Sprintf("%s field claims %d bytes but only %d remain", def.Name, length, len(buf)),
				}
			}
			valueBytes = buf[:length]
			buf = buf[length:]
		} else {
			if len(buf) < def.Size {
				return &DecodeError{
					Kind:    DecodeInsufficientData,
					Message: fmt.Sprintf("insufficient data for %s: need %d bytes, have %d", def.Name, def.Size, len(buf)),
				}
			}
			valueBytes = buf[:def.Size]
			buf = buf[def.Size:]
		}

		objectID := id
		envelope.Measurements = append(envelope.Measurements, Measurement{
			Type:     def.Name,
			Value:    decodeValue(def, valueBytes),
			Unit:     def.Unit,
			ObjectID: &objectID,
		})
	}
	return nil
}
