// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Sensorwire Labs

package bthome

// ValidationKind classifies measurement validation failures.
type ValidationKind int

const (
	ValidationUnsupportedType ValidationKind = iota
	ValidationWrongValueKind
	ValidationOutOfRange
)

// ValidationError reports a measurement that cannot be encoded. Index is
// the zero-based position within the validated list, or -1 when a single
// measurement was validated.
type ValidationError struct {
	Kind    ValidationKind
	Index   int
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// EncodeKind classifies encoding failures.
type EncodeKind int

const (
	EncodeOverflow EncodeKind = iota
	EncodeUnsupportedWidth
	EncodeBadParameter
)

// EncodeError reports a failure while packing values into wire bytes.
type EncodeError struct {
	Kind    EncodeKind
	Message string
}

// Error implements the error interface
func (e *EncodeError) Error() string {
	return e.Message
}

// DecodeKind classifies payload decoding failures.
type DecodeKind int

const (
	DecodeBadVersion DecodeKind = iota
	DecodeInsufficientData
	DecodeMalformedVariable
	DecodeNoData
)

// DecodeError reports a fatal payload parsing failure. No partial envelope
// accompanies it.
type DecodeError struct {
	Kind    DecodeKind
	Message string
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return e.Message
}

// EncryptionKind separates parameter misuse from authentication failure.
type EncryptionKind int

const (
	EncryptionBadParameter EncryptionKind = iota
	EncryptionAuthFailed
)

// EncryptionError reports an encryption-layer failure. Kind
// EncryptionAuthFailed means the key, address, counter, ciphertext or MIC
// did not authenticate; no plaintext is ever returned alongside it.
type EncryptionError struct {
	Kind    EncryptionKind
	Message string
}

// Error implements the error interface
func (e *EncryptionError) Error() string {
	return e.Message
}
