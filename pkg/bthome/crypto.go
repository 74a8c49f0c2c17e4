// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Sensorwire Labs

package bthome

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pion/dtls/v2/pkg/crypto/ccm"
)

// Encryption parameters: AES-128 in CCM mode with a 4-byte MIC and the
// 13-byte nonce laid out in buildNonce.
const (
	KeySize   = 16
	MICSize   = 4
	nonceSize = 13
)

// serviceUUID is the 16-bit BTHome service UUID 0xFCD2 in on-wire
// (little-endian) byte order. It is mixed into every nonce.
var serviceUUID = [2]byte{0xD2, 0xFC}

// buildNonce assembles the 13-byte CCM nonce:
// address(6) || service uuid(2) || device-info byte(1) || counter(4, LE).
func buildNonce(address []byte, deviceInfo byte, counter uint32) [nonceSize]byte {
	var nonce [nonceSize]byte
	copy(nonce[0:6], address)
	copy(nonce[6:8], serviceUUID[:])
	nonce[8] = deviceInfo
	binary.LittleEndian.PutUint32(nonce[9:13], counter)
	return nonce
}

// checkCryptoParams validates key and address lengths. These are parameter
// errors, distinct from authentication failure.
func checkCryptoParams(key, address []byte) error {
	if len(key) != KeySize {
		return &EncryptionError{
			Kind:    EncryptionBadParameter,
			Message: fmt.Sprintf("encryption key must be %d bytes, got %d", KeySize, len(key)),
		}
	}
	if len(address) != DeviceAddressSize {
		return &EncryptionError{
			Kind:    EncryptionBadParameter,
			Message: fmt.Sprintf("device address must be %d bytes, got %d", DeviceAddressSize, len(address)),
		}
	}
	return nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, &EncryptionError{
			Kind:    EncryptionBadParameter,
			Message: fmt.Sprintf("invalid AES key: %v", err),
		}
	}
	aead, err := ccm.NewCCM(block, MICSize, nonceSize)
	if err != nil {
		return nil, &EncryptionError{
			Kind:    EncryptionBadParameter,
			Message: fmt.Sprintf("CCM setup failed: %v", err),
		}
	}
	return aead, nil
}

// Encrypt seals a plaintext measurement stream. deviceInfo is the
// device-info byte that will head the payload, with its encryption flag
// set; it feeds the nonce and binds the ciphertext to the header.
func Encrypt(plaintext, key, address []byte, deviceInfo byte, counter uint32) (ciphertext, mic []byte, err error) {
	if err := checkCryptoParams(key, address); err != nil {
		return nil, nil, err
	}
	aead, err := newAEAD(key)
	if err != nil {
		return nil, nil, err
	}

	nonce := buildNonce(address, deviceInfo, counter)
	sealed := aead.Seal(nil, nonce[:], plaintext, nil)
	return sealed[:len(sealed)-MICSize], sealed[len(sealed)-MICSize:], nil
}

// Decrypt opens a sealed measurement stream. Any tampering of ciphertext
// or MIC, or a wrong key, address or counter, yields an EncryptionError of
// kind EncryptionAuthFailed; unauthenticated plaintext is never returned.
func Decrypt(ciphertext, mic, key, address []byte, deviceInfo byte, counter uint32) ([]byte, error) {
	if err := checkCryptoParams(key, address); err != nil {
		return nil, err
	}
	if len(mic) != MICSize {
		return nil, &EncryptionError{
			Kind:    EncryptionBadParameter,
			Message: fmt.Sprintf("MIC must be %d bytes, got %d", MICSize, len(mic)),
		}
	}
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce := buildNonce(address, deviceInfo, counter)
	sealed := make([]byte, 0, len(ciphertext)+MICSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, mic...)

	plaintext, err := aead.Open(nil, nonce[:], sealed, nil)
	if err != nil {
		return nil, &EncryptionError{
			Kind:    EncryptionAuthFailed,
			Message: "authentication failed: wrong key, address or counter, or tampered data",
		}
	}
	return plaintext, nil
}

// GenerateKey returns a random 16-byte encryption key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// ParseKey decodes a hex-encoded 16-byte encryption key.
func ParseKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, &EncryptionError{
			Kind:    EncryptionBadParameter,
			Message: fmt.Sprintf("invalid key hex: %v", err),
		}
	}
	if len(key) != KeySize {
		return nil, &EncryptionError{
			Kind:    EncryptionBadParameter,
			Message: fmt.Sprintf("encryption key must be %d bytes, got %d", KeySize, len(key)),
		}
	}
	return key, nil
}

// ParseDeviceAddress decodes a device address from "AA:BB:CC:DD:EE:FF",
// "AA-BB-CC-DD-EE-FF" or bare-hex form.
func ParseDeviceAddress(s string) ([]byte, error) {
	cleaned := strings.NewReplacer(":", "", "-", "").Replace(strings.TrimSpace(s))
	addr, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, &EncryptionError{
			Kind:    EncryptionBadParameter,
			Message: fmt.Sprintf("invalid device address %q: %v", s, err),
		}
	}
	if len(addr) != DeviceAddressSize {
		return nil, &EncryptionError{
			Kind:    EncryptionBadParameter,
			Message: fmt.Sprintf("device address must be %d bytes, got %d", DeviceAddressSize, len(addr)),
		}
	}
	return addr, nil
}

// FormatDeviceAddress renders an address as "AA:BB:CC:DD:EE:FF".
func FormatDeviceAddress(address []byte) string {
	parts := make([]string, len(address))
	for i, b := range address {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}
