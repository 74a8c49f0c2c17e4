// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Sensorwire Labs

package cmd

import (
	"fmt"
	"os"

	"github.com/sensorwire/bthome-go/pkg/bthome"
	"github.com/spf13/cobra"
)

var (
	// Payload flags
	keyHex  string
	macAddr string

	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool
)

var rootCmd = &cobra.Command{
	Use:   "bthome",
	Short: "BTHome v2 payload toolbox",
	Long: `bthome - A CLI tool for encoding, decoding and monitoring BTHome v2
sensor payloads.

Provides commands for one-shot payload decoding and encoding, encryption key
generation, and live monitoring of payload streams forwarded by a BLE bridge.

Connection modes (listen/watch):
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

Encrypted payloads need --key (or the BTHOME_KEY environment variable) and
--mac to derive the nonce. For WebSocket authentication, the password is read
from the BTHOME_PASSWORD environment variable, or prompted interactively if
not set. The --password flag is intentionally not provided to avoid leaking
credentials in shell history.`,
	Version: "1.0.0",
}

func init() {
	// Payload flags
	rootCmd.PersistentFlags().StringVarP(&keyHex, "key", "k", "", "Encryption key (32 hex chars, or set BTHOME_KEY)")
	rootCmd.PersistentFlags().StringVarP(&macAddr, "mac", "m", "", "Device address (AA:BB:CC:DD:EE:FF)")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
}

// resolveKey returns the encryption key from --key or BTHOME_KEY, or nil when
// neither is set.
func resolveKey() ([]byte, error) {
	s := keyHex
	if s == "" {
		s = os.Getenv("BTHOME_KEY")
	}
	if s == "" {
		return nil, nil
	}
	key, err := bthome.ParseKey(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --key: %w", err)
	}
	return key, nil
}

// resolveAddress returns the device address from --mac, or nil when not set.
func resolveAddress() ([]byte, error) {
	if macAddr == "" {
		return nil, nil
	}
	addr, err := bthome.ParseDeviceAddress(macAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid --mac: %w", err)
	}
	return addr, nil
}

// decodeOptions bundles the resolved key material for the decode path.
func decodeOptions() (*bthome.DecodeOptions, error) {
	key, err := resolveKey()
	if err != nil {
		return nil, err
	}
	addr, err := resolveAddress()
	if err != nil {
		return nil, err
	}
	if len(key) > 0 && len(addr) == 0 {
		return nil, fmt.Errorf("--key requires --mac to derive the nonce")
	}
	return &bthome.DecodeOptions{Key: key, DeviceAddress: addr}, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
