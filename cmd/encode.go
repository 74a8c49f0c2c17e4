// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Sensorwire Labs

package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/sensorwire/bthome-go/pkg/bthome"
	"github.com/spf13/cobra"
)

var (
	encodeTrigger bool
	encodeCounter uint32
	encodeInput   string
	encodeFormat  string
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode measurements into a BTHome v2 payload",
	Long: `Encode a measurement list into a BTHome v2 payload, printed as hex.

Measurements are read from stdin (or --input) as a JSON array:

  [{"type": "temperature", "value": 23.45},
   {"type": "motion", "value": true}]

An entry may carry "object_id" to select an exact registry entry instead of
the canonical id for its type name. With --key and --mac the payload is
encrypted; --counter sets the replay counter and must increase between
payloads.

Examples:
  echo '[{"type":"battery","value":93}]' | bthome encode
  bthome encode --input readings.json --key 231d...b932 --mac A4:C1:38:D1:07:2B --counter 17`,
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().BoolVarP(&encodeTrigger, "trigger", "t", false, "Mark the payload as trigger-based")
	encodeCmd.Flags().Uint32VarP(&encodeCounter, "counter", "c", 0, "Encryption replay counter")
	encodeCmd.Flags().StringVarP(&encodeInput, "input", "i", "", "Read measurements from file instead of stdin")
	encodeCmd.Flags().StringVarP(&encodeFormat, "format", "f", "json", "Input format: json or cbor")
}

func runEncode(cmd *cobra.Command, args []string) error {
	key, err := resolveKey()
	if err != nil {
		return err
	}
	address, err := resolveAddress()
	if err != nil {
		return err
	}
	if len(key) > 0 && len(address) == 0 {
		return fmt.Errorf("--key requires --mac to derive the nonce")
	}

	var input io.Reader = os.Stdin
	if encodeInput != "" {
		f, err := os.Open(encodeInput)
		if err != nil {
			return fmt.Errorf("failed to open %s: %v", encodeInput, err)
		}
		defer f.Close()
		input = f
	}

	raw, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %v", err)
	}

	var measurements []bthome.Measurement
	switch encodeFormat {
	case "json":
		err = json.Unmarshal(raw, &measurements)
	case "cbor":
		err = cbor.Unmarshal(raw, &measurements)
	default:
		return fmt.Errorf("unknown input format %q (use json or cbor)", encodeFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to parse measurements: %v", err)
	}

	for i := range measurements {
		if err := normalizeMeasurement(&measurements[i]); err != nil {
			return fmt.Errorf("measurement %d: %v", i, err)
		}
	}

	payload, err := bthome.Encode(measurements, &bthome.EncodeOptions{
		TriggerBased:  encodeTrigger,
		DeviceAddress: address,
		Key:           key,
		Counter:       encodeCounter,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%x\n", payload)
	return nil
}

// normalizeMeasurement rewrites generic unmarshaled values into the shapes
// the encoder expects: dimmer and firmware objects arrive as maps, raw bytes
// as hex strings.
func normalizeMeasurement(m *bthome.Measurement) error {
	switch m.Type {
	case bthome.TypeDimmer:
		fields, ok := toFieldMap(m.Value)
		if !ok {
			return fmt.Errorf("dimmer value must be an object with action and steps")
		}
		m.Value = bthome.DimmerEvent{
			Action: bthome.DimmerAction(fields["action"]),
			Steps:  uint8(fields["steps"]),
		}

	case bthome.TypeFirmwareVersion32, bthome.TypeFirmwareVersion24:
		fields, ok := toFieldMap(m.Value)
		if !ok {
			return fmt.Errorf("firmware value must be an object with major, minor and patch")
		}
		fw := bthome.FirmwareVersion{
			Major: uint8(fields["major"]),
			Minor: uint8(fields["minor"]),
			Patch: uint8(fields["patch"]),
		}
		if m.Type == bthome.TypeFirmwareVersion32 {
			fw.Build = uint8(fields["build"])
			fw.HasBuild = true
		}
		m.Value = fw

	case bthome.TypeRaw:
		s, ok := m.Value.(string)
		if !ok {
			return fmt.Errorf("raw value must be a hex string")
		}
		data, err := hex.DecodeString(s)
		if err != nil {
			return fmt.Errorf("raw value is not valid hex: %v", err)
		}
		m.Value = data
	}
	return nil
}

// toFieldMap lowers a JSON or CBOR object into numeric fields.
func toFieldMap(v interface{}) (map[string]float64, bool) {
	out := make(map[string]float64)
	switch fields := v.(type) {
	case map[string]interface{}:
		for k, fv := range fields {
			n, ok := numericField(fv)
			if !ok {
				return nil, false
			}
			out[k] = n
		}
	case map[interface{}]interface{}:
		for k, fv := range fields {
			name, ok := k.(string)
			if !ok {
				return nil, false
			}
			n, ok := numericField(fv)
			if !ok {
				return nil, false
			}
			out[name] = n
		}
	default:
		return nil, false
	}
	return out, true
}

func numericField(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case uint64:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
