// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Sensorwire Labs

package cmd

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/fxamacker/cbor/v2"
	"github.com/sensorwire/bthome-go/pkg/bthome"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	decodeOutput    string
	decodePromptKey bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode [hex payload...]",
	Short: "Decode BTHome v2 payloads",
	Long: `Decode one or more BTHome v2 payloads given as hex strings.

With no arguments, payloads are read from stdin, one hex string per line.
Encrypted payloads are decrypted when --key and --mac are provided; without
a key they decode to a locked envelope showing the ciphertext and counter.

Examples:
  bthome decode 400229090341
  bthome decode --key 231d...b932 --mac A4:C1:38:D1:07:2B 41a2b3...
  echo 40022909 | bthome decode --output json`,
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringVarP(&decodeOutput, "output", "o", "text", "Output format: text, json or cbor")
	decodeCmd.Flags().BoolVar(&decodePromptKey, "prompt-key", false, "Prompt for the encryption key (hidden input)")
}

func runDecode(cmd *cobra.Command, args []string) error {
	if decodePromptKey {
		if err := promptKey(); err != nil {
			return err
		}
	}
	opts, err := decodeOptions()
	if err != nil {
		return err
	}

	payloads := args
	if len(payloads) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				payloads = append(payloads, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read stdin: %v", err)
		}
	}
	if len(payloads) == 0 {
		return fmt.Errorf("no payloads given")
	}

	for _, p := range payloads {
		data, err := parseHexPayload(p)
		if err != nil {
			return err
		}
		env, err := bthome.Decode(data, opts)
		if err != nil {
			return fmt.Errorf("decode %s: %w", p, err)
		}
		if err := printEnvelope(env); err != nil {
			return err
		}
	}
	return nil
}

// promptKey reads the encryption key without echo and stores it in the
// persistent --key flag value.
func promptKey() error {
	fmt.Fprint(os.Stderr, "Encryption key: ")
	keyBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to read key: %v", err)
	}
	keyHex = strings.TrimSpace(string(keyBytes))
	return nil
}

// parseHexPayload accepts bare hex, "0x" prefixed hex, and byte separators.
func parseHexPayload(s string) ([]byte, error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	cleaned = strings.NewReplacer(" ", "", ":", "", "-", "").Replace(cleaned)
	data, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid hex payload %q: %v", s, err)
	}
	return data, nil
}

func printEnvelope(env *bthome.DecodedEnvelope) error {
	switch decodeOutput {
	case "text":
		fmt.Print(bthome.FormatEnvelope(env))
		return nil
	case "json":
		out, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return fmt.Errorf("json encode failed: %v", err)
		}
		fmt.Println(string(out))
		return nil
	case "cbor":
		out, err := cbor.Marshal(env)
		if err != nil {
			return fmt.Errorf("cbor encode failed: %v", err)
		}
		fmt.Printf("%x\n", out)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use text, json or cbor)", decodeOutput)
	}
}
