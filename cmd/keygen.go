// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Sensorwire Labs

package cmd

import (
	"fmt"

	"github.com/sensorwire/bthome-go/pkg/bthome"
	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a random encryption key",
	Long: `Generate a random 16-byte AES-CCM encryption key, printed as hex.

The same key must be configured on the broadcasting device and passed to
decode/listen/watch via --key or the BTHOME_KEY environment variable.`,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, args []string) error {
	key, err := bthome.GenerateKey()
	if err != nil {
		return err
	}
	fmt.Printf("%x\n", key)
	return nil
}
