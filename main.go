// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Sensorwire Labs
//
// bthome - BTHome v2 payload toolbox
//
// A CLI tool for encoding, decoding and monitoring BTHome v2 sensor
// payloads in human-readable format.

package main

import (
	"os"

	"github.com/sensorwire/bthome-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
