// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Sensorwire Labs

package cmd

import (
	"bufio"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sensorwire/bthome-go/pkg/bthome"
	"github.com/spf13/cobra"
)

var (
	listenStatsInterval int
	listenErrorsOnly    bool
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Display payloads from a bridge in human-readable format",
	Long: `Continuously decode and display BTHome payloads as they arrive.

The bridge forwards one hex-encoded payload per line over serial or
WebSocket. Each payload is decoded and printed with its measurements;
encrypted payloads are decrypted when --key and --mac are set.

A statistics summary is printed at a configurable interval.`,
	RunE: runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)
	listenCmd.Flags().IntVar(&listenStatsInterval, "stats-interval", 30, "Statistics summary interval (seconds, 0 to disable)")
	listenCmd.Flags().BoolVar(&listenErrorsOnly, "errors-only", false, "Only print payloads that fail to decode")
}

func runListen(cmd *cobra.Command, args []string) error {
	opts, err := decodeOptions()
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("bthome - Payload Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	stats := bthome.NewStatistics()

	// Channel for non-blocking line reads
	lines := make(chan string, 10)
	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				lines <- line
			}
		}
		if err := scanner.Err(); err != nil && err != ErrConnectionClosed {
			log.Printf("Read error: %v", err)
		}
		close(lines)
	}()

	var statsTick <-chan time.Time
	if listenStatsInterval > 0 {
		ticker := time.NewTicker(time.Duration(listenStatsInterval) * time.Second)
		defer ticker.Stop()
		statsTick = ticker.C
	}

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				log.Printf("Connection closed")
				fmt.Println()
				fmt.Print(stats.String())
				return nil
			}
			handlePayloadLine(line, opts, stats)

		case <-statsTick:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()
		}
	}
}

func handlePayloadLine(line string, opts *bthome.DecodeOptions, stats *bthome.Statistics) {
	timestamp := time.Now().Format("15:04:05.000")

	data, err := parseHexPayload(line)
	if err != nil {
		stats.Update(nil, err)
		fmt.Printf("[%s] \033[1;31mBAD LINE:\033[0m %v\n\n", timestamp, err)
		return
	}

	env, err := bthome.Decode(data, opts)
	stats.Update(env, err)
	if err != nil {
		fmt.Printf("[%s] \033[1;31mDECODE ERROR:\033[0m %v\n", timestamp, err)
		fmt.Printf("  payload: %x\n\n", data)
		return
	}

	if listenErrorsOnly {
		return
	}
	fmt.Printf("[%s] %s\n", timestamp, strings.TrimRight(bthome.FormatEnvelope(env), "\n"))
	fmt.Println()
}
