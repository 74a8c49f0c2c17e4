// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Sensorwire Labs

package cmd

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sensorwire/bthome-go/pkg/bthome"
	"github.com/spf13/cobra"
)

var watchShowAll bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard of payloads and decode errors",
	Long: `Track incoming BTHome payloads in a terminal dashboard.

Shows running statistics (payload rate, error rate, per-kind error counts),
the latest decoded measurements, and a scrolling event log. Decode errors
are highlighted as they happen.

By default only errors appear in the event log. Use --show-all to log valid
payloads too.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchShowAll, "show-all", false, "Log all payloads (not just errors)")
}

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// TUI model
type watchModel struct {
	connInfo      string
	showAll       bool
	stats         *bthome.Statistics
	eventLog      []eventLogEntry
	maxLogEntries int
	lastEnvelope  *bthome.DecodedEnvelope
	lastReceived  time.Time
	width         int
	height        int
	quitting      bool
}

// Messages
type tickMsg time.Time
type payloadMsg struct {
	envelope *bthome.DecodedEnvelope
	err      error
	raw      string
}
type connClosedMsg struct{}

func initialWatchModel(connInfo string, showAll bool) watchModel {
	return watchModel{
		connInfo:      connInfo,
		showAll:       showAll,
		stats:         bthome.NewStatistics(),
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.stats.Reset()
			m.addLogEntry("Statistics reset", false)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.stats.CalculateRates()
		return m, tickCmd()

	case connClosedMsg:
		m.addLogEntry("Connection closed", true)

	case payloadMsg:
		m.stats.Update(msg.envelope, msg.err)

		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("DECODE ERROR: %v (payload %s)", msg.err, msg.raw), true)
			break
		}

		m.lastEnvelope = msg.envelope
		m.lastReceived = time.Now()

		if truncated(msg.envelope) {
			m.addLogEntry(fmt.Sprintf("truncated payload: unknown object id (payload %s)", msg.raw), true)
		} else if m.showAll {
			m.addLogEntry(fmt.Sprintf("payload with %d measurements", len(msg.envelope.Measurements)), false)
		}
	}

	return m, nil
}

// truncated reports whether a decoded envelope ends in an unknown-id
// measurement.
func truncated(env *bthome.DecodedEnvelope) bool {
	n := len(env.Measurements)
	return n > 0 && env.Measurements[n-1].Type == bthome.TypeUnknown
}

func (m *watchModel) addLogEntry(message string, isError bool) {
	entry := eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.eventLog = append(m.eventLog, entry)

	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func (m watchModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("BTHOME - PAYLOAD MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Mode: %s | Press 'q' to quit, 'r' to reset",
		m.connInfo, func() string {
			if m.showAll {
				return "All payloads"
			}
			return "Errors only"
		}())))
	s.WriteString("\n\n")

	// Statistics
	m.stats.CalculateRates()
	var validPercent, errorPercent float64
	totalErrors := m.stats.VersionErrors + m.stats.DecodeErrors + m.stats.AuthErrors
	if m.stats.TotalPayloads > 0 {
		validPercent = float64(m.stats.ValidPayloads) * 100.0 / float64(m.stats.TotalPayloads)
		errorPercent = float64(totalErrors) * 100.0 / float64(m.stats.TotalPayloads)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		labelStyle.Render("Total:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.TotalPayloads)),
		labelStyle.Render("Valid:"), valueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ValidPayloads, validPercent)),
		labelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", totalErrors, errorPercent)),
	))

	if totalErrors > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			labelStyle.Render("Version:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.VersionErrors)),
			labelStyle.Render("Decode:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.DecodeErrors)),
			labelStyle.Render("Auth:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.AuthErrors)),
		))
	}

	if m.stats.EncryptedLocked > 0 || m.stats.TruncatedPayloads > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			labelStyle.Render("Locked:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.EncryptedLocked)),
			labelStyle.Render("Truncated:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.TruncatedPayloads)),
		))
	}

	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("Payload Rate:"), valueStyle.Render(fmt.Sprintf("%.1f/s", m.stats.PayloadRate)),
		labelStyle.Render("Error Rate:"), func() string {
			if m.stats.ErrorRate > 0 {
				return errorStyle.Render(fmt.Sprintf("%.1f/s", m.stats.ErrorRate))
			}
			return valueStyle.Render(fmt.Sprintf("%.1f/s", m.stats.ErrorRate))
		}(),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Latest payload section (only shown once something decoded)
	if m.lastEnvelope != nil {
		s.WriteString(labelStyle.Render("Latest Payload:"))
		s.WriteString(headerStyle.Render(fmt.Sprintf("  (%s)", m.lastReceived.Format("15:04:05.000"))))
		s.WriteString("\n")

		envContent := strings.Builder{}
		if len(m.lastEnvelope.DeviceAddress) > 0 {
			envContent.WriteString(fmt.Sprintf("%s %s\n",
				labelStyle.Render("Device:"),
				valueStyle.Render(bthome.FormatDeviceAddress(m.lastEnvelope.DeviceAddress)),
			))
		}
		if m.lastEnvelope.Encrypted && len(m.lastEnvelope.Measurements) == 0 {
			envContent.WriteString(warningStyle.Render(
				fmt.Sprintf("locked: %d bytes of ciphertext (no key)", len(m.lastEnvelope.Ciphertext))))
		}
		for _, meas := range m.lastEnvelope.Measurements {
			envContent.WriteString(valueStyle.Render(bthome.FormatMeasurement(meas)))
			envContent.WriteString("\n")
		}

		s.WriteString(boxStyle.Render(strings.TrimRight(envContent.String(), "\n")))
		s.WriteString("\n\n")
	}

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - 15 // Reserve space for header and stats
	if logHeight < 5 {
		logHeight = 5
	}

	logContent := strings.Builder{}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("01/02/06 15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}

func runWatch(cmd *cobra.Command, args []string) error {
	opts, err := decodeOptions()
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	m := initialWatchModel(connInfo, watchShowAll)
	p := tea.NewProgram(m)

	// Payload reader goroutine
	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			data, err := parseHexPayload(line)
			if err != nil {
				p.Send(payloadMsg{err: err, raw: line})
				continue
			}

			env, err := bthome.Decode(data, opts)
			p.Send(payloadMsg{envelope: env, err: err, raw: line})
		}
		p.Send(connClosedMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}

	return nil
}
