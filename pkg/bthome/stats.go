// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Sensorwire Labs

package bthome

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks payload counts and error rates for a decode stream
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalPayloads     uint64
	ValidPayloads     uint64
	VersionErrors     uint64
	DecodeErrors      uint64
	AuthErrors        uint64
	TruncatedPayloads uint64
	EncryptedLocked   uint64

	// Per-type measurement counts across all valid payloads
	MeasurementCounts map[string]uint64

	// Rates (calculated)
	PayloadRate float64 // payloads/sec
	ErrorRate   float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:         now,
		LastUpdateTime:    now,
		MeasurementCounts: make(map[string]uint64),
	}
}

// Update records the outcome of one Decode call
func (s *Statistics) Update(env *DecodedEnvelope, decodeErr error) {
	s.TotalPayloads++
	s.LastUpdateTime = time.Now()

	if decodeErr != nil {
		var derr *DecodeError
		var eerr *EncryptionError
		switch {
		case errors.As(decodeErr, &derr) && derr.Kind == DecodeBadVersion:
			s.VersionErrors++
		case errors.As(decodeErr, &eerr):
			s.AuthErrors++
		default:
			s.DecodeErrors++
		}
		return
	}
	if env == nil {
		return
	}

	if env.Encrypted && len(env.Measurements) == 0 {
		s.EncryptedLocked++
		return
	}

	s.ValidPayloads++
	for _, m := range env.Measurements {
		s.MeasurementCounts[m.Type]++
		if m.Type == TypeUnknown {
			s.TruncatedPayloads++
		}
	}
}

// CalculateRates calculates payload and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.PayloadRate = float64(s.TotalPayloads) / elapsed
		errorCount := s.VersionErrors + s.DecodeErrors + s.AuthErrors
		s.ErrorRate = float64(errorCount) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent, versionPercent, decodePercent, authPercent float64
	if s.TotalPayloads > 0 {
		validPercent = float64(s.ValidPayloads) * 100.0 / float64(s.TotalPayloads)
		versionPercent = float64(s.VersionErrors) * 100.0 / float64(s.TotalPayloads)
		decodePercent = float64(s.DecodeErrors) * 100.0 / float64(s.TotalPayloads)
		authPercent = float64(s.AuthErrors) * 100.0 / float64(s.TotalPayloads)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Payloads:  %8d\n", s.TotalPayloads)
	result += fmt.Sprintf("Valid Payloads:  %8d (%.1f%%)\n", s.ValidPayloads, validPercent)

	if s.VersionErrors > 0 {
		result += fmt.Sprintf("Version Errors:  %8d (%.1f%%)\n", s.VersionErrors, versionPercent)
	}
	if s.DecodeErrors > 0 {
		result += fmt.Sprintf("Decode Errors:   %8d (%.1f%%)\n", s.DecodeErrors, decodePercent)
	}
	if s.AuthErrors > 0 {
		result += fmt.Sprintf("Auth Errors:     %8d (%.1f%%)\n", s.AuthErrors, authPercent)
	}
	if s.EncryptedLocked > 0 {
		result += fmt.Sprintf("Locked (no key): %8d\n", s.EncryptedLocked)
	}
	if s.TruncatedPayloads > 0 {
		result += fmt.Sprintf("Truncated:       %8d\n", s.TruncatedPayloads)
	}

	result += fmt.Sprintf("Payload Rate:    %8.1f payloads/sec\n", s.PayloadRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	now := time.Now()
	s.StartTime = now
	s.LastUpdateTime = now
	s.TotalPayloads = 0
	s.ValidPayloads = 0
	s.VersionErrors = 0
	s.DecodeErrors = 0
	s.AuthErrors = 0
	s.TruncatedPayloads = 0
	s.EncryptedLocked = 0
	s.MeasurementCounts = make(map[string]uint64)
	s.PayloadRate = 0
	s.ErrorRate = 0
}
