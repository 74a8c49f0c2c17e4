// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Sensorwire Labs

package bthome

// Builder assembles a measurement list fluently and encodes it in one
// call. The typed helpers cover the common sensor types; Add and
// AddObjectID reach the full registry.
//
//	payload, err := bthome.NewBuilder().
//		PacketID(7).
//		Temperature(23.45).
//		Motion(true).
//		Build()
type Builder struct {
	measurements []Measurement
	trigger      bool
	address      []byte
}

// NewBuilder creates an empty payload builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// TriggerBased marks the payload as sent on a trigger (event) rather than
// on a fixed interval.
func (b *Builder) TriggerBased() *Builder {
	b.trigger = true
	return b
}

// DeviceAddress sets the 6-byte device address. Plaintext payloads embed
// it; encrypted payloads use it for the nonce.
func (b *Builder) DeviceAddress(address []byte) *Builder {
	b.address = address
	return b
}

// Add appends a measurement by registry type name.
func (b *Builder) Add(typ string, value interface{}) *Builder {
	b.measurements = append(b.measurements, NewMeasurement(typ, value))
	return b
}

// AddObjectID appends a measurement addressed to an exact object id,
// bypassing the name-to-id lookup.
func (b *Builder) AddObjectID(id uint8, value interface{}) *Builder {
	m := Measurement{Value: value, ObjectID: &id}
	if def, ok := LookupID(id); ok {
		m.Type = def.Name
		m.Unit = def.Unit
	}
	b.measurements = append(b.measurements, m)
	return b
}

// PacketID appends the duplicate-filtering packet counter (0-255).
func (b *Builder) PacketID(id uint8) *Builder {
	return b.Add("packet_id", float64(id))
}

// Battery appends a battery level in percent.
func (b *Builder) Battery(percent float64) *Builder {
	return b.Add("battery", percent)
}

// Temperature appends a temperature in °C at 0.01° resolution.
func (b *Builder) Temperature(celsius float64) *Builder {
	return b.Add("temperature", celsius)
}

// Humidity appends a relative humidity in percent at 0.01% resolution.
func (b *Builder) Humidity(percent float64) *Builder {
	return b.Add("humidity", percent)
}

// Pressure appends a pressure in hPa.
func (b *Builder) Pressure(hpa float64) *Builder {
	return b.Add("pressure", hpa)
}

// Illuminance appends an illuminance in lux.
func (b *Builder) Illuminance(lux float64) *Builder {
	return b.Add("illuminance", lux)
}

// Voltage appends a voltage in V at 1 mV resolution.
func (b *Builder) Voltage(volts float64) *Builder {
	return b.Add("voltage", volts)
}

// CO2 appends a CO₂ concentration in ppm.
func (b *Builder) CO2(ppm float64) *Builder {
	return b.Add("co2", ppm)
}

// Motion appends a motion binary sensor state.
func (b *Builder) Motion(detected bool) *Builder {
	return b.Add("motion", detected)
}

// Door appends a door binary sensor state (true = open).
func (b *Builder) Door(open bool) *Builder {
	return b.Add("door", open)
}

// Occupancy appends an occupancy binary sensor state.
func (b *Builder) Occupancy(occupied bool) *Builder {
	return b.Add("occupancy", occupied)
}

// Button appends a button event.
func (b *Builder) Button(event ButtonEvent) *Builder {
	return b.Add(TypeButton, event)
}

// Dimmer appends a dimmer event with its step count.
func (b *Builder) Dimmer(action DimmerAction, steps uint8) *Builder {
	return b.Add(TypeDimmer, DimmerEvent{Action: action, Steps: steps})
}

// FirmwareVersion appends a 4-byte firmware version.
func (b *Builder) FirmwareVersion(major, minor, patch, build uint8) *Builder {
	return b.Add(TypeFirmwareVersion32, FirmwareVersion{
		Major: major, Minor: minor, Patch: patch, Build: build, HasBuild: true,
	})
}

// Text appends a variable-length text field (max 255 bytes).
func (b *Builder) Text(s string) *Builder {
	return b.Add(TypeText, s)
}

// RawBytes appends a variable-length opaque byte field (max 255 bytes).
func (b *Builder) RawBytes(data []byte) *Builder {
	return b.Add(TypeRaw, data)
}

// Measurements returns the accumulated list in insertion order.
func (b *Builder) Measurements() []Measurement {
	return b.measurements
}

// Build validates and encodes the accumulated measurements as a plaintext
// payload.
func (b *Builder) Build() ([]byte, error) {
	return Encode(b.measurements, &EncodeOptions{
		TriggerBased:  b.trigger,
		DeviceAddress: b.address,
	})
}

// BuildEncrypted validates, encodes and encrypts the accumulated
// measurements. The counter must increase between payloads to keep nonces
// unique.
func (b *Builder) BuildEncrypted(key []byte, counter uint32) ([]byte, error) {
	return Encode(b.measurements, &EncodeOptions{
		TriggerBased:  b.trigger,
		DeviceAddress: b.address,
		Key:           key,
		Counter:       counter,
	})
}
