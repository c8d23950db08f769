package device

import (
	"fmt"
	"io"

	"semivibe.dev/internal/snapshot"
)

// Snapshot is a serializable copy of a Device's register file plus the
// sensor evolution baselines that never appear on the wire. The RNG state
// is not included. It exists for diagnostics (-dump-on-exit) and for restoring a
// device's state across a restart.
type Snapshot struct {
	ConnectedDevice uint8
	ReservedMain    uint8
	PowerState      uint8
	ErrorState      uint8

	TempID    uint8
	TempValue uint8
	HumidID   uint8
	HumidVal  uint8

	LED    uint8
	Fan    uint8
	Heater uint8
	Doors  uint8

	PowerSensors   uint8
	PowerActuators uint8
	ResetSensors   uint8
	ResetActuators uint8

	TempBase  uint8
	HumidBase uint8
}

// Snapshot captures the device's current state. It is safe to call while
// the device is serving connections.
func (d *Device) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{
		ConnectedDevice: d.mem.connectedDevice,
		ReservedMain:    d.mem.reservedMain,
		PowerState:      d.mem.powerState,
		ErrorState:      d.mem.errorState,

		TempID:    d.mem.tempID,
		TempValue: d.mem.tempValue,
		HumidID:   d.mem.humidID,
		HumidVal:  d.mem.humidVal,

		LED:    d.mem.led,
		Fan:    d.mem.fan,
		Heater: d.mem.heater,
		Doors:  d.mem.doors,

		PowerSensors:   d.mem.powerSensors,
		PowerActuators: d.mem.powerActuators,
		ResetSensors:   d.mem.resetSensors,
		ResetActuators: d.mem.resetActuators,

		TempBase:  d.tempBase,
		HumidBase: d.humidBase,
	}
}

// Restore replaces the device's register file and sensor baselines with a
// previously captured Snapshot. The device must not be concurrently
// processing commands on another goroutine when Restore is called; callers
// serving over TCP should Stop before restoring and Start again after.
func (d *Device) Restore(s Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.mem = memory{
		connectedDevice: s.ConnectedDevice,
		reservedMain:    s.ReservedMain,
		powerState:      s.PowerState,
		errorState:      s.ErrorState,

		tempID:    s.TempID,
		tempValue: s.TempValue,
		humidID:   s.HumidID,
		humidVal:  s.HumidVal,

		led:    s.LED,
		fan:    s.Fan,
		heater: s.Heater,
		doors:  s.Doors,

		powerSensors:   s.PowerSensors,
		powerActuators: s.PowerActuators,
		resetSensors:   s.ResetSensors,
		resetActuators: s.ResetActuators,
	}
	d.tempBase = s.TempBase
	d.humidBase = s.HumidBase
}

// DumpSnapshot writes the device's current state to w as CBOR.
func (d *Device) DumpSnapshot(w io.Writer) error {
	if err := snapshot.Encode(w, d.Snapshot()); err != nil {
		return fmt.Errorf("device: dump snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a CBOR-encoded Snapshot from r and restores it.
func (d *Device) LoadSnapshot(r io.Reader) error {
	var s Snapshot
	if err := snapshot.Decode(r, &s); err != nil {
		return fmt.Errorf("device: load snapshot: %w", err)
	}
	d.Restore(s)
	return nil
}
