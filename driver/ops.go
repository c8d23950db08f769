package driver

import "fmt"

// Status is the device's three R-only status registers.
type Status struct {
	ConnectedDevice uint8
	PowerState      uint8
	ErrorState      uint8
}

// GetStatus reads connected_device, power_state and error_state.
func (d *Driver) GetStatus() (Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var s Status
	var err error
	if s.ConnectedDevice, err = d.readRegister(baseMain, offsetConnectedDevice); err != nil {
		return Status{}, err
	}
	if s.PowerState, err = d.readRegister(baseMain, offsetPowerState); err != nil {
		return Status{}, err
	}
	if s.ErrorState, err = d.readRegister(baseMain, offsetErrorState); err != nil {
		return Status{}, err
	}
	return s, nil
}

// Sensors is a snapshot of both sensor channels.
type Sensors struct {
	TempID    uint8
	TempValue uint8
	HumidID   uint8
	HumidVal  uint8
}

// GetSensors reads both sensor ID/value pairs.
func (d *Driver) GetSensors() (Sensors, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var s Sensors
	var err error
	if s.TempID, err = d.readRegister(baseSensor, offsetTempID); err != nil {
		return Sensors{}, err
	}
	if s.TempValue, err = d.readRegister(baseSensor, offsetTempValue); err != nil {
		return Sensors{}, err
	}
	if s.HumidID, err = d.readRegister(baseSensor, offsetHumidID); err != nil {
		return Sensors{}, err
	}
	if s.HumidVal, err = d.readRegister(baseSensor, offsetHumidVal); err != nil {
		return Sensors{}, err
	}
	return s, nil
}

// Actuators is a snapshot of the whole-byte actuators (not doors, which has
// its own RMW accessors since its bits are shared with other components).
type Actuators struct {
	LED    uint8
	Fan    uint8
	Heater uint8
}

// GetActuators reads LED, fan and heater.
func (d *Driver) GetActuators() (Actuators, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var a Actuators
	var err error
	if a.LED, err = d.readRegister(baseActuator, offsetLED); err != nil {
		return Actuators{}, err
	}
	if a.Fan, err = d.readRegister(baseActuator, offsetFan); err != nil {
		return Actuators{}, err
	}
	if a.Heater, err = d.readRegister(baseActuator, offsetHeater); err != nil {
		return Actuators{}, err
	}
	return a, nil
}

// SetLED writes the LED brightness.
func (d *Driver) SetLED(value uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.writeRegister(baseActuator, offsetLED, value)
	return err
}

// SetFan writes the fan speed.
func (d *Driver) SetFan(value uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.writeRegister(baseActuator, offsetFan, value)
	return err
}

// SetHeater writes the heater level. Only the lower 4 bits are meaningful,
// so the driver masks the value before sending it, the way
// driver_set_heater masks in the reference implementation.
func (d *Driver) SetHeater(value uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.writeRegister(baseActuator, offsetHeater, value&maskHeaterValue)
	return err
}

// Door identifies one of the four door bits.
type Door uint

const (
	DoorLED    Door = bitLED
	DoorFan    Door = bitFan
	DoorHeater Door = bitHeater
	DoorMain   Door = bitDoors
)

// GetDoor reports whether the given door bit is set.
func (d *Driver) GetDoor(door Door) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.readRegister(baseActuator, offsetDoors)
	if err != nil {
		return false, err
	}
	return v&(1<<uint(door)) != 0, nil
}

// SetDoor sets or clears one door bit, preserving every other door bit
// with a read-modify-write, then reads the register back to verify the
// target bit landed as requested.
func (d *Driver) SetDoor(door Door, open bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	current, err := d.readRegister(baseActuator, offsetDoors)
	if err != nil {
		return err
	}
	bit := uint8(1) << uint(door)
	var next uint8
	if open {
		next = current | bit
	} else {
		next = current &^ bit
	}
	next &= maskDoorsValue
	if _, err := d.writeRegister(baseActuator, offsetDoors, next); err != nil {
		return err
	}

	got, err := d.readRegister(baseActuator, offsetDoors)
	if err != nil {
		return err
	}
	if (got&bit != 0) != open {
		err := errVerification(fmt.Sprintf("door bit %d did not land: wrote %02X, read back %02X", door, next, got))
		d.lastErr = err
		d.logf("error: %v", err)
		return err
	}
	return nil
}

// Component identifies a power/reset-controllable subsystem. Values match
// the bit position shared across power_sensors/power_actuators and
// connected_device/power_state/error_state.
type Component uint

const (
	ComponentTemp   Component = bitTempSensor
	ComponentHumid  Component = bitHumidSensor
	ComponentLED    Component = bitLED
	ComponentFan    Component = bitFan
	ComponentHeater Component = bitHeater
	ComponentDoors  Component = bitDoors
)

func (c Component) isSensor() bool {
	return c == ComponentTemp || c == ComponentHumid
}

// SetPower turns one component on or off, preserving the power state of
// every other component with a read-modify-write. Sensor and actuator
// components live in separate registers (power_sensors, power_actuators).
func (d *Driver) SetPower(c Component, on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	base, offset := baseControl, offsetPowerSensors
	if !c.isSensor() {
		offset = offsetPowerActuators
	}
	current, err := d.readRegister(uint8(base), uint8(offset))
	if err != nil {
		return err
	}
	mask := uint8(1) << uint(c)
	var next uint8
	if on {
		next = current | mask
	} else {
		next = current &^ mask
	}
	_, err = d.writeRegister(uint8(base), uint8(offset), next)
	return err
}

// Reset pulses the reset bit for one component. Unlike SetPower and
// SetDoor, this is a one-shot write, not a preserving read-modify-write:
// the device's reset registers self-clear, so reading back a "current"
// value before writing would always observe 0 for any bit already
// reset, and the protocol defines reset as "set exactly this bit".
func (d *Driver) Reset(c Component) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	offset := offsetResetSensors
	if !c.isSensor() {
		offset = offsetResetActuators
	}
	_, err := d.writeRegister(baseControl, uint8(offset), uint8(1)<<uint(c))
	return err
}
