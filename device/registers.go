package device

// Register address space: a 4-bit base selects one of four banks, each
// holding up to 256 byte-wide offsets. Only the cells below are defined.
const (
	baseReserved = 0x0
	baseMain     = 0x1
	baseSensor   = 0x2
	baseActuator = 0x3
	baseControl  = 0x4
)

const (
	offsetConnectedDevice = 0x00
	offsetReservedMain    = 0x01
	offsetPowerState      = 0x02
	offsetErrorState      = 0x03

	offsetTempID    = 0x10
	offsetTempValue = 0x11
	offsetHumidID   = 0x20
	offsetHumidVal  = 0x21

	offsetLED    = 0x10
	offsetFan    = 0x20
	offsetHeater = 0x30
	offsetDoors  = 0x40

	offsetPowerSensors   = 0xFB
	offsetPowerActuators = 0xFC
	offsetResetSensors   = 0xFD
	offsetResetActuators = 0xFE
)

// Component bit positions, reused across connected_device, power_state,
// error_state and the power/reset control registers.
const (
	bitTempSensor  = 0
	bitHumidSensor = 4
	bitLED         = 0
	bitFan         = 2
	bitHeater      = 4
	bitDoors       = 6
)

const (
	maskHeaterValue = 0x0F
	maskDoorsValue  = 0x55 // bits 0,2,4,6: LED, fan, heater, doors
	maskSensorValue = 0x11 // bits 0,4: temperature, humidity

	tempSensorID  = 0xA1
	humidSensorID = 0xB2
)

// memory is the device's full register file, held under Device.mu.
type memory struct {
	connectedDevice uint8
	reservedMain    uint8
	powerState      uint8
	errorState      uint8

	tempID    uint8
	tempValue uint8
	humidID   uint8
	humidVal  uint8

	led    uint8
	fan    uint8
	heater uint8
	doors  uint8

	powerSensors   uint8
	powerActuators uint8
	resetSensors   uint8
	resetActuators uint8
}

// reset re-initializes the register file to its power-on state.
func (m *memory) reset(tempValue, humidValue uint8) {
	*m = memory{
		connectedDevice: 0xFF,
		powerState:      0xFF,
		errorState:      0x00,

		tempID:    tempSensorID,
		tempValue: tempValue,
		humidID:   humidSensorID,
		humidVal:  humidValue,

		powerSensors:   maskSensorValue,
		powerActuators: maskDoorsValue,
	}
}
