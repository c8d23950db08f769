package driver

// Register addresses, mirroring the device's address space. These are
// duplicated rather than imported from package device: the driver and the
// device are two ends of a wire protocol, not two halves of one program.
const (
	baseMain     = 0x1
	baseSensor   = 0x2
	baseActuator = 0x3
	baseControl  = 0x4
)

const (
	offsetConnectedDevice = 0x00
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
	maskDoorsValue  = 0x55
)
