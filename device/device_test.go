package device

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semivibe.dev/protocol"
)

func newTestDevice(t *testing.T) *Device {
	t.Helper()
	d := New(Config{Rand: rand.New(rand.NewSource(1))})
	d.Init()
	return d
}

func req(base, offset uint8, rw protocol.RW, data uint8) string {
	return protocol.Frame{Base: base, Offset: offset, RW: rw, Data: data}.Render()
}

func TestReadMainRegisters(t *testing.T) {
	d := newTestDevice(t)
	resp := d.ProcessCommand(req(baseMain, offsetConnectedDevice, protocol.Read, 0))
	f, err := protocol.Parse(resp)
	require.NoError(t, err)
	assert.Equal(t, uint8(baseMain), f.Base)
	assert.Equal(t, uint8(0xFF), f.Data) // connected_device starts fully populated
}

func TestWriteToReadOnlyBaseIsForbidden(t *testing.T) {
	d := newTestDevice(t)
	resp := d.ProcessCommand(req(baseMain, offsetConnectedDevice, protocol.Write, 0))
	assertErrorCode(t, resp, protocol.ErrForbidden)

	resp = d.ProcessCommand(req(baseSensor, offsetTempID, protocol.Write, 0x80))
	assertErrorCode(t, resp, protocol.ErrForbidden)
}

func TestReservedBaseIsForbidden(t *testing.T) {
	d := newTestDevice(t)
	resp := d.ProcessCommand(req(baseReserved, 0, protocol.Read, 0))
	assertErrorCode(t, resp, protocol.ErrForbidden)
}

func TestUnknownOffsetIsInvalid(t *testing.T) {
	d := newTestDevice(t)
	resp := d.ProcessCommand(req(baseMain, 0xFF, protocol.Read, 0))
	assertErrorCode(t, resp, protocol.ErrInvalid)

	resp = d.ProcessCommand(req(baseActuator, 0xFF, protocol.Read, 0))
	assertErrorCode(t, resp, protocol.ErrInvalid)
}

func TestMalformedFrameIsForbidden(t *testing.T) {
	d := newTestDevice(t)
	resp := d.ProcessCommand("ZZZZZZ")
	assertErrorCode(t, resp, protocol.ErrForbidden)
}

// TestHeaterWriteEchoesUnmasked pins the observed reference-device behavior:
// a write response echoes the requested byte, not the value actually stored
// after masking.
func TestHeaterWriteEchoesUnmasked(t *testing.T) {
	d := newTestDevice(t)
	resp := d.ProcessCommand(req(baseActuator, offsetHeater, protocol.Write, 0xFF))
	f, err := protocol.Parse(resp)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xFF), f.Data, "echoed data must be the requested byte")

	read := d.ProcessCommand(req(baseActuator, offsetHeater, protocol.Read, 0))
	rf, err := protocol.Parse(read)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x0F), rf.Data, "stored value must be masked to the low nibble")
}

func TestDoorsWriteMasksToEvenBits(t *testing.T) {
	d := newTestDevice(t)
	resp := d.ProcessCommand(req(baseActuator, offsetDoors, protocol.Write, 0xFF))
	f, err := protocol.Parse(resp)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xFF), f.Data)

	read := d.ProcessCommand(req(baseActuator, offsetDoors, protocol.Read, 0))
	rf, err := protocol.Parse(read)
	require.NoError(t, err)
	assert.Equal(t, uint8(maskDoorsValue), rf.Data)
}

func TestPowerActuatorsPropagatesToConnectedDeviceAndPowerState(t *testing.T) {
	d := newTestDevice(t)
	// 0x2A = 0b00101010: none of the actuator bits 0,2,4,6 is set, so all
	// four are cleared from their power-on value of 1.
	w := d.ProcessCommand(req(baseControl, offsetPowerActuators, protocol.Write, 0x2A))
	wf, err := protocol.Parse(w)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x2A), wf.Data)

	main := d.ProcessCommand(req(baseMain, offsetPowerState, protocol.Read, 0))
	mf, err := protocol.Parse(main)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x00), mf.Data&maskDoorsValue)

	conn := d.ProcessCommand(req(baseMain, offsetConnectedDevice, protocol.Read, 0))
	cf, err := protocol.Parse(conn)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x00), cf.Data&maskDoorsValue)
}

func TestResetActuatorsClearsErrorAndZeroesCellsThenSelfClears(t *testing.T) {
	d := newTestDevice(t)
	d.ProcessCommand(req(baseActuator, offsetHeater, protocol.Write, 0x05))

	d.mu.Lock()
	d.mem.errorState |= 1 << bitHeater
	d.mu.Unlock()

	resp := d.ProcessCommand(req(baseControl, offsetResetActuators, protocol.Write, 1<<bitHeater))
	rf, err := protocol.Parse(resp)
	require.NoError(t, err)
	assert.Equal(t, uint8(1<<bitHeater), rf.Data)

	d.mu.Lock()
	assert.Equal(t, uint8(0), d.mem.heater)
	assert.Equal(t, uint8(0), d.mem.errorState&(1<<bitHeater))
	assert.Equal(t, uint8(0), d.mem.resetActuators&(1<<bitHeater), "reset bit must self-clear")
	d.mu.Unlock()
}

func TestResetSensorsSelfClearsAndClearsErrorBit(t *testing.T) {
	d := newTestDevice(t)
	d.mu.Lock()
	d.mem.errorState |= 1 << bitTempSensor
	d.mu.Unlock()

	resp := d.ProcessCommand(req(baseControl, offsetResetSensors, protocol.Write, 1<<bitTempSensor))
	rf, err := protocol.Parse(resp)
	require.NoError(t, err)
	assert.Equal(t, uint8(1<<bitTempSensor), rf.Data)

	d.mu.Lock()
	assert.Equal(t, uint8(0), d.mem.errorState&(1<<bitTempSensor))
	assert.Equal(t, uint8(0), d.mem.resetSensors&(1<<bitTempSensor))
	d.mu.Unlock()
}

func TestPowerSensorsReadWrite(t *testing.T) {
	d := newTestDevice(t)
	resp := d.ProcessCommand(req(baseControl, offsetPowerSensors, protocol.Write, 0x00))
	rf, err := protocol.Parse(resp)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x00), rf.Data)

	read := d.ProcessCommand(req(baseControl, offsetPowerSensors, protocol.Read, 0))
	rf2, err := protocol.Parse(read)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x00), rf2.Data)
}
