// Package device implements the Semi-Vibe-Device simulator: the register
// file, its access policy and side effects, the sensor evolution step, and
// the TCP session that exposes it all to a driver.
package device

import (
	"fmt"
	"math/rand"
	"net"
	"sync"
	"time"

	"semivibe.dev/protocol"
)

// Device owns one register file and, once started, the TCP listener that
// serves it to a single client at a time. There is no package-level mutable
// state: every Device is an independent value, and the host owns it.
type Device struct {
	cfg Config

	mu  sync.Mutex // guards mem, tempBase, humidBase and rng
	mem memory
	rng *rand.Rand

	tempBase  uint8
	humidBase uint8

	connMu   sync.Mutex // guards listener/conn/running, distinct from the register-file mutex
	listener net.Listener
	conn     net.Conn
	running  bool
	serveWG  sync.WaitGroup
}

// New creates a Device with the given configuration. Call Init before
// Start.
func New(cfg Config) *Device {
	return &Device{cfg: cfg.withDefaults()}
}

// Init (re-)initializes the register file to its power-on state. It is the
// only operation that resets state; it may be called again between
// Start/Stop cycles to emulate a power cycle.
func (d *Device) Init() {
	d.mu.Lock()
	defer d.mu.Unlock()

	rng := d.cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	d.rng = rng

	d.mem.reset(uint8(d.rng.Intn(256)), uint8(d.rng.Intn(256)))
	d.tempBase = 128
	d.humidBase = 128

	d.logf("Semi-Vibe-Device simulator initialized")
}

// Start binds the listener and begins serving connections on a dedicated
// goroutine. The device accepts at most one client at a time: Start does
// not return until the listener is bound, but the accept loop itself runs
// asynchronously.
func (d *Device) Start() error {
	d.connMu.Lock()
	defer d.connMu.Unlock()

	if d.running {
		return fmt.Errorf("device: already running")
	}

	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("device: listen %s: %w", addr, err)
	}
	d.listener = ln
	d.running = true

	d.serveWG.Add(1)
	go d.serve()

	d.logf("Semi-Vibe-Device simulator started on %s", ln.Addr())
	return nil
}

// Addr returns the listener's bound address. It is only valid after a
// successful Start.
func (d *Device) Addr() net.Addr {
	d.connMu.Lock()
	defer d.connMu.Unlock()
	if d.listener == nil {
		return nil
	}
	return d.listener.Addr()
}

// Stop closes the listener and any active client connection, then waits
// for the accept loop to exit.
func (d *Device) Stop() error {
	d.connMu.Lock()
	if !d.running {
		d.connMu.Unlock()
		return fmt.Errorf("device: not running")
	}
	d.running = false
	if d.conn != nil {
		d.conn.Close()
	}
	if d.listener != nil {
		d.listener.Close()
	}
	d.connMu.Unlock()

	d.serveWG.Wait()
	d.logf("Semi-Vibe-Device simulator stopped")
	return nil
}

func (d *Device) serve() {
	defer d.serveWG.Done()
	d.logf("accept loop started")
	for {
		d.connMu.Lock()
		ln := d.listener
		running := d.running
		d.connMu.Unlock()
		if !running || ln == nil {
			return
		}

		conn, err := ln.Accept()
		if err != nil {
			if !d.isRunning() {
				return
			}
			d.logf("accept failed: %v", err)
			continue
		}

		d.connMu.Lock()
		d.conn = conn
		d.connMu.Unlock()

		d.handleSession(conn)

		d.connMu.Lock()
		d.conn = nil
		d.connMu.Unlock()
	}
}

func (d *Device) isRunning() bool {
	d.connMu.Lock()
	defer d.connMu.Unlock()
	return d.running
}

// ProcessCommand runs the full dispatch-and-evolve cycle for one request
// frame and returns the 6-character response frame. It is the device
// state machine's only entry point, and is safe to call directly (e.g.
// from a test harness) without going through a TCP session.
func (d *Device) ProcessCommand(frameIn string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	resp := d.dispatch(frameIn)
	d.evolveSensors()
	return resp
}

func (d *Device) dispatch(frameIn string) string {
	f, err := protocol.Parse(frameIn)
	if err != nil {
		return errResp(protocol.ErrForbidden)
	}
	if f.RW != protocol.Read && f.RW != protocol.Write {
		return errResp(protocol.ErrInvalid)
	}

	switch f.Base {
	case baseReserved:
		return errResp(protocol.ErrForbidden)
	case baseMain:
		return d.dispatchReadOnly(f, d.readMain)
	case baseSensor:
		return d.dispatchReadOnly(f, d.readSensor)
	case baseActuator:
		return d.dispatchActuator(f)
	case baseControl:
		return d.dispatchControl(f)
	default:
		return errResp(protocol.ErrInvalid)
	}
}

func (d *Device) dispatchReadOnly(f protocol.Frame, read func(offset uint8) (uint8, bool)) string {
	if f.RW == protocol.Write {
		return errResp(protocol.ErrForbidden)
	}
	data, ok := read(f.Offset)
	if !ok {
		return errResp(protocol.ErrInvalid)
	}
	return protocol.Frame{Base: f.Base, Offset: f.Offset, RW: f.RW, Data: data}.Render()
}

func (d *Device) readMain(offset uint8) (uint8, bool) {
	switch offset {
	case offsetConnectedDevice:
		return d.mem.connectedDevice, true
	case offsetReservedMain:
		return d.mem.reservedMain, true
	case offsetPowerState:
		return d.mem.powerState, true
	case offsetErrorState:
		return d.mem.errorState, true
	default:
		return 0, false
	}
}

func (d *Device) readSensor(offset uint8) (uint8, bool) {
	switch offset {
	case offsetTempID:
		return d.mem.tempID, true
	case offsetTempValue:
		return d.mem.tempValue, true
	case offsetHumidID:
		return d.mem.humidID, true
	case offsetHumidVal:
		return d.mem.humidVal, true
	default:
		return 0, false
	}
}

func (d *Device) dispatchActuator(f protocol.Frame) string {
	var cell *uint8
	var writeMask uint8 = 0xFF
	switch f.Offset {
	case offsetLED:
		cell = &d.mem.led
	case offsetFan:
		cell = &d.mem.fan
	case offsetHeater:
		cell = &d.mem.heater
		writeMask = maskHeaterValue
	case offsetDoors:
		cell = &d.mem.doors
		writeMask = maskDoorsValue
	default:
		return errResp(protocol.ErrInvalid)
	}

	if f.RW == protocol.Read {
		return protocol.Frame{Base: f.Base, Offset: f.Offset, RW: f.RW, Data: *cell}.Render()
	}
	*cell = f.Data & writeMask
	// The echoed data is the requested value, not the post-mask stored
	// value: this matches the reference device's observed behavior.
	return protocol.Frame{Base: f.Base, Offset: f.Offset, RW: f.RW, Data: f.Data}.Render()
}

func (d *Device) dispatchControl(f protocol.Frame) string {
	switch f.Offset {
	case offsetPowerSensors:
		return d.accessPowerSensors(f)
	case offsetPowerActuators:
		return d.accessPowerActuators(f)
	case offsetResetSensors:
		return d.accessResetSensors(f)
	case offsetResetActuators:
		return d.accessResetActuators(f)
	default:
		return errResp(protocol.ErrInvalid)
	}
}

func (d *Device) accessPowerSensors(f protocol.Frame) string {
	if f.RW == protocol.Read {
		return protocol.Frame{Base: f.Base, Offset: f.Offset, RW: f.RW, Data: d.mem.powerSensors}.Render()
	}
	d.mem.powerSensors = f.Data & maskSensorValue
	d.propagatePower(f.Data, bitTempSensor)
	d.propagatePower(f.Data, bitHumidSensor)
	return protocol.Frame{Base: f.Base, Offset: f.Offset, RW: f.RW, Data: f.Data}.Render()
}

func (d *Device) accessPowerActuators(f protocol.Frame) string {
	if f.RW == protocol.Read {
		return protocol.Frame{Base: f.Base, Offset: f.Offset, RW: f.RW, Data: d.mem.powerActuators}.Render()
	}
	d.mem.powerActuators = f.Data & maskDoorsValue
	d.propagatePower(f.Data, bitLED)
	d.propagatePower(f.Data, bitFan)
	d.propagatePower(f.Data, bitHeater)
	d.propagatePower(f.Data, bitDoors)
	return protocol.Frame{Base: f.Base, Offset: f.Offset, RW: f.RW, Data: f.Data}.Render()
}

func (d *Device) propagatePower(requested uint8, bit uint) {
	mask := uint8(1) << bit
	if requested&mask != 0 {
		d.mem.connectedDevice |= mask
		d.mem.powerState |= mask
	} else {
		d.mem.connectedDevice &^= mask
		d.mem.powerState &^= mask
	}
}

func (d *Device) accessResetSensors(f protocol.Frame) string {
	if f.RW == protocol.Read {
		return protocol.Frame{Base: f.Base, Offset: f.Offset, RW: f.RW, Data: d.mem.resetSensors}.Render()
	}
	d.mem.resetSensors = f.Data & maskSensorValue
	for _, bit := range [...]uint{bitTempSensor, bitHumidSensor} {
		mask := uint8(1) << bit
		if f.Data&mask != 0 {
			d.mem.errorState &^= mask
			d.mem.resetSensors &^= mask // self-clear
		}
	}
	return protocol.Frame{Base: f.Base, Offset: f.Offset, RW: f.RW, Data: f.Data}.Render()
}

func (d *Device) accessResetActuators(f protocol.Frame) string {
	if f.RW == protocol.Read {
		return protocol.Frame{Base: f.Base, Offset: f.Offset, RW: f.RW, Data: d.mem.resetActuators}.Render()
	}
	d.mem.resetActuators = f.Data & maskDoorsValue
	cells := [...]struct {
		bit  uint
		cell *uint8
	}{
		{bitLED, &d.mem.led},
		{bitFan, &d.mem.fan},
		{bitHeater, &d.mem.heater},
		{bitDoors, &d.mem.doors},
	}
	for _, c := range cells {
		mask := uint8(1) << c.bit
		if f.Data&mask != 0 {
			d.mem.errorState &^= mask
			*c.cell = 0
			d.mem.resetActuators &^= mask // self-clear
		}
	}
	return protocol.Frame{Base: f.Base, Offset: f.Offset, RW: f.RW, Data: f.Data}.Render()
}

func errResp(code uint8) string {
	s, _ := protocol.RenderError(code)
	return s
}

func (d *Device) logf(format string, args ...any) {
	if d.cfg.LogSink == nil {
		return
	}
	d.cfg.LogSink(fmt.Sprintf(format, args...))
}
