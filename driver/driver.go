// Package driver implements a typed, thread-safe client for the
// Semi-Vibe-Device wire protocol: component-level getters and setters
// backed by two primitives, readRegister and writeRegister.
package driver

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"semivibe.dev/protocol"
)

// Driver owns one TCP connection to a device and serializes every
// operation over it with a single mutex.
type Driver struct {
	cfg Config

	mu      sync.Mutex
	conn    net.Conn
	r       *bufio.Reader
	lastErr error
}

// NewDriver creates a Driver with the given configuration. Call Connect
// before issuing any operation.
func NewDriver(cfg Config) *Driver {
	return &Driver{cfg: cfg.withDefaults()}
}

// Connect dials the device, waits out its handshake, and leaves the
// Driver ready for operations.
func (d *Driver) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port), d.cfg.Timeout)
	if err != nil {
		return d.fail(errConnect(err.Error()))
	}

	if err := conn.SetReadDeadline(time.Now().Add(d.cfg.Timeout)); err != nil {
		conn.Close()
		return d.fail(errConnect(err.Error()))
	}
	ack := make([]byte, handshakeByteSize)
	if _, err := io.ReadFull(conn, ack); err != nil {
		conn.Close()
		return d.fail(errConnect(err.Error()))
	}
	if string(ack) != "ACK" {
		conn.Close()
		return d.fail(errBadResponse(fmt.Sprintf("unexpected handshake %q", ack)))
	}

	d.conn = conn
	d.r = bufio.NewReaderSize(conn, 6)
	d.logf("connected to %s", conn.RemoteAddr())
	return nil
}

// Disconnect sends the best-effort "exit" sentinel and closes the socket.
func (d *Driver) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disconnectLocked()
}

func (d *Driver) disconnectLocked() error {
	if d.conn == nil {
		return nil
	}
	_, _ = d.conn.Write([]byte("exit"))
	err := d.conn.Close()
	d.conn = nil
	d.r = nil
	if err != nil {
		return d.fail(newError(ErrCodeConnect, "failed to close connection", err.Error()))
	}
	d.logf("disconnected")
	return nil
}

// Close is an alias for Disconnect, for io.Closer-style call sites.
func (d *Driver) Close() error {
	return d.Disconnect()
}

// SetTimeout replaces the per-operation send/recv deadline for subsequent
// operations.
func (d *Driver) SetTimeout(timeout time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg.Timeout = timeout
}

// LastError returns the most recently recorded error. A successful register
// exchange resets it to nil; Connect and Disconnect set it only on failure
// and never clear it.
func (d *Driver) LastError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

func (d *Driver) fail(err error) error {
	d.lastErr = err
	d.logf("error: %v", err)
	return err
}

func (d *Driver) logf(format string, args ...any) {
	if d.cfg.LogSink == nil {
		return
	}
	d.cfg.LogSink(fmt.Sprintf(format, args...))
}

// readRegister issues a read of base/offset and returns the stored byte.
// Callers must hold d.mu.
func (d *Driver) readRegister(base, offset uint8) (uint8, error) {
	f, err := d.sendAndReceive(protocol.Frame{Base: base, Offset: offset, RW: protocol.Read})
	if err != nil {
		return 0, err
	}
	return f.Data, nil
}

// writeRegister issues a write of data to base/offset and verifies the
// echoed frame matches the request byte-for-byte (the device echoes the
// requested byte, not the post-mask stored value, so any mismatch is a
// driver-observed inconsistency, not a masking artifact). Callers must
// hold d.mu.
func (d *Driver) writeRegister(base, offset, data uint8) (uint8, error) {
	req := protocol.Frame{Base: base, Offset: offset, RW: protocol.Write, Data: data}
	f, err := d.sendAndReceive(req)
	if err != nil {
		return 0, err
	}
	if f != req {
		err := errVerification(fmt.Sprintf("sent %s, echoed %s", req.Render(), f.Render()))
		d.lastErr = err
		d.logf("error: %v", err)
		return 0, err
	}
	return f.Data, nil
}

// sendAndReceive sends req and reads the response. Callers must hold d.mu.
func (d *Driver) sendAndReceive(req protocol.Frame) (protocol.Frame, error) {
	if d.conn == nil {
		d.lastErr = ErrNotConnected
		return protocol.Frame{}, ErrNotConnected
	}

	if err := d.conn.SetDeadline(time.Now().Add(d.cfg.Timeout)); err != nil {
		return protocol.Frame{}, d.fail(errWrite(err.Error()))
	}

	if _, err := d.conn.Write([]byte(req.Render())); err != nil {
		return protocol.Frame{}, d.fail(classifyIOErr(err, errWrite))
	}

	buf := make([]byte, 6)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return protocol.Frame{}, d.fail(classifyIOErr(err, errRead))
	}

	resp := string(buf)
	if code, ok := protocol.IsErrorResponse(resp); ok {
		return protocol.Frame{}, d.fail(errDevice(code))
	}

	f, err := protocol.Parse(resp)
	if err != nil {
		return protocol.Frame{}, d.fail(errBadResponse(resp))
	}

	d.lastErr = nil
	return f, nil
}

func classifyIOErr(err error, wrap func(string) error) error {
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return ErrTimeout
	}
	return wrap(err.Error())
}
