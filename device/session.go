package device

import (
	"io"
	"net"

	"semivibe.dev/internal/sockopt"
	"semivibe.dev/protocol"
)

// ack is the literal 3-byte handshake the device writes immediately after
// accepting a connection. It is raw bytes, not a padded 6-char frame.
const ack = "ACK"

func (d *Device) handleSession(conn net.Conn) {
	defer conn.Close()

	if err := sockopt.TuneNoDelay(conn); err != nil {
		d.logf("socket tuning failed: %v", err)
	}

	d.logf("client connected: %s", conn.RemoteAddr())
	if _, err := conn.Write([]byte(ack)); err != nil {
		d.logf("failed to send handshake: %v", err)
		return
	}

	for {
		msg, err := readMessage(conn)
		if err != nil {
			if err != io.EOF {
				d.logf("client read failed: %v", err)
			}
			d.logf("client disconnected")
			return
		}
		if protocol.IsExit(msg) {
			d.logf("exit command received")
			return
		}

		resp := d.ProcessCommand(msg)
		if _, err := conn.Write([]byte(resp)); err != nil {
			d.logf("failed to send response: %v", err)
			return
		}
		d.logf("%s -> %s", msg, resp)
	}
}

const exitSentinel = "exit"
const frameLen = 6

// readMessage reads one application-layer message: either the 4-byte
// "exit" sentinel or a 6-character frame. Frames are 6 hex digits, and hex
// digits never include 'x', 'i' or 't', so the first 4 bytes unambiguously
// disambiguate the two: if they spell "exit" there cannot be 2 more frame
// bytes to follow in the same message.
func readMessage(r io.Reader) (string, error) {
	head := make([]byte, 4)
	if _, err := io.ReadFull(r, head); err != nil {
		return "", err
	}
	if string(head) == exitSentinel {
		return exitSentinel, nil
	}

	tail := make([]byte, frameLen-4)
	if _, err := io.ReadFull(r, tail); err != nil {
		return "", err
	}
	return string(head) + string(tail), nil
}
