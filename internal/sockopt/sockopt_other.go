//go:build !linux

package sockopt

import "net"

func tuneNoDelay(conn net.Conn) error {
	return nil
}
