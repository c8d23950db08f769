// Package sockopt applies small, platform-specific socket tunings to
// accepted connections. The wire protocol is strictly half-duplex
// request/response with tiny (6-byte) frames, where Nagle's algorithm
// measurably delays round trips; disabling it is worth the platform
// branching.
package sockopt

import "net"

// TuneNoDelay disables Nagle's algorithm on conn where the platform
// supports it. It is a no-op (returning nil) on platforms without a
// tuning implementation.
func TuneNoDelay(conn net.Conn) error {
	return tuneNoDelay(conn)
}
