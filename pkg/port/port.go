// Package port holds the definition of a physical port to the data logger.
package port

import (
	"fmt"
	"time"
)

// Info describes an attached device.
type Info struct {
	// Vendor is the USB vendor id.
	Vendor uint16
	// Product is the USB product id.
	Product uint16
	// Name is the product string reported by the device.
	Name string
}

// Conn is an exclusive, open connection to one device.
// Conn must be closed on every exit path.
type Conn interface {
	// Write sends b within timeout. It fails unless all bytes were transferred.
	Write(b []byte, timeout time.Duration) error
	// Read receives up to size bytes within timeout.
	// The returned slice may be shorter than size (short packet).
	Read(size int, timeout time.Duration) ([]byte, error)
	// Close releases the connection.
	Close() error
}

// Handle is an attached device which can be opened.
type Handle interface {
	Info() Info
	// Open claims the device and discards stale inbound data.
	Open() (Conn, error)
}

// Bus enumerates attached devices.
type Bus interface {
	Handles() ([]Handle, error)
	Close() error
}

// TransportError reports a failed byte level exchange.
type TransportError struct {
	// Op is the failed operation, e.g. "write" or "read".
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
