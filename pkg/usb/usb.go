// Package usb is the libusb based transport to the data logger.
package usb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/gousb"
	"github.com/womat/debug"
	"vdl120/pkg/port"
)

const (
	// InEndpoint is the address of the bulk in endpoint.
	InEndpoint = 0x81
	// OutEndpoint is the address of the bulk out endpoint.
	OutEndpoint = 0x02

	// flushTimeout is the time the in endpoint has to stay quiet to be considered empty.
	flushTimeout = 50 * time.Millisecond
	// maxFlushReads limits the number of packets discarded while flushing.
	maxFlushReads = 128
)

var ErrShortWrite = errors.New("short write")

// Bus holds the libusb context and the opened devices.
type Bus struct {
	ctx     *gousb.Context
	devices []*gousb.Device
}

// Handle is one opened device on the bus.
type Handle struct {
	device *gousb.Device
	info   port.Info
}

// inEndpoint is the part of *gousb.InEndpoint used by Conn.
type inEndpoint interface {
	ReadContext(ctx context.Context, buf []byte) (int, error)
}

// outEndpoint is the part of *gousb.OutEndpoint used by Conn.
type outEndpoint interface {
	WriteContext(ctx context.Context, buf []byte) (int, error)
}

// Conn is a claimed interface with its bulk endpoints.
type Conn struct {
	done func()
	in   inEndpoint
	out  outEndpoint
	// maxPacket is the packet size of the in endpoint.
	maxPacket int
}

// Open opens a libusb context and all devices with the given vendor and product id.
func Open(vendor, product uint16) (*Bus, error) {
	ctx := gousb.NewContext()

	devices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(vendor) && desc.Product == gousb.ID(product)
	})
	if err != nil {
		// OpenDevices returns the devices it could open together with the error.
		debug.WarningLog.Printf("not all usb devices could be opened: %v", err)
	}

	b := &Bus{ctx: ctx, devices: devices}
	if len(devices) == 0 && err != nil {
		_ = b.Close()
		return nil, &port.TransportError{Op: "open", Err: err}
	}

	debug.DebugLog.Printf("found %d usb device(s) %04x:%04x", len(devices), vendor, product)
	return b, nil
}

// Handles returns the opened devices.
func (b *Bus) Handles() ([]port.Handle, error) {
	handles := make([]port.Handle, 0, len(b.devices))

	for _, d := range b.devices {
		if err := d.SetAutoDetach(true); err != nil {
			debug.WarningLog.Printf("can't enable kernel driver auto detach on %v: %v", d, err)
		}

		name, err := d.Product()
		if err != nil {
			debug.DebugLog.Printf("can't read product string of %v: %v", d, err)
		}

		handles = append(handles, &Handle{
			device: d,
			info: port.Info{
				Vendor:  uint16(d.Desc.Vendor),
				Product: uint16(d.Desc.Product),
				Name:    name,
			},
		})
	}

	return handles, nil
}

// Close releases all devices and the libusb context.
func (b *Bus) Close() error {
	for _, d := range b.devices {
		_ = d.Close()
	}
	b.devices = nil

	return b.ctx.Close()
}

// Info returns the vendor id, product id and product name of the device.
func (h *Handle) Info() port.Info {
	return h.info
}

// Open claims the default interface, opens both bulk endpoints and flushes the in endpoint.
// On failure everything claimed so far is released.
func (h *Handle) Open() (_ port.Conn, err error) {
	intf, done, err := h.device.DefaultInterface()
	if err != nil {
		return nil, &port.TransportError{Op: "open", Err: err}
	}
	defer func() {
		if err != nil {
			done()
		}
	}()

	in, err := intf.InEndpoint(endpointNumber(InEndpoint))
	if err != nil {
		return nil, &port.TransportError{Op: "open", Err: fmt.Errorf("in endpoint %#02x: %w", InEndpoint, err)}
	}

	out, err := intf.OutEndpoint(endpointNumber(OutEndpoint))
	if err != nil {
		return nil, &port.TransportError{Op: "open", Err: fmt.Errorf("out endpoint %#02x: %w", OutEndpoint, err)}
	}

	c := &Conn{done: done, in: in, out: out, maxPacket: in.Desc.MaxPacketSize}
	c.flush()

	return c, nil
}

// flush discards data left in the in endpoint by a previous unfinished session.
func (c *Conn) flush() {
	buf := make([]byte, c.maxPacket)

	for i := 0; i < maxFlushReads; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		n, err := c.in.ReadContext(ctx, buf)
		cancel()

		if err != nil || n == 0 {
			return
		}
		debug.TraceLog.Printf("flushed %d stale bytes: % x", n, buf[:n])
	}
}

// Write sends b to the out endpoint.
func (c *Conn) Write(b []byte, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := c.out.WriteContext(ctx, b)
	if err != nil {
		return &port.TransportError{Op: "write", Err: err}
	}
	if n != len(b) {
		return &port.TransportError{Op: "write", Err: fmt.Errorf("%w: %d of %d bytes", ErrShortWrite, n, len(b))}
	}

	debug.TraceLog.Printf("usb write: % x", b)
	return nil
}

// Read receives up to size bytes from the in endpoint.
func (c *Conn) Read(size int, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	buf := make([]byte, size)
	n, err := c.in.ReadContext(ctx, buf)
	if err != nil {
		return nil, &port.TransportError{Op: "read", Err: err}
	}

	debug.TraceLog.Printf("usb read %d of %d bytes", n, size)
	return buf[:n], nil
}

// Close releases the interface and its endpoints.
func (c *Conn) Close() error {
	if c.done != nil {
		c.done()
		c.done = nil
	}
	return nil
}

// endpointNumber strips the direction bit from an endpoint address.
func endpointNumber(address int) int {
	return address & 0x0f
}
