// Package vdltest provides a simulated data logger for tests.
package vdltest

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"

	"vdl120/pkg/port"
)

var ErrTimeout = errors.New("timeout")

// Sample is one raw sample as stored on the device.
type Sample struct {
	Temperature uint16
	Humidity    uint16
}

// Simulator answers the commands of the data logger protocol.
// It implements port.Handle.
type Simulator struct {
	// Record is the 64 byte configuration returned by read config.
	Record []byte
	// Samples are returned by cluster reads.
	Samples []Sample
	// Status is the response to set config, {0xff} if nil.
	Status []byte

	// ConfigLimit truncates the configuration record if > 0.
	ConfigLimit int
	// ClusterLimit truncates every cluster payload if > 0.
	ClusterLimit int
	// WriteErr is returned by every write if set.
	WriteErr error

	// Received is the last record written by set config.
	Received []byte
	// Commands lists every command in the order received.
	Commands [][]byte
	Opened   int
	Closed   int

	info port.Info
}

// New returns a simulator reporting the given product name.
func New(name string) *Simulator {
	return &Simulator{info: port.Info{Vendor: 0x10c4, Product: 0x0003, Name: name}}
}

// Info implements port.Handle.
func (s *Simulator) Info() port.Info {
	return s.info
}

// Open implements port.Handle.
func (s *Simulator) Open() (port.Conn, error) {
	s.Opened++
	return &conn{sim: s}, nil
}

// Clusters returns the cluster and block count of every cluster read command.
func (s *Simulator) Clusters() [][2]int {
	var c [][2]int
	for _, cmd := range s.Commands {
		if len(cmd) == 3 && cmd[0] == 0x00 && !bytes.Equal(cmd, readConfig) {
			c = append(c, [2]int{int(cmd[1]), int(cmd[2])})
		}
	}
	return c
}

var (
	readConfig = []byte{0x00, 0x10, 0x01}
	setConfig  = []byte{0x01, 0x40, 0x00}
)

type conn struct {
	sim       *Simulator
	pending   [][]byte
	expectSet bool
	closed    bool
}

func (c *conn) Write(b []byte, _ time.Duration) error {
	if c.sim.WriteErr != nil {
		return &port.TransportError{Op: "write", Err: c.sim.WriteErr}
	}

	if c.expectSet {
		c.expectSet = false
		c.sim.Received = append([]byte(nil), b...)
		status := c.sim.Status
		if status == nil {
			status = []byte{0xff}
		}
		c.pending = append(c.pending, status)
		return nil
	}

	c.sim.Commands = append(c.sim.Commands, append([]byte(nil), b...))

	switch {
	case bytes.Equal(b, readConfig):
		record := c.sim.Record
		if c.sim.ConfigLimit > 0 && c.sim.ConfigLimit < len(record) {
			record = record[:c.sim.ConfigLimit]
		}
		c.pending = append(c.pending, []byte{0x00, 0x10, 0x01}, record)
	case bytes.Equal(b, setConfig):
		c.expectSet = true
	case len(b) == 3 && b[0] == 0x00:
		c.pending = append(c.pending, []byte{0x00, b[1], b[2]}, c.sim.cluster(int(b[1]), int(b[2])))
	}

	return nil
}

func (c *conn) Read(size int, _ time.Duration) ([]byte, error) {
	if len(c.pending) == 0 {
		return nil, &port.TransportError{Op: "read", Err: ErrTimeout}
	}

	b := c.pending[0]
	c.pending = c.pending[1:]
	if len(b) > size {
		b = b[:size]
	}
	return b, nil
}

func (c *conn) Close() error {
	if !c.closed {
		c.closed = true
		c.sim.Closed++
	}
	return nil
}

// cluster returns the payload of blocks 64 byte blocks starting at the given cluster.
// Space behind the last sample is filled with 0xff like an erased flash page.
func (s *Simulator) cluster(cluster, blocks int) []byte {
	b := bytes.Repeat([]byte{0xff}, blocks*64)

	first := cluster * 64 * 16
	for i := 0; i < blocks*16 && first+i < len(s.Samples); i++ {
		binary.LittleEndian.PutUint16(b[i*4:], s.Samples[first+i].Temperature)
		binary.LittleEndian.PutUint16(b[i*4+2:], s.Samples[first+i].Humidity)
	}

	if s.ClusterLimit > 0 && s.ClusterLimit < len(b) {
		b = b[:s.ClusterLimit]
	}
	return b
}

// Bus is a port.Bus of simulators.
type Bus struct {
	Simulators []*Simulator
	Err        error
	Closed     bool
}

// NewBus returns a bus with the given simulators attached.
func NewBus(sims ...*Simulator) *Bus {
	return &Bus{Simulators: sims}
}

// Handles implements port.Bus.
func (b *Bus) Handles() ([]port.Handle, error) {
	if b.Err != nil {
		return nil, b.Err
	}

	handles := make([]port.Handle, 0, len(b.Simulators))
	for _, s := range b.Simulators {
		handles = append(handles, s)
	}
	return handles, nil
}

// Close implements port.Bus.
func (b *Bus) Close() error {
	b.Closed = true
	return nil
}

// WithRecorded returns a copy of a 64 byte configuration record reporting n recorded samples.
func WithRecorded(record []byte, n int) []byte {
	b := append([]byte(nil), record...)
	binary.LittleEndian.PutUint32(b[8:], uint32(n))
	return b
}

// RawSamples returns n samples with increasing values starting at temperature and humidity.
func RawSamples(n int, temperature, humidity uint16) []Sample {
	s := make([]Sample, n)
	for i := range s {
		s[i] = Sample{Temperature: temperature + uint16(i), Humidity: humidity + uint16(i)}
	}
	return s
}
