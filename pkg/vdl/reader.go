package vdl

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/womat/debug"
	"vdl120/pkg/port"
)

// bulk transfer geometry
const (
	sampleSize       = 4
	blockSize        = 64
	samplesPerBlock  = blockSize / sampleSize
	blocksPerCluster = 64
)

// Progress receives the retrieved share of the samples in percent.
type Progress func(percent int)

// Reader retrieves the stored samples of a device.
type Reader struct {
	device *Device
	// calibration bias added to every converted value
	tempBias int
	humBias  int

	config *Config
}

// NewReader returns a reader for d applying the calibration biases to every sample.
// The reader uses the payload timeouts of d.
func NewReader(d *Device, tempBias, humBias int) *Reader {
	return &Reader{device: d, tempBias: tempBias, humBias: humBias}
}

// Config returns the configuration of the last successful retrieval.
func (r *Reader) Config() *Config {
	return r.config
}

// ReadMeasurements reads the configuration and retrieves all recorded samples in clusters
// of up to 64 blocks. progress may be nil; it is called after every cluster request.
// Any error aborts the retrieval, there is no partial result.
//
// Note: reading the configuration stops an active logging cycle.
func (r *Reader) ReadMeasurements(progress Progress) (*Recording, error) {
	r.config = nil

	cfg, err := r.device.ReadConfig()
	if err != nil {
		return nil, err
	}

	target := cfg.RecordedCount()
	if target < 0 || target > MaxSampleCount {
		return nil, &ProtocolError{Op: "read measurements", Msg: fmt.Sprintf("invalid recorded count %d", target)}
	}
	measurements := make([]Measurement, 0, target)

	if target > 0 {
		con, err := r.device.handle.Open()
		if err != nil {
			return nil, err
		}
		defer func() { _ = con.Close() }()

		for len(measurements) < target {
			if measurements, err = r.readCluster(con, cfg, measurements); err != nil {
				return nil, err
			}

			if progress != nil {
				progress(len(measurements) * 100 / target)
			}
		}
	}

	r.config = cfg
	return &Recording{Config: cfg, Measurements: measurements}, nil
}

// clusterRequest returns the cluster index and the number of blocks of the next request
// after count of target samples have been transferred.
func clusterRequest(count, target int) (cluster, blocks int) {
	totalBlocks := (target + samplesPerBlock - 1) / samplesPerBlock
	transferredBlocks := count / samplesPerBlock
	remainingBlocks := totalBlocks - transferredBlocks

	cluster = transferredBlocks / blocksPerCluster
	blocks = remainingBlocks
	if blocks > blocksPerCluster {
		blocks = blocksPerCluster
	}
	return cluster, blocks
}

// readCluster requests the next cluster and appends its samples to m.
func (r *Reader) readCluster(con port.Conn, cfg *Config, m []Measurement) ([]Measurement, error) {
	target := cfg.RecordedCount()
	cluster, blocks := clusterRequest(len(m), target)
	debug.DebugLog.Printf("request cluster %d, %d blocks (%d of %d samples)", cluster, blocks, len(m), target)

	if err := con.Write([]byte{0x00, byte(cluster), byte(blocks)}, r.device.writeTimeout); err != nil {
		return m, err
	}

	ack, err := con.Read(ackSize, AckTimeout)
	if err != nil {
		return m, err
	}
	debug.TraceLog.Printf("cluster ack: % x", ack)

	size := blocks * blockSize
	data, err := con.Read(size, r.device.readTimeout)
	if err != nil {
		return m, err
	}

	m = r.decodeSamples(data, cfg, m)

	// a short cluster can not be resumed: the next request restarts at the cluster begin
	if len(data) < size && len(m) < target {
		return m, &ProtocolError{
			Op:  "read measurements",
			Msg: fmt.Sprintf("short cluster %d: %d of %d bytes", cluster, len(data), size),
		}
	}

	return m, nil
}

// decodeSamples appends the samples of data to m until the recorded count is reached.
func (r *Reader) decodeSamples(data []byte, cfg *Config, m []Measurement) []Measurement {
	target := cfg.RecordedCount()
	start := cfg.StartTime()
	interval := time.Duration(cfg.Interval()) * time.Second
	unit := cfg.TemperatureUnit()

	for i := 0; i+sampleSize <= len(data) && len(m) < target; i += sampleSize {
		tempRaw := binary.LittleEndian.Uint16(data[i:])
		humRaw := binary.LittleEndian.Uint16(data[i+2:])

		m = append(m, Measurement{
			Time:        start.Add(time.Duration(len(m)) * interval),
			Temperature: float64(tempRaw)/10 + float64(r.tempBias),
			Unit:        unit,
			Humidity:    float64(humRaw)/10 + float64(r.humBias),
		})
	}

	return m
}
