package app

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"vdl120/pkg/vdl"
)

// csvSeparator separates the columns of the exported file.
const csvSeparator = '|'

// writeFile creates file and writes the recording to it.
func writeFile(file string, rec *vdl.Recording) (err error) {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return writeCSV(f, rec)
}

// writeCSV writes a header block with name, start time and count, followed by one row per measurement.
func writeCSV(w io.Writer, rec *vdl.Recording) error {
	cw := csv.NewWriter(w)
	cw.Comma = csvSeparator

	rows := [][]string{
		{"Measurement", rec.Config.Name()},
		{"Start time", rec.Config.StartTime().Format(timeFormat)},
		{"Total Count", strconv.Itoa(len(rec.Measurements))},
		{""},
		{"Timestamp", fmt.Sprintf("Temp [%s]", rec.Config.TemperatureUnit()), "rH [%]"},
	}
	for _, m := range rec.Measurements {
		rows = append(rows, []string{
			m.Time.Format(timeFormat),
			strconv.FormatFloat(m.Temperature, 'f', 1, 64),
			strconv.FormatFloat(m.Humidity, 'f', 1, 64),
		})
	}

	return cw.WriteAll(rows)
}
