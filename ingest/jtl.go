package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/uyouii/capacity-model/common"
)

// TimestampColumn is the JTL column holding the request start time in epoch milliseconds.
const TimestampColumn = "timeStamp"

// ReadThroughput reads a JMeter JTL result file in CSV form and returns its
// mean throughput in requests per second: the number of rows divided by the
// span between the first and the last timestamp.
func ReadThroughput(r io.Reader) (float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return 0, fmt.Errorf("empty jtl file: %w", common.ErrorInvalidValue)
	}
	if err != nil {
		return 0, err
	}

	column := -1
	for i, name := range header {
		if strings.TrimSpace(name) == TimestampColumn {
			column = i
			break
		}
	}
	if column < 0 {
		return 0, fmt.Errorf("jtl file has no %s column: %w", TimestampColumn, common.ErrorInvalidValue)
	}

	rows := 0
	first, last := math.Inf(1), math.Inf(-1)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		rows++
		if column >= len(record) {
			return 0, fmt.Errorf("row %d has no %s field: %w", rows, TimestampColumn, common.ErrorInvalidValue)
		}
		ts, err := strconv.ParseFloat(strings.TrimSpace(record[column]), 64)
		if err != nil {
			return 0, fmt.Errorf("row %d: %v: %w", rows, err, common.ErrorInvalidValue)
		}
		first, last = math.Min(first, ts), math.Max(last, ts)
	}

	seconds := (last - first) / 1000
	if rows == 0 || seconds <= 0 {
		return 0, fmt.Errorf("jtl file spans %v seconds over %d rows: %w", math.Max(seconds, 0), rows,
			common.ErrorInvalidValue)
	}
	return float64(rows) / seconds, nil
}
