package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// CSVOptions configures CSV output
type CSVOptions struct {
	Delimiter       rune
	UseCRLF         bool
	TimestampFormat string
	NullValue       string
}

// DefaultCSVOptions returns default CSV export options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:       ',',
		TimestampFormat: time.RFC3339,
	}
}

func writeCSV(w io.Writer, table Table, options CSVOptions) error {
	writer := csv.NewWriter(w)
	writer.Comma = options.Delimiter
	writer.UseCRLF = options.UseCRLF

	if err := writer.Write(table.labels()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	keys := table.keys()
	for _, row := range table.Rows {
		record := make([]string, len(keys))
		for i, key := range keys {
			record[i] = formatCSVValue(row[key], options)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatCSVValue(val interface{}, options CSVOptions) string {
	switch v := val.(type) {
	case nil:
		return options.NullValue
	case string:
		return v
	case *string:
		if v == nil {
			return options.NullValue
		}
		return *v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if v.IsZero() {
			return options.NullValue
		}
		return v.Format(options.TimestampFormat)
	default:
		return fmt.Sprintf("%v", v)
	}
}
