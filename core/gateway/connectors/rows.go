package connectors

import (
	"database/sql"
	"encoding/base64"
	"fmt"
	"time"
	"unicode/utf8"
)

// scanRows converts driver-native rows into ordered row maps. Column and
// row order are preserved exactly as the backend returned them; the
// gateway never reorders a recordset.
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	results := make([]map[string]any, 0, 64)
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			rowMap[col] = jsonSafeValue(values[i])
		}
		results = append(results, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

// jsonSafeValue converts a scanned value into a JSON-serializable one.
// Text columns pass through byte-for-byte as strings: a column holding a
// JSON-encoded document must round-trip untouched so the consumer decides
// whether to parse it.
func jsonSafeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		if utf8.Valid(x) {
			return string(x)
		}
		return map[string]any{
			"type":   "bytes",
			"base64": base64.StdEncoding.EncodeToString(x),
		}
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return x
	}
}

// scanStringColumn collects a single-column result into a string slice,
// used by the dialect catalog queries.
func scanStringColumn(rows *sql.Rows) ([]string, error) {
	values := make([]string, 0, 16)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return values, nil
}
