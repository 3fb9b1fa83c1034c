package dto

// QueryRequest is the body of POST /v1/query
type QueryRequest struct {
	SQL      string `json:"sql" validate:"required"`
	Server   string `json:"server,omitempty"`
	Database string `json:"database,omitempty"`
}

// QueryData carries the normalized recordset of a query
type QueryData struct {
	Recordset []map[string]any `json:"recordset"`
	RowCount  int              `json:"rowCount"`
}

// QueryResponse is the envelope for POST /v1/query.
// ExecutionMs is present iff the statement reached a backend, letting
// callers distinguish "never reached the database" from "reached it and
// failed".
type QueryResponse struct {
	Success     bool       `json:"success"`
	Error       string     `json:"error,omitempty"`
	Data        *QueryData `json:"data,omitempty"`
	ExecutionMs *float64   `json:"execution_ms,omitempty"`
}
