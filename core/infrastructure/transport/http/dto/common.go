package dto

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the uniform error envelope for any endpoint
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ServerInfo is one profile's entry in GET /v1/servers
type ServerInfo struct {
	Name      string `json:"name"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Connected bool   `json:"connected"`
	Healthy   bool   `json:"healthy"`
	ReadOnly  bool   `json:"readOnly"`
}

// ServersData is the payload of GET /v1/servers
type ServersData struct {
	Servers       []ServerInfo `json:"servers"`
	DefaultServer *string      `json:"defaultServer"`
}

// ServersResponse is the envelope for GET /v1/servers
type ServersResponse struct {
	Success bool        `json:"success"`
	Data    ServersData `json:"data"`
}

// DatabasesData is the payload of GET /v1/databases
type DatabasesData struct {
	Databases []string `json:"databases"`
}

// DatabasesResponse is the envelope for GET /v1/databases
type DatabasesResponse struct {
	Success bool          `json:"success"`
	Data    DatabasesData `json:"data"`
}
