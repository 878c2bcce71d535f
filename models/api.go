package models

// HealthCheckResponse returns the health check response struct
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}

// MessageResponse is a generic confirmation payload
type MessageResponse struct {
	Message string `json:"message"`
}
