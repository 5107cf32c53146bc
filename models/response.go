package models

// ScanResponse wraps a successful scan.
type ScanResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Data    *Result `json:"data,omitempty"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
