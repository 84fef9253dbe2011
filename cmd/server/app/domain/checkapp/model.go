package checkapp

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
)

// Info represents information about the service.
type Info struct {
	Status     string `json:"status"`
	Build      string `json:"build"`
	Host       string `json:"host"`
	GOMAXPROCS int    `json:"GOMAXPROCS"`
}

// Encode implements the encoder interface.
func (info Info) Encode() ([]byte, string, error) {
	data, err := sonic.Marshal(info)
	return data, "application/json", err
}

// Model represents the health of a single cached model.
type Model struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Status        string    `json:"status"`
	Quantized     bool      `json:"quantized"`
	ActiveStreams int       `json:"active_streams"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Health represents the health of the service and its models.
type Health struct {
	Status string  `json:"status"`
	Models []Model `json:"models"`
}

// Encode implements the encoder interface.
func (h Health) Encode() ([]byte, string, error) {
	data, err := sonic.Marshal(h)
	return data, "application/json", err
}

// HTTPStatus implements the web package httpStatus interface so a loading
// model reports as not ready.
func (h Health) HTTPStatus() int {
	if h.Status != "healthy" {
		return http.StatusServiceUnavailable
	}

	return http.StatusOK
}
