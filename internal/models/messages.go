package models

import "encoding/json"

// WSMessage is the envelope for all WebSocket communication.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CaptureStatus announces capture lifecycle changes to feed clients.
type CaptureStatus struct {
	Device string `json:"device,omitempty"`
}

// DeviceInfo describes a capture device for the JSON API.
type DeviceInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Addresses   []string `json:"addresses,omitempty"`
}
