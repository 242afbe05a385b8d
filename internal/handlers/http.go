package handlers

import (
	"encoding/json"
	"net/http"

	"sniffscope/internal/capture"
	"sniffscope/internal/models"
)

// RegisterRoutes sets up the live-feed routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, hub *Hub, devices []capture.Device) {
	mux.HandleFunc("/ws", HandleWebSocket(hub))
	mux.HandleFunc("/api/devices", handleDevices(devices))
}

func handleDevices(devices []capture.Device) http.HandlerFunc {
	out := make([]models.DeviceInfo, 0, len(devices))
	for _, d := range devices {
		out = append(out, models.DeviceInfo{
			Name:        d.Name,
			Description: d.Description,
			Addresses:   d.Addresses,
		})
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}
