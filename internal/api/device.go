package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// handleGetDevice returns a summary of the connected heater.
func (s *Server) handleGetDevice(w http.ResponseWriter, _ *http.Request) {
	summary := map[string]any{
		"manufacturer": s.device.Manufacturer(),
		"model":        s.device.Model(),
		"serial":       s.device.Serial(),
		"status":       s.device.Status(),
		"available":    s.available(),
		"initialized":  s.device.Initialized(),
		"sensor_count": len(s.device.Sensors()),
	}
	if err := s.device.LastError(); err != nil {
		summary["last_error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleListSensors returns the cached sensor table from the last refresh.
func (s *Server) handleListSensors(w http.ResponseWriter, _ *http.Request) {
	sensors := s.device.Sensors()
	writeJSON(w, http.StatusOK, map[string]any{
		"sensors": sensors,
		"count":   len(sensors),
	})
}

// handleGetSensor reads a single sensor. The value is fetched live from the
// device unless ?cached=true is given, in which case the poller's last
// refresh is served instead.
func (s *Server) handleGetSensor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if r.URL.Query().Get("cached") == "true" {
		sensor, ok := s.device.Sensors()[id]
		if !ok {
			writeNotFound(w, "unknown sensor")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "sensor": sensor})
		return
	}

	sensors, err := s.device.Read(r.Context(), id)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "sensor": sensors[id]})
}

// setSensorRequest is the body for PUT /device/sensors/{id}.
type setSensorRequest struct {
	Value int `json:"value"`
}

// handleSetSensor writes a value to a writable sensor.
func (s *Server) handleSetSensor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setSensorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.device.Write(r.Context(), id, req.Value); err != nil {
		writeDeviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "value": req.Value})
}

// commandRequest is the body for POST /device/commands.
type commandRequest struct {
	Command string `json:"command"`
}

// handleCommand executes a power command on the heater.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	var err error
	cmd := strings.ToLower(strings.TrimSpace(req.Command))
	switch cmd {
	case "on":
		err = s.device.TurnOn(r.Context())
	case "off":
		err = s.device.TurnOff(r.Context())
	case "unblock":
		err = s.device.Unblock(r.Context())
	default:
		writeBadRequest(w, "unknown command: expected on, off, or unblock")
		return
	}

	if err != nil {
		writeDeviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"command": cmd,
		"status":  s.device.Status(),
	})
}
