package shark

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strefethen/home-hub-go/internal/api"
	"github.com/strefethen/home-hub-go/internal/apperrors"
	"github.com/strefethen/home-hub-go/internal/audit"
)

// Publisher pushes vacuum command events to connected listeners.
type Publisher interface {
	Publish(eventType string, payload map[string]any)
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, map[string]any) {}

// RegisterRoutes wires vacuum control routes to the router. recorder and
// publisher may be nil.
func RegisterRoutes(router chi.Router, client *Client, recorder Recorder, publisher Publisher) {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}

	router.Method(http.MethodGet, "/shark/devices", api.Handler(getDevices(client)))
	router.Method(http.MethodGet, "/shark/devices/{dsn}/properties", api.Handler(getDeviceProperties(client)))
	router.Method(http.MethodPut, "/shark/devices/{dsn}/start", api.Handler(setMode(client, recorder, publisher, "start", ModeStart)))
	router.Method(http.MethodPut, "/shark/devices/{dsn}/stop", api.Handler(setMode(client, recorder, publisher, "stop", ModeStop)))
	router.Method(http.MethodPut, "/shark/devices/{dsn}/pause", api.Handler(setMode(client, recorder, publisher, "pause", ModePause)))
	router.Method(http.MethodPut, "/shark/devices/{dsn}/return", api.Handler(setMode(client, recorder, publisher, "return", ModeReturn)))
}

func getDevices(client *Client) api.Handler {
	return func(w http.ResponseWriter, r *http.Request) error {
		devices, err := client.GetDevices(r.Context())
		if err != nil {
			return sharkError(err)
		}
		return api.WriteJSON(w, http.StatusOK, devices)
	}
}

func getDeviceProperties(client *Client) api.Handler {
	return func(w http.ResponseWriter, r *http.Request) error {
		dsn := chi.URLParam(r, "dsn")
		properties, err := client.GetDeviceProperties(r.Context(), dsn)
		if err != nil {
			return sharkError(err)
		}
		return api.WriteJSON(w, http.StatusOK, properties)
	}
}

func setMode(client *Client, recorder Recorder, publisher Publisher, command string, mode OperatingMode) api.Handler {
	return func(w http.ResponseWriter, r *http.Request) error {
		dsn := chi.URLParam(r, "dsn")
		if err := client.SetOperatingMode(r.Context(), dsn, mode); err != nil {
			return sharkError(err)
		}

		recorder.Record(audit.WriteEventInput{
			Type:      audit.EventVacuumCommand,
			RequestID: api.GetRequestID(r),
			DSN:       dsn,
			Message:   command,
		})
		publisher.Publish("vacuum.command", map[string]any{
			"dsn":     dsn,
			"command": command,
		})
		w.WriteHeader(http.StatusAccepted)
		return nil
	}
}

func sharkError(err error) error {
	return apperrors.NewAppError(apperrors.ErrorCodeSharkAPIError, err.Error(), http.StatusInternalServerError, nil)
}
