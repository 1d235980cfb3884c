package sonos

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(finder RoomFinder) *chi.Mux {
	router := chi.NewRouter()
	RegisterRoutes(router, newTestService(finder))
	return router
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGroupEndpoint_Success(t *testing.T) {
	device := newFakeDevice(t, "Kitchen", "RINCON_KITCHEN01")
	device.zoneStateFn = func() string { return zoneState(device) }
	router := newTestRouter(&staticFinder{endpoint: device.endpoint()})

	rec := postJSON(t, router, "/sonos/group", `{"rooms":["Kitchen"],"volume":20}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "20", device.actionArgs("SetVolume")["DesiredVolume"])
}

func TestGroupEndpoint_InvalidBody(t *testing.T) {
	router := newTestRouter(&staticFinder{})

	rec := postJSON(t, router, "/sonos/group", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGroupEndpoint_TransportFailure(t *testing.T) {
	device := newFakeDevice(t, "Kitchen", "RINCON_KITCHEN01")
	device.zoneStateFn = func() string { return zoneState(device) }
	device.fail("BecomeCoordinatorOfStandaloneGroup")
	router := newTestRouter(&staticFinder{endpoint: device.endpoint()})

	rec := postJSON(t, router, "/sonos/group", `{"rooms":["Kitchen"]}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "SONOS_REJECTED", body["error"]["code"])
}

func TestSleepEndpoint_UnresolvedRooms(t *testing.T) {
	router := newTestRouter(&staticFinder{endpoint: nil})

	rec := postJSON(t, router, "/sonos/sleep", `{"rooms":["Attic"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSleepEndpoint_TransportFailure(t *testing.T) {
	device := newFakeDevice(t, "Bedroom", "RINCON_BEDROOM01")
	device.zoneStateFn = func() string { return zoneState(device) }
	device.fail("BecomeCoordinatorOfStandaloneGroup")
	router := newTestRouter(&staticFinder{endpoint: device.endpoint()})

	rec := postJSON(t, router, "/sonos/sleep", `{"rooms":["Bedroom"]}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "SONOS_REJECTED", body["error"]["code"])
}

func TestSleepEndpoint_Success(t *testing.T) {
	device := newFakeDevice(t, "Bedroom", "RINCON_BEDROOM01")
	device.zoneStateFn = func() string { return zoneState(device) }
	router := newTestRouter(&staticFinder{endpoint: device.endpoint()})

	rec := postJSON(t, router, "/sonos/sleep", `{"rooms":["Bedroom"],"sleep_timer":3600}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "01:00:00", device.actionArgs("ConfigureSleepTimer")["NewSleepTimerDuration"])
	require.Equal(t, goodnightQueueURI, device.actionArgs("AddURIToQueue")["EnqueuedURI"])
}

func TestSleepEndpoint_SequenceFailure(t *testing.T) {
	device := newFakeDevice(t, "Bedroom", "RINCON_BEDROOM01")
	device.zoneStateFn = func() string { return zoneState(device) }
	device.fail("Play")
	router := newTestRouter(&staticFinder{endpoint: device.endpoint()})

	rec := postJSON(t, router, "/sonos/sleep", `{"rooms":["Bedroom"]}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPlaylistEndpoint_Success(t *testing.T) {
	device := newFakeDevice(t, "Kitchen", "RINCON_KITCHEN01")
	device.zoneStateFn = func() string { return zoneState(device) }
	device.browseDIDL = didlSavedQueues
	router := newTestRouter(&staticFinder{endpoint: device.endpoint()})

	rec := postJSON(t, router, "/sonos/playlist?shuffle=true&repeat=true&sleep_timer=1800",
		`{"rooms":["Kitchen"],"playlist":"morning mix"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "file:///jffs/settings/savedqueues.rsq#7", device.actionArgs("AddURIToQueue")["EnqueuedURI"])
	require.Equal(t, "00:30:00", device.actionArgs("ConfigureSleepTimer")["NewSleepTimerDuration"])
}

func TestPlaylistEndpoint_CoordinatorNotFound(t *testing.T) {
	router := newTestRouter(&staticFinder{endpoint: nil})

	rec := postJSON(t, router, "/sonos/playlist", `{"rooms":["Attic"],"playlist":"Morning Mix"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "COORDINATOR_NOT_FOUND", body["error"]["code"])
}

func TestPlaylistEndpoint_PlaylistNotFound(t *testing.T) {
	device := newFakeDevice(t, "Kitchen", "RINCON_KITCHEN01")
	device.zoneStateFn = func() string { return zoneState(device) }
	device.browseDIDL = didlSavedQueues
	router := newTestRouter(&staticFinder{endpoint: device.endpoint()})

	rec := postJSON(t, router, "/sonos/playlist", `{"rooms":["Kitchen"],"playlist":"Workout"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "PLAYLIST_NOT_FOUND", body["error"]["code"])
}

func TestPlaylistEndpoint_MissingPlaylistName(t *testing.T) {
	router := newTestRouter(&staticFinder{})

	rec := postJSON(t, router, "/sonos/playlist", `{"rooms":["Kitchen"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaylistEndpoint_BadQueryParams(t *testing.T) {
	router := newTestRouter(&staticFinder{})

	rec := postJSON(t, router, "/sonos/playlist?shuffle=sideways", `{"rooms":["Kitchen"],"playlist":"Morning Mix"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
