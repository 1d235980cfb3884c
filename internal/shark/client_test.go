package shark

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeAyla emulates the cloud endpoints the client uses.
type fakeAyla struct {
	srv *httptest.Server

	mu           sync.Mutex
	signIns      int
	refreshes    int
	lastAuth     string
	lastBody     map[string]any
	datapoints   []map[string]any
	failNextWith int
}

func newFakeAyla(t *testing.T) *fakeAyla {
	t.Helper()
	f := &fakeAyla{}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAyla) failNext(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNextWith = status
}

func (f *fakeAyla) region() Region {
	return Region{
		Name:      "test",
		UserURL:   f.srv.URL,
		DeviceURL: f.srv.URL,
		AppID:     "Shark-Test-id",
		AppSecret: "Shark-Test-secret",
	}
}

func (f *fakeAyla) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNextWith != 0 {
		status := f.failNextWith
		f.failNextWith = 0
		w.WriteHeader(status)
		w.Write([]byte(`{"error":"nope"}`))
		return
	}

	f.lastAuth = r.Header.Get("Authorization")
	var body map[string]any
	json.NewDecoder(r.Body).Decode(&body)
	f.lastBody = body

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/users/sign_in":
		f.signIns++
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
		})
	case "/users/refresh_token":
		f.refreshes++
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "access-2",
			"refresh_token": "refresh-2",
		})
	case "/users/sign_out":
		w.Write([]byte(`{}`))
	case "/apiv1/devices":
		json.NewEncoder(w).Encode([]map[string]any{
			{"device": map[string]any{
				"dsn":          "AC000W000000001",
				"model":        "RV1001AE",
				"oem_model":    "RV1001AE",
				"mac":          "c0ffee000001",
				"product_name": "Shark IQ Robot",
				"key":          1234567,
			}},
		})
	default:
		if r.Method == http.MethodPost {
			f.datapoints = append(f.datapoints, map[string]any{"path": r.URL.Path, "body": body})
			w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}
}

func newSignedInClient(t *testing.T, f *fakeAyla) *Client {
	t.Helper()
	client := NewClient(f.region(), "someone@example.com", "hunter22", nil)
	require.NoError(t, client.SignIn(context.Background()))
	return client
}

func TestClient_SignIn(t *testing.T) {
	f := newFakeAyla(t)
	client := newSignedInClient(t, f)

	require.Equal(t, 1, f.signIns)
	require.Equal(t, "access-1", client.accessToken)
	require.Equal(t, "refresh-1", client.refreshToken)

	user := f.lastBody["user"].(map[string]any)
	require.Equal(t, "someone@example.com", user["email"])
	app := user["application"].(map[string]any)
	require.Equal(t, "Shark-Test-id", app["app_id"])
	require.Equal(t, "Shark-Test-secret", app["app_secret"])

	// Second sign-in is a no-op while authenticated.
	require.NoError(t, client.SignIn(context.Background()))
	require.Equal(t, 1, f.signIns)
}

func TestClient_SignIn_BadCredentials(t *testing.T) {
	f := newFakeAyla(t)
	f.failNext(http.StatusUnauthorized)

	client := NewClient(f.region(), "someone@example.com", "wrong", nil)
	err := client.SignIn(context.Background())
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok, "expected APIError, got %T", err)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestClient_Refresh(t *testing.T) {
	f := newFakeAyla(t)
	client := newSignedInClient(t, f)

	require.NoError(t, client.Refresh(context.Background()))
	require.Equal(t, 1, f.refreshes)
	require.Equal(t, "access-2", client.accessToken)
	require.Equal(t, "refresh-2", client.refreshToken)

	user := f.lastBody["user"].(map[string]any)
	require.Equal(t, "refresh-1", user["refresh_token"])
}

func TestClient_GetDevices(t *testing.T) {
	f := newFakeAyla(t)
	client := newSignedInClient(t, f)

	devices, err := client.GetDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	require.Equal(t, "AC000W000000001", devices[0].DSN)
	require.Equal(t, "Shark IQ Robot", devices[0].ProductName)
	require.Equal(t, uint64(1234567), devices[0].Key)
	require.Equal(t, "auth_token access-1", f.lastAuth)
}

func TestClient_SetOperatingMode(t *testing.T) {
	f := newFakeAyla(t)
	client := newSignedInClient(t, f)

	require.NoError(t, client.SetOperatingMode(context.Background(), "AC000W000000001", ModeStart))

	require.Len(t, f.datapoints, 1)
	require.Equal(t, "/apiv1/dsns/AC000W000000001/properties/SET_Operating_Mode/datapoints", f.datapoints[0]["path"])
	body := f.datapoints[0]["body"].(map[string]any)
	datapoint := body["datapoint"].(map[string]any)
	require.Equal(t, float64(ModeStart), datapoint["value"])
}

func TestClient_SetOperatingMode_APIError(t *testing.T) {
	f := newFakeAyla(t)
	client := newSignedInClient(t, f)
	f.failNext(http.StatusForbidden)

	err := client.SetOperatingMode(context.Background(), "AC000W000000001", ModeStop)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestClient_SignOut(t *testing.T) {
	f := newFakeAyla(t)
	client := newSignedInClient(t, f)

	require.NoError(t, client.SignOut(context.Background()))
	require.Empty(t, client.accessToken)

	user := f.lastBody["user"].(map[string]any)
	require.Equal(t, "access-1", user["access_token"])
}

func TestParseRegion(t *testing.T) {
	us, err := ParseRegion("us")
	require.NoError(t, err)
	require.Equal(t, RegionUS, us)

	def, err := ParseRegion("")
	require.NoError(t, err)
	require.Equal(t, RegionUS, def)

	eu, err := ParseRegion("eu")
	require.NoError(t, err)
	require.Equal(t, RegionEU, eu)

	_, err = ParseRegion("mars")
	require.Error(t, err)
}

func TestOperatingModeValues(t *testing.T) {
	require.Equal(t, OperatingMode(0), ModeStop)
	require.Equal(t, OperatingMode(1), ModePause)
	require.Equal(t, OperatingMode(2), ModeStart)
	require.Equal(t, OperatingMode(3), ModeReturn)
}
