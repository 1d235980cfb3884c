package shark

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx response from the Ayla cloud.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shark api error: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the Ayla cloud on behalf of one account. Tokens are guarded
// by a read-write lock so device calls proceed concurrently while a refresh
// holds exclusive access.
type Client struct {
	http     *resty.Client
	region   Region
	email    string
	password string
	logger   *log.Logger

	mu            sync.RWMutex
	accessToken   string
	refreshToken  string
	authenticated bool
}

// NewClient builds an unauthenticated client. Call SignIn before issuing
// device requests.
func NewClient(region Region, email, password string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	http := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{
		http:     http,
		region:   region,
		email:    email,
		password: password,
		logger:   logger,
	}
}

// SignIn authenticates with the account credentials. Calling it while already
// authenticated is a no-op.
func (c *Client) SignIn(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authenticated {
		return nil
	}

	body := map[string]any{
		"user": map[string]any{
			"email":    c.email,
			"password": c.password,
			"application": map[string]any{
				"app_id":     c.region.AppID,
				"app_secret": c.region.AppSecret,
			},
		},
	}

	var login loginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&login).
		Post(c.region.UserURL + "/users/sign_in")
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	c.accessToken = login.AccessToken
	c.refreshToken = login.RefreshToken
	c.authenticated = true
	return nil
}

// Refresh exchanges the refresh token for a new token pair. Ayla tokens
// expire after 24 hours.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	body := map[string]any{
		"user": map[string]any{"refresh_token": c.refreshToken},
	}

	var login loginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&login).
		Post(c.region.UserURL + "/users/refresh_token")
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	c.accessToken = login.AccessToken
	c.refreshToken = login.RefreshToken
	c.authenticated = true
	return nil
}

// SignOut invalidates the session server-side.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.authenticated {
		return nil
	}

	body := map[string]any{
		"user": map[string]any{"access_token": c.accessToken},
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(c.region.UserURL + "/users/sign_out")
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	c.authenticated = false
	c.accessToken = ""
	c.refreshToken = ""
	return nil
}

// GetDevices lists the vacuums registered to the account.
func (c *Client) GetDevices(ctx context.Context) ([]Device, error) {
	var envelopes []deviceEnvelope
	resp, err := c.deviceRequest(ctx).
		SetResult(&envelopes).
		Get(c.region.DeviceURL + "/apiv1/devices")
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	devices := make([]Device, 0, len(envelopes))
	for _, envelope := range envelopes {
		devices = append(devices, envelope.Device)
	}
	return devices, nil
}

// GetDeviceProperties returns the raw property set for one vacuum.
func (c *Client) GetDeviceProperties(ctx context.Context, dsn string) ([]map[string]any, error) {
	var properties []map[string]any
	resp, err := c.deviceRequest(ctx).
		SetResult(&properties).
		Get(fmt.Sprintf("%s/apiv1/dsns/%s/properties", c.region.DeviceURL, dsn))
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	return properties, nil
}

// SetOperatingMode writes a datapoint to the vacuum's SET_Operating_Mode
// property, commanding it to start, stop, pause, or return to dock.
func (c *Client) SetOperatingMode(ctx context.Context, dsn string, mode OperatingMode) error {
	body := map[string]any{
		"datapoint": map[string]any{"value": int(mode)},
	}
	resp, err := c.deviceRequest(ctx).
		SetBody(body).
		Post(fmt.Sprintf("%s/apiv1/dsns/%s/properties/SET_Operating_Mode/datapoints", c.region.DeviceURL, dsn))
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	return nil
}

func (c *Client) deviceRequest(ctx context.Context) *resty.Request {
	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()

	req := c.http.R().SetContext(ctx)
	if token != "" {
		req.SetHeader("Authorization", "auth_token "+token)
	}
	return req
}
