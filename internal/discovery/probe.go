package discovery

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// httpClient is a shared client with short timeouts to prevent hanging on
// unreachable devices.
var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		DialContext:         (&net.Dialer{Timeout: 3 * time.Second}).DialContext,
		TLSHandshakeTimeout: 3 * time.Second,
		IdleConnTimeout:     30 * time.Second,
	},
}

// Endpoint describes one reachable speaker on the local network. It is
// request-scoped: callers resolve endpoints fresh for every orchestration run.
type Endpoint struct {
	RoomName string
	UUID     string
	Host     string // "ip" or "ip:port"
	Location string
}

// ProbeEndpoint fetches and parses the device description for a host.
// Returns nil, nil when the host answers but is not a usable device.
func ProbeEndpoint(ctx context.Context, host string) (*Endpoint, error) {
	location := "http://" + withDefaultPort(host) + "/xml/device_description.xml"
	return probeLocation(ctx, location, host)
}

// ProbeLocation fetches the device description at a full location URL, as
// reported in SSDP responses and zone group topology entries.
func ProbeLocation(ctx context.Context, location string) (*Endpoint, error) {
	parsed, err := url.Parse(location)
	if err != nil {
		return nil, err
	}
	return probeLocation(ctx, location, parsed.Host)
}

func probeLocation(ctx context.Context, location, host string) (*Endpoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	desc, err := ParseDeviceDescription(body)
	if err != nil || desc == nil || desc.RoomName == "" {
		return nil, nil
	}

	return &Endpoint{
		RoomName: desc.RoomName,
		UUID:     desc.UDN,
		Host:     strings.TrimSuffix(host, ":1400"),
		Location: location,
	}, nil
}

func withDefaultPort(host string) string {
	if strings.Contains(host, ":") {
		return host
	}
	return host + ":1400"
}
