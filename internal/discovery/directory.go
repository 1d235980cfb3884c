package discovery

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

// Directory finds speakers by room name on the local network. Lookups are
// live: nothing discovered here is cached between calls.
type Directory struct {
	staticIPs []string
	logger    *log.Logger
}

// NewDirectory creates a directory. staticIPs are probed in addition to SSDP
// responders, for networks that filter multicast.
func NewDirectory(staticIPs []string, logger *log.Logger) *Directory {
	if logger == nil {
		logger = log.Default()
	}
	return &Directory{staticIPs: staticIPs, logger: logger}
}

// Find returns the endpoint whose room name matches roomName
// (case-insensitively), or nil if no matching device responds within timeout.
// Absence is not an error: only transport-level failures are returned.
func (d *Directory) Find(ctx context.Context, roomName string, timeout time.Duration) (*Endpoint, error) {
	responses, err := discover(timeout)
	if err != nil {
		return nil, err
	}

	candidates := make([]string, 0, len(responses)+len(d.staticIPs))
	seen := make(map[string]struct{})
	for _, resp := range responses {
		candidates = append(candidates, resp.Location)
		if host := locationHost(resp.Location); host != "" {
			seen[host] = struct{}{}
		}
	}
	for _, ip := range d.staticIPs {
		if _, ok := seen[ip]; ok {
			continue
		}
		candidates = append(candidates, "http://"+withDefaultPort(ip)+"/xml/device_description.xml")
	}

	var wg sync.WaitGroup
	results := make(chan *Endpoint, len(candidates))
	for _, location := range candidates {
		wg.Add(1)
		go func(loc string) {
			defer wg.Done()
			probeCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			endpoint, err := ProbeLocation(probeCtx, loc)
			if err != nil {
				d.logger.Printf("probe failed for %s: %v", loc, err)
				return
			}
			results <- endpoint
		}(location)
	}
	wg.Wait()
	close(results)

	for endpoint := range results {
		if endpoint == nil {
			continue
		}
		if strings.EqualFold(endpoint.RoomName, roomName) {
			return endpoint, nil
		}
	}
	return nil, nil
}

func locationHost(location string) string {
	trimmed := strings.TrimPrefix(location, "http://")
	if idx := strings.IndexAny(trimmed, ":/"); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}
