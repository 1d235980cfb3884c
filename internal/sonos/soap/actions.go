package soap

import (
	"context"
	"fmt"
	"strconv"
)

// Transport actions

func (c *Client) Play(ctx context.Context, host string) error {
	_, err := c.ExecuteAction(ctx, host, ServiceAVTransport, "Play", map[string]string{
		"InstanceID": "0",
		"Speed":      "1",
	})
	return err
}

func (c *Client) Stop(ctx context.Context, host string) error {
	_, err := c.ExecuteAction(ctx, host, ServiceAVTransport, "Stop", map[string]string{
		"InstanceID": "0",
	})
	return err
}

func (c *Client) SetAVTransportURI(ctx context.Context, host, uri, metadata string) error {
	_, err := c.ExecuteAction(ctx, host, ServiceAVTransport, "SetAVTransportURI", map[string]string{
		"InstanceID":         "0",
		"CurrentURI":         uri,
		"CurrentURIMetaData": metadata,
	})
	return err
}

func (c *Client) AddURIToQueue(ctx context.Context, host, uri, metadata string, position int, enqueueNext bool) (int, error) {
	enqueueAsNext := "0"
	if enqueueNext {
		enqueueAsNext = "1"
	}
	payload, err := c.ExecuteAction(ctx, host, ServiceAVTransport, "AddURIToQueue", map[string]string{
		"InstanceID":                      "0",
		"EnqueuedURI":                     uri,
		"EnqueuedURIMetaData":             metadata,
		"DesiredFirstTrackNumberEnqueued": strconv.Itoa(position),
		"EnqueueAsNext":                   enqueueAsNext,
	})
	if err != nil {
		return 0, err
	}

	trackStr := parseTextValue(payload, "FirstTrackNumberEnqueued")
	trackNum, _ := strconv.Atoi(trackStr)
	return trackNum, nil
}

func (c *Client) RemoveAllTracksFromQueue(ctx context.Context, host string) error {
	_, err := c.ExecuteAction(ctx, host, ServiceAVTransport, "RemoveAllTracksFromQueue", map[string]string{
		"InstanceID": "0",
	})
	return err
}

func (c *Client) BecomeCoordinatorOfStandaloneGroup(ctx context.Context, host string) error {
	_, err := c.ExecuteAction(ctx, host, ServiceAVTransport, "BecomeCoordinatorOfStandaloneGroup", map[string]string{
		"InstanceID": "0",
	})
	return err
}

func (c *Client) GetTransportSettings(ctx context.Context, host string) (TransportSettings, error) {
	payload, err := c.ExecuteAction(ctx, host, ServiceAVTransport, "GetTransportSettings", map[string]string{
		"InstanceID": "0",
	})
	if err != nil {
		return TransportSettings{}, err
	}
	return TransportSettings{
		PlayMode:   parseTextValue(payload, "PlayMode"),
		RecQuality: parseTextValue(payload, "RecQualityMode"),
	}, nil
}

func (c *Client) SetPlayMode(ctx context.Context, host, mode string) error {
	_, err := c.ExecuteAction(ctx, host, ServiceAVTransport, "SetPlayMode", map[string]string{
		"InstanceID":  "0",
		"NewPlayMode": mode,
	})
	return err
}

// ConfigureSleepTimer sets the sleep timer. Duration is formatted HH:MM:SS;
// zero seconds clears the timer.
func (c *Client) ConfigureSleepTimer(ctx context.Context, host string, seconds uint64) error {
	duration := ""
	if seconds > 0 {
		duration = fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
	}
	_, err := c.ExecuteAction(ctx, host, ServiceAVTransport, "ConfigureSleepTimer", map[string]string{
		"InstanceID":            "0",
		"NewSleepTimerDuration": duration,
	})
	return err
}

// RenderingControl actions

func (c *Client) GetVolume(ctx context.Context, host string) (VolumeInfo, error) {
	payload, err := c.ExecuteAction(ctx, host, ServiceRenderingControl, "GetVolume", map[string]string{
		"InstanceID": "0",
		"Channel":    "Master",
	})
	if err != nil {
		return VolumeInfo{}, err
	}
	return parseVolume(payload), nil
}

func (c *Client) SetVolume(ctx context.Context, host string, level int) error {
	_, err := c.ExecuteAction(ctx, host, ServiceRenderingControl, "SetVolume", map[string]string{
		"InstanceID":    "0",
		"Channel":       "Master",
		"DesiredVolume": strconv.Itoa(level),
	})
	return err
}

// ZoneGroupTopology actions

func (c *Client) GetZoneGroupState(ctx context.Context, host string) (ZoneGroupState, error) {
	payload, err := c.ExecuteAction(ctx, host, ServiceZoneGroupTopology, "GetZoneGroupState", map[string]string{})
	if err != nil {
		return ZoneGroupState{}, err
	}
	return parseZoneGroupState(payload), nil
}

// ContentDirectory actions

func (c *Client) Browse(ctx context.Context, host, objectID, browseFlag, filter string, startIndex, requestedCount int) (BrowseResult, error) {
	payload, err := c.ExecuteAction(ctx, host, ServiceContentDirectory, "Browse", map[string]string{
		"ObjectID":       objectID,
		"BrowseFlag":     browseFlag,
		"Filter":         filter,
		"StartingIndex":  strconv.Itoa(startIndex),
		"RequestedCount": strconv.Itoa(requestedCount),
		"SortCriteria":   "",
	})
	if err != nil {
		return BrowseResult{}, err
	}
	return parseBrowseResult(payload), nil
}
