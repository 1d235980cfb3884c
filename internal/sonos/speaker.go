package sonos

import (
	"context"
	"fmt"
	"strings"

	"github.com/strefethen/home-hub-go/internal/discovery"
	"github.com/strefethen/home-hub-go/internal/sonos/soap"
)

// RepeatMode describes queue repeat behavior.
type RepeatMode string

const (
	RepeatNone RepeatMode = "NONE"
	RepeatOne  RepeatMode = "ONE"
	RepeatAll  RepeatMode = "ALL"
)

// Sonos encodes repeat and shuffle as a single play mode string.
var playModes = map[[2]string]string{
	{string(RepeatNone), "off"}: "NORMAL",
	{string(RepeatAll), "off"}:  "REPEAT_ALL",
	{string(RepeatOne), "off"}:  "REPEAT_ONE",
	{string(RepeatNone), "on"}:  "SHUFFLE_NOREPEAT",
	{string(RepeatAll), "on"}:   "SHUFFLE",
	{string(RepeatOne), "on"}:   "SHUFFLE_REPEAT_ONE",
}

func playModeFor(repeat RepeatMode, shuffle bool) string {
	key := [2]string{string(repeat), "off"}
	if shuffle {
		key[1] = "on"
	}
	return playModes[key]
}

func parsePlayMode(mode string) (RepeatMode, bool) {
	switch mode {
	case "REPEAT_ALL":
		return RepeatAll, false
	case "REPEAT_ONE":
		return RepeatOne, false
	case "SHUFFLE_NOREPEAT":
		return RepeatNone, true
	case "SHUFFLE":
		return RepeatAll, true
	case "SHUFFLE_REPEAT_ONE":
		return RepeatOne, true
	default:
		return RepeatNone, false
	}
}

// Playlist is a stored queue reference on a speaker.
type Playlist struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Speaker is a live handle to one speaker, valid for the duration of a single
// orchestration run. Identity is the room name it was resolved from.
type Speaker struct {
	RoomName string
	UUID     string
	Host     string

	client *soap.Client
}

// NewSpeaker builds a speaker handle from a resolved endpoint.
func NewSpeaker(client *soap.Client, endpoint *discovery.Endpoint) *Speaker {
	return &Speaker{
		RoomName: endpoint.RoomName,
		UUID:     endpoint.UUID,
		Host:     endpoint.Host,
		client:   client,
	}
}

func (s *Speaker) Stop(ctx context.Context) error {
	return s.client.Stop(ctx, s.Host)
}

func (s *Speaker) Play(ctx context.Context) error {
	return s.client.Play(ctx, s.Host)
}

func (s *Speaker) ClearQueue(ctx context.Context) error {
	return s.client.RemoveAllTracksFromQueue(ctx, s.Host)
}

// QueueNext enqueues a URI at the front of the queue.
func (s *Speaker) QueueNext(ctx context.Context, uri, metadata string) error {
	_, err := s.client.AddURIToQueue(ctx, s.Host, uri, metadata, 0, true)
	return err
}

// SetRepeatMode updates repeat while preserving the current shuffle setting.
func (s *Speaker) SetRepeatMode(ctx context.Context, repeat RepeatMode) error {
	settings, err := s.client.GetTransportSettings(ctx, s.Host)
	if err != nil {
		return err
	}
	_, shuffle := parsePlayMode(settings.PlayMode)
	return s.client.SetPlayMode(ctx, s.Host, playModeFor(repeat, shuffle))
}

// SetShuffle updates shuffle while preserving the current repeat setting.
func (s *Speaker) SetShuffle(ctx context.Context, shuffle bool) error {
	settings, err := s.client.GetTransportSettings(ctx, s.Host)
	if err != nil {
		return err
	}
	repeat, _ := parsePlayMode(settings.PlayMode)
	return s.client.SetPlayMode(ctx, s.Host, playModeFor(repeat, shuffle))
}

func (s *Speaker) SetSleepTimer(ctx context.Context, seconds uint64) error {
	return s.client.ConfigureSleepTimer(ctx, s.Host, seconds)
}

func (s *Speaker) Volume(ctx context.Context) (int, error) {
	info, err := s.client.GetVolume(ctx, s.Host)
	if err != nil {
		return 0, err
	}
	return info.CurrentVolume, nil
}

func (s *Speaker) SetVolume(ctx context.Context, level int) error {
	return s.client.SetVolume(ctx, s.Host, level)
}

// Leave detaches the speaker from its current group. Leaving while ungrouped
// is accepted by the device, so this is idempotent.
func (s *Speaker) Leave(ctx context.Context) error {
	return s.client.BecomeCoordinatorOfStandaloneGroup(ctx, s.Host)
}

// Join attaches the speaker to the group led by the named coordinator. The
// coordinator's UUID is looked up in the live topology.
func (s *Speaker) Join(ctx context.Context, coordinatorName string) error {
	state, err := s.ZoneGroupState(ctx)
	if err != nil {
		return err
	}

	for _, group := range state.Groups {
		for _, member := range group.Members {
			if strings.EqualFold(member.ZoneName, coordinatorName) {
				return s.client.SetAVTransportURI(ctx, s.Host, "x-rincon:"+member.UUID, "")
			}
		}
	}
	return fmt.Errorf("no zone named %q in topology", coordinatorName)
}

func (s *Speaker) ZoneGroupState(ctx context.Context) (soap.ZoneGroupState, error) {
	return s.client.GetZoneGroupState(ctx, s.Host)
}

// Playlists lists the speaker's saved queues.
func (s *Speaker) Playlists(ctx context.Context) ([]Playlist, error) {
	result, err := s.client.Browse(ctx, s.Host, "SQ:", "BrowseDirectChildren", "*", 0, 100)
	if err != nil {
		return nil, err
	}

	playlists := make([]Playlist, 0, len(result.Items))
	for _, item := range result.Items {
		playlists = append(playlists, Playlist{Title: item.Title, URI: item.URI})
	}
	return playlists, nil
}
