package sonos

import (
	"context"
	"strings"

	"github.com/strefethen/home-hub-go/internal/audit"
)

// Saved queue holding the bedtime playlist.
// TODO: make the goodnight queue configurable.
const goodnightQueueURI = "file:///jffs/settings/savedqueues.rsq#23"

const maxSleepTimerSeconds = 7200

func clampSleepTimer(seconds uint64) uint64 {
	if seconds > maxSleepTimerSeconds {
		return maxSleepTimerSeconds
	}
	return seconds
}

// Goodnight puts the group into the bedtime profile: current playback stops,
// the goodnight queue replaces whatever was queued, repeat-all and shuffle go
// on, the optional sleep timer is armed, and playback starts. Queue clearing
// is best-effort; every other step must succeed.
func (s *Service) Goodnight(ctx context.Context, coordinator *Speaker, sleepTimer *uint64) error {
	if err := coordinator.Stop(ctx); err != nil {
		return s.failPlayback(coordinator, err)
	}
	if err := coordinator.ClearQueue(ctx); err != nil {
		s.logger.Printf("WARN: %s: clear queue: %v", coordinator.RoomName, err)
	}
	if err := coordinator.QueueNext(ctx, goodnightQueueURI, ""); err != nil {
		return s.failPlayback(coordinator, err)
	}
	if err := coordinator.SetRepeatMode(ctx, RepeatAll); err != nil {
		return s.failPlayback(coordinator, err)
	}
	if err := coordinator.SetShuffle(ctx, true); err != nil {
		return s.failPlayback(coordinator, err)
	}
	if sleepTimer != nil {
		if err := coordinator.SetSleepTimer(ctx, clampSleepTimer(*sleepTimer)); err != nil {
			return s.failPlayback(coordinator, err)
		}
	}
	if err := coordinator.Play(ctx); err != nil {
		return s.failPlayback(coordinator, err)
	}

	s.recorder.Record(audit.WriteEventInput{
		Type:    audit.EventPlaybackStarted,
		Level:   audit.EventLevelInfo,
		Room:    coordinator.RoomName,
		Message: "goodnight sequence started",
	})
	s.publisher.Publish("playback.started", map[string]any{
		"coordinator": coordinator.RoomName,
		"profile":     "goodnight",
	})
	return nil
}

// FindPlaylist looks up a saved queue by title, case-insensitively. A nil
// playlist with a nil error means no saved queue carries that title.
func (s *Service) FindPlaylist(ctx context.Context, coordinator *Speaker, title string) (*Playlist, error) {
	playlists, err := coordinator.Playlists(ctx)
	if err != nil {
		return nil, err
	}
	for i := range playlists {
		if strings.EqualFold(playlists[i].Title, title) {
			return &playlists[i], nil
		}
	}
	return nil, nil
}

// QueuePlaylist replaces the group's queue with the given saved queue and
// starts playback with the requested repeat and shuffle settings. Stopping
// current playback and clearing the old queue are best-effort; the remaining
// steps must succeed. The sleep timer, when present, is armed after playback
// starts.
func (s *Service) QueuePlaylist(ctx context.Context, coordinator *Speaker, playlist *Playlist, shuffle, repeat bool, sleepTimer *uint64) error {
	if err := coordinator.Stop(ctx); err != nil {
		s.logger.Printf("WARN: %s: stop: %v", coordinator.RoomName, err)
	}
	if err := coordinator.ClearQueue(ctx); err != nil {
		s.logger.Printf("WARN: %s: clear queue: %v", coordinator.RoomName, err)
	}
	if err := coordinator.QueueNext(ctx, playlist.URI, ""); err != nil {
		return s.failPlayback(coordinator, err)
	}
	mode := RepeatNone
	if repeat {
		mode = RepeatAll
	}
	if err := coordinator.SetRepeatMode(ctx, mode); err != nil {
		return s.failPlayback(coordinator, err)
	}
	if err := coordinator.SetShuffle(ctx, shuffle); err != nil {
		return s.failPlayback(coordinator, err)
	}
	if err := coordinator.Play(ctx); err != nil {
		return s.failPlayback(coordinator, err)
	}
	if sleepTimer != nil {
		if err := coordinator.SetSleepTimer(ctx, clampSleepTimer(*sleepTimer)); err != nil {
			return s.failPlayback(coordinator, err)
		}
	}

	s.recorder.Record(audit.WriteEventInput{
		Type:    audit.EventPlaybackStarted,
		Level:   audit.EventLevelInfo,
		Room:    coordinator.RoomName,
		Message: "playlist queued: " + playlist.Title,
	})
	s.publisher.Publish("playback.started", map[string]any{
		"coordinator": coordinator.RoomName,
		"profile":     "playlist",
		"playlist":    playlist.Title,
	})
	return nil
}

func (s *Service) failPlayback(coordinator *Speaker, err error) error {
	s.recorder.Record(audit.WriteEventInput{
		Type:    audit.EventPlaybackFailed,
		Level:   audit.EventLevelError,
		Room:    coordinator.RoomName,
		Message: err.Error(),
	})
	return err
}
