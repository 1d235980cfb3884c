package sonos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const didlSavedQueues = `<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/">
<container id="SQ:23" parentID="SQ:" restricted="true"><dc:title>Sleep Sounds</dc:title><res protocolInfo="x-rincon-playlist:*:*:*">file:///jffs/settings/savedqueues.rsq#23</res></container>
<container id="SQ:7" parentID="SQ:" restricted="true"><dc:title>Morning Mix</dc:title><res protocolInfo="x-rincon-playlist:*:*:*">file:///jffs/settings/savedqueues.rsq#7</res></container>
</DIDL-Lite>`

func newPlaybackFixture(t *testing.T) (*Service, *fakeDevice, *Speaker) {
	t.Helper()
	device := newFakeDevice(t, "Kitchen", "RINCON_KITCHEN01")
	device.browseDIDL = didlSavedQueues
	service := newTestService(&staticFinder{endpoint: device.endpoint()})
	speaker := NewSpeaker(newTestSoapClient(), device.endpoint())
	return service, device, speaker
}

func TestClampSleepTimer(t *testing.T) {
	require.Equal(t, uint64(0), clampSleepTimer(0))
	require.Equal(t, uint64(3600), clampSleepTimer(3600))
	require.Equal(t, uint64(7200), clampSleepTimer(7200))
	require.Equal(t, uint64(7200), clampSleepTimer(7201))
	require.Equal(t, uint64(7200), clampSleepTimer(99999))
}

func TestGoodnight_SequenceOrder(t *testing.T) {
	service, device, speaker := newPlaybackFixture(t)

	timer := uint64(3600)
	err := service.Goodnight(context.Background(), speaker, &timer)
	require.NoError(t, err)

	require.Equal(t, []string{
		"Stop",
		"RemoveAllTracksFromQueue",
		"AddURIToQueue",
		"GetTransportSettings",
		"SetPlayMode",
		"GetTransportSettings",
		"SetPlayMode",
		"ConfigureSleepTimer",
		"Play",
	}, device.recordedActions())

	require.Equal(t, goodnightQueueURI, device.actionArgs("AddURIToQueue")["EnqueuedURI"])
	require.Equal(t, "01:00:00", device.actionArgs("ConfigureSleepTimer")["NewSleepTimerDuration"])
}

func TestGoodnight_EnablesShuffleAndRepeat(t *testing.T) {
	service, device, speaker := newPlaybackFixture(t)

	err := service.Goodnight(context.Background(), speaker, nil)
	require.NoError(t, err)

	device.mu.Lock()
	finalMode := device.playMode
	device.mu.Unlock()
	require.Equal(t, "SHUFFLE", finalMode, "repeat-all with shuffle maps to SHUFFLE")
	require.NotContains(t, device.recordedActions(), "ConfigureSleepTimer")
}

func TestGoodnight_ClampsSleepTimer(t *testing.T) {
	service, device, speaker := newPlaybackFixture(t)

	timer := uint64(99999)
	err := service.Goodnight(context.Background(), speaker, &timer)
	require.NoError(t, err)
	require.Equal(t, "02:00:00", device.actionArgs("ConfigureSleepTimer")["NewSleepTimerDuration"])
}

func TestGoodnight_ZeroSleepTimerClears(t *testing.T) {
	service, device, speaker := newPlaybackFixture(t)

	timer := uint64(0)
	err := service.Goodnight(context.Background(), speaker, &timer)
	require.NoError(t, err)
	require.Equal(t, "", device.actionArgs("ConfigureSleepTimer")["NewSleepTimerDuration"])
}

func TestGoodnight_ClearQueueFailureIgnored(t *testing.T) {
	service, device, speaker := newPlaybackFixture(t)
	device.fail("RemoveAllTracksFromQueue")

	err := service.Goodnight(context.Background(), speaker, nil)
	require.NoError(t, err)
	require.Contains(t, device.recordedActions(), "Play")
}

func TestGoodnight_StopFailureAborts(t *testing.T) {
	service, device, speaker := newPlaybackFixture(t)
	device.fail("Stop")

	err := service.Goodnight(context.Background(), speaker, nil)
	require.Error(t, err)
	require.NotContains(t, device.recordedActions(), "Play")
}

func TestFindPlaylist_CaseInsensitive(t *testing.T) {
	service, _, speaker := newPlaybackFixture(t)

	playlist, err := service.FindPlaylist(context.Background(), speaker, "sleep sounds")
	require.NoError(t, err)
	require.NotNil(t, playlist)
	require.Equal(t, "Sleep Sounds", playlist.Title)
	require.Equal(t, "file:///jffs/settings/savedqueues.rsq#23", playlist.URI)
}

func TestFindPlaylist_Missing(t *testing.T) {
	service, _, speaker := newPlaybackFixture(t)

	playlist, err := service.FindPlaylist(context.Background(), speaker, "Workout")
	require.NoError(t, err)
	require.Nil(t, playlist)
}

func TestQueuePlaylist_SequenceOrder(t *testing.T) {
	service, device, speaker := newPlaybackFixture(t)

	playlist := &Playlist{Title: "Morning Mix", URI: "file:///jffs/settings/savedqueues.rsq#7"}
	timer := uint64(1800)
	err := service.QueuePlaylist(context.Background(), speaker, playlist, false, true, &timer)
	require.NoError(t, err)

	actions := device.recordedActions()
	require.Equal(t, playlist.URI, device.actionArgs("AddURIToQueue")["EnqueuedURI"])

	// Sleep timer arms after playback has started.
	playIdx := indexOf(actions, "Play")
	timerIdx := indexOf(actions, "ConfigureSleepTimer")
	require.GreaterOrEqual(t, playIdx, 0)
	require.Greater(t, timerIdx, playIdx)
	require.Equal(t, "00:30:00", device.actionArgs("ConfigureSleepTimer")["NewSleepTimerDuration"])
}

func TestQueuePlaylist_RepeatOffShuffleOff(t *testing.T) {
	service, device, speaker := newPlaybackFixture(t)

	playlist := &Playlist{Title: "Morning Mix", URI: "file:///jffs/settings/savedqueues.rsq#7"}
	err := service.QueuePlaylist(context.Background(), speaker, playlist, false, false, nil)
	require.NoError(t, err)

	device.mu.Lock()
	finalMode := device.playMode
	device.mu.Unlock()
	require.Equal(t, "NORMAL", finalMode)
}

func TestQueuePlaylist_ShuffleAndRepeat(t *testing.T) {
	service, device, speaker := newPlaybackFixture(t)

	playlist := &Playlist{Title: "Morning Mix", URI: "file:///jffs/settings/savedqueues.rsq#7"}
	err := service.QueuePlaylist(context.Background(), speaker, playlist, true, true, nil)
	require.NoError(t, err)

	device.mu.Lock()
	finalMode := device.playMode
	device.mu.Unlock()
	require.Equal(t, "SHUFFLE", finalMode)
}

func TestQueuePlaylist_StopAndClearFailuresIgnored(t *testing.T) {
	service, device, speaker := newPlaybackFixture(t)
	device.fail("Stop")
	device.fail("RemoveAllTracksFromQueue")

	playlist := &Playlist{Title: "Morning Mix", URI: "file:///jffs/settings/savedqueues.rsq#7"}
	err := service.QueuePlaylist(context.Background(), speaker, playlist, false, false, nil)
	require.NoError(t, err)
	require.Contains(t, device.recordedActions(), "Play")
}

func TestQueuePlaylist_EnqueueFailureAborts(t *testing.T) {
	service, device, speaker := newPlaybackFixture(t)
	device.fail("AddURIToQueue")

	playlist := &Playlist{Title: "Morning Mix", URI: "file:///jffs/settings/savedqueues.rsq#7"}
	err := service.QueuePlaylist(context.Background(), speaker, playlist, false, false, nil)
	require.Error(t, err)
	require.NotContains(t, device.recordedActions(), "Play")
}

func indexOf(haystack []string, needle string) int {
	for i, s := range haystack {
		if s == needle {
			return i
		}
	}
	return -1
}
