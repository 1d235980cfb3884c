package sonos

import (
	"context"
	"strings"
	"sync"

	"github.com/strefethen/home-hub-go/internal/audit"
	"github.com/strefethen/home-hub-go/internal/discovery"
	"github.com/strefethen/home-hub-go/internal/sonos/soap"
)

// GroupRooms forms a synchronized playback group. rooms[0] names the
// coordinator; the remaining names are matched against the coordinator's zone
// topology and joined to it. A nil speaker with a nil error means rooms was
// empty or the coordinator's room could not be found on the network.
//
// Members that cannot be resolved or fail to join are logged and skipped; the
// group proceeds with whoever made it. volume applies to every speaker in the
// group, defaulting to the coordinator's level as read before any regrouping.
func (s *Service) GroupRooms(ctx context.Context, rooms []string, volume *int) (*Speaker, error) {
	if len(rooms) == 0 {
		return nil, nil
	}

	endpoint, err := s.directory.Find(ctx, rooms[0], s.discoveryTimeout)
	if err != nil {
		return nil, err
	}
	if endpoint == nil {
		return nil, nil
	}
	coordinator := NewSpeaker(s.client, endpoint)

	s.recorder.Record(audit.WriteEventInput{
		Type:    audit.EventGroupRequested,
		Level:   audit.EventLevelInfo,
		Room:    coordinator.RoomName,
		Message: "grouping " + strings.Join(rooms, ", "),
	})

	state, err := coordinator.ZoneGroupState(ctx)
	if err != nil {
		return nil, err
	}

	members := s.resolveMembers(ctx, state, rooms)

	// Read the target level before any regrouping mutates device state.
	targetVolume := 0
	if volume != nil {
		targetVolume = *volume
	} else {
		targetVolume, err = coordinator.Volume(ctx)
		if err != nil {
			return nil, err
		}
	}

	if err := coordinator.Leave(ctx); err != nil {
		return nil, err
	}
	if err := coordinator.SetVolume(ctx, targetVolume); err != nil {
		return nil, err
	}

	joined := []string{coordinator.RoomName}
	for _, member := range members {
		if err := member.Leave(ctx); err != nil {
			return nil, err
		}
		if err := member.SetVolume(ctx, targetVolume); err != nil {
			return nil, err
		}
		if err := member.Join(ctx, coordinator.RoomName); err != nil {
			s.logger.Printf("WARN: %s failed to join %s: %v", member.RoomName, coordinator.RoomName, err)
			s.recorder.Record(audit.WriteEventInput{
				Type:    audit.EventMemberJoinFailed,
				Level:   audit.EventLevelWarn,
				Room:    member.RoomName,
				Message: err.Error(),
			})
			continue
		}
		joined = append(joined, member.RoomName)
	}

	s.logger.Printf("grouped %s under %s", strings.Join(joined, ", "), coordinator.RoomName)
	s.recorder.Record(audit.WriteEventInput{
		Type:    audit.EventGroupCompleted,
		Level:   audit.EventLevelInfo,
		Room:    coordinator.RoomName,
		Message: "group formed: " + strings.Join(joined, ", "),
	})
	s.publisher.Publish("group.completed", map[string]any{
		"coordinator": coordinator.RoomName,
		"rooms":       joined,
	})
	return coordinator, nil
}

// resolveMembers matches rooms[1:] against the topology case-insensitively
// and probes each matching zone concurrently. The coordinator's own room is
// never treated as a member, even when repeated in the tail. Probe failures
// drop the member from the result.
func (s *Service) resolveMembers(ctx context.Context, state soap.ZoneGroupState, rooms []string) []*Speaker {
	wanted := make(map[string]bool, len(rooms)-1)
	for _, room := range rooms[1:] {
		wanted[strings.ToLower(room)] = true
	}
	delete(wanted, strings.ToLower(rooms[0]))

	var entries []soap.ZoneMember
	for _, group := range state.Groups {
		for _, member := range group.Members {
			if wanted[strings.ToLower(member.ZoneName)] {
				entries = append(entries, member)
			}
		}
	}

	var wg sync.WaitGroup
	resolved := make(chan *Speaker, len(entries))
	for _, entry := range entries {
		wg.Add(1)
		go func(entry soap.ZoneMember) {
			defer wg.Done()
			endpoint, err := discovery.ProbeLocation(ctx, entry.Location)
			if err != nil || endpoint == nil {
				// A nil endpoint means the device answered but did not
				// describe a usable zone player; drop it like a probe error.
				message := "device description unavailable"
				if err != nil {
					message = err.Error()
				}
				s.logger.Printf("WARN: could not resolve %s at %s: %s", entry.ZoneName, entry.Location, message)
				s.recorder.Record(audit.WriteEventInput{
					Type:    audit.EventMemberUnresolved,
					Level:   audit.EventLevelWarn,
					Room:    entry.ZoneName,
					Message: message,
				})
				return
			}
			resolved <- NewSpeaker(s.client, endpoint)
		}(entry)
	}
	wg.Wait()
	close(resolved)

	members := make([]*Speaker, 0, len(entries))
	for speaker := range resolved {
		members = append(members, speaker)
	}
	return members
}
