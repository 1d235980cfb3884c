package soap

// Service identifies a Sonos UPnP service.
type Service string

const (
	ServiceAVTransport       Service = "AVTransport"
	ServiceRenderingControl  Service = "RenderingControl"
	ServiceContentDirectory  Service = "ContentDirectory"
	ServiceZoneGroupTopology Service = "ZoneGroupTopology"
)

var serviceTypes = map[Service]string{
	ServiceAVTransport:       "urn:schemas-upnp-org:service:AVTransport:1",
	ServiceRenderingControl:  "urn:schemas-upnp-org:service:RenderingControl:1",
	ServiceContentDirectory:  "urn:schemas-upnp-org:service:ContentDirectory:1",
	ServiceZoneGroupTopology: "urn:upnp-org:serviceId:ZoneGroupTopology",
}

var controlPaths = map[Service]string{
	ServiceAVTransport:       "/MediaRenderer/AVTransport/Control",
	ServiceRenderingControl:  "/MediaRenderer/RenderingControl/Control",
	ServiceContentDirectory:  "/MediaServer/ContentDirectory/Control",
	ServiceZoneGroupTopology: "/ZoneGroupTopology/Control",
}

// VolumeInfo mirrors Sonos GetVolume response.
type VolumeInfo struct {
	CurrentVolume int
}

// TransportSettings mirrors GetTransportSettings response.
type TransportSettings struct {
	PlayMode   string
	RecQuality string
}

// ZoneGroupState mirrors GetZoneGroupState result (minimal subset needed).
type ZoneGroupState struct {
	Groups []ZoneGroup
}

// ZoneGroup represents a Sonos group.
type ZoneGroup struct {
	ID          string
	Coordinator string
	Members     []ZoneMember
}

// ZoneMember represents a member device in a group.
type ZoneMember struct {
	UUID          string
	ZoneName      string
	Location      string
	IsCoordinator bool
	IsVisible     bool
}

// PlaylistItem represents one saved queue entry from a ContentDirectory
// browse of "SQ:".
type PlaylistItem struct {
	ID    string
	Title string
	URI   string
}

// BrowseResult mirrors ContentDirectory Browse response (subset).
type BrowseResult struct {
	Result         string
	NumberReturned int
	TotalMatches   int
	Items          []PlaylistItem
}
