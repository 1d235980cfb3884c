package sonos

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/strefethen/home-hub-go/internal/discovery"
	"github.com/strefethen/home-hub-go/internal/sonos/soap"
)

func newTestSoapClient() *soap.Client {
	return soap.NewClient(2 * time.Second)
}

// fakeDevice emulates the subset of a speaker's UPnP surface the
// orchestrator touches: the device description document and the SOAP control
// endpoints. Actions are recorded in arrival order.
type fakeDevice struct {
	srv      *httptest.Server
	roomName string
	uuid     string

	mu          sync.Mutex
	actions     []string
	args        []map[string]string
	volume      int
	playMode    string
	zoneStateFn func() string
	browseDIDL  string
	failActions map[string]bool
}

func newFakeDevice(t *testing.T, roomName, uuid string) *fakeDevice {
	t.Helper()
	d := &fakeDevice{
		roomName:    roomName,
		uuid:        uuid,
		volume:      32,
		playMode:    "NORMAL",
		failActions: map[string]bool{},
	}
	d.srv = httptest.NewServer(http.HandlerFunc(d.handle))
	t.Cleanup(d.srv.Close)
	return d
}

// host returns the "ip:port" the SOAP client should target.
func (d *fakeDevice) host() string {
	return strings.TrimPrefix(d.srv.URL, "http://")
}

func (d *fakeDevice) location() string {
	return d.srv.URL + "/xml/device_description.xml"
}

func (d *fakeDevice) endpoint() *discovery.Endpoint {
	return &discovery.Endpoint{
		RoomName: d.roomName,
		UUID:     d.uuid,
		Host:     d.host(),
		Location: d.location(),
	}
}

func (d *fakeDevice) fail(action string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failActions[action] = true
}

func (d *fakeDevice) recordedActions() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.actions...)
}

// actionArgs returns the arguments of the first recorded call to action, or
// nil if it never ran.
func (d *fakeDevice) actionArgs(action string) map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, name := range d.actions {
		if name == action {
			return d.args[i]
		}
	}
	return nil
}

func (d *fakeDevice) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/xml/device_description.xml" {
		fmt.Fprintf(w, `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <device>
    <friendlyName>%s - Sonos One</friendlyName>
    <roomName>%s</roomName>
    <modelName>Sonos One</modelName>
    <UDN>uuid:%s</UDN>
  </device>
</root>`, d.roomName, d.roomName, d.uuid)
		return
	}

	action := soapAction(r.Header.Get("SOAPACTION"))
	args := soapArgs(r)

	d.mu.Lock()
	d.actions = append(d.actions, action)
	d.args = append(d.args, args)
	shouldFail := d.failActions[action]
	volume := d.volume
	playMode := d.playMode
	zoneStateFn := d.zoneStateFn
	browseDIDL := d.browseDIDL
	d.mu.Unlock()

	if shouldFail {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><s:Fault>
<faultcode>s:Client</faultcode><faultstring>UPnPError</faultstring>
<detail><UPnPError><errorCode>718</errorCode><errorDescription>rejected</errorDescription></UPnPError></detail>
</s:Fault></s:Body></s:Envelope>`)
		return
	}

	var inner string
	switch action {
	case "GetVolume":
		inner = fmt.Sprintf("<CurrentVolume>%d</CurrentVolume>", volume)
	case "SetVolume":
		d.mu.Lock()
		if v := args["DesiredVolume"]; v != "" {
			fmt.Sscanf(v, "%d", &d.volume)
		}
		d.mu.Unlock()
	case "GetTransportSettings":
		inner = fmt.Sprintf("<PlayMode>%s</PlayMode><RecQualityMode>NOT_IMPLEMENTED</RecQualityMode>", playMode)
	case "SetPlayMode":
		d.mu.Lock()
		d.playMode = args["NewPlayMode"]
		d.mu.Unlock()
	case "GetZoneGroupState":
		doc := ""
		if zoneStateFn != nil {
			doc = zoneStateFn()
		}
		inner = "<ZoneGroupState>" + escapeXMLText(doc) + "</ZoneGroupState>"
	case "AddURIToQueue":
		inner = "<FirstTrackNumberEnqueued>1</FirstTrackNumberEnqueued><NumTracksAdded>1</NumTracksAdded><NewQueueLength>1</NewQueueLength>"
	case "Browse":
		inner = fmt.Sprintf("<Result>%s</Result><NumberReturned>1</NumberReturned><TotalMatches>1</TotalMatches>", escapeXMLText(browseDIDL))
	}

	fmt.Fprintf(w, `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><u:%sResponse xmlns:u="urn:schemas-upnp-org:service:AVTransport:1">%s</u:%sResponse></s:Body></s:Envelope>`, action, inner, action)
}

// zoneState builds a topology document where the first device coordinates a
// group containing all of them.
func zoneState(devices ...*fakeDevice) string {
	var members strings.Builder
	for _, d := range devices {
		fmt.Fprintf(&members, `<ZoneGroupMember UUID="%s" Location="%s" ZoneName="%s"/>`, d.uuid, d.location(), d.roomName)
	}
	return fmt.Sprintf(`<ZoneGroupState><ZoneGroups><ZoneGroup Coordinator="%s" ID="%s:1">%s</ZoneGroup></ZoneGroups></ZoneGroupState>`,
		devices[0].uuid, devices[0].uuid, members.String())
}

func soapAction(header string) string {
	header = strings.Trim(header, `"`)
	if idx := strings.Index(header, "#"); idx >= 0 {
		return header[idx+1:]
	}
	return header
}

// soapArgs pulls the action arguments out of the request envelope. Good
// enough for flat argument lists.
func soapArgs(r *http.Request) map[string]string {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return nil
	}

	args := map[string]string{}
	rest := string(payload)
	for {
		open := strings.Index(rest, "<")
		if open < 0 {
			break
		}
		closing := strings.Index(rest[open:], ">")
		if closing < 0 {
			break
		}
		tag := rest[open+1 : open+closing]
		rest = rest[open+closing+1:]
		if strings.HasPrefix(tag, "/") || strings.HasPrefix(tag, "?") || strings.HasPrefix(tag, "s:") || strings.HasPrefix(tag, "u:") || strings.HasSuffix(tag, "/") {
			continue
		}
		end := strings.Index(rest, "</"+tag+">")
		if end < 0 {
			continue
		}
		args[tag] = unescapeXMLText(rest[:end])
		rest = rest[end:]
	}
	return args
}

func escapeXMLText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func unescapeXMLText(s string) string {
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}
