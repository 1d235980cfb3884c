package discovery

import (
	"encoding/xml"
	"strings"
)

// DeviceDescription holds the subset of /xml/device_description.xml we need
// to identify a speaker.
type DeviceDescription struct {
	RoomName  string
	ModelName string
	UDN       string
}

// ParseDeviceDescription extracts the room name and root UDN from a device
// description document.
func ParseDeviceDescription(xmlPayload []byte) (*DeviceDescription, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(xmlPayload)))
	var desc DeviceDescription

	var friendlyName string
	var roomName string
	var udnRaw string
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "friendlyName":
				var value string
				if err := decoder.DecodeElement(&value, &se); err == nil {
					friendlyName = strings.TrimSpace(value)
				}
			case "roomName":
				var value string
				if err := decoder.DecodeElement(&value, &se); err == nil {
					roomName = strings.TrimSpace(value)
				}
			case "modelName":
				var value string
				if err := decoder.DecodeElement(&value, &se); err == nil {
					desc.ModelName = strings.TrimSpace(value)
				}
			case "UDN":
				// Only take the FIRST UDN (root device). The document also
				// carries MediaServer and MediaRenderer UDNs with suffixes.
				if udnRaw == "" {
					var value string
					if err := decoder.DecodeElement(&value, &se); err == nil {
						udnRaw = strings.TrimSpace(value)
					}
				}
			}
		}
	}

	desc.RoomName = roomName
	if desc.RoomName == "" && friendlyName != "" {
		desc.RoomName = parseRoomName(friendlyName)
	}

	if udnRaw != "" {
		desc.UDN = strings.TrimPrefix(udnRaw, "uuid:")
	}

	return &desc, nil
}

// parseRoomName strips the "IP - Model" suffix from a friendly name, e.g.
// "Kitchen - Sonos One" becomes "Kitchen".
func parseRoomName(friendlyName string) string {
	if friendlyName == "" {
		return ""
	}
	parts := strings.SplitN(friendlyName, "-", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0])
	}
	return strings.TrimSpace(friendlyName)
}
