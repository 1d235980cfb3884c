package soap

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

func parseTextValue(payload []byte, element string) string {
	decoder := xml.NewDecoder(bytes.NewReader(payload))
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == element {
				var value string
				if err := decoder.DecodeElement(&value, &se); err == nil {
					return strings.TrimSpace(value)
				}
			}
		}
	}
	return ""
}

func parseVolume(payload []byte) VolumeInfo {
	volStr := parseTextValue(payload, "CurrentVolume")
	vol, _ := strconv.Atoi(volStr)
	return VolumeInfo{CurrentVolume: vol}
}

// parseZoneGroupState parses GetZoneGroupState response XML into the minimal
// structure the group orchestrator needs. The zone state document arrives
// XML-escaped inside the SOAP response.
func parseZoneGroupState(payload []byte) ZoneGroupState {
	zoneXML := parseTextValue(payload, "ZoneGroupState")
	if zoneXML == "" {
		zoneXML = string(payload)
	}

	decoder := xml.NewDecoder(strings.NewReader(zoneXML))
	var state ZoneGroupState
	var currentGroup *ZoneGroup
	var coordinator string

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "ZoneGroup":
				group := ZoneGroup{}
				coordinator = ""
				for _, attr := range se.Attr {
					if attr.Name.Local == "ID" {
						group.ID = attr.Value
					}
					if attr.Name.Local == "Coordinator" {
						group.Coordinator = attr.Value
						coordinator = attr.Value
					}
				}
				state.Groups = append(state.Groups, group)
				currentGroup = &state.Groups[len(state.Groups)-1]
			case "ZoneGroupMember":
				if currentGroup == nil {
					continue
				}
				member := ZoneMember{
					IsVisible: true,
				}
				for _, attr := range se.Attr {
					switch attr.Name.Local {
					case "UUID":
						member.UUID = attr.Value
					case "ZoneName":
						member.ZoneName = attr.Value
					case "Location":
						member.Location = attr.Value
					case "Invisible":
						member.IsVisible = !(attr.Value == "true" || attr.Value == "1")
					}
				}
				if member.UUID != "" && member.UUID == coordinator {
					member.IsCoordinator = true
				}
				currentGroup.Members = append(currentGroup.Members, member)
			}
		}
	}

	return state
}

func parseBrowseResult(payload []byte) BrowseResult {
	result := BrowseResult{}
	result.Result = parseTextValue(payload, "Result")
	result.NumberReturned, _ = strconv.Atoi(parseTextValue(payload, "NumberReturned"))
	result.TotalMatches, _ = strconv.Atoi(parseTextValue(payload, "TotalMatches"))

	if result.Result == "" {
		return result
	}

	result.Items = parseDidlPlaylists([]byte(result.Result))
	return result
}

// parseDidlPlaylists parses the DIDL-Lite container list returned by a saved
// queues browse.
func parseDidlPlaylists(payload []byte) []PlaylistItem {
	decoder := xml.NewDecoder(bytes.NewReader(payload))
	var items []PlaylistItem
	var current *PlaylistItem

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "container", "item":
				item := PlaylistItem{}
				for _, attr := range se.Attr {
					if attr.Name.Local == "id" {
						item.ID = attr.Value
					}
				}
				items = append(items, item)
				current = &items[len(items)-1]
			case "title":
				if current != nil {
					var value string
					if err := decoder.DecodeElement(&value, &se); err == nil {
						current.Title = strings.TrimSpace(value)
					}
				}
			case "res":
				if current != nil {
					var value string
					if err := decoder.DecodeElement(&value, &se); err == nil {
						current.URI = strings.TrimSpace(value)
					}
				}
			}
		}
	}

	return items
}
