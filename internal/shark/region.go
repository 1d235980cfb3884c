package shark

import "fmt"

// Region carries the Ayla cloud endpoints and application identity for one
// deployment region.
type Region struct {
	Name      string
	UserURL   string
	DeviceURL string
	AppID     string
	AppSecret string
}

var (
	RegionUS = Region{
		Name:      "us",
		UserURL:   "https://user-field-39a9391a.aylanetworks.com",
		DeviceURL: "https://ads-field-39a9391a.aylanetworks.com",
		AppID:     "Shark-Android-field-id",
		AppSecret: "Shark-Android-field-Wv43MbdXRM297HUHotqe6lU1n-w",
	}
	RegionEU = Region{
		Name:      "eu",
		UserURL:   "https://user-field-eu.aylanetworks.com",
		DeviceURL: "https://ads-eu.aylanetworks.com",
		AppID:     "Shark-Android-EUField-Fw-id",
		AppSecret: "Shark-Android-EUField-s-zTykblGJujGcSSTaJaeE4PESI",
	}
)

// ParseRegion resolves a config region name.
func ParseRegion(name string) (Region, error) {
	switch name {
	case "", "us":
		return RegionUS, nil
	case "eu":
		return RegionEU, nil
	default:
		return Region{}, fmt.Errorf("unknown shark region %q", name)
	}
}
