package shark

// OperatingMode is the value written to the vacuum's SET_Operating_Mode
// property.
type OperatingMode int

const (
	ModeStop   OperatingMode = 0
	ModePause  OperatingMode = 1
	ModeStart  OperatingMode = 2
	ModeReturn OperatingMode = 3
)

// Device is one vacuum registered to the account.
type Device struct {
	DSN         string `json:"dsn"`
	Model       string `json:"model"`
	OEMModel    string `json:"oem_model"`
	MAC         string `json:"mac"`
	ProductName string `json:"product_name"`
	Key         uint64 `json:"key"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// The devices listing wraps each device in an envelope object.
type deviceEnvelope struct {
	Device Device `json:"device"`
}
