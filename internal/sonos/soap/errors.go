package soap

import "fmt"

// RejectedError represents a UPnP/SOAP error response from a device.
type RejectedError struct {
	Action      string
	Code        string
	Description string
}

func (e *RejectedError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("sonos action %s rejected: code %s", e.Action, e.Code)
	}
	return fmt.Sprintf("sonos action %s rejected: code %s (%s)", e.Action, e.Code, e.Description)
}

// TimeoutError indicates a request timed out.
type TimeoutError struct {
	Action string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("sonos action %s timed out", e.Action)
}

// UnreachableError indicates the device could not be reached.
type UnreachableError struct {
	Action string
	Err    error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("sonos action %s unreachable: %v", e.Action, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}
