package ipc

import "time"

// DeviceInfo describes one capture device known to the station.
type DeviceInfo struct {
	ID     string
	Label  string
	Active bool
}

// ScanRecord is one journaled scan, shaped for transport.
type ScanRecord struct {
	At          time.Time
	Action      string
	RawText     string
	ItemID      string
	ShortID     string
	Destination string
	Outcome     string
	Detail      string
}

// StatusRequest asks for station state.
type StatusRequest struct{}

// StatusResponse reports station state.
type StatusResponse struct {
	Running     bool
	Paused      bool
	Device      string
	JournalPath string
	LockPath    string
	PID         int
	ScanCount   int64
}

// DevicesRequest asks for attached capture devices.
type DevicesRequest struct{}

// DevicesResponse lists attached capture devices.
type DevicesResponse struct {
	Devices []DeviceInfo
}

// SwitchRequest moves capture to another device.
type SwitchRequest struct {
	DeviceID string
}

// SwitchResponse confirms a device switch.
type SwitchResponse struct {
	Switched bool
	Device   string
	Message  string
}

// RecentScansRequest asks for the newest journal entries.
type RecentScansRequest struct {
	Limit int
}

// RecentScansResponse carries the newest journal entries.
type RecentScansResponse struct {
	Scans []ScanRecord
}

// PauseRequest suspends scan handling without releasing the camera.
type PauseRequest struct{}

// PauseResponse confirms a pause.
type PauseResponse struct {
	Paused bool
}

// ResumeRequest resumes scan handling.
type ResumeRequest struct{}

// ResumeResponse confirms a resume.
type ResumeResponse struct {
	Paused bool
}

// StopRequest asks the daemon to shut down.
type StopRequest struct{}

// StopResponse confirms a shutdown request.
type StopResponse struct {
	Stopped bool
}
