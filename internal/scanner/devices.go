package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tally/internal/services"
)

// Device is one attached capture device.
type Device struct {
	ID    string
	Label string
}

// DeviceEnumerationError reports a failure to list capture devices.
type DeviceEnumerationError struct {
	Err error
}

func (e *DeviceEnumerationError) Error() string {
	return fmt.Sprintf("enumerate capture devices: %v", e.Err)
}

func (e *DeviceEnumerationError) Unwrap() error { return e.Err }

func (e *DeviceEnumerationError) Is(target error) bool {
	return target == services.ErrDevice
}

// Lister enumerates video4linux capture devices. The roots are overridable
// so tests can point at fixture directories.
type Lister struct {
	devRoot string
	sysRoot string
}

// NewLister constructs a lister over the host's device tree.
func NewLister() *Lister {
	return &Lister{devRoot: "/dev", sysRoot: "/sys/class/video4linux"}
}

// NewListerAt constructs a lister over alternate roots.
func NewListerAt(devRoot, sysRoot string) *Lister {
	return &Lister{devRoot: devRoot, sysRoot: sysRoot}
}

// ListDevices returns the attached capture devices, sorted by device path.
// Labels come from the kernel's video4linux name attribute when present.
func (l *Lister) ListDevices(ctx context.Context) ([]Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(l.devRoot)
	if err != nil {
		return nil, &DeviceEnumerationError{Err: err}
	}
	var devices []Device
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "video") {
			continue
		}
		if !hasDigitSuffix(name, "video") {
			continue
		}
		devices = append(devices, Device{
			ID:    filepath.Join(l.devRoot, name),
			Label: l.label(name),
		})
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	return devices, nil
}

func (l *Lister) label(name string) string {
	raw, err := os.ReadFile(filepath.Join(l.sysRoot, name, "name"))
	if err != nil {
		return name
	}
	label := strings.TrimSpace(string(raw))
	if label == "" {
		return name
	}
	return label
}

func hasDigitSuffix(name, prefix string) bool {
	suffix := name[len(prefix):]
	if suffix == "" {
		return false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DefaultDevice picks the device whose label suggests a rear-facing camera,
// falling back to the first device. Returns false for an empty list.
func DefaultDevice(devices []Device) (Device, bool) {
	if len(devices) == 0 {
		return Device{}, false
	}
	for _, device := range devices {
		label := strings.ToLower(device.Label)
		if strings.Contains(label, "back") || strings.Contains(label, "rear") {
			return device, true
		}
	}
	return devices[0], true
}
