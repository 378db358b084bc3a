package main

import (
	"strings"
	"testing"
	"time"

	"tally/internal/ipc"
)

func TestStationStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	controller := &stubController{
		status: ipc.StatusResponse{
			Running:   true,
			Device:    "/dev/video2",
			ScanCount: 14,
			PID:       4242,
		},
	}
	startStubStation(t, env, controller)

	out, err := runCLI(t, env, "station", "status")
	if err != nil {
		t.Fatalf("station status: %v", err)
	}
	requireContains(t, out, "Running:  yes")
	requireContains(t, out, "/dev/video2")
	requireContains(t, out, "14")
}

func TestStationDevices(t *testing.T) {
	env := setupCLITestEnv(t)
	controller := &stubController{
		devices: []ipc.DeviceInfo{
			{ID: "/dev/video0", Label: "Integrated Camera"},
			{ID: "/dev/video2", Label: "Rear Camera", Active: true},
		},
	}
	startStubStation(t, env, controller)

	out, err := runCLI(t, env, "station", "devices")
	if err != nil {
		t.Fatalf("station devices: %v", err)
	}
	requireContains(t, out, "Rear Camera")
	requireContains(t, out, "Integrated Camera")
}

func TestStationSwitch(t *testing.T) {
	env := setupCLITestEnv(t)
	controller := &stubController{}
	startStubStation(t, env, controller)

	out, err := runCLI(t, env, "station", "switch", "/dev/video1")
	if err != nil {
		t.Fatalf("station switch: %v", err)
	}
	requireContains(t, out, "/dev/video1")

	controller.mu.Lock()
	switched := controller.switched
	controller.mu.Unlock()
	if switched != "/dev/video1" {
		t.Fatalf("expected switch to /dev/video1, got %q", switched)
	}
}

func TestStationPauseResume(t *testing.T) {
	env := setupCLITestEnv(t)
	controller := &stubController{}
	startStubStation(t, env, controller)

	if _, err := runCLI(t, env, "station", "pause"); err != nil {
		t.Fatalf("station pause: %v", err)
	}
	out, err := runCLI(t, env, "station", "status")
	if err != nil {
		t.Fatalf("station status: %v", err)
	}
	requireContains(t, out, "Paused:   yes")

	if _, err := runCLI(t, env, "station", "resume"); err != nil {
		t.Fatalf("station resume: %v", err)
	}
}

func TestStationScans(t *testing.T) {
	env := setupCLITestEnv(t)
	controller := &stubController{
		scans: []ipc.ScanRecord{
			{At: time.Now(), ShortID: "0A1B2C3D", Outcome: "resolved"},
			{At: time.Now(), RawText: "garbage", Outcome: "not-found", Detail: "no match"},
		},
	}
	startStubStation(t, env, controller)

	out, err := runCLI(t, env, "station", "scans", "--limit", "10")
	if err != nil {
		t.Fatalf("station scans: %v", err)
	}
	requireContains(t, out, "0A1B2C3D")
	requireContains(t, out, "not-found")
}

func TestStationCommandsWithoutDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := runCLI(t, env, "station", "status")
	if err == nil {
		t.Fatal("expected dial failure with no daemon")
	}
	if !strings.Contains(err.Error(), "tallyd") {
		t.Fatalf("expected hint mentioning tallyd, got %v", err)
	}
}
