package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"tally/internal/inventory"
	"tally/internal/ipc"
	"tally/internal/logging"
)

type cliTestEnv struct {
	depot       *fakeDepotServer
	configPath  string
	socketPath  string
	journalPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	depotSrv := newFakeDepotServer(t)

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\n\n[depot]\nurl = %q\ntoken = \"test-token\"\n",
		filepath.Join(base, "data"),
		filepath.Join(base, "logs"),
		depotSrv.server.URL,
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		depot:       depotSrv,
		configPath:  configPath,
		socketPath:  filepath.Join(base, "tallyd.sock"),
		journalPath: filepath.Join(base, "data", "journal.db"),
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--config", env.configPath, "--socket", env.socketPath}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

// fakeDepotServer serves a mutable in-memory item set over the depot's REST
// shape, just enough for CLI round trips.
type fakeDepotServer struct {
	server *httptest.Server

	mu    sync.Mutex
	items []inventory.Item
}

func newFakeDepotServer(t *testing.T) *fakeDepotServer {
	t.Helper()
	f := &fakeDepotServer{}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeDepotServer) setItems(items ...inventory.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = items
}

func (f *fakeDepotServer) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/items":
		matched := make([]inventory.Item, 0, len(f.items))
		query := r.URL.Query()
		for _, item := range f.items {
			if id := query.Get("id"); id != "" && item.ID != id {
				continue
			}
			if short := query.Get("shortId"); short != "" && !strings.HasPrefix(item.ShortID, short) {
				continue
			}
			if status := query.Get("status"); status != "" && string(item.Status) != status {
				continue
			}
			matched = append(matched, item)
		}
		writeJSON(w, matched)
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/items/"):
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/items/"), "/")
		if len(parts) != 2 {
			http.NotFound(w, r)
			return
		}
		id, action := parts[0], parts[1]
		for i, item := range f.items {
			if item.ID != id {
				continue
			}
			if action == "transfer" {
				var payload struct {
					NewWarehouseID int64  `json:"newWarehouseId"`
					Remarks        string `json:"remarks"`
				}
				_ = json.NewDecoder(r.Body).Decode(&payload)
				item.WarehouseID = payload.NewWarehouseID
				item.Warehouse = nil
				f.items[i] = item
				writeJSON(w, item)
				return
			}
			var payload struct {
				Destination string `json:"destination"`
			}
			_ = json.NewDecoder(r.Body).Decode(&payload)
			op, ok := inventory.ParseOperation(action)
			if !ok {
				http.Error(w, "unknown action", http.StatusBadRequest)
				return
			}
			updated := inventory.ApplyTransition(item, op, payload.Destination, item.LastUpdated)
			f.items[i] = updated
			writeJSON(w, updated)
			return
		}
		http.NotFound(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/items/update-status/batch":
		var payload struct {
			ItemIDs []string         `json:"itemIds"`
			Status  inventory.Status `json:"status"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		for _, id := range payload.ItemIDs {
			for i, item := range f.items {
				if item.ID == id {
					f.items[i] = inventory.ApplyStatusChange(item, payload.Status, item.LastUpdated)
				}
			}
		}
		w.WriteHeader(http.StatusOK)
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

// stubController implements ipc.Controller with canned responses.
type stubController struct {
	status  ipc.StatusResponse
	devices []ipc.DeviceInfo
	scans   []ipc.ScanRecord

	mu       sync.Mutex
	paused   bool
	switched string
	stopped  bool
}

func (s *stubController) Status(context.Context) ipc.StatusResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := s.status
	status.Paused = s.paused
	return status
}

func (s *stubController) Devices(context.Context) ([]ipc.DeviceInfo, error) {
	return s.devices, nil
}

func (s *stubController) Switch(_ context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.switched = deviceID
	return nil
}

func (s *stubController) RecentScans(_ context.Context, limit int) ([]ipc.ScanRecord, error) {
	if limit > 0 && limit < len(s.scans) {
		return s.scans[:limit], nil
	}
	return s.scans, nil
}

func (s *stubController) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

func (s *stubController) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

func (s *stubController) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func startStubStation(t *testing.T, env *cliTestEnv, controller *stubController) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	srv, err := ipc.NewServer(ctx, env.socketPath, controller, logging.NewNop())
	if err != nil {
		cancel()
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
