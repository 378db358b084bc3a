package station

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tally/internal/config"
	"tally/internal/inventory"
	"tally/internal/journal"
	"tally/internal/scanner"
	"tally/internal/testsupport"
)

type fakePipeline struct {
	mu      sync.Mutex
	started []string
	stopped int
	active  string
	events  chan scanner.ScanEvent
	errs    chan error
}

func newFakePipeline() *fakePipeline {
	return &fakePipeline{
		events: make(chan scanner.ScanEvent, 16),
		errs:   make(chan error, 4),
	}
}

func (f *fakePipeline) Start(_ context.Context, deviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, deviceID)
	f.active = deviceID
	return nil
}

func (f *fakePipeline) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	f.active = ""
	return nil
}

func (f *fakePipeline) SwitchDevice(ctx context.Context, deviceID string) error {
	return f.Start(ctx, deviceID)
}

func (f *fakePipeline) Events() <-chan scanner.ScanEvent { return f.events }
func (f *fakePipeline) DecodeErrors() <-chan error       { return f.errs }

func (f *fakePipeline) ActiveDevice() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active, f.active != ""
}

type fakeLister struct {
	devices []scanner.Device
}

func (f *fakeLister) ListDevices(context.Context) ([]scanner.Device, error) {
	return f.devices, nil
}

type fakeResolver struct {
	items map[string]inventory.Item
}

func (f *fakeResolver) Resolve(_ context.Context, input string) (inventory.Item, error) {
	if item, ok := f.items[input]; ok {
		return item, nil
	}
	return inventory.Item{}, &inventory.NotFoundError{Input: input}
}

type memJournal struct {
	mu      sync.Mutex
	entries []journal.Entry
}

func (m *memJournal) Record(_ context.Context, entry journal.Entry) (journal.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = int64(len(m.entries) + 1)
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	m.entries = append(m.entries, entry)
	return entry, nil
}

func (m *memJournal) Recent(_ context.Context, limit int) ([]journal.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []journal.Entry
	for i := len(m.entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *memJournal) Path() string { return "mem" }

func (m *memJournal) snapshot() []journal.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]journal.Entry, len(m.entries))
	copy(cp, m.entries)
	return cp
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return testsupport.NewConfig(t)
}

type stationFixture struct {
	station  *Station
	pipeline *fakePipeline
	journal  *memJournal
}

func newStationFixture(t *testing.T, resolver itemResolver) *stationFixture {
	t.Helper()
	pipeline := newFakePipeline()
	jrnl := &memJournal{}
	if resolver == nil {
		resolver = &fakeResolver{}
	}
	st, err := New(Options{
		Config:   testConfig(t),
		Pipeline: pipeline,
		Lister:   &fakeLister{devices: []scanner.Device{{ID: "/dev/video0", Label: "Back Camera"}}},
		Resolver: resolver,
		Journal:  jrnl,
	})
	if err != nil {
		t.Fatalf("New returned %v", err)
	}
	return &stationFixture{station: st, pipeline: pipeline, journal: jrnl}
}

func awaitEntries(t *testing.T, jrnl *memJournal, want int) []journal.Entry {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entries := jrnl.snapshot()
		if len(entries) >= want {
			return entries
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("journal has %d entries, want %d", len(jrnl.snapshot()), want)
	return nil
}

func TestStartPicksDefaultDeviceAndJournalsScans(t *testing.T) {
	resolver := &fakeResolver{items: map[string]inventory.Item{
		"0A1B2C3D": {ID: "item-1", ShortID: "0A1B2C3D", Status: inventory.StatusInStock},
	}}
	f := newStationFixture(t, resolver)

	if err := f.station.Start(context.Background()); err != nil {
		t.Fatalf("Start returned %v", err)
	}
	defer f.station.Stop()

	if len(f.pipeline.started) != 1 || f.pipeline.started[0] != "/dev/video0" {
		t.Fatalf("pipeline started with %v", f.pipeline.started)
	}

	f.pipeline.events <- scanner.ScanEvent{Payload: "0A1B2C3D", DeviceID: "/dev/video0", At: time.Now()}
	f.pipeline.events <- scanner.ScanEvent{Payload: "junk", DeviceID: "/dev/video0", At: time.Now()}

	entries := awaitEntries(t, f.journal, 2)
	if entries[0].Outcome != journal.OutcomeResolved || entries[0].ItemID != "item-1" {
		t.Fatalf("entry[0] = %+v", entries[0])
	}
	if entries[1].Outcome != journal.OutcomeNotFound || entries[1].RawText != "junk" {
		t.Fatalf("entry[1] = %+v", entries[1])
	}
}

func TestPauseDiscardsScans(t *testing.T) {
	f := newStationFixture(t, nil)
	if err := f.station.Start(context.Background()); err != nil {
		t.Fatalf("Start returned %v", err)
	}
	defer f.station.Stop()

	f.station.Pause()
	f.pipeline.events <- scanner.ScanEvent{Payload: "while-paused", At: time.Now()}
	time.Sleep(50 * time.Millisecond)
	if got := len(f.journal.snapshot()); got != 0 {
		t.Fatalf("journal has %d entries while paused", got)
	}

	f.station.Resume()
	f.pipeline.events <- scanner.ScanEvent{Payload: "after-resume", At: time.Now()}
	entries := awaitEntries(t, f.journal, 1)
	if entries[0].RawText != "after-resume" {
		t.Fatalf("entry = %+v", entries[0])
	}
}

func TestSecondInstanceIsRejected(t *testing.T) {
	resolver := &fakeResolver{}
	pipeline := newFakePipeline()
	cfg := testConfig(t)
	first, err := New(Options{
		Config:   cfg,
		Pipeline: pipeline,
		Lister:   &fakeLister{devices: []scanner.Device{{ID: "/dev/video0"}}},
		Resolver: resolver,
		Journal:  &memJournal{},
	})
	if err != nil {
		t.Fatalf("New returned %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start returned %v", err)
	}
	defer first.Stop()

	second, err := New(Options{
		Config:   cfg,
		Pipeline: newFakePipeline(),
		Lister:   &fakeLister{devices: []scanner.Device{{ID: "/dev/video0"}}},
		Resolver: resolver,
		Journal:  &memJournal{},
	})
	if err != nil {
		t.Fatalf("New returned %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance acquired the lock")
	}
}

func TestStatusAndDevices(t *testing.T) {
	f := newStationFixture(t, nil)
	if err := f.station.Start(context.Background()); err != nil {
		t.Fatalf("Start returned %v", err)
	}
	defer f.station.Stop()

	status := f.station.Status(context.Background())
	if !status.Running || status.Device != "/dev/video0" {
		t.Fatalf("status = %+v", status)
	}

	devices, err := f.station.Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices returned %v", err)
	}
	if len(devices) != 1 || !devices[0].Active {
		t.Fatalf("devices = %+v", devices)
	}
}

func TestSwitchRequiresRunningStation(t *testing.T) {
	f := newStationFixture(t, nil)
	if err := f.station.Switch(context.Background(), "/dev/video1"); err == nil {
		t.Fatal("Switch succeeded on a stopped station")
	}
}

func TestShutdownSignalsDone(t *testing.T) {
	f := newStationFixture(t, nil)
	select {
	case <-f.station.Done():
		t.Fatal("Done closed before Shutdown")
	default:
	}
	f.station.Shutdown()
	f.station.Shutdown() // idempotent
	select {
	case <-f.station.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Shutdown")
	}
}

func TestResolverFailureJournalsFailure(t *testing.T) {
	failing := resolverFunc(func(context.Context, string) (inventory.Item, error) {
		return inventory.Item{}, errors.New("depot unreachable")
	})
	f := newStationFixture(t, failing)
	if err := f.station.Start(context.Background()); err != nil {
		t.Fatalf("Start returned %v", err)
	}
	defer f.station.Stop()

	f.pipeline.events <- scanner.ScanEvent{Payload: "anything", At: time.Now()}
	entries := awaitEntries(t, f.journal, 1)
	if entries[0].Outcome != journal.OutcomeFailed {
		t.Fatalf("entry = %+v", entries[0])
	}
}

type resolverFunc func(ctx context.Context, input string) (inventory.Item, error)

func (f resolverFunc) Resolve(ctx context.Context, input string) (inventory.Item, error) {
	return f(ctx, input)
}
