package station

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"tally/internal/config"
	"tally/internal/inventory"
	"tally/internal/ipc"
	"tally/internal/journal"
	"tally/internal/logging"
	"tally/internal/scanner"
	"tally/internal/services"
)

type capturePipeline interface {
	Start(ctx context.Context, deviceID string) error
	Stop(ctx context.Context) error
	SwitchDevice(ctx context.Context, deviceID string) error
	Events() <-chan scanner.ScanEvent
	DecodeErrors() <-chan error
	ActiveDevice() (string, bool)
}

type deviceLister interface {
	ListDevices(ctx context.Context) ([]scanner.Device, error)
}

type itemResolver interface {
	Resolve(ctx context.Context, input string) (inventory.Item, error)
}

type scanJournal interface {
	Record(ctx context.Context, entry journal.Entry) (journal.Entry, error)
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
	Path() string
}

// Station owns the scan workflow on one physical scan point: the camera
// pipeline, identity resolution, and the local journal. A file lock enforces
// a single instance per data directory.
type Station struct {
	cfg      *config.Config
	logger   *slog.Logger
	pipeline capturePipeline
	lister   deviceLister
	resolver itemResolver
	journal  scanJournal
	debounce *scanner.Debouncer

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	paused    atomic.Bool
	scanCount atomic.Int64

	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	shutdown chan struct{}
	stopOnce sync.Once
}

// Options wires a station's collaborators.
type Options struct {
	Config   *config.Config
	Logger   *slog.Logger
	Pipeline capturePipeline
	Lister   deviceLister
	Resolver itemResolver
	Journal  scanJournal
}

// New constructs a station.
func New(opts Options) (*Station, error) {
	if opts.Config == nil || opts.Pipeline == nil || opts.Resolver == nil || opts.Journal == nil {
		return nil, errors.New("station requires config, pipeline, resolver, and journal")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	lister := opts.Lister
	if lister == nil {
		lister = scanner.NewLister()
	}
	lockPath := opts.Config.LockPath()
	return &Station{
		cfg:      opts.Config,
		logger:   logging.NewComponentLogger(logger, "station"),
		pipeline: opts.Pipeline,
		lister:   lister,
		resolver: opts.Resolver,
		journal:  opts.Journal,
		debounce: scanner.NewDebouncer(opts.Config.DebounceWindow()),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		shutdown: make(chan struct{}),
	}, nil
}

// Start acquires the station lock, opens capture on the configured or
// default device, and begins consuming decodes.
func (s *Station) Start(ctx context.Context) error {
	if s.running.Load() {
		return errors.New("station already running")
	}

	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another station instance holds %s", s.lockPath)
	}

	device, err := s.pickDevice(ctx)
	if err != nil {
		_ = s.lock.Unlock()
		return err
	}
	if err := s.pipeline.Start(ctx, device); err != nil {
		_ = s.lock.Unlock()
		return fmt.Errorf("start capture: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	s.running.Store(true)

	s.wg.Add(1)
	go s.loop(runCtx)

	s.logger.Info("station started",
		logging.String(logging.FieldEventType, "station_started"),
		logging.String(logging.FieldDevice, device))
	return nil
}

func (s *Station) pickDevice(ctx context.Context) (string, error) {
	if configured := strings.TrimSpace(s.cfg.Station.CameraDevice); configured != "" {
		return configured, nil
	}
	devices, err := s.lister.ListDevices(ctx)
	if err != nil {
		return "", err
	}
	device, ok := scanner.DefaultDevice(devices)
	if !ok {
		return "", services.Wrap(services.ErrDevice, "station", "start", "no capture devices attached", nil)
	}
	return device.ID, nil
}

// Stop tears the station down: capture released, loop drained, lock freed.
func (s *Station) Stop() {
	if !s.running.Load() {
		return
	}
	s.running.Store(false)

	if err := s.pipeline.Stop(context.Background()); err != nil {
		s.logger.Warn("pipeline stop failed", logging.Error(err))
	}

	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release lock",
			logging.String("lock", s.lockPath),
			logging.Error(err))
	}
	s.logger.Info("station stopped",
		logging.String(logging.FieldEventType, "station_stopped"))
}

// Done is closed when a shutdown has been requested over IPC.
func (s *Station) Done() <-chan struct{} {
	return s.shutdown
}

func (s *Station) loop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-s.pipeline.Events():
			s.handleScan(ctx, event)
		case err := <-s.pipeline.DecodeErrors():
			s.logger.Warn("capture error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "scan_capture_error"))
		}
	}
}

func (s *Station) handleScan(ctx context.Context, event scanner.ScanEvent) {
	if s.paused.Load() {
		return
	}
	if !s.debounce.Allow(event.Payload) {
		return
	}
	s.scanCount.Add(1)

	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, s.logger)

	entry := journal.Entry{
		At:      event.At,
		Action:  journal.ActionScan,
		RawText: event.Payload,
	}

	item, err := s.resolver.Resolve(ctx, event.Payload)
	switch {
	case err == nil:
		entry.ItemID = item.ID
		entry.ShortID = item.ShortID
		entry.Destination = item.CurrentDestination
		entry.Outcome = journal.OutcomeResolved
		entry.Detail = string(item.Status)
		logger.Info("scan resolved",
			logging.String(logging.FieldEventType, "scan_resolved"),
			logging.String(logging.FieldItemID, item.ID),
			logging.String(logging.FieldShortID, item.ShortID),
			logging.String("status", string(item.Status)))
	case errors.Is(err, services.ErrAmbiguous):
		entry.Outcome = journal.OutcomeAmbiguous
		entry.Detail = err.Error()
		var ambiguous *inventory.AmbiguousIdentityError
		if errors.As(err, &ambiguous) {
			entry.Detail = fmt.Sprintf("%d candidates", len(ambiguous.Candidates))
		}
		logger.Warn("scan ambiguous",
			logging.String(logging.FieldEventType, "scan_ambiguous"),
			logging.String("raw_text", event.Payload))
	case errors.Is(err, services.ErrNotFound):
		entry.Outcome = journal.OutcomeNotFound
		logger.Info("scan matched no item",
			logging.String(logging.FieldEventType, "scan_not_found"),
			logging.String("raw_text", event.Payload))
	default:
		entry.Outcome = journal.OutcomeFailed
		entry.Detail = err.Error()
		logger.Warn("scan resolution failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "scan_resolve_failed"))
	}

	if _, recordErr := s.journal.Record(ctx, entry); recordErr != nil {
		s.logger.Warn("journal write failed", logging.Error(recordErr))
	}
}

// Status implements ipc.Controller.
func (s *Station) Status(context.Context) ipc.StatusResponse {
	device, _ := s.pipeline.ActiveDevice()
	return ipc.StatusResponse{
		Running:     s.running.Load(),
		Paused:      s.paused.Load(),
		Device:      device,
		JournalPath: s.journal.Path(),
		LockPath:    s.lockPath,
		PID:         os.Getpid(),
		ScanCount:   s.scanCount.Load(),
	}
}

// Devices implements ipc.Controller.
func (s *Station) Devices(ctx context.Context) ([]ipc.DeviceInfo, error) {
	devices, err := s.lister.ListDevices(ctx)
	if err != nil {
		return nil, err
	}
	active, _ := s.pipeline.ActiveDevice()
	infos := make([]ipc.DeviceInfo, 0, len(devices))
	for _, device := range devices {
		infos = append(infos, ipc.DeviceInfo{
			ID:     device.ID,
			Label:  device.Label,
			Active: device.ID == active,
		})
	}
	return infos, nil
}

// Switch implements ipc.Controller.
func (s *Station) Switch(ctx context.Context, deviceID string) error {
	if !s.running.Load() {
		return errors.New("station not running")
	}
	return s.pipeline.SwitchDevice(ctx, deviceID)
}

// RecentScans implements ipc.Controller.
func (s *Station) RecentScans(ctx context.Context, limit int) ([]ipc.ScanRecord, error) {
	entries, err := s.journal.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	records := make([]ipc.ScanRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, ipc.ScanRecord{
			At:          entry.At,
			Action:      entry.Action,
			RawText:     entry.RawText,
			ItemID:      entry.ItemID,
			ShortID:     entry.ShortID,
			Destination: entry.Destination,
			Outcome:     entry.Outcome,
			Detail:      entry.Detail,
		})
	}
	return records, nil
}

// Pause implements ipc.Controller. The camera stays open; decodes are
// discarded until Resume.
func (s *Station) Pause() {
	s.paused.Store(true)
}

// Resume implements ipc.Controller.
func (s *Station) Resume() {
	s.paused.Store(false)
}

// Shutdown implements ipc.Controller. It signals the run loop owner; actual
// teardown happens in Stop.
func (s *Station) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.shutdown)
	})
}
