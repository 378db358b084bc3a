package scanner

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"tally/internal/logging"
	"tally/internal/services"
)

const (
	eventBuffer = 64
	errorBuffer = 16
)

// ScanEvent is one raw decode delivered by the active capture session.
// Payloads are not deduplicated here; consumers wanting collapse wrap the
// stream in a Debouncer.
type ScanEvent struct {
	Payload  string
	DeviceID string
	At       time.Time
}

// Backend runs one capture session against a device, calling decode once per
// raw payload until the context is canceled or the session fails.
type Backend interface {
	Run(ctx context.Context, deviceID string, decode func(payload string)) error
}

type session struct {
	deviceID string
	gen      uint64
	cancel   context.CancelFunc
	done     chan struct{}
}

// Pipeline owns the capture lifecycle. Start, Stop, and SwitchDevice are
// fully serialized by opMu, held across the entire teardown of the previous
// session, so at most one backend session exists at any instant. The state
// mutex mu guards the session pointer and generation only and is never held
// while waiting, so in-flight decode callbacks can always run to completion.
type Pipeline struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time

	opMu sync.Mutex

	mu         sync.Mutex
	generation uint64
	active     *session

	events chan ScanEvent
	errs   chan error
}

// NewPipeline constructs a pipeline over the given backend.
func NewPipeline(backend Backend, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		backend: backend,
		logger:  logging.NewComponentLogger(logger, "scan-pipeline"),
		now:     time.Now,
		events:  make(chan ScanEvent, eventBuffer),
		errs:    make(chan error, errorBuffer),
	}
}

// Events is the decode stream. Events arriving while the buffer is full are
// dropped with a report on the error channel rather than blocking capture.
func (p *Pipeline) Events() <-chan ScanEvent {
	return p.events
}

// DecodeErrors is a best-effort error stream. Delivery is never guaranteed.
func (p *Pipeline) DecodeErrors() <-chan error {
	return p.errs
}

// Start begins capturing on the given device. Any previous session is torn
// down first and its termination awaited before the new backend launches;
// teardown errors are logged and swallowed.
func (p *Pipeline) Start(ctx context.Context, deviceID string) error {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return services.Wrap(services.ErrValidation, "scanner", "start", "device id required", nil)
	}

	p.opMu.Lock()
	defer p.opMu.Unlock()
	return p.startLocked(ctx, deviceID)
}

// startLocked launches a new session. Callers hold opMu.
func (p *Pipeline) startLocked(ctx context.Context, deviceID string) error {
	p.teardown()

	sessCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sess := &session{
		deviceID: deviceID,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	p.mu.Lock()
	p.generation++
	sess.gen = p.generation
	p.active = sess
	p.mu.Unlock()

	go p.run(sessCtx, sess)

	p.logger.Info("capture session started",
		logging.String(logging.FieldDevice, deviceID),
		logging.String(logging.FieldEventType, "scan_session_started"))
	return nil
}

// Stop tears down the active session. Stopping an idle pipeline is a no-op.
func (p *Pipeline) Stop(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.opMu.Lock()
	defer p.opMu.Unlock()
	p.teardown()
	return nil
}

// SwitchDevice moves capture to another device. Switching to the device that
// is already active is a no-op; otherwise this is a serialized
// stop-then-start with no overlap between the two sessions.
func (p *Pipeline) SwitchDevice(ctx context.Context, deviceID string) error {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return services.Wrap(services.ErrValidation, "scanner", "switch", "device id required", nil)
	}

	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.mu.Lock()
	same := p.active != nil && p.active.deviceID == deviceID
	p.mu.Unlock()
	if same {
		return nil
	}
	return p.startLocked(ctx, deviceID)
}

// ActiveDevice returns the device of the current session, if any.
func (p *Pipeline) ActiveDevice() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return "", false
	}
	return p.active.deviceID, true
}

// teardown cancels the active session and waits for its backend to exit.
// Callers hold opMu. The wait happens with mu released: a decode callback in
// flight at cancel time needs mu inside deliver, and the backend cannot
// return until that callback does.
func (p *Pipeline) teardown() {
	p.mu.Lock()
	sess := p.active
	if sess == nil {
		p.mu.Unlock()
		return
	}
	p.active = nil
	// Bump the generation so callbacks from the dying session are dropped
	// even before its backend notices cancellation.
	p.generation++
	p.mu.Unlock()

	sess.cancel()
	<-sess.done
	p.logger.Info("capture session stopped",
		logging.String(logging.FieldDevice, sess.deviceID),
		logging.String(logging.FieldEventType, "scan_session_stopped"))
}

func (p *Pipeline) run(ctx context.Context, sess *session) {
	defer close(sess.done)

	err := p.backend.Run(ctx, sess.deviceID, func(payload string) {
		p.deliver(sess, payload)
	})
	if err != nil && ctx.Err() == nil {
		// Session died on its own; surface it best-effort.
		p.logger.Warn("capture backend exited",
			logging.String(logging.FieldDevice, sess.deviceID),
			logging.Error(err))
		p.reportError(services.Wrap(services.ErrDevice, "scanner", "capture", "backend exited", err))
		return
	}
	if err != nil {
		// Teardown path. Backend errors during a requested stop are logged
		// and swallowed; the caller's stop must not fail because release did.
		p.logger.Debug("capture teardown reported error",
			logging.String(logging.FieldDevice, sess.deviceID),
			logging.Error(err))
	}
}

func (p *Pipeline) deliver(sess *session, payload string) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return
	}
	p.mu.Lock()
	stale := p.active == nil || p.active != sess || sess.gen != p.generation
	p.mu.Unlock()
	if stale {
		// Decode raced a stop; the consumer asked for silence.
		return
	}
	event := ScanEvent{Payload: payload, DeviceID: sess.deviceID, At: p.now()}
	select {
	case p.events <- event:
	default:
		p.reportError(services.Wrap(services.ErrDevice, "scanner", "capture", "event buffer full; decode dropped", nil))
	}
}

func (p *Pipeline) reportError(err error) {
	select {
	case p.errs <- err:
	default:
	}
}
