package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"

	"log/slog"

	"tally/internal/logging"
)

// Controller is the station surface the IPC server exposes. Implemented by
// the station runtime; defined here so the station package stays free of
// transport concerns.
type Controller interface {
	Status(ctx context.Context) StatusResponse
	Devices(ctx context.Context) ([]DeviceInfo, error)
	Switch(ctx context.Context, deviceID string) error
	RecentScans(ctx context.Context, limit int) ([]ScanRecord, error)
	Pause()
	Resume()
	Shutdown()
}

// Server exposes station control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, controller Controller, logger *slog.Logger) (*Server, error) {
	if controller == nil {
		return nil, errors.New("ipc server requires controller")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{controller: controller, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Tally", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually or rerun tally station stop"))
	}
}

type service struct {
	controller Controller
	logger     *slog.Logger
	ctx        context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	*resp = s.controller.Status(s.ctx)
	return nil
}

func (s *service) Devices(_ DevicesRequest, resp *DevicesResponse) error {
	devices, err := s.controller.Devices(s.ctx)
	if err != nil {
		return err
	}
	resp.Devices = devices
	return nil
}

func (s *service) Switch(req SwitchRequest, resp *SwitchResponse) error {
	device := strings.TrimSpace(req.DeviceID)
	if device == "" {
		return errors.New("switch requires a device id")
	}
	s.log().Debug("device switch requested", logging.String(logging.FieldDevice, device))
	if err := s.controller.Switch(s.ctx, device); err != nil {
		resp.Switched = false
		resp.Message = err.Error()
		return nil
	}
	resp.Switched = true
	resp.Device = device
	s.log().Info("capture device switched via IPC",
		logging.String(logging.FieldEventType, "device_switch"),
		logging.String(logging.FieldDevice, device))
	return nil
}

func (s *service) RecentScans(req RecentScansRequest, resp *RecentScansResponse) error {
	scans, err := s.controller.RecentScans(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Scans = scans
	return nil
}

func (s *service) Pause(_ PauseRequest, resp *PauseResponse) error {
	s.controller.Pause()
	resp.Paused = true
	s.log().Info("scan handling paused via IPC",
		logging.String(logging.FieldEventType, "station_pause"))
	return nil
}

func (s *service) Resume(_ ResumeRequest, resp *ResumeResponse) error {
	s.controller.Resume()
	resp.Paused = false
	s.log().Info("scan handling resumed via IPC",
		logging.String(logging.FieldEventType, "station_resume"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("station stop requested")
	s.controller.Shutdown()
	resp.Stopped = true
	s.log().Info("station stopped via IPC",
		logging.String(logging.FieldEventType, "station_stop"))
	return nil
}
