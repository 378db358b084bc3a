package scanner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// commandStreamer launches an external decoder and exposes its stdout.
// Tests substitute fakes; production shells out.
type commandStreamer interface {
	Stream(ctx context.Context, name string, args ...string) (io.ReadCloser, func() error, error)
}

type execCommandStreamer struct{}

func (execCommandStreamer) Stream(ctx context.Context, name string, args ...string) (io.ReadCloser, func() error, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}
	return stdout, cmd.Wait, nil
}

// ZbarBackend captures by shelling out to a zbarcam-style decoder that
// prints one raw decode per stdout line.
type ZbarBackend struct {
	binary   string
	streamer commandStreamer
}

// NewZbarBackend constructs a backend around the given decoder binary.
func NewZbarBackend(binary string) *ZbarBackend {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "zbarcam"
	}
	return &ZbarBackend{binary: binary, streamer: execCommandStreamer{}}
}

// Run launches the decoder against the device and forwards each stdout line
// as one decode until the context is canceled or the process exits.
func (b *ZbarBackend) Run(ctx context.Context, deviceID string, decode func(payload string)) error {
	stdout, wait, err := b.streamer.Stream(ctx, b.binary, "--raw", "--nodisplay", deviceID)
	if err != nil {
		return fmt.Errorf("launch %s: %w", b.binary, err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		decode(line)
	}
	scanErr := scanner.Err()
	_ = stdout.Close()

	waitErr := wait()
	if ctx.Err() != nil {
		// Requested teardown; the decoder dying from SIGKILL is expected.
		return ctx.Err()
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return fmt.Errorf("%s exited: %w", b.binary, exitErr)
		}
		return fmt.Errorf("%s: %w", b.binary, waitErr)
	}
	return scanErr
}
