package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/config"
	"tally/internal/inventory"
	"tally/internal/ipc"
	"tally/internal/journal"
	"tally/internal/services/depot"
)

type commandContext struct {
	socketFlag *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	depotOnce   sync.Once
	depotClient *depot.Client
	depotErr    error
}

func newCommandContext(socketFlag, configFlag *string) *commandContext {
	return &commandContext{
		socketFlag: socketFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) depot() (*depot.Client, error) {
	c.depotOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.depotErr = err
			return
		}
		c.depotClient = depot.New(cfg.Depot.URL, cfg.Depot.Token,
			depot.WithTimeout(time.Duration(cfg.Depot.TimeoutSeconds)*time.Second))
	})
	return c.depotClient, c.depotErr
}

// resolveItem turns a full id or short code into one canonical item.
func (c *commandContext) resolveItem(ctx context.Context, input string) (inventory.Item, error) {
	client, err := c.depot()
	if err != nil {
		return inventory.Item{}, err
	}
	return inventory.NewResolver(client).Resolve(ctx, input)
}

// recordJournal appends a best-effort entry to the local journal, the same
// database the station writes its scans to. The journal is an operator aid;
// failing to write it never fails the command.
func (c *commandContext) recordJournal(ctx context.Context, entry journal.Entry) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return
	}
	store, err := journal.Open(cfg)
	if err != nil {
		return
	}
	defer store.Close()
	_, _ = store.Record(ctx, entry)
}

func (c *commandContext) socketPath() string {
	if c.socketFlag == nil {
		return defaultSocketPath()
	}
	if strings.TrimSpace(*c.socketFlag) == "" {
		*c.socketFlag = defaultSocketPath()
	}
	return *c.socketFlag
}

func (c *commandContext) withClient(fn func(*ipc.Client) error) error {
	socket := c.socketPath()
	client, err := ipc.Dial(socket)
	if err != nil {
		return wrapDialError(err, socket)
	}
	defer client.Close()
	return fn(client)
}

func wrapDialError(err error, socket string) error {
	switch {
	case errors.Is(err, syscall.ENOENT) || os.IsNotExist(err):
		return fmt.Errorf("connect to station: socket %s not found; start the daemon with `tallyd`", socket)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to station: socket %s refused the connection; verify tallyd is running", socket)
	default:
		return fmt.Errorf("connect to station: %w", err)
	}
}

func defaultSocketPath() string {
	cfg, _, _, err := config.Load("")
	if err == nil {
		return cfg.SocketPath()
	}

	dataDir, err2 := config.ExpandPath("~/.local/share/tally")
	if err2 != nil {
		return filepath.Join(os.TempDir(), "tallyd.sock")
	}
	return filepath.Join(dataDir, "tallyd.sock")
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
