package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the station daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the station status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Tally.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Devices lists the station's capture devices.
func (c *Client) Devices() (*DevicesResponse, error) {
	var resp DevicesResponse
	if err := c.client.Call("Tally.Devices", DevicesRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Switch moves capture to another device.
func (c *Client) Switch(deviceID string) (*SwitchResponse, error) {
	var resp SwitchResponse
	if err := c.client.Call("Tally.Switch", SwitchRequest{DeviceID: deviceID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecentScans returns the newest journaled scans.
func (c *Client) RecentScans(limit int) (*RecentScansResponse, error) {
	var resp RecentScansResponse
	if err := c.client.Call("Tally.RecentScans", RecentScansRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Pause suspends scan handling without releasing the camera.
func (c *Client) Pause() (*PauseResponse, error) {
	var resp PauseResponse
	if err := c.client.Call("Tally.Pause", PauseRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Resume resumes scan handling.
func (c *Client) Resume() (*ResumeResponse, error) {
	var resp ResumeResponse
	if err := c.client.Call("Tally.Resume", ResumeRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop asks the daemon to shut down.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Tally.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
