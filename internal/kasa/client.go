package kasa

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/sweeney/plugwatch/internal/device"
)

// DefaultPort is the fixed TCP port Kasa devices listen on.
const DefaultPort = "9999"

// DefaultTimeout bounds a full dial+request+response round trip. A
// hung device must never hang the caller longer than this.
const DefaultTimeout = 5 * time.Second

// Client implements device.Controller against one Kasa plug or one
// socket of a Kasa power strip. Each call opens a fresh connection;
// no state is kept between calls.
type Client struct {
	addr  string
	index int

	// Timeout caps each round trip. Zero means DefaultTimeout.
	Timeout time.Duration
}

// NewClient creates a client for the plug at addr (host or host:port).
// index selects the socket on multi-outlet devices; use 0 for a
// single-outlet plug.
func NewClient(addr string, index int) *Client {
	return &Client{addr: addr, index: index}
}

type request struct {
	Context *reqContext `json:"context,omitempty"`
	System  reqSystem   `json:"system"`
}

type reqContext struct {
	ChildIDs []string `json:"child_ids"`
}

type reqSystem struct {
	GetSysinfo *struct{} `json:"get_sysinfo,omitempty"`
	SetRelay   *relayCmd `json:"set_relay_state,omitempty"`
}

type relayCmd struct {
	State int `json:"state"`
}

type response struct {
	System struct {
		GetSysinfo *sysinfo  `json:"get_sysinfo"`
		SetRelay   *errReply `json:"set_relay_state"`
	} `json:"system"`
}

type errReply struct {
	ErrCode int `json:"err_code"`
}

type sysinfo struct {
	Alias      string      `json:"alias"`
	Model      string      `json:"model"`
	RelayState int         `json:"relay_state"`
	ErrCode    int         `json:"err_code"`
	Children   []childInfo `json:"children"`
}

type childInfo struct {
	ID    string `json:"id"`
	Alias string `json:"alias"`
	State int    `json:"state"`
}

// Info describes the device for display purposes.
type Info struct {
	Alias   string
	Model   string
	Sockets int // 0 for single-outlet plugs
	State   device.PlugState
}

// QueryState returns the relay state of the configured socket.
func (c *Client) QueryState(ctx context.Context) (device.PlugState, error) {
	info, err := c.getSysinfo(ctx)
	if err != nil {
		return device.StateUnknown, err
	}
	relay, err := c.relayFor(info)
	if err != nil {
		return device.StateUnknown, err
	}
	return toState(relay), nil
}

// SetState drives the configured socket to the desired state. The
// device applies the write idempotently; repeating it is safe.
func (c *Client) SetState(ctx context.Context, desired device.PlugState) error {
	var state int
	switch desired {
	case device.StateOn:
		state = 1
	case device.StateOff:
		state = 0
	default:
		return fmt.Errorf("cannot set plug state %q", desired)
	}

	// Power strips address the write by child id, which only sysinfo
	// reveals. Single plugs take the command bare.
	info, err := c.getSysinfo(ctx)
	if err != nil {
		return err
	}

	req := request{System: reqSystem{SetRelay: &relayCmd{State: state}}}
	if len(info.Children) > 0 {
		if c.index >= len(info.Children) {
			return &device.ProtocolError{Err: fmt.Errorf("socket index %d out of range, device has %d sockets", c.index, len(info.Children))}
		}
		req.Context = &reqContext{ChildIDs: []string{info.Children[c.index].ID}}
	} else if c.index > 0 {
		return &device.ProtocolError{Err: fmt.Errorf("socket index %d but device has no child sockets", c.index)}
	}

	resp, err := c.exec(ctx, req)
	if err != nil {
		return err
	}
	if resp.System.SetRelay == nil {
		return &device.ProtocolError{Err: fmt.Errorf("missing set_relay_state reply")}
	}
	if code := resp.System.SetRelay.ErrCode; code != 0 {
		return &device.ProtocolError{Err: fmt.Errorf("device err_code %d on set_relay_state", code)}
	}
	return nil
}

// Info returns device identity and the configured socket's state.
func (c *Client) Info(ctx context.Context) (Info, error) {
	si, err := c.getSysinfo(ctx)
	if err != nil {
		return Info{}, err
	}
	relay, err := c.relayFor(si)
	if err != nil {
		return Info{}, err
	}
	alias := si.Alias
	if len(si.Children) > 0 && si.Children[c.index].Alias != "" {
		alias = si.Children[c.index].Alias
	}
	return Info{
		Alias:   alias,
		Model:   si.Model,
		Sockets: len(si.Children),
		State:   toState(relay),
	}, nil
}

// Close is a no-op; connections are per-call.
func (c *Client) Close() error { return nil }

func (c *Client) getSysinfo(ctx context.Context) (*sysinfo, error) {
	resp, err := c.exec(ctx, request{System: reqSystem{GetSysinfo: &struct{}{}}})
	if err != nil {
		return nil, err
	}
	si := resp.System.GetSysinfo
	if si == nil {
		return nil, &device.ProtocolError{Err: fmt.Errorf("missing get_sysinfo reply")}
	}
	if si.ErrCode != 0 {
		return nil, &device.ProtocolError{Err: fmt.Errorf("device err_code %d on get_sysinfo", si.ErrCode)}
	}
	return si, nil
}

func (c *Client) relayFor(si *sysinfo) (int, error) {
	if len(si.Children) > 0 {
		if c.index >= len(si.Children) {
			return 0, &device.ProtocolError{Err: fmt.Errorf("socket index %d out of range, device has %d sockets", c.index, len(si.Children))}
		}
		return si.Children[c.index].State, nil
	}
	if c.index > 0 {
		return 0, &device.ProtocolError{Err: fmt.Errorf("socket index %d but device has no child sockets", c.index)}
	}
	return si.RelayState, nil
}

func (c *Client) exec(ctx context.Context, req request) (*response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", withDefaultPort(c.addr))
	if err != nil {
		return nil, &device.NetworkError{Err: err}
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, &device.NetworkError{Err: err}
	}

	if err := writeFrame(conn, payload); err != nil {
		return nil, &device.NetworkError{Err: err}
	}
	raw, err := readFrame(conn)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, &device.NetworkError{Err: err}
		}
		// Short reads, early close and oversized frames mean the
		// device spoke garbage, not that the network is down.
		return nil, &device.ProtocolError{Err: err}
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &device.ProtocolError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return &resp, nil
}

func toState(relay int) device.PlugState {
	if relay != 0 {
		return device.StateOn
	}
	return device.StateOff
}

// withDefaultPort appends :9999 when addr carries no port.
func withDefaultPort(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, DefaultPort)
}
