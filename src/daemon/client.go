package daemon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"chargen/src/config"
)

// Client is a JSON-RPC client talking to the daemon over its unix socket.
type Client struct {
	http   *http.Client
	nextID int
}

// NewClient builds a client for the daemon socket.
func NewClient() (*Client, error) {
	socketPath, err := config.GetSocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve socket path: %w", err)
	}

	return &Client{
		http: &http.Client{
			Transport: &http.Transport{
				Dial: func(_, _ string) (net.Conn, error) {
					return net.Dial("unix", socketPath)
				},
			},
			Timeout: 10 * time.Second,
		},
		nextID: 1,
	}, nil
}

// Call invokes a daemon method and decodes the result into out, which may
// be nil when the caller only cares about success.
func (c *Client) Call(method string, params interface{}, out interface{}) error {
	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      c.nextID,
	}
	c.nextID++
	if params != nil {
		req["params"] = params
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.http.Post("http://unix/rpc", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("daemon not reachable (is it running?): %w", err)
	}
	defer resp.Body.Close()

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out != nil && len(rpcResp.Result) > 0 {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("failed to decode result: %w", err)
		}
	}
	return nil
}
