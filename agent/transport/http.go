// Package transport performs the worker handshake over HTTP.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
)

const maxResponseBytes = 4 << 20

type Option func(*HTTPCaller)

func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPCaller) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// HTTPCaller posts handshake requests to worker endpoints.
type HTTPCaller struct {
	httpClient *http.Client
}

var _ contractx.WorkerCaller = (*HTTPCaller)(nil)

func NewHTTPCaller(opts ...Option) *HTTPCaller {
	c := &HTTPCaller{httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPCaller) Call(ctx context.Context, worker contractx.WorkerDescriptor, req contractx.HandshakeRequest) contractx.CallOutcome {
	endpoint := strings.TrimSpace(worker.Endpoint)
	if worker.Transport != contractx.TransportHTTP || endpoint == "" {
		return contractx.ErrorOutcome(req.RequestID, worker.Name, contractx.KindConfigError, "Agent endpoint not configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return contractx.ErrorOutcome(req.RequestID, worker.Name, contractx.KindParseError, fmt.Sprintf("encode handshake: %v", err))
	}

	callCtx, cancel := context.WithTimeout(ctx, worker.EffectiveTimeout())
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return contractx.ErrorOutcome(req.RequestID, worker.Name, contractx.KindConfigError, fmt.Sprintf("build request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return contractx.ErrorOutcome(req.RequestID, worker.Name, contractx.KindNetworkError, networkMessage(err, worker))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return contractx.ErrorOutcome(req.RequestID, worker.Name, contractx.KindNetworkError, fmt.Sprintf("read response: %v", err))
	}
	if resp.StatusCode != http.StatusOK {
		return contractx.ErrorOutcome(req.RequestID, worker.Name, contractx.KindHTTPError,
			fmt.Sprintf("HTTP %d calling %s", resp.StatusCode, worker.Name))
	}

	var out contractx.CallOutcome
	if err := json.Unmarshal(raw, &out); err != nil {
		return contractx.ErrorOutcome(req.RequestID, worker.Name, contractx.KindParseError, fmt.Sprintf("decode response: %v", err))
	}
	if out.RequestID == "" {
		out.RequestID = req.RequestID
	}
	if out.AgentName == "" {
		out.AgentName = worker.Name
	}
	return out.Normalize()
}

func networkMessage(err error, worker contractx.WorkerDescriptor) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("timeout after %s calling %s", worker.EffectiveTimeout(), worker.Name)
	}
	return fmt.Sprintf("request to %s failed: %v", worker.Name, err)
}
