package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// Ping checks that the endpoint is reachable.
func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	body, err := c.Get(ctx, "/ping")
	if err != nil {
		return nil, err
	}

	var result PingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ping response: %w", err)
	}

	return &result, nil
}

// Execute hands the code of an executable block to the endpoint. What the
// endpoint does with it is up to the endpoint.
func (c *Client) Execute(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error) {
	if req == nil || req.Code == "" {
		return nil, fmt.Errorf("code is required")
	}

	body, err := c.Post(ctx, "/execute", req)
	if err != nil {
		return nil, err
	}

	var result ExecuteResponse
	if len(body) == 0 {
		return &result, nil
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse execute response: %w", err)
	}

	return &result, nil
}
