// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
)

// EPGEvent is one programme entry as returned by /api/epgservice and /api/epgsearch.
type EPGEvent struct {
	ID          IntOrStringInt64 `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"shortdesc"`
	LongDesc    string           `json:"longdesc"`
	Begin       IntOrStringInt64 `json:"begin_timestamp"`
	Duration    IntOrStringInt64 `json:"duration_sec"`
	SRef        string           `json:"sref"`
	ServiceName string           `json:"sname"`
}

// EPGResponse represents the events envelope.
type EPGResponse struct {
	Events []EPGEvent `json:"events"`
	Result bool       `json:"result"`
}

// GetEPG returns the programme guide of one service.
func (c *Client) GetEPG(ctx context.Context, sRef string) ([]EPGEvent, error) {
	params := url.Values{}
	params.Set("sRef", sRef)
	return c.events(ctx, "/api/epgservice", "epgservice", params)
}

// SearchEPG searches all services for events whose title contains query.
func (c *Client) SearchEPG(ctx context.Context, query string) ([]EPGEvent, error) {
	params := url.Values{}
	params.Set("search", strings.TrimSpace(query))
	return c.events(ctx, "/api/epgsearch", "epgsearch", params)
}

func (c *Client) events(ctx context.Context, path, operation string, params url.Values) ([]EPGEvent, error) {
	body, err := c.get(ctx, path, operation, params)
	if err != nil {
		return nil, err
	}
	var resp EPGResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, decodeError(operation, err)
	}
	return resp.Events, nil
}
