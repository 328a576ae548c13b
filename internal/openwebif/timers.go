// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"context"
	"encoding/json"
	"fmt"
)

// Timer is one entry of /api/timerlist.
type Timer struct {
	ServiceRef  string           `json:"serviceref"`
	ServiceName string           `json:"servicename"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Extended    string           `json:"descriptionextended"`
	Begin       IntOrStringInt64 `json:"begin"`
	End         IntOrStringInt64 `json:"end"`
	EIT         IntOrStringInt64 `json:"eit"`
	State       IntOrStringInt64 `json:"state"`
	Disabled    IntOrStringInt64 `json:"disabled"`
}

// TimerList represents the response from /api/timerlist.
type TimerList struct {
	Timers  []Timer `json:"timers"`
	Result  bool    `json:"result"`
	Message string  `json:"message"`
}

// GetTimers returns all timers known to the receiver.
func (c *Client) GetTimers(ctx context.Context) ([]Timer, error) {
	body, err := c.get(ctx, "/api/timerlist", "timerlist", nil)
	if err != nil {
		return nil, err
	}
	var list TimerList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, decodeError("timerlist", err)
	}
	if !list.Result {
		return nil, &OWIError{
			Sentinel:  ErrUpstreamBadResponse,
			Operation: "timerlist",
			Body:      list.Message,
			Err:       fmt.Errorf("result=false"),
		}
	}
	return list.Timers, nil
}
