// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"context"
	"encoding/json"
	"net/url"
)

// Movie represents a recording in the movie list. Older images send the
// long description as extended_description. Length is free text like "90 min".
type Movie struct {
	ServiceRef  string               `json:"serviceref"`
	ServiceName string               `json:"servicename"`
	Title       string               `json:"eventname"`
	Description string               `json:"description"`
	Extended    string               `json:"descriptionExtended"`
	LegacyExt   string               `json:"extended_description"`
	Length      string               `json:"length"`
	Filesize    StringOrNumberString `json:"filesize"`
	Filename    string               `json:"filename"`
	Begin       IntOrStringInt64     `json:"recordingtime"`
}

// ExtendedDescription returns the full plot summary.
func (m Movie) ExtendedDescription() string {
	if m.Extended != "" {
		return m.Extended
	}
	return m.LegacyExt
}

// MovieList represents the response from /api/movielist.
type MovieList struct {
	Movies    []Movie `json:"movies"`
	Directory string  `json:"directory"`
	Result    bool    `json:"result"`
}

// GetRecordings retrieves the recordings in dirname, or the default
// directory when dirname is empty.
func (c *Client) GetRecordings(ctx context.Context, dirname string) (*MovieList, error) {
	params := url.Values{}
	if dirname != "" {
		params.Set("dirname", dirname)
	}
	body, err := c.get(ctx, "/api/movielist", "movielist", params)
	if err != nil {
		return nil, err
	}

	var list MovieList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, decodeError("movielist", err)
	}
	if !list.Result {
		// Empty directories report result=false.
		c.loggerFor(ctx).Warn().Str("dirname", dirname).Msg("movielist result=false")
	}
	return &list, nil
}
