package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/spotctl/internal/shared"
)

// ControlRequest is the JSON body accepted by every control API endpoint.
//
// Only UserID is required for every action; the remaining fields are action specific.
type ControlRequest struct {
	UserID     string `json:"user_id"`
	Action     string `json:"action,omitempty"`
	TrackID    string `json:"track_id,omitempty"`
	IsLiked    *bool  `json:"is_liked,omitempty"`
	Query      string `json:"query,omitempty"`
	PlaylistID string `json:"playlist_id,omitempty"`
}

// UnmarshalJSON accepts user_id as a string or as an integer, which is how Mini Apps send the Telegram user id.
func (c *ControlRequest) UnmarshalJSON(data []byte) error {
	type plain ControlRequest
	aux := struct {
		UserID json.RawMessage `json:"user_id"`
		*plain
	}{plain: (*plain)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	userID, err := parseUserID(aux.UserID)
	if err != nil {
		return err
	}
	c.UserID = userID
	return nil
}

func parseUserID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("%w: user_id must be a string or an integer", shared.ErrInvalidInput)
	}
	if _, err := n.Int64(); err != nil {
		return "", fmt.Errorf("%w: user_id must be a string or an integer", shared.ErrInvalidInput)
	}
	return n.String(), nil
}

// Envelope is the JSON response of every control API endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}
