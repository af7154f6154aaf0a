package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotctl/internal/control"
	"github.com/desertthunder/spotctl/internal/formatter"
	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/services"
	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Remote sends one control action to a running relay and prints the result.
func (r *Runner) Remote(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	action, err := control.ParseAction(cmd.StringArg("action"))
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	userID := remoteUser(cmd, config)
	if userID == "" {
		return fmt.Errorf("%w: pass --user or set remote.user_id", shared.ErrMissingUserID)
	}

	req := models.ControlRequest{
		UserID:     userID,
		Query:      cmd.String("query"),
		TrackID:    cmd.String("track"),
		PlaylistID: cmd.String("playlist"),
	}
	if action == control.Like {
		liked := !cmd.Bool("unlike")
		req.IsLiked = &liked
	}

	r.logger.Debug("sending control action", "action", action, "user_id", userID)

	resp, err := r.remote(config, cmd.String("url")).Control(ctx, string(action), req)
	if err != nil {
		if resp != nil && resp.Message != "" {
			return fmt.Errorf("%s: %w", resp.Message, err)
		}
		return err
	}

	return r.render(action, resp, format)
}

// render prints resp for action in format. Actions without structured data print the envelope message.
func (r *Runner) render(action control.Action, resp *services.ControlResponse, format formatter.Format) error {
	var (
		data []byte
		err  error
	)

	switch {
	case action == control.Status && len(resp.Data) > 0:
		var playback models.Playback
		if err := resp.Decode(&playback); err != nil {
			return err
		}
		data, err = formatter.RenderPlayback(&playback, format)

	case action == control.Playlists:
		var playlists []models.Playlist
		if err := resp.Decode(&playlists); err != nil {
			return err
		}
		data, err = formatter.RenderPlaylists(playlists, format)

	case format == formatter.FormatJSON:
		return r.writeJSON(models.Envelope{Success: resp.Success, Message: resp.Message}, true)

	default:
		return r.writePlain("%s\n", resp.Message)
	}

	if err != nil {
		return err
	}
	return formatter.Write(r.output, data)
}

func remoteUser(cmd *cli.Command, config *shared.Config) string {
	if u := cmd.String("user"); u != "" {
		return u
	}
	return config.Remote.UserID
}
