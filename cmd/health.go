package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Health queries GET /healthz on the relay and fails unless it answers 200 with status ok.
func (r *Runner) Health(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	api := r.remote(config, cmd.String("url"))
	resp, err := api.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	if !resp.IsJSON {
		return fmt.Errorf("%w: unexpected response (status %d): %s", shared.ErrServiceUnavailable, resp.StatusCode, strings.TrimSpace(string(resp.Body)))
	}
	if cmd.Bool("json") {
		if err := r.writeJSON(resp.JSONData, true); err != nil {
			return err
		}
	}

	doc, _ := resp.JSONData.(map[string]any)
	status, _ := doc["status"].(string)
	if resp.StatusCode != http.StatusOK || status != "ok" {
		return fmt.Errorf("%w: relay unhealthy (status %d, %q)", shared.ErrServiceUnavailable, resp.StatusCode, status)
	}

	if !cmd.Bool("json") {
		return r.writePlain("Relay is healthy (request %s)\n", resp.Headers.Get("X-Request-ID"))
	}
	return nil
}
