// submodule cmd contains command definitions
package main

import (
	"strings"
	"time"

	"github.com/desertthunder/spotctl/internal/control"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func remoteFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:    "url",
			Usage:   "Base URL of a running relay (defaults to remote.url)",
			Sources: cli.EnvVars("SPOTCTL_REMOTE_URL"),
		},
		&cli.StringFlag{
			Name:    "user",
			Aliases: []string{"u"},
			Usage:   "User identifier (defaults to remote.user_id)",
			Sources: cli.EnvVars("SPOTCTL_USER_ID"),
		},
	}
}

func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "User identifier (Telegram chat id)",
		Required: true,
	}
}

// healthCommand checks a running relay
func healthCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check that a running relay is up",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "url",
				Usage:   "Base URL of a running relay (defaults to remote.url)",
				Sources: cli.EnvVars("SPOTCTL_REMOTE_URL"),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the raw health document",
			},
		},
		Action: r.Health,
	}
}

// serveCommand runs the relay
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the webhook, OAuth callback and control API server",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "set-webhook",
				Usage: "Register <base_url>/<token> with Telegram before serving",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles database and config initialization
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Run SQLite token store migrations",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the latest migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles user authorization
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Spotify authorization helpers",
		Commands: []*cli.Command{
			{
				Name:  "url",
				Usage: "Print the authorization URL for a user",
				Flags: []cli.Flag{
					configFlag(),
					userFlag(),
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the URL in the default browser",
					},
				},
				Action: r.AuthURL,
			},
			{
				Name:   "status",
				Usage:  "Show the stored authorization for a user",
				Flags:  []cli.Flag{configFlag(), userFlag()},
				Action: r.AuthStatus,
			},
			{
				Name:   "revoke",
				Usage:  "Delete the stored authorization for a user",
				Flags:  []cli.Flag{configFlag(), userFlag()},
				Action: r.AuthRevoke,
			},
		},
	}
}

// remoteCommand sends a single control action to a running relay
func remoteCommand(r *Runner) *cli.Command {
	flags := append(remoteFlags(),
		&cli.StringFlag{
			Name:  "query",
			Usage: "Search query (search)",
		},
		&cli.StringFlag{
			Name:  "track",
			Usage: "Track ID (like)",
		},
		&cli.BoolFlag{
			Name:  "unlike",
			Usage: "Remove the track from Liked Songs instead (like)",
		},
		&cli.StringFlag{
			Name:  "playlist",
			Usage: "Playlist ID or URI (playlist)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json, csv, markdown",
			Value:   "text",
		},
	)

	return &cli.Command{
		Name:      "remote",
		Usage:     "Send a control action to a running relay",
		ArgsUsage: "<" + strings.Join(actionNames(), "|") + ">",
		Flags:     flags,
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "action",
			},
		},
		Action: r.Remote,
	}
}

// tuiCommand launches the terminal remote
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Interactive terminal remote",
		Flags: append(remoteFlags(),
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Status poll interval",
				Value: 5 * time.Second,
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI is running",
				Value: "./tmp/spotctl-tui.log",
			},
		),
		Action: r.TUI,
	}
}

func actionNames() []string {
	names := make([]string, len(control.Actions))
	for i, a := range control.Actions {
		names[i] = string(a)
	}
	return names
}
