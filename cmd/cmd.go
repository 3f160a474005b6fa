// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// authCommand handles account and session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the signed-in account",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Create an account and sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Account email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Usage:    "Account password",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name",
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:  "login",
				Usage: "Sign in with an existing account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Account email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Usage:    "Account password",
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and clear the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "refresh",
				Usage:  "Force a session token refresh",
				Action: r.AuthRefresh,
			},
			{
				Name:  "status",
				Usage: "Show the current session",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// feedCommand handles content feed operations
func feedCommand(r *Runner) *cli.Command {
	queryFlags := []cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Page size",
		},
		&cli.StringFlag{
			Name:  "page",
			Usage: "Page token from a previous fetch",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}

	return &cli.Command{
		Name:  "feed",
		Usage: "Fetch video and document feeds",
		Commands: []*cli.Command{
			{
				Name:  "videos",
				Usage: "Search the video feed",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags:  queryFlags,
				Action: r.FeedVideos,
			},
			{
				Name:   "popular",
				Usage:  "List popular videos",
				Flags:  queryFlags,
				Action: r.FeedPopular,
			},
			{
				Name:  "pexels",
				Usage: "Search stock videos",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags:  queryFlags,
				Action: r.FeedPexels,
			},
			{
				Name:  "docs",
				Usage: "Search open-access papers",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags:  queryFlags,
				Action: r.FeedDocs,
			},
			{
				Name:   "files",
				Usage:  "List files from the configured repository",
				Flags:  queryFlags,
				Action: r.FeedFiles,
			},
		},
	}
}

// resolveCommand handles stream resolution
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve playable stream URLs",
		Commands: []*cli.Command{
			{
				Name:  "stream",
				Usage: "Resolve a single video ID or watch URL",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "video"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ResolveStream,
			},
			{
				Name:  "bulk",
				Usage: "Resolve many videos concurrently and write a manifest",
				Arguments: []cli.Argument{
					&cli.StringArgs{Name: "videos", Min: 0, Max: -1},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent workers",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Requests per second",
						Value: 5,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Manifest format (json, csv, markdown, text)",
						Value: "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Manifest base path",
					},
				},
				Action: r.ResolveBulk,
			},
		},
	}
}

// exportCommand handles feed and cache exports
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export a feed or the local cache to a file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "source",
				Usage: "Feed to export (videos, popular, pexels, docs, files, cache)",
				Value: "videos",
			},
			&cli.StringFlag{
				Name:  "query",
				Usage: "Search term for searchable feeds",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Page size",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format (csv, markdown, text, json)",
				Value: "csv",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file base path",
			},
		},
		Action: r.Export,
	}
}

// cacheCommand handles the local item cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage locally cached feed items",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached items",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Filter by kind (video or document)",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Filter by source",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:  "refresh",
				Usage: "Refresh all feeds and cache the results",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "query",
						Usage: "Search term for the refreshed feeds",
					},
				},
				Action: r.CacheRefresh,
			},
			{
				Name:   "clear",
				Usage:  "Delete all cached items",
				Action: r.CacheClear,
			},
		},
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a starter configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive feed browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive feed browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "query",
				Usage: "Initial search term",
			},
		},
		Action: r.TUI,
	}
}
