// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags(prettyDefault bool) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: prettyDefault,
		},
	}
}

func pageFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "page",
		Aliases: []string{"p"},
		Usage:   "Result page (1-based)",
		Value:   1,
	}
}

// setupCommand handles setup operations for the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml template at --config",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "seed",
						Usage: "Insert the demo accounts",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles the signed-in identity
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the signed-in account",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and remember the identity",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Usage:    "Account password",
						Sources:  cli.EnvVars("MARQUEE_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account and sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Display name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Usage:    "Account password (at least 6 characters)",
						Sources:  cli.EnvVars("MARQUEE_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Forget the signed-in identity",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the signed-in identity",
				Flags:  jsonFlags(true),
				Action: r.AuthStatus,
			},
		},
	}
}

// moviesCommand handles catalog reads
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse the movie catalog",
		Commands: []*cli.Command{
			{
				Name:   "home",
				Usage:  "Show every category row of the home feed",
				Flags:  append(jsonFlags(true), pageFlag()),
				Action: r.MoviesHome,
			},
			{
				Name:  "list",
				Usage: "List a category: trending, popular, topRated or upcoming",
				Flags: append(jsonFlags(true), pageFlag(),
					&cli.StringFlag{
						Name:    "category",
						Aliases: []string{"c"},
						Usage:   "Category to list",
						Value:   "popular",
					},
				),
				Action: r.MoviesList,
			},
			{
				Name:  "show",
				Usage: "Show a movie with credits, trailer and recommendations",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append(jsonFlags(true),
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the movie page in a browser",
					},
				),
				Action: r.MoviesShow,
			},
			{
				Name:  "search",
				Usage: "Search movies by title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags:  append(jsonFlags(true), pageFlag()),
				Action: r.MoviesSearch,
			},
			{
				Name:   "genres",
				Usage:  "List movie genres",
				Flags:  jsonFlags(true),
				Action: r.MoviesGenres,
			},
		},
	}
}

// watchlistCommand handles watchlist reads and exports
func watchlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "watchlist",
		Aliases: []string{"wl"},
		Usage:   "Browse and export watchlists",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List the signed-in user's watchlists",
				Flags:  jsonFlags(true),
				Action: r.WatchlistList,
			},
			{
				Name:   "public",
				Usage:  "List public watchlists",
				Flags:  jsonFlags(true),
				Action: r.WatchlistPublic,
			},
			{
				Name:  "show",
				Usage: "Print a watchlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: txt, json, csv or markdown",
						Value:   "txt",
					},
				},
				Action: r.WatchlistShow,
			},
			{
				Name:  "export",
				Usage: "Export a watchlist to files",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, txt or markdown",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (file for json/txt, base name for csv, directory for markdown)",
					},
				},
				Action: r.WatchlistExport,
			},
			{
				Name:  "export-all",
				Usage: "Export every watchlist of the signed-in user",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, txt or markdown",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output-dir",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: watchlists_export_{timestamp})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers (max 10)",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "covers",
						Usage: "Download the first poster as cover.jpg (markdown only)",
					},
				},
				Action: r.WatchlistExportAll,
			},
			{
				Name:   "stats",
				Usage:  "Show watchlist totals (admin only)",
				Flags:  jsonFlags(true),
				Action: r.WatchlistStats,
			},
		},
	}
}

// serveCommand starts the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default: server.port)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive movie browser",
		Action:  r.TUI,
	}
}
