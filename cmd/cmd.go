// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/nextmusic/internal/formatter"
	"github.com/urfave/cli/v3"
)

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

// setupCommand prepares the local configuration and database
func setupCommand(r *Runner) *cli.Command {
	configFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		}
	}

	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Delete the stored playlists and history",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml from the built-in template",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// searchCommand looks up tracks in the catalog
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "search",
		Aliases: []string{"s"},
		Usage:   "Search the catalog for tracks",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results to show (0 shows all)",
			},
		}, outputFlags()...),
		Action: r.Search,
	}
}

// trendingCommand lists the most popular music videos
func trendingCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "trending",
		Usage: "List trending music for a region",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "region",
				Usage: "ISO 3166-1 alpha-2 region code (defaults to the configured region)",
			},
		}, outputFlags()...),
		Action: r.Trending,
	}
}

// generateCommand asks the generator for a playlist
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Generate a playlist from a description",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "prompt",
			},
		},
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Save the generated playlist to the library",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Library name for the saved playlist (defaults to the generated name)",
			},
		}, outputFlags()...),
		Action: r.Generate,
	}
}

// playlistsCommand manages the local library
func playlistsCommand(r *Runner) *cli.Command {
	nameArg := func() []cli.Argument {
		return []cli.Argument{&cli.StringArg{Name: "name"}}
	}

	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Manage library playlists",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List playlists",
				Flags:  outputFlags(),
				Action: r.PlaylistsList,
			},
			{
				Name:      "show",
				Usage:     "Show the tracks of a playlist",
				Arguments: nameArg(),
				Flags:     outputFlags(),
				Action:    r.PlaylistsShow,
			},
			{
				Name:      "create",
				Usage:     "Create an empty playlist",
				Arguments: nameArg(),
				Action:    r.PlaylistsCreate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a playlist",
				Arguments: nameArg(),
				Action:    r.PlaylistsDelete,
			},
			{
				Name:      "add",
				Usage:     "Add a track to a playlist, by search query or by video id",
				Arguments: nameArg(),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Add the first search result for this query",
					},
					&cli.StringFlag{
						Name:  "video-id",
						Usage: "Video id of the track to add",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Track title (with --video-id)",
					},
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Track artist (with --video-id)",
					},
				},
				Action: r.PlaylistsAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a track from a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlaylistsRemove,
			},
			{
				Name:      "export",
				Usage:     "Export playlists to files (all playlists when no names are given)",
				ArgsUsage: "[name...]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   formatter.FormatJSON,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers",
						Value: 4,
					},
				}, outputFlags()...),
				Action: r.PlaylistsExport,
			},
		},
	}
}

// historyCommand shows or clears the recently played list
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recently played tracks",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "clear",
				Usage: "Clear the history",
			},
		}, outputFlags()...),
		Action: r.History,
	}
}

// playCommand opens the player
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Launch the interactive player",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Start playing this library playlist",
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Start playing the results of this search",
			},
			&cli.BoolFlag{
				Name:  "shuffle",
				Usage: "Enable shuffle",
			},
			&cli.StringFlag{
				Name:  "repeat",
				Usage: "Repeat mode: off, playlist, one",
				Value: "off",
			},
		},
		Action: r.Play,
	}
}
