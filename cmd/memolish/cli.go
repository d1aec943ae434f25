package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/memolish/memolish/internal/config"
	"github.com/memolish/memolish/internal/errors"
	"github.com/memolish/memolish/internal/memo"
	"github.com/memolish/memolish/internal/store"
	"github.com/memolish/memolish/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(st *store.Store, cfg *config.Config, baseDir string) *cli.App {
	app := &cli.App{
		Name:    "memolish",
		Usage:   "Turn daily memos into English practice",
		Version: Version,
		Commands: []*cli.Command{
			listCmd(st),
			createCmd(st),
			editCmd(st),
			deleteCmd(st),
			statusCmd(st),
			parseURLCmd(st),
			transformCmd(st),
			creditsCmd(st),
			audioCmd(st),
			downloadCmd(st, cfg),
			boardCmd(st, cfg),
			loginCmd(cfg, baseDir),
			logoutCmd(cfg, baseDir),
			whoamiCmd(cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// listCmd creates the list command.
func listCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List memos, optionally filtered by status",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Value: "all", Usage: "Status filter: all|not_started|in_progress|completed|keep_reviewing"},
		},
		Action: func(c *cli.Context) error {
			filter := c.String("filter")
			if !memo.ValidFilter(filter) {
				return outputError(errors.NewInvalidRequest("filter must be 'all' or a valid status"))
			}

			st.FetchMemos(c.Context)
			snap := st.Snapshot()
			if snap.Err != "" {
				return outputError(errors.NewBackend(502, "", snap.Err))
			}

			items := store.FilteredMemos(snap.Memos, filter)
			return outputJSON(map[string]any{
				"items":  items,
				"filter": filter,
				"total":  len(snap.Memos),
			})
		},
	}
}

// createCmd creates the create command.
func createCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a new memo",
		ArgsUsage: "<content>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "Source URL to attach"},
		},
		Action: func(c *cli.Context) error {
			content := strings.Join(c.Args().Slice(), " ")
			if content == "" {
				return outputError(errors.NewInvalidRequest("content is required"))
			}

			var sourceURL *string
			if u := c.String("url"); u != "" {
				sourceURL = &u
			}

			created, err := st.CreateMemo(c.Context, content, sourceURL)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(created)
		},
	}
}

// editCmd creates the edit command.
func editCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Replace a memo's content",
		ArgsUsage: "<id> <content>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "New source URL"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewInvalidRequest("usage: memolish edit <id> <content>"))
			}

			id, err := parseID(c.Args().First())
			if err != nil {
				return outputError(err)
			}
			content := strings.Join(c.Args().Slice()[1:], " ")

			var sourceURL *string
			if u := c.String("url"); u != "" {
				sourceURL = &u
			}

			updated, err := st.UpdateMemo(c.Context, id, content, sourceURL)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(updated)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a memo",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := parseID(c.Args().First())
			if err != nil {
				return outputError(err)
			}

			if err := st.DeleteMemo(c.Context, id); err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{"deleted": true, "id": id})
		},
	}
}

// statusCmd creates the status command.
func statusCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Change a memo's lifecycle status",
		ArgsUsage: "<id> <status>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewInvalidRequest("usage: memolish status <id> <status>"))
			}

			id, err := parseID(c.Args().First())
			if err != nil {
				return outputError(err)
			}

			status, err := memo.ParseStatus(c.Args().Get(1))
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			updated, err := st.UpdateStatus(c.Context, id, status)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(updated)
		},
	}
}

// parseURLCmd creates the parse-url command.
func parseURLCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "parse-url",
		Usage:     "Resolve URL metadata and attach it to a memo",
		ArgsUsage: "<id> <url>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewInvalidRequest("usage: memolish parse-url <id> <url>"))
			}

			id, err := parseID(c.Args().First())
			if err != nil {
				return outputError(err)
			}

			meta, err := st.ParseURL(c.Context, id, c.Args().Get(1))
			if err != nil {
				return outputError(err)
			}

			return outputJSON(meta)
		},
	}
}

// transformCmd creates the transform command.
func transformCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "transform",
		Usage:     "Transform a memo into a bilingual summary and learning dialogue",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "script", Usage: "Print the dialogue as a plain script instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			id, err := parseID(c.Args().First())
			if err != nil {
				return outputError(err)
			}

			result, err := st.TransformMemo(c.Context, id)
			if err != nil {
				return outputError(err)
			}

			if c.Bool("script") {
				fmt.Println(result.Dialogue.Script())
				return nil
			}

			return outputJSON(result)
		},
	}
}

// creditsCmd creates the credits command.
func creditsCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "credits",
		Usage: "Show remaining daily AI transform credits",
		Action: func(c *cli.Context) error {
			st.FetchCredits(c.Context)
			snap := st.Snapshot()
			if snap.Credits == nil {
				return outputError(errors.NewBackend(502, "", "credits unavailable"))
			}
			return outputJSON(snap.Credits)
		},
	}
}

// audioCmd creates the audio command.
func audioCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "audio",
		Usage:     "Generate dialogue audio for a transformed memo",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := parseID(c.Args().First())
			if err != nil {
				return outputError(err)
			}

			ref, err := st.GenerateAudio(c.Context, id)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(ref)
		},
	}
}

// downloadCmd creates the download command.
func downloadCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "Download a memo's dialogue audio as an MP3 file",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Destination directory (default: configured download dir)"},
		},
		Action: func(c *cli.Context) error {
			id, err := parseID(c.Args().First())
			if err != nil {
				return outputError(err)
			}

			dir := c.String("dir")
			if dir == "" {
				dir = cfg.DownloadDir
			}

			path, err := st.DownloadAudio(c.Context, id, dir)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{"path": path})
		},
	}
}

// boardCmd creates the board command (local web UI).
func boardCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "Serve the memo board web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 7353, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(st, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// loginCmd creates the login command.
func loginCmd(cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Store a backend session id",
		ArgsUsage: "<session-id>",
		Action: func(c *cli.Context) error {
			sessionID := c.Args().First()
			if sessionID == "" {
				return outputError(errors.NewInvalidRequest("session id is required"))
			}

			cfg.SessionID = sessionID
			if err := config.Save(baseDir, cfg); err != nil {
				return outputError(errors.NewInternal(err))
			}

			return outputJSON(map[string]any{"logged_in": true})
		},
	}
}

// logoutCmd creates the logout command.
func logoutCmd(cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the stored session id",
		Action: func(c *cli.Context) error {
			cfg.SessionID = ""
			if err := config.Save(baseDir, cfg); err != nil {
				return outputError(errors.NewInternal(err))
			}

			return outputJSON(map[string]any{"logged_in": false})
		},
	}
}

// whoamiCmd creates the whoami command.
func whoamiCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the configured backend and session",
		Action: func(c *cli.Context) error {
			return outputJSON(map[string]any{
				"base_url":   cfg.BaseURL,
				"session_id": cfg.SessionID,
				"logged_in":  cfg.SessionID != "",
			})
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if mErr, ok := err.(*errors.MemolishError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", mErr.Code, mErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseID parses a positional memo id argument.
func parseID(s string) (int, error) {
	if s == "" {
		return 0, errors.NewInvalidRequest("memo id is required")
	}
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequest("memo id must be a positive integer")
	}
	return id, nil
}
