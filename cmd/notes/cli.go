package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kayratasci4/Notes/internal/ai"
	"github.com/kayratasci4/Notes/internal/config"
	"github.com/kayratasci4/Notes/internal/errors"
	"github.com/kayratasci4/Notes/internal/export"
	"github.com/kayratasci4/Notes/internal/note"
	"github.com/kayratasci4/Notes/internal/repo"
	"github.com/kayratasci4/Notes/internal/session"
)

// deps bundles what the CLI commands need. Nil for help/version-only runs.
type deps struct {
	baseDir string
	cfg     *config.Config
	repo    *repo.Repository
	client  *ai.Client
}

// listItem is the list/search output row.
type listItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt int64  `json:"updatedAt"`
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(d *deps) *cli.App {
	app := &cli.App{
		Name:    "notes",
		Usage:   "Local AI-assisted notes",
		Version: Version,
		Commands: []*cli.Command{
			createCmd(d),
			listCmd(d),
			showCmd(d),
			editCmd(d),
			deleteCmd(d),
			aiCmd(d),
			exportCmd(d),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// createCmd creates the create command.
func createCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a new note",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Initial title"},
			&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "Initial content"},
		},
		Action: func(c *cli.Context) error {
			n, err := d.repo.Create(c.Context)
			if err != nil {
				return outputError(err)
			}

			if c.IsSet("title") || c.IsSet("content") {
				n.Title = c.String("title")
				n.Content = c.String("content")
				n.UpdatedAt = note.NowMillis()
				d.repo.Update(c.Context, n)
			}

			return outputJSON(n)
		},
	}
}

// listCmd creates the list command, which doubles as search via --query.
func listCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List notes sorted by last update (optionally filtered)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Case-insensitive substring filter over title and content"},
		},
		Action: func(c *cli.Context) error {
			filtered := note.Filter(d.repo.List(), c.String("query"))

			items := make([]listItem, len(filtered))
			for i, n := range filtered {
				items[i] = listItem{
					ID:        n.ID,
					Title:     n.DisplayTitle(),
					UpdatedAt: n.UpdatedAt,
				}
			}
			return outputJSON(items)
		},
	}
}

// showCmd creates the show command.
func showCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a note by id",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}
			n, ok := d.repo.Get(c.Args().First())
			if !ok {
				return outputError(errors.NewNotFound(c.Args().First()))
			}
			return outputJSON(n)
		},
	}
}

// editCmd creates the edit command. Edits go through a real editor
// session so they take the same debounced commit path as interactive
// keystrokes; the session is flushed before exit.
func editCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Set a note's title and/or content",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
			&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "New content"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}
			if !c.IsSet("title") && !c.IsSet("content") {
				return outputError(errors.NewInvalidRequest("at least one of --title or --content must be provided"))
			}

			coord := session.NewCoordinator(d.repo, d.client, d.cfg.Debounce())
			if _, err := coord.Select(c.Args().First()); err != nil {
				return outputError(err)
			}

			sess := coord.Session()
			if c.IsSet("title") {
				sess.SetTitle(c.String("title"))
			}
			if c.IsSet("content") {
				sess.SetContent(c.String("content"))
			}
			sess.Flush(c.Context)

			n, _ := coord.Active()
			return outputJSON(n)
		},
	}
}

// deleteCmd creates the delete command. Deletion is irreversible, so a
// TTY run prompts for confirmation unless --yes is passed.
func deleteCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a note",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}
			id := c.Args().First()

			if !c.Bool("yes") && isTerminal() {
				if !confirm(fmt.Sprintf("Bu notu silmek istediğinize emin misiniz? (%s) [y/N]: ", id)) {
					return outputJSON(map[string]any{"deleted": false, "id": id})
				}
			}

			coord := session.NewCoordinator(d.repo, d.client, d.cfg.Debounce())
			deleted := coord.Delete(c.Context, id)
			return outputJSON(map[string]any{"deleted": deleted, "id": id})
		},
	}
}

// aiCmd creates the ai command.
func aiCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "ai",
		Usage:     "Apply an AI action to a note's content",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name: "action", Aliases: []string{"a"}, Required: true,
				Usage: "Action kind: " + strings.Join(ai.Actions(), ", "),
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}

			action, err := ai.ParseAction(c.String("action"))
			if err != nil {
				return outputError(err)
			}

			coord := session.NewCoordinator(d.repo, d.client, d.cfg.Debounce())
			if _, err := coord.Select(c.Args().First()); err != nil {
				return outputError(err)
			}

			sess := coord.Session()
			if err := sess.RequestAIAction(c.Context, action); err != nil {
				return outputError(err)
			}
			sess.Flush(c.Context)

			n, _ := coord.Active()
			return outputJSON(n)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all notes to a file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: <base>/exports/notes-<timestamp>.<ext>)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "jsonl", Usage: "Export format: jsonl|html"},
		},
		Action: func(c *cli.Context) error {
			output, err := export.Export(d.repo.List(), d.baseDir, export.Input{
				Path:   c.String("path"),
				Format: export.Format(c.String("format")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
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
	if nErr, ok := err.(*errors.NoteError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", nErr.Code, nErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// confirm reads a yes/no answer from stdin.
func confirm(prompt string) bool {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes" || answer == "e" || answer == "evet"
}
