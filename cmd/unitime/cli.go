package main

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/unitime/internal/config"
	"github.com/hpungsan/unitime/internal/errors"
	"github.com/hpungsan/unitime/internal/ops"
	"github.com/hpungsan/unitime/internal/store"
	"github.com/hpungsan/unitime/internal/web"
)

// stdout is where command results go; tests swap it.
var stdout io.Writer = os.Stdout

// deps bundles what the commands operate on.
type deps struct {
	db  *sql.DB
	st  *store.Store
	cfg *config.Config
	log *zap.Logger
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, st *store.Store, cfg *config.Config, log *zap.Logger) *cli.App {
	d := &deps{db: db, st: st, cfg: cfg, log: log}
	app := &cli.App{
		Name:    "unitime",
		Usage:   "Import university timetables and summarize them",
		Version: Version,
		Commands: []*cli.Command{
			importCmd(d),
			listCmd(d),
			weeksCmd(d),
			statsCmd(d),
			legendCmd(d),
			removeCmd(d),
			clearCmd(d),
			historyCmd(d),
			exportCmd(d),
			reportCmd(d),
			serveCmd(d),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func importCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import timetable HTML files as one batch",
		ArgsUsage: "<file.html>...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("at least one file is required"))
			}

			output, err := ops.Import(c.Context, d.st, d.db, d.cfg, d.log, ops.ImportInput{Paths: c.Args().Slice()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func listCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List lecture sessions in date order",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "course", Aliases: []string{"c"}, Usage: "Exact course name"},
			&cli.StringFlag{Name: "from", Usage: "First date to include (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "to", Usage: "Last date to include (YYYY-MM-DD)"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(d.st, ops.ListInput{
				Course: c.String("course"),
				From:   c.String("from"),
				To:     c.String("to"),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func weeksCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "weeks",
		Usage: "Group sessions into Monday-keyed weeks",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "week", Aliases: []string{"w"}, Usage: "Zero-based index of a single week"},
		},
		Action: func(c *cli.Context) error {
			input := ops.WeeksInput{}
			if c.IsSet("week") {
				week := c.Int("week")
				input.Week = &week
			}

			output, err := ops.Weeks(d.st, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func statsCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show totals, monthly distribution and hours per course",
		Action: func(c *cli.Context) error {
			return outputJSON(ops.Stats(d.st, d.cfg))
		},
	}
}

func legendCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "legend",
		Usage: "Show each course with its color",
		Action: func(c *cli.Context) error {
			return outputJSON(ops.Legend(d.st, d.cfg))
		},
	}
}

func removeCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove every session of a course",
		ArgsUsage: "<course>",
		Action: func(c *cli.Context) error {
			output, err := ops.RemoveCourse(c.Context, d.st, d.log, ops.RemoveCourseInput{Name: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func clearCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Remove all sessions",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "confirm", Usage: "Required to actually clear"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("confirm") {
				return outputError(errors.NewInvalidRequest("clear requires --confirm"))
			}

			output, err := ops.Clear(c.Context, d.st, d.log)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func historyCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recently imported files, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultHistoryLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.History(c.Context, d.db, ops.HistoryInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func exportCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export sessions to json, ics, xlsx, md or html",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.unitime/exports/<course>-<timestamp>.<format>)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format (default: from the path extension, else json)"},
			&cli.StringFlag{Name: "course", Aliases: []string{"c"}, Usage: "Export a single course"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, d.st, d.cfg, ops.ExportInput{
				Path:   c.String("path"),
				Format: ops.ExportFormat(c.String("format")),
				Course: c.String("course"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func reportCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Print the schedule report (markdown or html)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: string(ops.FormatMarkdown), Usage: "md or html"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Report heading"},
			&cli.StringFlag{Name: "course", Aliases: []string{"c"}, Usage: "Report a single course"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Report(d.st, d.cfg, ops.ReportInput{
				Format: ops.ExportFormat(c.String("format")),
				Title:  c.String("title"),
				Course: c.String("course"),
			})
			if err != nil {
				return outputError(err)
			}
			_, err = io.WriteString(stdout, output.Content)
			return err
		},
	}
}

func serveCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the JSON API and report page",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Address to bind (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "Port to listen on (default from config)"},
		},
		Action: func(c *cli.Context) error {
			bind := d.cfg.HTTPBind
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			port := d.cfg.HTTPPort
			if c.IsSet("port") {
				port = c.Int("port")
			}
			if port < 0 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid port: %d", port)))
			}

			srv := web.NewServer(d.db, d.st, d.cfg, d.log, bind, port)
			return web.Run(srv, d.log)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var uErr *errors.UnitimeError
	if stderrors.As(err, &uErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", uErr.Code, uErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
