package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/randalmurphal/stratgraph/pkg/stratgraph"
	"github.com/randalmurphal/stratgraph/pkg/stratgraph/config"
	"github.com/randalmurphal/stratgraph/pkg/stratgraph/document"
)

// errCheckFailed is returned by check after the problems have been printed.
var errCheckFailed = errors.New("graph has problems")

// app holds the state shared by the commands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// newCommand builds the root command writing to stdout and stderr.
func newCommand(stdout, stderr io.Writer) *cli.Command {
	a := &app{stdout: stdout, stderr: stderr, logger: slog.New(slog.DiscardHandler)}

	fileFlag := &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "Graph document `PATH` (.yaml, .yml or .json)",
		Required: true,
	}

	return &cli.Command{
		Name:      "stratgraph",
		Usage:     "Compile strategy graphs into ganaka SDK programs",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "warn",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format (text, json)",
				Value: "text",
			},
		},
		Before: a.setupLogging,
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Print the program for a graph document",
				Flags: []cli.Flag{
					fileFlag,
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Write the program to `PATH` instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Fail instead of printing a diagnostic comment",
					},
					&cli.StringFlag{
						Name:  "settings",
						Usage: "YAML or JSON `PATH` overriding the strategy settings",
					},
				},
				Action: a.generate,
			},
			{
				Name:   "check",
				Usage:  "Validate a graph document and report every problem",
				Flags:  []cli.Flag{fileFlag},
				Action: a.check,
			},
			{
				Name:   "nodes",
				Usage:  "List the node kinds and their ports",
				Action: a.nodes,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON Schema of graph documents",
				Action: a.schema,
			},
		},
	}
}

func (a *app) setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
		return ctx, fmt.Errorf("invalid --log-level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch format := cmd.String("log-format"); format {
	case "text":
		a.logger = slog.New(slog.NewTextHandler(a.stderr, opts))
	case "json":
		a.logger = slog.New(slog.NewJSONHandler(a.stderr, opts))
	default:
		return ctx, fmt.Errorf("invalid --log-format %q: want text or json", format)
	}
	return ctx, nil
}

// load reads and builds the document named by --file.
func (a *app) load(cmd *cli.Command) (*stratgraph.Graph, error) {
	doc, err := document.Load(cmd.String("file"))
	if err != nil {
		return nil, err
	}
	return doc.Build()
}

func (a *app) generate(ctx context.Context, cmd *cli.Command) error {
	g, err := a.load(cmd)
	if err != nil {
		return err
	}

	if path := cmd.String("settings"); path != "" {
		settings, err := config.FromFile(path)
		if err != nil {
			return err
		}
		if err := document.ApplySettings(g, settings); err != nil {
			return err
		}
	}

	var source string
	prog, err := stratgraph.Compile(ctx, g, stratgraph.WithLogger(a.logger))
	switch {
	case err != nil && cmd.Bool("strict"):
		return err
	case err != nil:
		source = stratgraph.Diagnostic(err) + "\n"
	default:
		source = prog.Source
	}

	if out := cmd.String("out"); out != "" {
		if err := os.WriteFile(out, []byte(source), 0o644); err != nil {
			return fmt.Errorf("write program: %w", err)
		}
		a.logger.Info("program written", slog.String("path", out))
		return nil
	}
	_, err = io.WriteString(a.stdout, source)
	return err
}

func (a *app) check(ctx context.Context, cmd *cli.Command) error {
	doc, err := document.Load(cmd.String("file"))
	if err != nil {
		return err
	}

	var problems []string
	g, err := doc.Build()
	if err != nil {
		problems = append(problems, strings.Split(err.Error(), "\n")...)
	}
	if g == nil {
		return err
	}

	prog, err := stratgraph.Compile(ctx, g, stratgraph.WithLogger(a.logger))
	if err != nil {
		problems = append(problems, stratgraph.Diagnostic(err))
	}

	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintln(a.stdout, p)
		}
		return errCheckFailed
	}

	caps := make([]string, len(prog.Capabilities))
	for i, c := range prog.Capabilities {
		caps[i] = string(c)
	}
	fmt.Fprintf(a.stdout, "ok: %d nodes, %d connections, %d emitted, uses %s\n",
		g.Len(), len(g.Connections()), prog.NodesEmitted, strings.Join(caps, ", "))
	return nil
}

func (a *app) nodes(_ context.Context, _ *cli.Command) error {
	for _, spec := range stratgraph.Catalogue() {
		fmt.Fprintf(a.stdout, "%s (%s)\n  %s: %s\n", spec.Kind, spec.Category, spec.Label, spec.Description)
		for _, p := range spec.Inputs {
			fmt.Fprintf(a.stdout, "  in  %-16s %s\n", p.Key, p.Socket)
		}
		for _, p := range spec.Outputs {
			fmt.Fprintf(a.stdout, "  out %-16s %s\n", p.Key, p.Socket)
		}
	}
	return nil
}

func (a *app) schema(_ context.Context, _ *cli.Command) error {
	data, err := document.Schema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, string(data))
	return err
}
