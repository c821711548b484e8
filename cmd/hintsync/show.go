package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap/zapcore"

	"github.com/hintsync/hintsync/engine"
	"github.com/hintsync/hintsync/termhost"
)

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Fetch inlay hints once and print the annotated files",
		ArgsUsage: "<files...>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to .hintsync.yaml (overrides discovery)",
			},
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "language server command (overrides config)",
				Sources: cli.EnvVars("HINTSYNC_SERVER"),
			},
			&cli.StringSliceFlag{
				Name:  "server-arg",
				Usage: "argument passed to the language server (repeatable)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "verbose output",
			},
		},
		Action: runShow,
	}
}

func runShow(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		return ErrNoFiles
	}

	level := zapcore.InfoLevel
	if cmd.Bool("verbose") {
		level = zapcore.DebugLevel
	}

	logger, err := buildLogger(level)
	if err != nil {
		return err
	}

	defer func() { _ = logger.Sync() }()

	cfg, err := resolveConfig(cmd, filepath.Dir(files[0]))
	if err != nil {
		return err
	}

	sess, err := startSession(ctx, cfg, logger)
	if err != nil {
		return err
	}

	defer sess.close(ctx)

	host := termhost.NewPlain(os.Stdout)
	eng := engine.New(sess.client, host, logger)

	_, err = openFiles(ctx, sess, host, cfg, files)
	if err != nil {
		return err
	}

	eng.SetEnabled(ctx, cfg.Hints)
	eng.Wait()

	host.Print()

	eng.Clear()

	return nil
}
