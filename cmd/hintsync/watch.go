package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v3"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hintsync/hintsync"
	"github.com/hintsync/hintsync/engine"
	"github.com/hintsync/hintsync/termhost"
)

// debounceWindow coalesces bursts of filesystem events from editors that
// write files in several steps.
const debounceWindow = 50 * time.Millisecond

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Keep inlay hints in sync while files change",
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
				Name:  "tui",
				Usage: "interactive view with live category toggles",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "verbose output",
			},
		},
		Action: runWatch,
	}
}

// watchHost is what the watch loop needs from either host implementation.
type watchHost interface {
	hintsync.Host
	Open(uri protocol.DocumentURI, text string)
	Update(uri protocol.DocumentURI, text string)
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		return ErrNoFiles
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	useTUI := cmd.Bool("tui")

	level := zapcore.InfoLevel

	switch {
	case cmd.Bool("verbose"):
		level = zapcore.DebugLevel
	case useTUI:
		// Keep stderr quiet under the alternate screen.
		level = zapcore.WarnLevel
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

	defer sess.close(context.WithoutCancel(ctx))

	var (
		host watchHost
		tui  *termhost.TUI
		eng  *engine.Engine
		done chan struct{}
	)

	if useTUI {
		// The toggle callbacks close over eng, which exists before the
		// program starts accepting input.
		tui = termhost.NewTUI(os.Stdout, cfg.Hints,
			func(h hintsync.Hints) { eng.SetEnabled(ctx, h) },
			func() { eng.Refresh(ctx) },
		)
		host = tui
	} else {
		host = termhost.NewPlain(os.Stdout)
	}

	eng = engine.New(sess.client, host, logger)

	if tui != nil {
		err = tui.Start()
		if err != nil {
			return err
		}

		done = make(chan struct{})
		go func() {
			tui.Wait()
			close(done)
		}()
	}

	uris, err := openFiles(ctx, sess, host, cfg, files)
	if err != nil {
		return err
	}

	eng.SetEnabled(ctx, cfg.Hints)
	eng.Wait()

	if plain, ok := host.(*termhost.Plain); ok {
		plain.Print()
	}

	err = watchLoop(ctx, watchLoopConfig{
		cmd:    cmd,
		sess:   sess,
		host:   host,
		engine: eng,
		uris:   uris,
		done:   done,
		logger: logger,
	})

	eng.Clear()
	eng.Wait()

	return err
}

type watchLoopConfig struct {
	cmd    *cli.Command
	sess   *session
	host   watchHost
	engine *engine.Engine
	uris   map[string]protocol.DocumentURI
	done   chan struct{}
	logger *zap.Logger
}

// watchLoop translates filesystem events into engine triggers: document
// writes become didChange + refresh, config writes become SetEnabled.
func watchLoop(ctx context.Context, wc watchLoopConfig) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	defer func() { _ = watcher.Close() }()

	// Watch directories, not files: editors replace files on save, which
	// drops file-level watches.
	dirs := make(map[string]struct{})
	for path := range wc.uris {
		dirs[filepath.Dir(path)] = struct{}{}
	}

	configPath := ""
	if found, ferr := configFile(wc.cmd, wc.uris); ferr == nil {
		configPath = found
		dirs[filepath.Dir(found)] = struct{}{}
	}

	for dir := range dirs {
		err = watcher.Add(dir)
		if err != nil {
			return err
		}
	}

	pending := make(map[string]struct{})

	var flush <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-wc.done:
			return nil

		case werr := <-watcher.Errors:
			wc.logger.Warn("Watcher error", zap.Error(werr))

		case event := <-watcher.Events:
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			_, tracked := wc.uris[event.Name]
			if !tracked && event.Name != configPath {
				continue
			}

			pending[event.Name] = struct{}{}
			if flush == nil {
				flush = time.After(debounceWindow)
			}

		case <-flush:
			flush = nil

			for path := range pending {
				delete(pending, path)
				wc.handlePath(ctx, path, configPath)
			}

			wc.engine.Wait()

			if plain, ok := wc.host.(*termhost.Plain); ok {
				plain.Print()
			}
		}
	}
}

func (wc watchLoopConfig) handlePath(ctx context.Context, path, configPath string) {
	if path == configPath {
		cfg, err := hintsync.LoadConfigFile(path)
		if err != nil {
			wc.logger.Warn("Config reload failed", zap.Error(err))

			return
		}

		// SetEnabled is idempotent: touching the file without changing
		// the hints block triggers nothing.
		wc.engine.SetEnabled(ctx, cfg.Hints)

		return
	}

	uri := wc.uris[path]

	data, err := os.ReadFile(path) //nolint:gosec // G304: path was selected by the user at startup
	if err != nil {
		wc.logger.Warn("Read failed", zap.String("path", path), zap.Error(err))

		return
	}

	text := string(data)
	wc.host.Update(uri, text)

	err = wc.sess.client.DidChange(ctx, uri, text)
	if err != nil {
		wc.logger.Warn("didChange failed", zap.String("path", path), zap.Error(err))

		return
	}

	wc.engine.DidEdit(ctx, 1)
}

// configFile resolves the path of the active config file, if any.
func configFile(cmd *cli.Command, uris map[string]protocol.DocumentURI) (string, error) {
	if path := cmd.String("config"); path != "" {
		return filepath.Abs(path)
	}

	for path := range uris {
		return hintsync.FindConfig(filepath.Dir(path))
	}

	return "", hintsync.ErrConfigNotFound
}
