package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/hintsync/hintsync"
	"github.com/hintsync/hintsync/client"
)

var (
	ErrNoFiles  = errors.New("no files given")
	ErrNoServer = errors.New("no language server configured (use --server or .hintsync.yaml)")
)

// session owns a spawned language server process and the connection to it.
type session struct {
	proc   *exec.Cmd
	conn   jsonrpc2.Conn
	client *client.Client
	logger *zap.Logger
}

// startSession spawns the configured server, connects over stdio, and runs
// the initialize handshake.
func startSession(ctx context.Context, cfg *hintsync.Config, logger *zap.Logger) (*session, error) {
	proc := exec.CommandContext(ctx, cfg.Server.Command, cfg.Server.Args...) //nolint:gosec // G204: the server command comes from the user's own config

	stdin, err := proc.StdinPipe()
	if err != nil {
		return nil, err
	}

	stdout, err := proc.StdoutPipe()
	if err != nil {
		return nil, err
	}

	proc.Stderr = os.Stderr

	err = proc.Start()
	if err != nil {
		return nil, fmt.Errorf("starting %s: %w", cfg.Server.Command, err)
	}

	stream := jsonrpc2.NewStream(&readWriteCloser{stdout, stdin})
	conn := jsonrpc2.NewConn(stream)

	// Server-initiated requests and notifications are not interesting
	// here; the engine drives everything by polling for hints.
	conn.Go(ctx, jsonrpc2.MethodNotFoundHandler)

	c := client.New(conn, logger)

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	err = c.Initialize(ctx, client.PathToURI(cwd))
	if err != nil {
		_ = proc.Process.Kill()

		return nil, err
	}

	return &session{proc: proc, conn: conn, client: c, logger: logger}, nil
}

// close shuts the server down and reaps the process.
func (s *session) close(ctx context.Context) {
	err := s.client.Shutdown(ctx)
	if err != nil {
		s.logger.Warn("Server shutdown failed", zap.Error(err))
	}

	_ = s.conn.Close()
	_ = s.proc.Wait()
}

// readWriteCloser wraps separate reader/writer into io.ReadWriteCloser.
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	if c, ok := rwc.Writer.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

// resolveConfig loads .hintsync.yaml (walking up from dir) and applies flag
// overrides.
func resolveConfig(cmd *cli.Command, dir string) (*hintsync.Config, error) {
	var (
		cfg *hintsync.Config
		err error
	)

	if path := cmd.String("config"); path != "" {
		cfg, err = hintsync.LoadConfigFile(path)
	} else {
		cfg, err = hintsync.LoadConfig(dir)
		if errors.Is(err, hintsync.ErrConfigNotFound) {
			cfg, err = &hintsync.Config{Hints: hintsync.DefaultHints()}, nil
		}
	}

	if err != nil {
		return nil, err
	}

	if server := cmd.String("server"); server != "" {
		cfg.Server.Command = server
		cfg.Server.Args = cmd.StringSlice("server-arg")
	}

	if cfg.Server.Command == "" {
		return nil, ErrNoServer
	}

	return cfg, nil
}

// opener is the part of a host that registers documents.
type opener interface {
	Open(uri protocol.DocumentURI, text string)
}

// openFiles reads each file, shows it to the host, and announces it to the
// server. Returns path -> URI for the watcher.
func openFiles(ctx context.Context, sess *session, host opener, cfg *hintsync.Config, files []string) (map[string]protocol.DocumentURI, error) {
	uris := make(map[string]protocol.DocumentURI, len(files))

	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, err
		}

		data, err := os.ReadFile(abs) //nolint:gosec // G304: file path from user input is expected
		if err != nil {
			return nil, err
		}

		uri := client.PathToURI(abs)
		text := string(data)

		host.Open(uri, text)

		err = sess.client.DidOpen(ctx, uri, languageID(abs, cfg), text)
		if err != nil {
			return nil, err
		}

		uris[abs] = uri
	}

	return uris, nil
}

// languageID picks the identifier sent with didOpen: config wins, then the
// file extension.
func languageID(path string, cfg *hintsync.Config) string {
	if cfg.Server.LanguageID != "" {
		return cfg.Server.LanguageID
	}

	switch filepath.Ext(path) {
	case ".go":
		return "go"
	case ".rs":
		return "rust"
	case ".ts":
		return "typescript"
	case ".py":
		return "python"
	default:
		return "plaintext"
	}
}
