package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/friendskids/friendskids/internal/cli"
	"github.com/friendskids/friendskids/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// main delegates to runMain so deferred calls (closing the log file) run
// before the process exits.
func main() {
	os.Exit(runMain(os.Args[1:]))
}

// runMain returns config.ExitCodeSuccess on success, config.ExitCodeError on failure.
func runMain(args []string) int {
	// Cancel on SIGINT (Ctrl+C) or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := cli.New()
	app.SetupLogging = func(s config.Settings) io.Closer {
		closer := setupLogging(s)
		logStartupInfo(s)
		return closer
	}
	defer app.Close()

	cmd := app.Command()
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeError
	}
	return config.ExitCodeSuccess
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo(s config.Settings) {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyMode, s.Backend.Mode,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs a JSON slog logger writing to stderr and to a rotated
// file in the log directory. Stdout stays free for command output.
func setupLogging(s config.Settings) io.Closer {
	writers := []io.Writer{os.Stderr}
	var closer io.Closer

	if dir, err := s.LogDir(); err == nil {
		if err := os.MkdirAll(dir, config.DirPermUserRWX); err == nil {
			file := &lumberjack.Logger{
				Filename:   filepath.Join(dir, config.LogFileName),
				MaxSize:    s.Log.MaxSizeMB,
				MaxBackups: s.Log.MaxBackups,
				MaxAge:     s.Log.MaxAgeDays,
				Compress:   true,
			}
			writers = append(writers, file)
			closer = file
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrCreateDir, dir, err)
		}
	} else {
		fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, config.LogFileName, err)
	}

	level := slog.LevelInfo
	if s.Log.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: s.Log.Debug,
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))
	return closer
}
