package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sailnavsim/advancedboats/internal/dispatcher"
	"github.com/sailnavsim/advancedboats/internal/fleet"
	"github.com/sailnavsim/advancedboats/internal/handlers"
	"github.com/sailnavsim/advancedboats/internal/logging"
	"github.com/sailnavsim/advancedboats/internal/registry"
	"github.com/sailnavsim/advancedboats/internal/trace"
	"github.com/sailnavsim/advancedboats/internal/util"
)

// runReplay feeds a script of host commands, one per line, through the same
// dispatcher and handlers the library uses. Each reply is written to stdout
// as one JSON object. Blank lines and lines starting with # are skipped.
func runReplay(args []string, stdin io.Reader, stdout, stderr io.Writer, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(stderr)
	traceDir := fs.String("trace", "", "Write fleet step trace CSV into this directory")
	workers := fs.Int("workers", 0, "Fleet worker goroutines (0 = GOMAXPROCS)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		in = f
	}

	tw, err := trace.Create(*traceDir)
	if err != nil {
		return err
	}
	defer tw.Close()

	var opts []fleet.Option
	if tw != nil {
		opts = append(opts, fleet.WithSink(tw))
	}

	reg := registry.New()
	// the stepper and handlers log through slog; only warnings reach the console
	stepLogger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	stepper, err := fleet.New(reg, fleet.Config{Workers: *workers}, stepLogger, opts...)
	if err != nil {
		return err
	}

	d, err := dispatcher.New(logging.NewDispatcherLogger(logger))
	if err != nil {
		return err
	}

	handlers.NewService(handlers.Dependencies{
		Registry: reg,
		Fleet:    stepper,
		Logger:   stepLogger,
		WriteLog: func(source, data, level string) {
			lvl, err := zerolog.ParseLevel(strings.ToLower(level))
			if err != nil || lvl == zerolog.NoLevel {
				lvl = zerolog.InfoLevel
			}
			logger.WithLevel(lvl).Str("source", source).Msg(data)
		},
		ExtensionVersion: "replay",
		BuildDate:        "unknown",
	}).Register(d)

	replies := zerolog.New(stdout)
	failed := 0
	lineNo := 0

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields, err := util.SplitFields(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}

		result, err := d.Dispatch(dispatcher.Event{
			Command:   fields[0],
			Args:      fields[1:],
			Timestamp: time.Now(),
		})

		ev := replies.Log().Int("line", lineNo).Str("command", fields[0])
		if err != nil {
			failed++
			ev.Bool("ok", false).Str("error", err.Error()).Send()
			continue
		}
		ev.Bool("ok", true).Interface("result", result).Send()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading script: %w", err)
	}

	logger.Info().Int("lines", lineNo).Int("failed", failed).Uint64("ticks", stepper.Tick()).Msg("Replay complete")
	return nil
}
