package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/blang/semver/v4"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v2"

	"github.com/fitzgen/kosmograd/cmd/kosmograd/build"
	"github.com/fitzgen/kosmograd/cmd/kosmograd/inspect"
	"github.com/fitzgen/kosmograd/cmd/kosmograd/run"
)

var version = semver.MustParse("0.1.0")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt,
		os.Kill)
	defer cancel()

	app := &cli.App{
		Name:    "kosmograd",
		Usage:   "greet, shadow, add, then say goodbye",
		Version: version.String(),
		Before:  setup,
		Flags:   run.Flags,
		Action:  run.Main,
		Commands: []*cli.Command{
			run.Command(),
			inspect.Command(),
			build.Command(),
		},
	}

	err := app.RunContext(ctx, os.Args)
	if err != nil {
		slog.ErrorContext(ctx, err.Error())
		os.Exit(1)
	}
}

func setup(c *cli.Context) error {
	// .env files are optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}

	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(tint.NewHandler(c.App.ErrWriter, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})))

	return nil
}
