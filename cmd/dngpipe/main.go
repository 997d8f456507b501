package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/motioncam/dngpipe"
	"github.com/motioncam/dngpipe/internal/logging"
	"github.com/motioncam/dngpipe/internal/pipeline"
	"github.com/motioncam/dngpipe/internal/settings"
)

func main() {
	app := &cli.Command{
		Name:  "dngpipe",
		Usage: "Decode MCRAW clips into per-frame Cinema DNGs",
		Commands: []*cli.Command{
			decodeCmd(),
			infoCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(exitErr.ExitCode())
		}
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func decodeCmd() *cli.Command {
	var (
		outDir      string
		cameraModel string
		cropTarget  string
		levels      string
		logLevel    string
		configPath  string
	)

	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode an MCRAW container into one DNG per frame",
		ArgsUsage: "<container>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output directory", Value: ".", Destination: &outDir},
			&cli.StringFlag{Name: "camera-model", Usage: "camera model override", Destination: &cameraModel},
			&cli.StringFlag{Name: "crop", Usage: "crop target WxH", Destination: &cropTarget},
			&cli.StringFlag{Name: "levels", Usage: "Dynamic, Static, or <white>/<black>", Destination: &levels},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn, error", Value: "info", Destination: &logLevel},
			&cli.StringFlag{Name: "config", Usage: "path to a YAML settings file", Destination: &configPath},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return cli.Exit("decode: missing <container> argument", 2)
			}

			s, err := loadSettings(configPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("decode: %v", err), 2)
			}
			if cameraModel != "" {
				s.CameraModel = cameraModel
				s.Options |= settings.OptCamModelOverride
			}
			if cropTarget != "" {
				s.CropTarget = cropTarget
				s.Options |= settings.OptCropping
			}
			if levels != "" {
				s.Levels = levels
			}

			logger := logging.Pretty(os.Stderr, logging.ParseLevel(logLevel))

			c, err := dngpipe.Open(path)
			if err != nil {
				if errors.Is(err, dngpipe.ErrContainerInvalid) || errors.Is(err, dngpipe.ErrParserExhausted) {
					return cli.Exit(fmt.Sprintf("decode: %v", err), 3)
				}
				return cli.Exit(fmt.Sprintf("decode: %v", err), 3)
			}
			defer c.Close()

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return cli.Exit(fmt.Sprintf("decode: %v", err), 2)
			}

			base := baseName(path)
			job := c.NewJob("", base, s, pipeline.NewMemoryCache(), logger)

			stats, failures, err := job.RunAll(ctx)
			for _, f := range job.ListFrames() {
				data, readErr := job.ReadFrame(ctx, f.Index)
				if readErr != nil {
					continue
				}
				outPath := outDir + string(os.PathSeparator) + f.FileName
				if writeErr := os.WriteFile(outPath, data, 0o644); writeErr != nil {
					logger.Warn("failed to write frame", "file", outPath, "error", writeErr)
				}
			}

			logger.Info("decode finished", "successful", stats.Successful, "failed", stats.Failed, "total", stats.Total)
			for _, f := range failures {
				logger.Warn("frame failed", "output_index", f.OutputIndex, "error", f.Err)
			}

			switch {
			case errors.Is(err, pipeline.ErrCancelled):
				return cli.Exit("decode: cancelled", 5)
			case errors.Is(err, pipeline.ErrJobAborted):
				return cli.Exit("decode: partial failure above threshold", 4)
			case err != nil:
				return cli.Exit(fmt.Sprintf("decode: %v", err), 3)
			}
			return nil
		},
	}
}

func infoCmd() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:      "info",
		Usage:     "Print a container's FileInfo summary as JSON",
		ArgsUsage: "<container>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a YAML settings file", Destination: &configPath},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return cli.Exit("info: missing <container> argument", 2)
			}

			s, err := loadSettings(configPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("info: %v", err), 2)
			}

			c, err := dngpipe.Open(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("info: %v", err), 3)
			}
			defer c.Close()

			return printInfoJSON(c.Info(s))
		},
	}
}

func baseName(path string) string {
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			base = path[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}
