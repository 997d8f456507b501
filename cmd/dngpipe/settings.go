package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/motioncam/dngpipe"
	"github.com/motioncam/dngpipe/internal/settings"
)

func loadSettings(configPath string) (settings.RenderSettings, error) {
	if configPath == "" {
		return settings.Default(), nil
	}
	return settings.LoadFile(configPath)
}

func printInfoJSON(info dngpipe.FileInfo) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(info); err != nil {
		return fmt.Errorf("info: encode: %w", err)
	}
	return nil
}
