package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.MovieDir == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/megacut/config.toml"
		}
		return fmt.Errorf("paths.movie_dir is required. Set MEGACUT_MOVIE_DIR env var or edit %s (create with 'megacut config init')", defaultPath)
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.ChunkDurationMinutes < 1 {
		return errors.New("render.chunk_duration_minutes must be at least 1")
	}
	if c.Render.SceneWorkers < 1 || c.Render.SceneWorkers > 64 {
		return errors.New("render.scene_workers must be between 1 and 64")
	}
	if c.Render.ChunkLookahead < 1 || c.Render.ChunkLookahead > 2 {
		return errors.New("render.chunk_lookahead must be 1 or 2")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
